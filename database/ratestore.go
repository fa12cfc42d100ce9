package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RateStore is a TTL key-value store on the rate_limits table. Expired rows
// are invisible to reads and are overwritten by writes; PurgeExpired removes
// them for good.
type RateStore struct {
	db *sql.DB
}

func NewRateStore(db *sql.DB) *RateStore {
	return &RateStore{db: db}
}

func (s *RateStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbQueryTimeout)
	defer cancel()

	var v string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM rate_limits WHERE key = $1 AND expires_at > now()", key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("rate get: %w", err)
	}
	return v, true, nil
}

func (s *RateStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, dbQueryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rate_limits (key, value, expires_at)
		VALUES ($1, $2, now() + $3::double precision * interval '1 second')
		ON CONFLICT (key) DO UPDATE
		   SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, ttl.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("rate put: %w", err)
	}
	return nil
}

// SetIfAbsent inserts the key, or replaces it only if it has expired. The
// single statement makes concurrent callers race-free.
func (s *RateStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbQueryTimeout)
	defer cancel()

	var got string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO rate_limits (key, value, expires_at)
		VALUES ($1, $2, now() + $3::double precision * interval '1 second')
		ON CONFLICT (key) DO UPDATE
		   SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
		 WHERE rate_limits.expires_at <= now()
		RETURNING key`,
		key, value, ttl.Seconds(),
	).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("rate set-if-absent: %w", err)
	}
	return true, nil
}

// PurgeExpired deletes expired rows and returns how many went.
func (s *RateStore) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, dbQueryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, "DELETE FROM rate_limits WHERE expires_at <= now()")
	if err != nil {
		return 0, fmt.Errorf("rate purge: %w", err)
	}
	return res.RowsAffected()
}
