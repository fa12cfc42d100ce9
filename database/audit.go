package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/egor/vicai/models"
)

// AuditStore appends request outcomes to audit_log.
type AuditStore struct {
	db *sql.DB
}

func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Record inserts rec, filling ID and CreatedAt when unset.
func (s *AuditStore) Record(ctx context.Context, rec models.AuditRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, dbQueryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log
		       (id, client_id, raw, clean, declared_length, reason, intent, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.ClientID, rec.Raw, rec.Clean, rec.DeclaredLength,
		rec.Reason, rec.Intent, rec.Status, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}
	return nil
}

// Recent returns the newest records first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]models.AuditRecord, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	ctx, cancel := context.WithTimeout(ctx, dbQueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, raw, clean, declared_length, reason, intent, status, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit recent: %w", err)
	}
	defer rows.Close()

	var out []models.AuditRecord
	for rows.Next() {
		var r models.AuditRecord
		if err := rows.Scan(&r.ID, &r.ClientID, &r.Raw, &r.Clean, &r.DeclaredLength,
			&r.Reason, &r.Intent, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
