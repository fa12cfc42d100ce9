// Package database backs the rate limiter and the audit log with PostgreSQL.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// pgx driver in database/sql mode
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/egor/vicai/config"
)

const dbQueryTimeout = 5 * time.Second

// Open opens the pool and pings it.
func Open(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

// OpenDSN is Open for a ready-made connection string.
func OpenDSN(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

// BuildDSN renders a key/value connection string.
func BuildDSN(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)
}

const schema = `
CREATE TABLE IF NOT EXISTS rate_limits (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS rate_limits_expires_at_idx ON rate_limits (expires_at);

CREATE TABLE IF NOT EXISTS audit_log (
	id              UUID PRIMARY KEY,
	client_id       TEXT NOT NULL,
	raw             TEXT NOT NULL,
	clean           TEXT NOT NULL DEFAULT '',
	declared_length INTEGER NOT NULL,
	reason          TEXT NOT NULL,
	intent          TEXT NOT NULL DEFAULT '',
	status          INTEGER NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS audit_log_created_at_idx ON audit_log (created_at);`

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
