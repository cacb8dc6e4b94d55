// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// DB wraps a *sqlx.DB and implements domain repository interfaces.
type DB struct {
	sql *sqlx.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// New wraps an existing connection without migrating.
func New(s *sqlx.DB) *DB {
	return &DB{sql: s}
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			date_of_birth DATE,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS listings (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			property_type TEXT NOT NULL DEFAULT '',
			bedrooms INTEGER NOT NULL,
			minimum_nights INTEGER NOT NULL,
			maximum_nights INTEGER NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_listings_bedrooms ON listings(bedrooms);",
		`CREATE TABLE IF NOT EXISTS listing_reviews (
			id BIGSERIAL PRIMARY KEY,
			listing_id TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
			reviewer_id TEXT NOT NULL DEFAULT '',
			reviewer_name TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			comments TEXT NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_listing_reviews_listing_id ON listing_reviews(listing_id);",
		`CREATE TABLE IF NOT EXISTS reservations (
			id TEXT PRIMARY KEY,
			listing_id TEXT NOT NULL REFERENCES listings(id),
			user_id TEXT NOT NULL REFERENCES users(id),
			booking_date TIMESTAMPTZ NOT NULL,
			UNIQUE (listing_id, user_id)
		);`,
		"CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations(user_id);",
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_agent TEXT NOT NULL DEFAULT '',
			ip TEXT NOT NULL DEFAULT '',
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
