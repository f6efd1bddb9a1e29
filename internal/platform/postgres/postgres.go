// Package postgres opens the shared database handle and bootstraps the
// schema. Schema-on-open keeps dev and test environments from drifting; a
// real migration tool can replace EnsureSchema without touching callers.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"garita/internal/platform/config"
)

// Open connects with the pgx stdlib driver and verifies the connection.
func Open(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates all tables and indexes if absent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		tax_id      TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL DEFAULT '',
		phone       TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS facilities (
		id          UUID PRIMARY KEY,
		company_id  UUID NOT NULL REFERENCES companies(id),
		name        TEXT NOT NULL,
		address     TEXT NOT NULL DEFAULT '',
		UNIQUE (company_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS sectors (
		id                UUID PRIMARY KEY,
		facility_id       UUID NOT NULL REFERENCES facilities(id),
		name              TEXT NOT NULL,
		requires_escort_documentation BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (facility_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS visitors (
		id           UUID PRIMARY KEY,
		national_id  TEXT,
		foreign_id   TEXT,
		is_foreign   BOOLEAN NOT NULL DEFAULT FALSE,
		name         TEXT NOT NULL,
		surname      TEXT NOT NULL DEFAULT '',
		company_name TEXT NOT NULL DEFAULT '',
		plate        TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT 'activo',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS visitors_national_idx
		ON visitors (national_id) WHERE NOT is_foreign AND national_id IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS visitors_foreign_idx
		ON visitors (foreign_id) WHERE is_foreign AND foreign_id IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS bans (
		id          UUID PRIMARY KEY,
		visitor_id  UUID NOT NULL REFERENCES visitors(id) ON DELETE CASCADE,
		facility_id UUID NOT NULL REFERENCES facilities(id) ON DELETE CASCADE,
		reason      TEXT NOT NULL,
		starts_at   TIMESTAMPTZ NOT NULL,
		ends_at     TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS bans_pair_idx ON bans (visitor_id, facility_id)`,
	`CREATE INDEX IF NOT EXISTS bans_facility_start_idx ON bans (facility_id, starts_at)`,
	`CREATE TABLE IF NOT EXISTS access_events (
		id          UUID PRIMARY KEY,
		seq         BIGSERIAL,
		visitor_id  UUID NOT NULL REFERENCES visitors(id),
		facility_id UUID NOT NULL REFERENCES facilities(id),
		sector_id   UUID NOT NULL REFERENCES sectors(id),
		company_id  UUID NOT NULL REFERENCES companies(id),
		guard_id    UUID NOT NULL,
		kind        TEXT NOT NULL CHECK (kind IN ('ingreso','salida')),
		occurred_at TIMESTAMPTZ NOT NULL,
		comment     TEXT NOT NULL DEFAULT '',
		photo_urls  TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS access_events_facility_time_idx
		ON access_events (facility_id, occurred_at)`,
	`CREATE INDEX IF NOT EXISTS access_events_pair_time_idx
		ON access_events (visitor_id, facility_id, occurred_at DESC, seq DESC)`,
	`CREATE INDEX IF NOT EXISTS access_events_company_time_idx
		ON access_events (company_id, occurred_at)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id          UUID PRIMARY KEY,
		action      TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		guard_id    UUID,
		visitor_id  UUID,
		facility_id UUID,
		event_id    UUID,
		reason      TEXT NOT NULL DEFAULT '',
		device      TEXT NOT NULL DEFAULT '',
		request_id  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS audit_events_time_idx ON audit_events (occurred_at)`,
}
