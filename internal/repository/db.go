package repository

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Connect opens the database for the given driver ("pgx" for Postgres,
// "sqlite" for embedded deployments) and ensures the schema exists.
func Connect(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

// Migrate creates the visitor, notification, and user tables if missing.
// The notifications table's integer primary key doubles as the feed cursor:
// both dialects assign it from a serialized auto-increment counter, so no
// two appends can receive the same id and ids are strictly increasing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var stmts []string
	if db.DriverName() == "sqlite" {
		stmts = sqliteSchema
	} else {
		stmts = postgresSchema
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS visitors (
		id              TEXT PRIMARY KEY,
		full_name       TEXT NOT NULL,
		email           TEXT NOT NULL DEFAULT '',
		phone_number    TEXT NOT NULL DEFAULT '',
		company         TEXT NOT NULL DEFAULT '',
		purpose         TEXT NOT NULL DEFAULT '',
		host_name       TEXT NOT NULL,
		host_department TEXT NOT NULL DEFAULT '',
		photo_url       TEXT,
		signature       TEXT,
		invite_code     TEXT,
		id_type         TEXT NOT NULL DEFAULT '',
		id_number       TEXT NOT NULL DEFAULT '',
		badge_number    TEXT,
		check_in_time   TIMESTAMPTZ NOT NULL,
		check_out_time  TIMESTAMPTZ,
		approval_time   TIMESTAMPTZ,
		status          TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_visitors_invite_code
		ON visitors (invite_code) WHERE invite_code IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         BIGSERIAL PRIMARY KEY,
		visitor_id TEXT NOT NULL,
		type       TEXT NOT NULL,
		message    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		phone_number  TEXT,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		department    TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS visitors (
		id              TEXT PRIMARY KEY,
		full_name       TEXT NOT NULL,
		email           TEXT NOT NULL DEFAULT '',
		phone_number    TEXT NOT NULL DEFAULT '',
		company         TEXT NOT NULL DEFAULT '',
		purpose         TEXT NOT NULL DEFAULT '',
		host_name       TEXT NOT NULL,
		host_department TEXT NOT NULL DEFAULT '',
		photo_url       TEXT,
		signature       TEXT,
		invite_code     TEXT UNIQUE,
		id_type         TEXT NOT NULL DEFAULT '',
		id_number       TEXT NOT NULL DEFAULT '',
		badge_number    TEXT,
		check_in_time   TIMESTAMP NOT NULL,
		check_out_time  TIMESTAMP,
		approval_time   TIMESTAMP,
		status          TEXT NOT NULL,
		created_at      TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		visitor_id TEXT NOT NULL,
		type       TEXT NOT NULL,
		message    TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		phone_number  TEXT,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		department    TEXT,
		created_at    TIMESTAMP NOT NULL
	)`,
}
