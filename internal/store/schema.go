package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrUsersTableMissing is returned by EnsureSchema when the externally managed
// users table has not been created yet.
var ErrUsersTableMissing = errors.New("users table does not exist")

const appSchema = `
CREATE TABLE IF NOT EXISTS style_profiles (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE REFERENCES users(id),
	source_type TEXT NOT NULL CHECK (source_type IN ('url', 'paste')),
	source_url TEXT NULL,
	training_text TEXT NULL,
	style_summary TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL CHECK (status IN ('untrained', 'training', 'ready', 'failed')),
	last_error TEXT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS crawl_attempts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	url TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('pending', 'success', 'failed')),
	http_status INTEGER NULL,
	extracted_text TEXT NULL,
	error_message TEXT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS crawl_attempts_user_created_idx ON crawl_attempts (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS writing_requests (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	topic TEXT NOT NULL,
	title_hint TEXT NULL,
	key_points TEXT NULL,
	constraints TEXT NULL,
	status TEXT NOT NULL CHECK (status IN ('queued', 'generating', 'completed', 'failed')),
	last_error TEXT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS writing_requests_user_created_idx ON writing_requests (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS generated_drafts (
	id TEXT PRIMARY KEY,
	writing_request_id TEXT NOT NULL REFERENCES writing_requests(id),
	user_id TEXT NOT NULL REFERENCES users(id),
	content TEXT NOT NULL,
	version INTEGER NOT NULL CHECK (version > 0),
	is_latest BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (writing_request_id, version)
);

CREATE UNIQUE INDEX IF NOT EXISTS generated_drafts_one_latest_idx
	ON generated_drafts (writing_request_id) WHERE is_latest;
`

// EnsureSchema creates the style profile, crawl attempt, writing request and
// generated draft tables with their constraints. It is idempotent and runs in
// a single transaction. The users table is owned elsewhere and must exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	var usersTable sql.NullString
	if err := db.QueryRowContext(ctx, `SELECT to_regclass('users')::text`).Scan(&usersTable); err != nil {
		return fmt.Errorf("check users table: %w", err)
	}
	if !usersTable.Valid {
		return ErrUsersTableMissing
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, appSchema); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create app schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit app schema: %w", err)
	}
	return nil
}
