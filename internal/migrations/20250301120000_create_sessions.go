package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessions, downCreateSessions)
}

func upCreateSessions(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS sessions (
		id                VARCHAR PRIMARY KEY,
		user_access_token VARCHAR NOT NULL DEFAULT '',
		accounts          JSONB NOT NULL DEFAULT '[]',
		page_id           VARCHAR NOT NULL DEFAULT '',
		page_name         VARCHAR NOT NULL DEFAULT '',
		page_access_token VARCHAR NOT NULL DEFAULT '',
		created_at        TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		expires_at        TIMESTAMP WITH TIME ZONE NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at);
	`)
	return err
}

func downCreateSessions(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS sessions;`)
	return err
}
