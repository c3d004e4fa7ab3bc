package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateScopes, downCreateScopes)
}

func upCreateScopes(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE scopes (
			id                TEXT PRIMARY KEY,
			kind              TEXT NOT NULL CHECK (kind IN ('recipients', 'conversation', 'story')),
			conversation_kind TEXT CHECK (conversation_kind IN ('direct', 'group')),
			creator_id        TEXT NOT NULL,
			members           TEXT[] NOT NULL DEFAULT '{}',
			viewers           TEXT[] NOT NULL DEFAULT '{}',
			expires_at        TIMESTAMP WITH TIME ZONE,
			status            TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'expired')),
			created_at        TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			CONSTRAINT scopes_viewers_are_members CHECK (viewers <@ members)
		);

		CREATE INDEX idx_scopes_active_stories ON scopes (creator_id, created_at DESC)
			WHERE kind = 'story' AND status = 'active';
		CREATE INDEX idx_scopes_expired ON scopes (expires_at) WHERE status = 'expired';
	`)
	return err
}

func downCreateScopes(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE scopes;`)
	return err
}
