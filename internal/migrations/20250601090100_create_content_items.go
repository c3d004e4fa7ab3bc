package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateContentItems, downCreateContentItems)
}

func upCreateContentItems(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE content_items (
			id           TEXT PRIMARY KEY,
			kind         TEXT NOT NULL CHECK (kind IN ('snap', 'chat_message', 'story_entry')),
			scope_id     TEXT NOT NULL REFERENCES scopes (id),
			creator_id   TEXT NOT NULL,
			audience     TEXT[] NOT NULL,
			body         TEXT NOT NULL DEFAULT '',
			media_path   TEXT NOT NULL DEFAULT '',
			viewed_by    TEXT[] NOT NULL DEFAULT '{}',
			saved_by     TEXT[] NOT NULL DEFAULT '{}',
			read_by      TEXT[] NOT NULL DEFAULT '{}',
			created_at   TIMESTAMP WITH TIME ZONE NOT NULL,
			expires_at   TIMESTAMP WITH TIME ZONE,
			status       TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'expired')),
			version      BIGINT NOT NULL DEFAULT 1,
			finalized_at TIMESTAMP WITH TIME ZONE,
			CONSTRAINT content_viewed_by_in_audience CHECK (viewed_by <@ audience),
			CONSTRAINT content_saved_by_in_audience CHECK (saved_by <@ audience),
			CONSTRAINT content_read_by_in_audience CHECK (read_by <@ audience)
		);

		CREATE INDEX idx_content_items_scope ON content_items (scope_id, created_at)
			WHERE status = 'active';
		CREATE INDEX idx_content_items_expires ON content_items (expires_at)
			WHERE status = 'active' AND expires_at IS NOT NULL;
		CREATE INDEX idx_content_items_media ON content_items (media_path)
			WHERE status = 'active' AND media_path <> '';
		CREATE INDEX idx_content_items_tombstones ON content_items (finalized_at)
			WHERE status = 'expired';
	`)
	return err
}

func downCreateContentItems(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE content_items;`)
	return err
}
