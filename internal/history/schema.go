package history

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaVersion is stored in PRAGMA user_version. Bump it together with any
// change to the submissions table; the store recreates the table when the
// versions disagree since history is a disposable log.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS submissions (
    id TEXT PRIMARY KEY,
    resource_id TEXT,
    kind TEXT NOT NULL,
    source TEXT,
    thumbnail_sizes TEXT,
    image_preview_sizes TEXT,
    status TEXT NOT NULL,
    error_message TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status);
CREATE INDEX IF NOT EXISTS idx_submissions_resource ON submissions(resource_id);
`

func ensureSchema(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != 0 && version != schemaVersion {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS submissions"); err != nil {
			return fmt.Errorf("drop stale schema: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}
