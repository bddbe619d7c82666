package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the DDL per driver. Bodies are stored verbatim.
var schema = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS snapshots (
    feed_url     TEXT PRIMARY KEY,
    source_id    TEXT NOT NULL,
    body         BLOB NOT NULL,
    content_type TEXT NOT NULL DEFAULT '',
    fetched_at   TIMESTAMP NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_fetched_at ON snapshots(fetched_at)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_source_id ON snapshots(source_id)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS snapshots (
    feed_url     TEXT PRIMARY KEY,
    source_id    TEXT NOT NULL,
    body         BYTEA NOT NULL,
    content_type TEXT NOT NULL DEFAULT '',
    fetched_at   TIMESTAMPTZ NOT NULL
)`,
		// 古いスナップショットの削除用
		`CREATE INDEX IF NOT EXISTS idx_snapshots_fetched_at ON snapshots(fetched_at)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_source_id ON snapshots(source_id)`,
	},
}

// MigrateUp creates the snapshot schema for driver in one transaction. Every
// statement is IF NOT EXISTS, so running it on each start is safe.
func MigrateUp(ctx context.Context, db *sql.DB, driver string) (err error) {
	stmts, ok := schema[driver]
	if !ok {
		return fmt.Errorf("unsupported store driver %q", driver)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate up: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range stmts {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("migrate up: commit: %w", err)
	}
	return nil
}
