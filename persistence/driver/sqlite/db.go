package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Open opens the SQLite database at the given path and creates the schema
// required by [JournalStore] and [KeyValueStore].
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := CreateSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// CreateSchema creates the SQLite tables required by [JournalStore] and
// [KeyValueStore].
func CreateSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // nolint:errcheck

	for _, s := range []string{
		`CREATE TABLE IF NOT EXISTS eventing_journal (
			path     TEXT NOT NULL,
			position INTEGER NOT NULL,
			record   BLOB NOT NULL,

			PRIMARY KEY (path, position)
		)`,
		`CREATE TABLE IF NOT EXISTS eventing_kv (
			keyspace TEXT NOT NULL,
			key      BLOB NOT NULL,
			value    BLOB NOT NULL,

			PRIMARY KEY (keyspace, key)
		)`,
	} {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return err
		}
	}

	return tx.Commit()
}
