package postgres

import (
	"context"
	"database/sql"
)

// CreateSchema creates the PostgreSQL schema elements required by both
// [JournalStore] and [KeyValueStore].
func CreateSchema(
	ctx context.Context,
	db *sql.DB,
) error {
	if err := CreateJournalSchema(ctx, db); err != nil {
		return err
	}

	return CreateKeyValueStoreSchema(ctx, db)
}

// CreateJournalSchema creates the PostgreSQL schema elements required by
// [JournalStore].
func CreateJournalSchema(
	ctx context.Context,
	db *sql.DB,
) error {
	return createSchema(
		ctx,
		db,
		`CREATE TABLE IF NOT EXISTS eventing.journal (
			path     TEXT NOT NULL,
			position BIGINT NOT NULL,
			record   BYTEA NOT NULL,

			PRIMARY KEY (path, position)
		)`,
	)
}

// CreateKeyValueStoreSchema creates the PostgreSQL schema elements required by
// [KeyValueStore].
func CreateKeyValueStoreSchema(
	ctx context.Context,
	db *sql.DB,
) error {
	return createSchema(
		ctx,
		db,
		`CREATE TABLE IF NOT EXISTS eventing.kv (
			keyspace TEXT NOT NULL,
			key      BYTEA NOT NULL,
			value    BYTEA NOT NULL,

			PRIMARY KEY (keyspace, key)
		)`,
	)
}

func createSchema(
	ctx context.Context,
	db *sql.DB,
	statements ...string,
) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // nolint:errcheck

	if _, err := tx.ExecContext(ctx, `CREATE SCHEMA IF NOT EXISTS eventing`); err != nil {
		return err
	}

	for _, s := range statements {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return err
		}
	}

	return tx.Commit()
}
