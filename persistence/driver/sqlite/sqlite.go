// Package sqlite provides journal and key/value stores backed by an SQLite
// database, using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/saastack/eventing/persistence/driver/internal/sqlstore"
	"github.com/saastack/eventing/persistence/journal"
	"github.com/saastack/eventing/persistence/kv"
)

var dialect = sqlstore.Dialect{
	JournalTable:  "eventing_journal",
	KeyValueTable: "eventing_kv",
}

// JournalStore is an implementation of [journal.Store] that stores journal
// records in the eventing_journal table.
type JournalStore struct {
	DB *sql.DB
}

// Open returns the journal at the given path.
func (s *JournalStore) Open(ctx context.Context, path ...string) (journal.Journal, error) {
	store := sqlstore.JournalStore{DB: s.DB, Dialect: dialect}
	return store.Open(ctx, path...)
}

// KeyValueStore is an implementation of [kv.Store] that stores key/value
// pairs in the eventing_kv table.
type KeyValueStore struct {
	DB *sql.DB
}

// Open returns the keyspace with the given name.
func (s *KeyValueStore) Open(ctx context.Context, name string) (kv.Keyspace, error) {
	store := sqlstore.KeyValueStore{DB: s.DB, Dialect: dialect}
	return store.Open(ctx, name)
}
