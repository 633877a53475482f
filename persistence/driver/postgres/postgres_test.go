package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dogmatiq/sqltest"
	. "github.com/saastack/eventing/persistence/driver/postgres"
	"github.com/saastack/eventing/persistence/journal"
	"github.com/saastack/eventing/persistence/kv"
)

// newDB returns a connection to a fresh database with the eventing schema. The
// test is skipped if no PostgreSQL server is available.
func newDB(t *testing.T) *sql.DB {
	ctx := context.Background()

	database, err := sqltest.NewDatabase(ctx, sqltest.PGXDriver, sqltest.PostgreSQL)
	if err != nil {
		t.Skipf("PostgreSQL is not available: %s", err)
	}
	t.Cleanup(func() { database.Close() })

	db, err := database.Open()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if err := CreateSchema(ctx, db); err != nil {
		t.Fatal(err)
	}

	// Creating the schema a second time must be harmless.
	if err := CreateSchema(ctx, db); err != nil {
		t.Fatal(err)
	}

	return db
}

func TestJournalStore(t *testing.T) {
	db := newDB(t)

	journal.RunTests(t, func(*testing.T) journal.Store {
		return &JournalStore{DB: db}
	})
}

func TestKeyValueStore(t *testing.T) {
	db := newDB(t)

	kv.RunTests(t, func(*testing.T) kv.Store {
		return &KeyValueStore{DB: db}
	})
}
