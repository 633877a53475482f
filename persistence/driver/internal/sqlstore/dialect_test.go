package sqlstore

import (
	"testing"

	"github.com/saastack/eventing/internal/test"
)

func TestDialect(t *testing.T) {
	t.Parallel()

	t.Run("it substitutes table names and numbered placeholders", func(t *testing.T) {
		t.Parallel()

		d := Dialect{
			JournalTable:  "eventing.journal",
			KeyValueTable: "eventing.kv",
			Placeholder:   Numbered,
		}

		test.Expect(
			t,
			"unexpected query",
			d.query(`DELETE FROM {J} WHERE path = ? AND position < ?`),
			`DELETE FROM eventing.journal WHERE path = $1 AND position < $2`,
		)
	})

	t.Run("it leaves question mark placeholders as-is by default", func(t *testing.T) {
		t.Parallel()

		d := Dialect{KeyValueTable: "eventing_kv"}

		test.Expect(
			t,
			"unexpected query",
			d.query(`SELECT value FROM {KV} WHERE keyspace = ? AND key = ?`),
			`SELECT value FROM eventing_kv WHERE keyspace = ? AND key = ?`,
		)
	})
}
