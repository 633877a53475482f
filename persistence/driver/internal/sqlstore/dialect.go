// Package sqlstore implements journals and keyspaces on top of database/sql,
// for use by the SQL persistence drivers.
package sqlstore

import (
	"fmt"
	"strings"
)

// Dialect describes the differences between the supported SQL databases.
type Dialect struct {
	// JournalTable and KeyValueTable are the (possibly schema-qualified)
	// table names.
	JournalTable  string
	KeyValueTable string

	// Placeholder returns the bind parameter for the n'th argument, starting
	// at 1.
	Placeholder func(n int) string
}

// PageSize is the maximum number of rows read by a single query when
// ranging.
const PageSize = 256

// query expands a statement, replacing "{J}" and "{KV}" with the table names
// and each "?" with the dialect's placeholder.
func (d Dialect) query(q string) string {
	q = strings.NewReplacer("{J}", d.JournalTable, "{KV}", d.KeyValueTable).Replace(q)

	if d.Placeholder == nil {
		return q
	}

	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
		} else {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// Numbered is a placeholder function for databases that use "$1", "$2" and
// so on.
func Numbered(n int) string {
	return fmt.Sprintf("$%d", n)
}
