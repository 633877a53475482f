// Package journal defines the append-only logs that hold event streams and
// relay queue partitions.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Position is the offset of a record within a [Journal], starting at 0.
type Position uint64

// ErrConflict is returned by [Journal.Append] when another writer has already
// written a record at the requested position.
var ErrConflict = errors.New("optimistic concurrency conflict")

// Journal is an append-only log of binary records.
//
// Records are addressed by [Position]. The available records always form a
// contiguous half-open range [begin, end); truncation only ever advances
// begin.
type Journal interface {
	// Bounds returns the range of positions that can be read.
	Bounds(ctx context.Context) (begin, end Position, err error)

	// Get returns the record at pos. ok is false if pos is outside the
	// bounds of the journal.
	Get(ctx context.Context, pos Position) (rec []byte, ok bool, err error)

	// Range calls fn for each record from begin onwards, in order, until fn
	// returns false or an error. It fails if begin has been truncated.
	Range(ctx context.Context, begin Position, fn RangeFunc) error

	// Append writes rec at position end, which must be the journal's current
	// end. It returns [ErrConflict] if end is already occupied.
	Append(ctx context.Context, end Position, rec []byte) error

	// Truncate discards every record before end, oldest first.
	Truncate(ctx context.Context, end Position) error

	Close() error
}

// RangeFunc is called by [Journal.Range] for each record. A non-nil error is
// returned from Range.
type RangeFunc func(ctx context.Context, pos Position, rec []byte) (ok bool, err error)

// Store opens journals by path.
type Store interface {
	// Open returns the journal identified by path, creating it if necessary.
	// Neither path nor any of its elements may be empty.
	Open(ctx context.Context, path ...string) (Journal, error)
}

// PathKey encodes path as a single string that drivers use as the journal's
// identifier. Separators within elements are escaped, so distinct paths
// never share a key.
func PathKey(path []string) string {
	if len(path) == 0 {
		panic("path must not be empty")
	}

	escaped := make([]string, len(path))
	for i, elem := range path {
		if elem == "" {
			panic("path element must not be empty")
		}
		elem = strings.ReplaceAll(elem, `\`, `\\`)
		escaped[i] = strings.ReplaceAll(elem, `/`, `\/`)
	}

	return strings.Join(escaped, "/")
}

// Last returns the most recent record in j. ok is false if j is empty.
func Last(ctx context.Context, j Journal) (pos Position, rec []byte, ok bool, err error) {
	begin, end, err := j.Bounds(ctx)
	if err != nil || begin == end {
		return 0, nil, false, err
	}

	pos = end - 1
	rec, ok, err = j.Get(ctx, pos)
	if err != nil {
		return 0, nil, false, err
	}
	if !ok {
		return 0, nil, false, fmt.Errorf("journal is corrupt: missing record at position %d", pos)
	}

	return pos, rec, true, nil
}
