package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/saastack/eventing/persistence/journal"
)

// JournalStore is an implementation of [journal.Store] that keeps every
// journal in a single table, keyed by path and position.
type JournalStore struct {
	DB      *sql.DB
	Dialect Dialect
}

// Open returns the journal at the given path.
func (s *JournalStore) Open(ctx context.Context, path ...string) (journal.Journal, error) {
	d := s.Dialect
	return &sqlJournal{
		db:   s.DB,
		path: journal.PathKey(path),

		bounds:   d.query(`SELECT COALESCE(MIN(position), 0), COALESCE(MAX(position) + 1, 0) FROM {J} WHERE path = ?`),
		get:      d.query(`SELECT record FROM {J} WHERE path = ? AND position = ?`),
		page:     d.query(`SELECT position, record FROM {J} WHERE path = ? AND position >= ? ORDER BY position LIMIT ?`),
		append:   d.query(`INSERT INTO {J} (path, position, record) VALUES (?, ?, ?) ON CONFLICT (path, position) DO NOTHING`),
		truncate: d.query(`DELETE FROM {J} WHERE path = ? AND position < ?`),
	}, ctx.Err()
}

type sqlJournal struct {
	db   *sql.DB
	path string

	bounds, get, page, append, truncate string
}

func (j *sqlJournal) Bounds(ctx context.Context) (begin, end journal.Position, err error) {
	var b, e int64
	err = j.db.QueryRowContext(ctx, j.bounds, j.path).Scan(&b, &e)
	return journal.Position(b), journal.Position(e), err
}

func (j *sqlJournal) Get(ctx context.Context, pos journal.Position) ([]byte, bool, error) {
	var rec []byte
	err := j.db.QueryRowContext(ctx, j.get, j.path, int64(pos)).Scan(&rec)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	return rec, err == nil, err
}

// Range reads the journal a page at a time. No connection is held while fn
// runs, so fn may write to the same database.
func (j *sqlJournal) Range(ctx context.Context, begin journal.Position, fn journal.RangeFunc) error {
	first, _, err := j.Bounds(ctx)
	if err != nil {
		return err
	}
	if begin < first {
		return fmt.Errorf("cannot range from position %d, records before %d have been truncated", begin, first)
	}

	next := begin

	for {
		var page []record
		if err := j.readPage(ctx, next, &page); err != nil {
			return err
		}

		for _, r := range page {
			if r.pos != next {
				return fmt.Errorf("cannot range from position %d, the record has been truncated", next)
			}
			next++

			ok, err := fn(ctx, r.pos, r.data)
			if !ok || err != nil {
				return err
			}
		}

		if len(page) < PageSize {
			return nil
		}
	}
}

type record struct {
	pos  journal.Position
	data []byte
}

func (j *sqlJournal) readPage(ctx context.Context, from journal.Position, page *[]record) error {
	rows, err := j.db.QueryContext(ctx, j.page, j.path, int64(from), PageSize)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pos int64
			r   record
		)
		if err := rows.Scan(&pos, &r.data); err != nil {
			return err
		}
		r.pos = journal.Position(pos)
		*page = append(*page, r)
	}

	return rows.Err()
}

func (j *sqlJournal) Append(ctx context.Context, end journal.Position, rec []byte) error {
	res, err := j.db.ExecContext(ctx, j.append, j.path, int64(end), rec)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return journal.ErrConflict
	}

	return nil
}

func (j *sqlJournal) Truncate(ctx context.Context, end journal.Position) error {
	_, err := j.db.ExecContext(ctx, j.truncate, j.path, int64(end))
	return err
}

func (j *sqlJournal) Close() error {
	return nil
}
