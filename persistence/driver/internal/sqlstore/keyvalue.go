package sqlstore

import (
	"context"
	"database/sql"

	"github.com/saastack/eventing/persistence/kv"
)

// KeyValueStore is an implementation of [kv.Store] that keeps every keyspace
// in a single table, keyed by keyspace name and key.
type KeyValueStore struct {
	DB      *sql.DB
	Dialect Dialect
}

// Open returns the keyspace with the given name.
func (s *KeyValueStore) Open(ctx context.Context, name string) (kv.Keyspace, error) {
	d := s.Dialect
	return &sqlKeyspace{
		db:   s.DB,
		name: name,

		get:    d.query(`SELECT value FROM {KV} WHERE keyspace = ? AND key = ?`),
		has:    d.query(`SELECT COUNT(*) FROM {KV} WHERE keyspace = ? AND key = ?`),
		set:    d.query(`INSERT INTO {KV} (keyspace, key, value) VALUES (?, ?, ?) ON CONFLICT (keyspace, key) DO UPDATE SET value = excluded.value`),
		delete: d.query(`DELETE FROM {KV} WHERE keyspace = ? AND key = ?`),
		first:  d.query(`SELECT key, value FROM {KV} WHERE keyspace = ? ORDER BY key LIMIT ?`),
		page:   d.query(`SELECT key, value FROM {KV} WHERE keyspace = ? AND key > ? ORDER BY key LIMIT ?`),
	}, ctx.Err()
}

type sqlKeyspace struct {
	db   *sql.DB
	name string

	get, has, set, delete, first, page string
}

func (ks *sqlKeyspace) Get(ctx context.Context, k []byte) ([]byte, error) {
	var v []byte
	err := ks.db.QueryRowContext(ctx, ks.get, ks.name, k).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func (ks *sqlKeyspace) Has(ctx context.Context, k []byte) (bool, error) {
	var n int
	err := ks.db.QueryRowContext(ctx, ks.has, ks.name, k).Scan(&n)
	return n > 0, err
}

func (ks *sqlKeyspace) Set(ctx context.Context, k, v []byte) error {
	var err error
	if len(v) == 0 {
		_, err = ks.db.ExecContext(ctx, ks.delete, ks.name, k)
	} else {
		_, err = ks.db.ExecContext(ctx, ks.set, ks.name, k, v)
	}
	return err
}

// Range reads the keyspace a page at a time, in key order. No connection is
// held while fn runs, so fn may modify the keyspace.
func (ks *sqlKeyspace) Range(ctx context.Context, fn kv.RangeFunc) error {
	var after []byte

	for {
		page, err := ks.readPage(ctx, after)
		if err != nil {
			return err
		}

		for _, p := range page {
			ok, err := fn(ctx, p[0], p[1])
			if !ok || err != nil {
				return err
			}
		}

		if len(page) < PageSize {
			return nil
		}

		after = page[len(page)-1][0]
	}
}

func (ks *sqlKeyspace) readPage(ctx context.Context, after []byte) ([][2][]byte, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if after == nil {
		rows, err = ks.db.QueryContext(ctx, ks.first, ks.name, PageSize)
	} else {
		rows, err = ks.db.QueryContext(ctx, ks.page, ks.name, after, PageSize)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var page [][2][]byte
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		page = append(page, [2][]byte{k, v})
	}

	return page, rows.Err()
}

func (ks *sqlKeyspace) Close() error {
	return nil
}
