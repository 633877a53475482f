// Package kv defines the key/value storage used for snapshots, relay
// checkpoints and cluster membership.
package kv

import "context"

// Store opens named keyspaces.
type Store interface {
	// Open returns the keyspace called name, creating it if necessary.
	Open(ctx context.Context, name string) (Keyspace, error)
}

// Keyspace is a set of key/value pairs that is independent of every other
// keyspace in the same [Store].
//
// Empty values are never stored. Reading a missing key yields an empty
// value, and writing an empty value removes the key.
type Keyspace interface {
	Get(ctx context.Context, k []byte) (v []byte, err error)
	Has(ctx context.Context, k []byte) (ok bool, err error)
	Set(ctx context.Context, k, v []byte) error

	// Range calls fn for each pair, in no particular order, until fn returns
	// false or an error.
	Range(ctx context.Context, fn RangeFunc) error

	Close() error
}

// RangeFunc is called by [Keyspace.Range] for each key/value pair. A non-nil
// error is returned from Range.
type RangeFunc func(ctx context.Context, k, v []byte) (ok bool, err error)
