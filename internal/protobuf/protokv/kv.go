// Package protokv reads and writes [kv.Keyspace] values that are protocol
// buffers messages.
package protokv

import (
	"context"
	"fmt"

	"github.com/saastack/eventing/internal/protobuf/typedproto"
	"github.com/saastack/eventing/persistence/kv"
)

// Get returns the value associated with k.
//
// ok is false if the key has no value.
func Get[
	V typedproto.Message[S],
	S typedproto.MessageStruct,
](
	ctx context.Context,
	ks kv.Keyspace,
	k []byte,
) (v V, ok bool, err error) {
	data, err := ks.Get(ctx, k)
	if err != nil || len(data) == 0 {
		return nil, false, err
	}

	v, err = typedproto.Unmarshal[V](data)
	if err != nil {
		return nil, false, fmt.Errorf("unable to unmarshal value: %w", err)
	}

	return v, true, nil
}

// Set associates a value with k.
//
// A message that marshals to zero bytes deletes the key.
func Set[
	V typedproto.Message[S],
	S typedproto.MessageStruct,
](
	ctx context.Context,
	ks kv.Keyspace,
	k []byte,
	v V,
) error {
	data, err := typedproto.Marshal(v)
	if err != nil {
		return fmt.Errorf("unable to marshal value: %w", err)
	}

	return ks.Set(ctx, k, data)
}

// Range invokes fn for each key in ks.
//
// If fn returns false, ranging stops and Range() returns immediately. The
// order is undefined.
func Range[
	V typedproto.Message[S],
	S typedproto.MessageStruct,
](
	ctx context.Context,
	ks kv.Keyspace,
	fn func(context.Context, []byte, V) (bool, error),
) error {
	return ks.Range(
		ctx,
		func(ctx context.Context, k, data []byte) (bool, error) {
			v, err := typedproto.Unmarshal[V](data)
			if err != nil {
				return false, fmt.Errorf("unable to unmarshal value: %w", err)
			}

			return fn(ctx, k, v)
		},
	)
}
