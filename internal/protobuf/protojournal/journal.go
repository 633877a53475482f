// Package protojournal reads and writes [journal.Journal] records that are
// protocol buffers messages.
package protojournal

import (
	"context"
	"fmt"

	"github.com/saastack/eventing/internal/protobuf/typedproto"
	"github.com/saastack/eventing/persistence/journal"
	"google.golang.org/protobuf/proto"
)

// A RangeFunc is called by [Range] for each record in a [journal.Journal].
type RangeFunc[Record proto.Message] func(
	ctx context.Context,
	pos journal.Position,
	rec Record,
) (ok bool, err error)

// Get returns the record at the given position.
func Get[
	Record typedproto.Message[Struct],
	Struct typedproto.MessageStruct,
](
	ctx context.Context,
	j journal.Journal,
	pos journal.Position,
) (Record, bool, error) {
	data, ok, err := j.Get(ctx, pos)
	if !ok || err != nil {
		return nil, ok, err
	}

	rec, err := typedproto.Unmarshal[Record](data)
	if err != nil {
		return nil, false, fmt.Errorf("unable to unmarshal record: %w", err)
	}

	return rec, true, nil
}

// Last returns the most recent record in the journal.
func Last[
	Record typedproto.Message[Struct],
	Struct typedproto.MessageStruct,
](
	ctx context.Context,
	j journal.Journal,
) (journal.Position, Record, bool, error) {
	pos, data, ok, err := journal.Last(ctx, j)
	if !ok || err != nil {
		return 0, nil, false, err
	}

	rec, err := typedproto.Unmarshal[Record](data)
	if err != nil {
		return 0, nil, false, fmt.Errorf("unable to unmarshal record: %w", err)
	}

	return pos, rec, true, nil
}

// Range invokes fn for each record in the journal, in order, beginning at the
// given position.
func Range[
	Record typedproto.Message[Struct],
	Struct typedproto.MessageStruct,
](
	ctx context.Context,
	j journal.Journal,
	begin journal.Position,
	fn RangeFunc[Record],
) error {
	return j.Range(
		ctx,
		begin,
		func(
			ctx context.Context,
			pos journal.Position,
			data []byte,
		) (bool, error) {
			rec, err := typedproto.Unmarshal[Record](data)
			if err != nil {
				return false, fmt.Errorf("unable to unmarshal record: %w", err)
			}
			return fn(ctx, pos, rec)
		},
	)
}

// Append adds a record to the journal at the given position.
func Append[
	Record typedproto.Message[Struct],
	Struct typedproto.MessageStruct,
](
	ctx context.Context,
	j journal.Journal,
	pos journal.Position,
	rec Record,
) error {
	data, err := typedproto.Marshal(rec)
	if err != nil {
		return fmt.Errorf("unable to marshal record: %w", err)
	}

	return j.Append(ctx, pos, data)
}

// CompareFunc compares a record to some datum.
//
// It returns a negative value if the desired record is before rec, and a
// positive value if it is after rec.
type CompareFunc[Record proto.Message] func(
	ctx context.Context,
	rec Record,
) (cmp int, err error)

// Search performs a binary search within the half-open range [begin, end) to
// find the record for which cmp() returns zero.
func Search[
	Record typedproto.Message[Struct],
	Struct typedproto.MessageStruct,
](
	ctx context.Context,
	j journal.Journal,
	begin, end journal.Position,
	cmp CompareFunc[Record],
) (journal.Position, Record, bool, error) {
	var match Record

	pos, _, ok, err := journal.Search(
		ctx,
		j,
		begin,
		end,
		func(ctx context.Context, data []byte) (int, error) {
			rec, err := typedproto.Unmarshal[Record](data)
			if err != nil {
				return 0, fmt.Errorf("unable to unmarshal record: %w", err)
			}

			n, err := cmp(ctx, rec)
			if n == 0 {
				match = rec
			}
			return n, err
		},
	)
	if !ok || err != nil {
		return 0, nil, false, err
	}

	return pos, match, true, nil
}
