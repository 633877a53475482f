// Package eventstore persists the event streams of aggregates.
package eventstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/saastack/eventing/aggregate"
)

// Store is an append-only store of event streams.
type Store interface {
	// Append adds a batch of events to the end of a stream.
	//
	// The version of the first event must immediately follow the stream's
	// current version, otherwise a [*ConflictError] is returned and no events
	// are persisted. An empty batch is a no-op.
	Append(ctx context.Context, streamName string, events []aggregate.Event) error

	// Load returns the events on a stream with versions greater than
	// afterVersion, in order.
	Load(ctx context.Context, streamName string, afterVersion uint64) ([]aggregate.Event, error)

	// Version returns the version of the most recent event on a stream, or
	// zero if the stream is empty.
	Version(ctx context.Context, streamName string) (uint64, error)
}

// ErrStreamAlreadyUpdated is matched by [*ConflictError] when using
// [errors.Is].
var ErrStreamAlreadyUpdated = errors.New("stream already updated")

// ConflictError is returned when a batch of events does not immediately follow
// the current version of a stream.
type ConflictError struct {
	StreamName string

	// ExpectedVersion is the version the writer believed the stream to be at.
	ExpectedVersion uint64

	// ActualVersion is the stream's version at the time of the append.
	ActualVersion uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"%s: %q is at version %d, expected version %d",
		ErrStreamAlreadyUpdated,
		e.StreamName,
		e.ActualVersion,
		e.ExpectedVersion,
	)
}

// Is returns true if target is [ErrStreamAlreadyUpdated].
func (e *ConflictError) Is(target error) bool {
	return target == ErrStreamAlreadyUpdated
}

// InvalidBatchError is returned when a batch of events passed to
// [Store.Append] is malformed.
type InvalidBatchError struct {
	StreamName string
	Reason     string
}

func (e *InvalidBatchError) Error() string {
	return fmt.Sprintf("invalid batch for %q: %s", e.StreamName, e.Reason)
}

// validateBatch checks that events form a contiguous batch on one stream.
func validateBatch(streamName string, events []aggregate.Event) error {
	for i, ev := range events {
		if ev.StreamName != streamName {
			return &InvalidBatchError{
				streamName,
				fmt.Sprintf("event at index %d belongs to %q", i, ev.StreamName),
			}
		}

		if n := aggregate.StreamName(ev.AggregateType, ev.AggregateID); n != streamName {
			return &InvalidBatchError{
				streamName,
				fmt.Sprintf("event at index %d was recorded by the aggregate of stream %q", i, n),
			}
		}

		if ev.Version == 0 {
			return &InvalidBatchError{
				streamName,
				fmt.Sprintf("event at index %d has a zero version", i),
			}
		}

		if i > 0 && ev.Version != events[i-1].Version+1 {
			return &InvalidBatchError{
				streamName,
				fmt.Sprintf(
					"event at index %d has version %d, expected %d",
					i,
					ev.Version,
					events[i-1].Version+1,
				),
			}
		}
	}

	return nil
}
