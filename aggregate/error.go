package aggregate

import (
	"errors"
	"fmt"
)

var (
	// ErrPendingEvents is returned when an operation that replaces the state
	// of an aggregate is attempted while it has unpersisted events.
	ErrPendingEvents = errors.New("aggregate has pending events")

	// ErrSnapshotsUnsupported is returned when a snapshot operation is
	// attempted on an aggregate that does not implement [Dehydrator].
	ErrSnapshotsUnsupported = errors.New("aggregate does not support snapshots")
)

// OutOfOrderError indicates that an event in a history does not belong at the
// position in which it was given.
type OutOfOrderError struct {
	StreamName      string
	ExpectedVersion uint64
	Event           Event
}

func (e *OutOfOrderError) Error() string {
	if e.Event.StreamName != e.StreamName {
		return fmt.Sprintf(
			"event %s at version %d belongs to stream %q, not %q",
			e.Event.ID,
			e.Event.Version,
			e.Event.StreamName,
			e.StreamName,
		)
	}

	return fmt.Sprintf(
		"event %s on stream %q is out of order: expected version %d, got %d",
		e.Event.ID,
		e.StreamName,
		e.ExpectedVersion,
		e.Event.Version,
	)
}

// UnknownEventTypeError indicates that an event in a history has a type that
// is neither known to the codec nor handled by a [Migrator].
type UnknownEventTypeError struct {
	StreamName string
	Version    uint64
	EventType  string
}

func (e *UnknownEventTypeError) Error() string {
	return fmt.Sprintf(
		"cannot replay %q event at version %d of stream %q: unknown event type",
		e.EventType,
		e.Version,
		e.StreamName,
	)
}
