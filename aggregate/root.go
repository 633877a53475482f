package aggregate

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Applier is implemented by aggregate types to apply events to their state.
type Applier interface {
	ApplyEvent(payload any) error
}

// Aggregate is the interface implemented by any type that embeds a [Root]
// and implements [Applier].
type Aggregate interface {
	Applier

	ID() string
	Type() string
	Version() uint64
	PersistedVersion() uint64
	PendingEvents() []Event
	MarkPersisted(upTo uint64)
	LoadHistory(history []Event) error
	Hydrate(s Snapshot) error
	TakeSnapshot() (Snapshot, error)
}

// Root is embedded by aggregate types. It records the events raised by the
// aggregate and tracks its version.
//
// Root must be initialized with [Root.Init] before use.
type Root struct {
	self          Applier
	aggregateType string
	id            string
	persisted     uint64
	pending       []Event
}

// Init initializes the root.
//
// self is the aggregate that embeds r. Events are applied to it as they are
// raised or replayed. If self also implements [Migrator] it is consulted
// for events whose payloads could not be decoded.
func (r *Root) Init(self Applier, aggregateType, id string) {
	if self == nil {
		panic("aggregate: self must not be nil")
	}
	if aggregateType == "" {
		panic("aggregate: type must not be empty")
	}
	if id == "" {
		panic("aggregate: id must not be empty")
	}

	r.self = self
	r.aggregateType = aggregateType
	r.id = id
	r.persisted = 0
	r.pending = nil
}

// ID returns the aggregate's identifier.
func (r *Root) ID() string {
	return r.id
}

// Type returns the aggregate's type name.
func (r *Root) Type() string {
	return r.aggregateType
}

// Version returns the version of the aggregate, including pending events.
func (r *Root) Version() uint64 {
	return r.persisted + uint64(len(r.pending))
}

// PersistedVersion returns the version of the aggregate as of the last event
// known to be persisted.
func (r *Root) PersistedVersion() uint64 {
	return r.persisted
}

// PendingEvents returns the events that have been raised but not yet
// persisted, in the order they were raised.
func (r *Root) PendingEvents() []Event {
	return slices.Clone(r.pending)
}

// Raise applies a new event to the aggregate and queues it for persistence.
//
// If the payload cannot be applied the event is discarded and the error is
// returned.
func (r *Root) Raise(payload any, options ...MetadataOption) error {
	r.mustBeInitialized()

	if payload == nil {
		return errors.New("cannot raise an event with a nil payload")
	}

	ev := Event{
		ID:            uuid.New(),
		StreamName:    StreamName(r.aggregateType, r.id),
		AggregateType: r.aggregateType,
		AggregateID:   r.id,
		Version:       r.Version() + 1,
		EventType:     EventTypeOf(payload),
		Payload:       payload,
		Metadata:      map[string]string{},
		OccurredAt:    time.Now().UTC(),
	}

	for _, opt := range options {
		opt(ev.Metadata)
	}

	if err := r.self.ApplyEvent(payload); err != nil {
		return fmt.Errorf("cannot apply %q event: %w", ev.EventType, err)
	}

	r.pending = append(r.pending, ev)

	return nil
}

// MarkPersisted discards pending events up to and including the given
// version.
func (r *Root) MarkPersisted(upTo uint64) {
	if upTo > r.Version() {
		panic(fmt.Sprintf(
			"aggregate: cannot mark version %d as persisted, current version is %d",
			upTo,
			r.Version(),
		))
	}

	if upTo <= r.persisted {
		return
	}

	r.pending = slices.Delete(r.pending, 0, int(upTo-r.persisted))
	r.persisted = upTo
}

// LoadHistory replays historical events to rebuild the aggregate's state.
//
// Each event must belong to the aggregate's stream and carry the aggregate's
// type and ID, and its version must immediately follow the version of the
// event before it.
func (r *Root) LoadHistory(history []Event) error {
	r.mustBeInitialized()

	if len(r.pending) != 0 {
		return ErrPendingEvents
	}

	stream := StreamName(r.aggregateType, r.id)

	for _, ev := range history {
		expected := r.persisted + 1

		if ev.StreamName != stream ||
			ev.AggregateType != r.aggregateType ||
			ev.AggregateID != r.id ||
			ev.Version != expected {
			return &OutOfOrderError{
				StreamName:      stream,
				ExpectedVersion: expected,
				Event:           ev,
			}
		}

		payload, err := r.migrate(ev)
		if err != nil {
			return err
		}

		if err := r.self.ApplyEvent(payload); err != nil {
			return fmt.Errorf(
				"cannot apply %q event at version %d: %w",
				ev.EventType,
				ev.Version,
				err,
			)
		}

		r.persisted = ev.Version
	}

	return nil
}

func (r *Root) migrate(ev Event) (any, error) {
	raw, ok := ev.Payload.(RawPayload)
	if !ok {
		return ev.Payload, nil
	}

	if m, ok := r.self.(Migrator); ok {
		payload, ok, err := m.Migrate(ev.EventType, raw.Data, raw.ContentType)
		if err != nil {
			return nil, fmt.Errorf(
				"cannot migrate %q event at version %d: %w",
				ev.EventType,
				ev.Version,
				err,
			)
		}
		if ok {
			return payload, nil
		}
	}

	return nil, &UnknownEventTypeError{
		StreamName: ev.StreamName,
		Version:    ev.Version,
		EventType:  ev.EventType,
	}
}

// Hydrate restores the aggregate's state from a snapshot.
func (r *Root) Hydrate(s Snapshot) error {
	r.mustBeInitialized()

	if len(r.pending) != 0 {
		return ErrPendingEvents
	}

	d, ok := r.self.(Dehydrator)
	if !ok {
		return ErrSnapshotsUnsupported
	}

	if s.AggregateType != r.aggregateType || s.AggregateID != r.id {
		return fmt.Errorf(
			"snapshot of %s is not applicable to %s",
			StreamName(s.AggregateType, s.AggregateID),
			StreamName(r.aggregateType, r.id),
		)
	}

	if err := d.Rehydrate(s.Properties); err != nil {
		return fmt.Errorf("cannot rehydrate from snapshot at version %d: %w", s.Version, err)
	}

	r.persisted = s.Version

	return nil
}

// TakeSnapshot returns a snapshot of the aggregate's current state.
//
// A snapshot can only be taken when there are no pending events.
func (r *Root) TakeSnapshot() (Snapshot, error) {
	r.mustBeInitialized()

	if len(r.pending) != 0 {
		return Snapshot{}, ErrPendingEvents
	}

	d, ok := r.self.(Dehydrator)
	if !ok {
		return Snapshot{}, ErrSnapshotsUnsupported
	}

	values, err := d.Dehydrate()
	if err != nil {
		return Snapshot{}, fmt.Errorf("cannot dehydrate aggregate: %w", err)
	}

	names := maps.Keys(values)
	slices.Sort(names)

	props := make(Properties, len(values))
	for _, name := range names {
		data, err := marshalProperty(values[name])
		if err != nil {
			return Snapshot{}, fmt.Errorf("cannot encode %q property: %w", name, err)
		}
		props[name] = data
	}

	return Snapshot{
		AggregateType: r.aggregateType,
		AggregateID:   r.id,
		Version:       r.persisted,
		Properties:    props,
		TakenAt:       time.Now().UTC(),
	}, nil
}

func (r *Root) mustBeInitialized() {
	if r.self == nil {
		panic("aggregate: Init() has not been called")
	}
}
