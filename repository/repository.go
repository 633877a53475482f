// Package repository loads and saves event-sourced aggregates.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/eventstore"
	"github.com/saastack/eventing/internal/telemetry"
	"github.com/saastack/eventing/snapshot"
	"go.opentelemetry.io/otel/metric"
)

// ErrNotFound is returned by [Repository.Load] when an aggregate has neither
// events nor a snapshot.
var ErrNotFound = errors.New("aggregate not found")

// Notifier is notified of each batch of events after it is persisted.
type Notifier interface {
	Notify(ctx context.Context, streamName string, events []aggregate.Event) error
}

// Repository loads and saves aggregates of type T.
type Repository[T aggregate.Aggregate] struct {
	// Events is the store that contains the aggregates' event streams.
	Events eventstore.Store

	// Notifier, if non-nil, is notified of events after they are persisted.
	Notifier Notifier

	// Snapshots, if non-nil, is used to load aggregates without replaying
	// their entire history.
	Snapshots snapshot.Store

	// SnapshotEvery is the number of events between snapshots. Snapshots are
	// not taken if it is zero.
	SnapshotEvery uint64

	// New returns a new, empty aggregate with the given ID.
	New func(id string) T

	Telemetry *telemetry.Provider

	init     sync.Once
	recorder *telemetry.Recorder
	loaded   metric.Int64Histogram
	saved    metric.Int64Counter
	snapped  metric.Int64Counter
}

// Load returns the aggregate with the given ID.
//
// The aggregate is hydrated from its most recent snapshot, if there is one,
// then the events after the snapshot are replayed.
func (r *Repository[T]) Load(ctx context.Context, id string) (T, error) {
	r.setup()

	agg := r.New(id)
	stream := aggregate.StreamName(agg.Type(), agg.ID())

	ctx, span := r.recorder.StartSpan(
		ctx,
		"repository.load",
		telemetry.String("stream", stream),
	)
	defer span.End()

	hydrated, err := r.hydrate(ctx, span, agg)
	if err != nil {
		var zero T
		return zero, err
	}

	events, err := r.Events.Load(ctx, stream, agg.PersistedVersion())
	if err != nil {
		span.Error("unable to load events", err)
		var zero T
		return zero, err
	}

	if !hydrated && len(events) == 0 {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotFound, stream)
	}

	if err := agg.LoadHistory(events); err != nil {
		span.Error("unable to replay events", err)
		var zero T
		return zero, fmt.Errorf("cannot load %s: %w", stream, err)
	}

	r.loaded.Record(ctx, int64(len(events)))

	span.SetAttributes(
		telemetry.Bool("snapshot", hydrated),
		telemetry.Int("version", agg.Version()),
	)
	span.Debug(
		"loaded aggregate",
		telemetry.Int("replayed_events", len(events)),
	)

	return agg, nil
}

// hydrate restores agg from its most recent snapshot, if any.
func (r *Repository[T]) hydrate(
	ctx context.Context,
	span *telemetry.Span,
	agg T,
) (bool, error) {
	if r.Snapshots == nil {
		return false, nil
	}

	s, ok, err := r.Snapshots.Load(ctx, agg.Type(), agg.ID())
	if err != nil {
		span.Error("unable to load snapshot", err)
		return false, err
	}

	if !ok {
		return false, nil
	}

	if err := agg.Hydrate(s); err != nil {
		if errors.Is(err, aggregate.ErrSnapshotsUnsupported) {
			return false, nil
		}

		span.Error("unable to hydrate aggregate from snapshot", err)
		return false, err
	}

	return true, nil
}

// Save persists the aggregate's pending events, then notifies the notifier.
//
// If the events conflict with events saved by another writer the
// [*eventstore.ConflictError] is returned as-is. An error returned after the
// events are persisted indicates that notification failed; the events are
// not rolled back.
func (r *Repository[T]) Save(ctx context.Context, agg T) error {
	r.setup()

	pending := agg.PendingEvents()
	if len(pending) == 0 {
		return nil
	}

	stream := aggregate.StreamName(agg.Type(), agg.ID())
	before := agg.PersistedVersion()
	after := pending[len(pending)-1].Version

	ctx, span := r.recorder.StartSpan(
		ctx,
		"repository.save",
		telemetry.String("stream", stream),
		telemetry.Int("version_before", before),
		telemetry.Int("version_after", after),
	)
	defer span.End()

	if err := r.Events.Append(ctx, stream, pending); err != nil {
		span.Error("unable to append events", err)
		return err
	}

	agg.MarkPersisted(after)
	r.saved.Add(ctx, int64(len(pending)))

	if r.Notifier != nil {
		if err := r.Notifier.Notify(ctx, stream, pending); err != nil {
			span.Error("events were persisted but notification failed", err)
			return fmt.Errorf("events %d to %d of %s were persisted but notification failed: %w", before+1, after, stream, err)
		}
	}

	r.snapshot(ctx, span, agg, before)

	span.Debug("saved aggregate", telemetry.Int("events", len(pending)))

	return nil
}

// snapshot takes a snapshot of agg if its version has crossed a multiple of
// SnapshotEvery since before.
//
// Failures are logged, not returned.
func (r *Repository[T]) snapshot(
	ctx context.Context,
	span *telemetry.Span,
	agg T,
	before uint64,
) {
	if r.Snapshots == nil || r.SnapshotEvery == 0 {
		return
	}

	if before/r.SnapshotEvery == agg.Version()/r.SnapshotEvery {
		return
	}

	s, err := agg.TakeSnapshot()
	if err != nil {
		if !errors.Is(err, aggregate.ErrSnapshotsUnsupported) {
			span.Warn("unable to take snapshot", telemetry.String("error", err.Error()))
		}
		return
	}

	if err := r.Snapshots.Save(ctx, s); err != nil {
		span.Warn("unable to save snapshot", telemetry.String("error", err.Error()))
		return
	}

	r.snapped.Add(ctx, 1)
	span.Debug("saved snapshot", telemetry.Int("snapshot_version", s.Version))
}

func (r *Repository[T]) setup() {
	r.init.Do(func() {
		if r.Events == nil {
			panic("repository: event store must not be nil")
		}

		if r.New == nil {
			panic("repository: factory must not be nil")
		}

		r.recorder = r.Telemetry.Recorder(
			"github.com/saastack/eventing/repository",
			"repository",
		)

		r.loaded = r.recorder.Int64Histogram(
			"events.replayed",
			metric.WithDescription("The number of events replayed to load an aggregate."),
			metric.WithUnit("{event}"),
		)

		r.saved = r.recorder.Int64Counter(
			"events.saved",
			metric.WithDescription("The number of events persisted."),
			metric.WithUnit("{event}"),
		)

		r.snapped = r.recorder.Int64Counter(
			"snapshots",
			metric.WithDescription("The number of snapshots taken."),
			metric.WithUnit("{snapshot}"),
		)
	})
}
