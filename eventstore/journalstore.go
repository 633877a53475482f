package eventstore

import (
	"context"
	"errors"
	"sync"

	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/codec"
	"github.com/saastack/eventing/eventstore/internal/journalpb"
	"github.com/saastack/eventing/internal/protobuf/protojournal"
	"github.com/saastack/eventing/internal/telemetry"
	"github.com/saastack/eventing/persistence/journal"
	"go.opentelemetry.io/otel/metric"
)

// JournalStore is an implementation of [Store] that keeps each stream in its
// own journal.
//
// Each journal record holds one complete batch of events, so a batch is
// either persisted in full or not at all.
type JournalStore struct {
	// Journals is the store that contains the stream journals.
	Journals journal.Store

	// Codec encodes and decodes event payloads.
	Codec *codec.Registry

	// Migrator, if non-nil, converts events with unknown payload types as
	// they are loaded.
	Migrator aggregate.Migrator

	Telemetry *telemetry.Provider

	init      sync.Once
	recorder  *telemetry.Recorder
	eventIO   metric.Int64Counter
	batchSize metric.Int64Histogram
	conflicts metric.Int64Counter
}

// JournalPath returns the path of the journal that contains the given stream.
//
// Names produced by [aggregate.StreamName] are split into their aggregate type
// and ID, which the journal store escapes individually.
func JournalPath(streamName string) []string {
	aggregateType, id, ok := aggregate.ParseStreamName(streamName)
	if !ok || aggregateType == "" || id == "" {
		return []string{"eventstore", streamName}
	}
	return []string{"eventstore", aggregateType, id}
}

// Append adds a batch of events to the end of a stream.
func (s *JournalStore) Append(
	ctx context.Context,
	streamName string,
	events []aggregate.Event,
) error {
	if len(events) == 0 {
		return nil
	}

	s.setup()

	ctx, span := s.recorder.StartSpan(
		ctx,
		"eventstore.append",
		telemetry.String("stream", streamName),
		telemetry.Int("event_count", len(events)),
		telemetry.Int("first_version", events[0].Version),
	)
	defer span.End()

	if err := validateBatch(streamName, events); err != nil {
		span.Error("invalid batch", err)
		return err
	}

	rec, err := marshalBatch(s.Codec, events)
	if err != nil {
		span.Error("unable to encode batch", err)
		return err
	}

	j, err := s.Journals.Open(ctx, JournalPath(streamName)...)
	if err != nil {
		span.Error("unable to open stream journal", err)
		return err
	}
	defer j.Close()

	pos, version, err := s.tail(ctx, j)
	if err != nil {
		span.Error("unable to read stream version", err)
		return err
	}

	expected := events[0].Version - 1

	if expected != version {
		return s.conflict(ctx, span, streamName, expected, version)
	}

	if err := protojournal.Append(ctx, j, pos, rec); err != nil {
		if !errors.Is(err, journal.ErrConflict) {
			span.Error("unable to append batch", err)
			return err
		}

		// Another writer appended a batch after the version was read.
		_, version, err := s.tail(ctx, j)
		if err != nil {
			span.Error("unable to read stream version after conflict", err)
			return err
		}

		return s.conflict(ctx, span, streamName, expected, version)
	}

	s.eventIO.Add(ctx, int64(len(events)), telemetry.WriteDirection)
	s.batchSize.Record(ctx, int64(len(events)))

	span.Debug(
		"appended batch",
		telemetry.Int("journal_position", pos),
		telemetry.Int("version", events[len(events)-1].Version),
	)

	return nil
}

func (s *JournalStore) conflict(
	ctx context.Context,
	span *telemetry.Span,
	streamName string,
	expected, actual uint64,
) error {
	s.conflicts.Add(ctx, 1)

	err := &ConflictError{
		StreamName:      streamName,
		ExpectedVersion: expected,
		ActualVersion:   actual,
	}

	span.Warn(
		"stream already updated",
		telemetry.Int("expected_version", expected),
		telemetry.Int("actual_version", actual),
	)

	return err
}

// Load returns the events on a stream with versions greater than
// afterVersion.
func (s *JournalStore) Load(
	ctx context.Context,
	streamName string,
	afterVersion uint64,
) ([]aggregate.Event, error) {
	s.setup()

	ctx, span := s.recorder.StartSpan(
		ctx,
		"eventstore.load",
		telemetry.String("stream", streamName),
		telemetry.Int("after_version", afterVersion),
	)
	defer span.End()

	j, err := s.Journals.Open(ctx, JournalPath(streamName)...)
	if err != nil {
		span.Error("unable to open stream journal", err)
		return nil, err
	}
	defer j.Close()

	begin, end, err := j.Bounds(ctx)
	if err != nil {
		span.Error("unable to read journal bounds", err)
		return nil, err
	}

	if afterVersion > 0 {
		pos, _, ok, err := protojournal.Search(
			ctx,
			j,
			begin,
			end,
			func(_ context.Context, rec *journalpb.Record) (int, error) {
				if afterVersion < rec.GetVersionBefore() {
					return -1, nil
				}
				if afterVersion >= rec.GetVersionAfter() {
					return +1, nil
				}
				return 0, nil
			},
		)
		if err != nil {
			span.Error("unable to search stream journal", err)
			return nil, err
		}
		if !ok {
			// afterVersion is at or beyond the end of the stream.
			return nil, nil
		}

		begin = pos
	}

	if begin == end {
		return nil, nil
	}

	var events []aggregate.Event

	if err := protojournal.Range(
		ctx,
		j,
		begin,
		func(ctx context.Context, _ journal.Position, rec *journalpb.Record) (bool, error) {
			for _, env := range rec.GetEvents() {
				if env.GetVersion() <= afterVersion {
					continue
				}

				ev, err := decodeEvent(s.Codec, s.Migrator, streamName, env)
				if err != nil {
					return false, err
				}

				events = append(events, ev)
			}

			return true, nil
		},
	); err != nil {
		span.Error("unable to load events", err)
		return nil, err
	}

	s.eventIO.Add(ctx, int64(len(events)), telemetry.ReadDirection)

	span.Debug(
		"loaded events",
		telemetry.Int("event_count", len(events)),
	)

	return events, nil
}

// Version returns the version of the most recent event on a stream.
func (s *JournalStore) Version(ctx context.Context, streamName string) (uint64, error) {
	s.setup()

	j, err := s.Journals.Open(ctx, JournalPath(streamName)...)
	if err != nil {
		return 0, err
	}
	defer j.Close()

	_, version, err := s.tail(ctx, j)
	return version, err
}

// tail returns the position at which the next batch is to be written and the
// stream's current version.
func (s *JournalStore) tail(
	ctx context.Context,
	j journal.Journal,
) (journal.Position, uint64, error) {
	pos, rec, ok, err := protojournal.Last[*journalpb.Record](ctx, j)
	if err != nil || !ok {
		return 0, 0, err
	}

	return pos + 1, rec.GetVersionAfter(), nil
}

func (s *JournalStore) setup() {
	s.init.Do(func() {
		if s.Codec == nil {
			panic("eventstore: codec must not be nil")
		}

		s.recorder = s.Telemetry.Recorder(
			"github.com/saastack/eventing/eventstore",
			"eventstore",
		)

		s.eventIO = s.recorder.Int64Counter(
			"event.io",
			metric.WithDescription("The number of events that have been read and written."),
			metric.WithUnit("{event}"),
		)
		s.batchSize = s.recorder.Int64Histogram(
			"batch.size",
			metric.WithDescription("The number of events in each appended batch."),
			metric.WithUnit("{event}"),
		)
		s.conflicts = s.recorder.Int64Counter(
			"conflicts",
			metric.WithDescription("The number of batches rejected because the stream was already updated."),
			metric.WithUnit("{conflict}"),
		)
	})
}
