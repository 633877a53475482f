package instrumentedpersistence

import (
	"context"
	"errors"
	"strings"

	"github.com/saastack/eventing/internal/telemetry"
	"github.com/saastack/eventing/persistence/journal"
	"go.opentelemetry.io/otel/metric"
)

// JournalStore is a decorator that adds instrumentation to a [journal.Store].
type JournalStore struct {
	Next      journal.Store
	Telemetry *telemetry.Provider
}

// Open returns the journal at the given path.
func (s *JournalStore) Open(ctx context.Context, path ...string) (journal.Journal, error) {
	r := newRecorder(s.Telemetry, "journal", s.Next, telemetry.String("path", strings.Join(path, "/")))

	ctx, span := r.StartSpan(ctx, "journal.open")
	defer span.End()

	next, err := s.Next.Open(ctx, path...)
	if err != nil {
		span.Error("could not open journal", err)
		return nil, err
	}

	j := &instrumentedJournal{
		next:        next,
		recorder:    r,
		instruments: newInstruments(r, "journal", "record"),
		conflicts: r.Int64Counter(
			"conflicts",
			metric.WithDescription("The number of appends that failed because of an optimistic concurrency conflict."),
			metric.WithUnit("{conflict}"),
		),
	}

	j.open.Add(ctx, 1)
	span.Debug("opened journal")

	return j, nil
}

type instrumentedJournal struct {
	instruments

	next      journal.Journal
	recorder  *telemetry.Recorder
	conflicts metric.Int64Counter
}

func (j *instrumentedJournal) Bounds(ctx context.Context) (begin, end journal.Position, err error) {
	ctx, span := j.recorder.StartSpan(ctx, "journal.bounds")
	defer span.End()

	begin, end, err = j.next.Bounds(ctx)
	if err != nil {
		span.Error("could not fetch journal bounds", err)
		return 0, 0, err
	}

	span.SetAttributes(
		telemetry.Int("begin", begin),
		telemetry.Int("end", end),
	)
	span.Debug("fetched journal bounds")

	return begin, end, nil
}

func (j *instrumentedJournal) Get(ctx context.Context, pos journal.Position) ([]byte, bool, error) {
	ctx, span := j.recorder.StartSpan(ctx, "journal.get", telemetry.Int("position", pos))
	defer span.End()

	rec, ok, err := j.next.Get(ctx, pos)
	if err != nil {
		span.Error("could not fetch journal record", err)
		return nil, false, err
	}

	if !ok {
		span.Debug("journal record not found")
		return nil, false, nil
	}

	span.SetAttributes(telemetry.Int("record_size", len(rec)))
	j.transfer(ctx, len(rec), telemetry.ReadDirection)
	span.Debug("fetched journal record")

	return rec, true, nil
}

func (j *instrumentedJournal) Range(ctx context.Context, begin journal.Position, fn journal.RangeFunc) error {
	ctx, span := j.recorder.StartSpan(ctx, "journal.range", telemetry.Int("range_start", begin))
	defer span.End()

	var (
		count   int
		last    journal.Position
		stopped bool
	)

	err := j.next.Range(
		ctx,
		begin,
		func(ctx context.Context, pos journal.Position, rec []byte) (bool, error) {
			count++
			last = pos
			j.transfer(ctx, len(rec), telemetry.ReadDirection)

			ok, err := fn(ctx, pos, rec)
			stopped = !ok
			return ok, err
		},
	)

	if count > 0 {
		span.SetAttributes(telemetry.Int("range_stop", last))
	}
	span.SetAttributes(
		telemetry.Int("records_read", count),
		telemetry.Bool("reached_end", !stopped && err == nil),
	)

	if err != nil {
		span.Error("could not read journal records", err)
		return err
	}

	span.Debug("read journal records")
	return nil
}

func (j *instrumentedJournal) Append(ctx context.Context, end journal.Position, rec []byte) error {
	ctx, span := j.recorder.StartSpan(
		ctx,
		"journal.append",
		telemetry.Int("position", end),
		telemetry.Int("record_size", len(rec)),
	)
	defer span.End()

	err := j.next.Append(ctx, end, rec)

	switch {
	case errors.Is(err, journal.ErrConflict):
		span.SetAttributes(telemetry.Bool("conflict", true))
		j.conflicts.Add(ctx, 1)
		span.Debug("optimistic concurrency conflict")
		return err
	case err != nil:
		span.Error("could not append journal record", err)
		return err
	}

	j.transfer(ctx, len(rec), telemetry.WriteDirection)
	span.Debug("appended journal record")

	return nil
}

func (j *instrumentedJournal) Truncate(ctx context.Context, end journal.Position) error {
	ctx, span := j.recorder.StartSpan(ctx, "journal.truncate", telemetry.Int("retained_position", end))
	defer span.End()

	if err := j.next.Truncate(ctx, end); err != nil {
		span.Error("could not truncate journal", err)
		return err
	}

	span.Debug("truncated journal")
	return nil
}

func (j *instrumentedJournal) Close() error {
	var closeNext func() error
	if j.next != nil {
		closeNext = j.next.Close
		j.next = nil
	}
	return closeHandle(j.recorder, j.instruments, "journal", closeNext)
}
