package queue

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/saastack/eventing/internal/envelopepb"
	"github.com/saastack/eventing/internal/fsm"
	"github.com/saastack/eventing/internal/protobuf/protojournal"
	"github.com/saastack/eventing/internal/telemetry"
	"github.com/saastack/eventing/persistence/journal"
	"github.com/saastack/eventing/persistence/kv"
	"go.opentelemetry.io/otel/metric"
)

// A worker delivers the events in a single partition.
type worker struct {
	Partition    int
	Queue        *Queue
	Keyspaces    kv.Store
	Consumer     Consumer
	PollInterval time.Duration
	Recorder     *telemetry.Recorder
	Delivered    metric.Int64Counter
	Failures     metric.Int64Counter

	journal     journal.Journal
	checkpoints kv.Keyspace
	offset      journal.Position
}

// DeliveryError indicates that the consumer failed to handle an event.
type DeliveryError struct {
	Partition int
	Position  journal.Position
	Stream    string
	Version   uint64
	Cause     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf(
		"cannot deliver event %d of %q from partition %d (position %d): %s",
		e.Version,
		e.Stream,
		e.Partition,
		e.Position,
		e.Cause,
	)
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}

// Run delivers events until ctx is canceled or a delivery fails.
func (w *worker) Run(ctx context.Context) error {
	return fsm.Start(
		ctx,
		w.openState,
		fsm.WithFinalState(w.closeState),
	)
}

// openState opens the partition's journal and loads the checkpoint.
func (w *worker) openState(ctx context.Context) fsm.Action {
	j, err := w.Queue.Journals.Open(ctx, JournalPath(w.Partition)...)
	if err != nil {
		return fsm.Fail(err)
	}
	w.journal = j

	ks, err := w.Keyspaces.Open(ctx, CheckpointKeyspace)
	if err != nil {
		return fsm.Fail(err)
	}
	w.checkpoints = ks

	data, err := ks.Get(ctx, w.checkpointKey())
	if err != nil {
		return fsm.Fail(err)
	}

	if len(data) != 0 {
		w.offset = journal.Position(binary.BigEndian.Uint64(data))
	}

	w.Recorder.Logger().DebugContext(
		ctx,
		"queue worker started",
		"partition", w.Partition,
		"offset", uint64(w.offset),
	)

	return fsm.EnterState(w.deliverState)
}

// deliverState delivers all events after the checkpoint.
func (w *worker) deliverState(ctx context.Context) fsm.Action {
	begin, end, err := w.journal.Bounds(ctx)
	if err != nil {
		return fsm.Fail(err)
	}

	if w.offset < begin {
		w.offset = begin
	}

	if w.offset >= end {
		return fsm.EnterState(w.idleState)
	}

	if err := protojournal.Range(
		ctx,
		w.journal,
		w.offset,
		func(ctx context.Context, pos journal.Position, env *envelopepb.Event) (bool, error) {
			return true, w.deliver(ctx, pos, env)
		},
	); err != nil {
		if ctx.Err() != nil {
			return fsm.Stop()
		}
		return fsm.Fail(err)
	}

	return fsm.EnterState(w.compactState)
}

// deliver passes the event at pos to the consumer, then advances the
// checkpoint past it.
func (w *worker) deliver(ctx context.Context, pos journal.Position, env *envelopepb.Event) error {
	ev, err := unmarshalMessage(w.Queue.Codec, env)
	if err != nil {
		return err
	}

	ctx, span := w.Recorder.StartSpan(
		ctx,
		"queue.deliver",
		telemetry.Int("partition", w.Partition),
		telemetry.Int("journal_position", pos),
		telemetry.String("stream", ev.StreamName),
		telemetry.Int("version", ev.Version),
		telemetry.String("event_type", ev.EventType),
	)
	defer span.End()

	if err := w.Consumer.Consume(ctx, ev); err != nil {
		w.Failures.Add(ctx, 1)
		span.Error("consumer failed to handle event", err)

		return &DeliveryError{
			Partition: w.Partition,
			Position:  pos,
			Stream:    ev.StreamName,
			Version:   ev.Version,
			Cause:     err,
		}
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(pos+1))

	if err := w.checkpoints.Set(ctx, w.checkpointKey(), buf[:]); err != nil {
		span.Error("unable to store checkpoint", err)
		return err
	}

	w.offset = pos + 1
	w.Delivered.Add(ctx, 1)
	span.Debug("delivered event")

	return nil
}

// compactState truncates delivered events from the journal, retaining the
// most recent record so that the journal's end position is preserved.
func (w *worker) compactState(ctx context.Context) fsm.Action {
	begin, _, err := w.journal.Bounds(ctx)
	if err != nil {
		return fsm.Fail(err)
	}

	if w.offset > begin+1 {
		if err := w.journal.Truncate(ctx, w.offset-1); err != nil {
			return fsm.Fail(err)
		}
	}

	return fsm.EnterState(w.idleState)
}

// idleState waits until events are enqueued.
func (w *worker) idleState(ctx context.Context) fsm.Action {
	timeout := time.NewTimer(w.PollInterval)
	defer timeout.Stop()

	select {
	case <-ctx.Done():
		return fsm.Stop()
	case <-w.Queue.partitions[w.Partition].Ready.Signaled():
		return fsm.EnterState(w.deliverState)
	case <-timeout.C:
		return fsm.EnterState(w.deliverState)
	}
}

// closeState releases the worker's resources. The machine remains stopped.
func (w *worker) closeState(ctx context.Context) fsm.Action {
	if w.journal != nil {
		w.journal.Close()
		w.journal = nil
	}

	if w.checkpoints != nil {
		w.checkpoints.Close()
		w.checkpoints = nil
	}

	w.Recorder.Logger().DebugContext(
		ctx,
		"queue worker stopped",
		"partition", w.Partition,
		"offset", uint64(w.offset),
	)

	return fsm.StayInCurrentState()
}

func (w *worker) checkpointKey() []byte {
	return []byte(strconv.Itoa(w.Partition))
}
