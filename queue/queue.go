// Package queue is a durable, partitioned queue of domain events that
// delivers each partition's events to a consumer in order.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/codec"
	"github.com/saastack/eventing/internal/signaling"
	"github.com/saastack/eventing/internal/telemetry"
	"github.com/saastack/eventing/persistence/journal"
	"go.opentelemetry.io/otel/metric"
)

// DefaultPartitions is the number of partitions used when
// [Queue.Partitions] is non-positive.
const DefaultPartitions = 8

// Consumer handles events delivered by a [Supervisor].
type Consumer interface {
	Consume(ctx context.Context, ev aggregate.Event) error
}

// Queue is a journal-backed queue of domain events.
//
// Events are assigned to a partition by their aggregate ID, such that all of
// the events of one aggregate are delivered in the order they were enqueued.
type Queue struct {
	// Journals is the store that contains the partition journals.
	Journals journal.Store

	// Codec encodes and decodes event payloads.
	Codec *codec.Registry

	// Partitions is the number of partitions. If it is non-positive,
	// DefaultPartitions is used.
	Partitions int

	Telemetry *telemetry.Provider

	init       sync.Once
	recorder   *telemetry.Recorder
	enqueued   metric.Int64Counter
	partitions []*partition
}

// partition is the in-memory state of a single partition.
type partition struct {
	m     sync.Mutex
	known bool
	next  journal.Position

	// Ready is signaled when events are enqueued to the partition.
	Ready signaling.Event
}

// Partition returns the partition that holds the events of the aggregate with
// the given ID, out of n partitions.
func Partition(aggregateID string, n int) int {
	if n <= 0 {
		panic("queue: partition count must be positive")
	}
	return int(xxhash.Sum64String(aggregateID) % uint64(n))
}

// JournalPath returns the path of the journal for the given partition.
func JournalPath(partition int) []string {
	return []string{"queue", strconv.Itoa(partition)}
}

// PartitionCount returns the number of partitions in the queue.
func (q *Queue) PartitionCount() int {
	q.setup()
	return len(q.partitions)
}

// Enqueue adds an event to the end of its partition.
func (q *Queue) Enqueue(ctx context.Context, ev aggregate.Event) error {
	q.setup()

	n := Partition(ev.AggregateID, len(q.partitions))
	p := q.partitions[n]

	ctx, span := q.recorder.StartSpan(
		ctx,
		"queue.enqueue",
		telemetry.Int("partition", n),
		telemetry.String("stream", ev.StreamName),
		telemetry.Int("version", ev.Version),
		telemetry.String("event_type", ev.EventType),
	)
	defer span.End()

	data, err := marshalMessage(q.Codec, ev)
	if err != nil {
		span.Error("unable to encode event", err)
		return err
	}

	j, err := q.Journals.Open(ctx, JournalPath(n)...)
	if err != nil {
		span.Error("unable to open partition journal", err)
		return err
	}
	defer j.Close()

	pos, err := p.append(ctx, j, data)
	if err != nil {
		span.Error("unable to append to partition journal", err)
		return fmt.Errorf("cannot enqueue %q event of %q: %w", ev.EventType, ev.StreamName, err)
	}

	q.enqueued.Add(ctx, 1)
	p.Ready.Signal()

	span.Debug(
		"enqueued event",
		telemetry.Int("journal_position", pos),
	)

	return nil
}

// append writes data to the end of the partition's journal.
//
// Other processes may append to the same journal, in which case the cached
// end position is refreshed and the append retried.
func (p *partition) append(
	ctx context.Context,
	j journal.Journal,
	data []byte,
) (journal.Position, error) {
	p.m.Lock()
	defer p.m.Unlock()

	for {
		if !p.known {
			_, end, err := j.Bounds(ctx)
			if err != nil {
				return 0, err
			}
			p.next = end
			p.known = true
		}

		pos := p.next
		err := j.Append(ctx, pos, data)

		if err == nil {
			p.next++
			return pos, nil
		}

		p.known = false

		if !errors.Is(err, journal.ErrConflict) {
			return 0, err
		}
	}
}

func (q *Queue) setup() {
	q.init.Do(func() {
		if q.Codec == nil {
			panic("queue: codec must not be nil")
		}

		n := q.Partitions
		if n <= 0 {
			n = DefaultPartitions
		}

		q.partitions = make([]*partition, n)
		for i := range q.partitions {
			q.partitions[i] = &partition{}
		}

		q.recorder = q.Telemetry.Recorder(
			"github.com/saastack/eventing/queue",
			"queue",
			telemetry.Int("partitions", n),
		)

		q.enqueued = q.recorder.Int64Counter(
			"enqueued",
			metric.WithDescription("The number of events that have been enqueued."),
			metric.WithUnit("{event}"),
		)
	})
}
