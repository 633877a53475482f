package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/saastack/eventing/internal/telemetry"
	"github.com/saastack/eventing/persistence/kv"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

// DefaultPollInterval is the interval at which idle workers check for events
// enqueued by other processes, used when [Supervisor.PollInterval] is
// non-positive.
const DefaultPollInterval = time.Second

// CheckpointKeyspace is the name of the keyspace that stores the offset of
// the next event to be delivered from each partition.
const CheckpointKeyspace = "queue.checkpoints"

// Supervisor runs a worker for each partition of a [Queue].
type Supervisor struct {
	// Queue is the queue to deliver events from.
	Queue *Queue

	// Keyspaces is the store that holds the delivery checkpoints.
	Keyspaces kv.Store

	// Consumer handles the delivered events.
	Consumer Consumer

	// PollInterval is the interval at which idle workers check for events
	// enqueued by other processes.
	PollInterval time.Duration

	// Assigned, if non-nil, is the set of partitions that the supervisor
	// delivers from. Otherwise it delivers from every partition.
	Assigned []int

	Telemetry *telemetry.Provider
}

// Run delivers events to the consumer until ctx is canceled or a delivery
// fails.
func (s *Supervisor) Run(ctx context.Context) error {
	partitions := s.Assigned
	if partitions == nil {
		for i := 0; i < s.Queue.PartitionCount(); i++ {
			partitions = append(partitions, i)
		}
	}

	r := s.Telemetry.Recorder(
		"github.com/saastack/eventing/queue",
		"queue.supervisor",
		telemetry.Int("partitions", len(partitions)),
	)

	delivered := r.Int64Counter(
		"delivered",
		metric.WithDescription("The number of events that have been delivered to the consumer."),
		metric.WithUnit("{event}"),
	)

	failures := r.Int64Counter(
		"failures",
		metric.WithDescription("The number of deliveries that have failed."),
		metric.WithUnit("{event}"),
	)

	poll := s.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	r.Logger().DebugContext(ctx, "queue supervisor started")
	defer r.Logger().DebugContext(ctx, "queue supervisor stopped")

	g, gctx := errgroup.WithContext(ctx)

	for _, i := range partitions {
		if i < 0 || i >= s.Queue.PartitionCount() {
			panic(fmt.Sprintf("partition %d is out of range", i))
		}

		w := &worker{
			Partition:    i,
			Queue:        s.Queue,
			Keyspaces:    s.Keyspaces,
			Consumer:     s.Consumer,
			PollInterval: poll,
			Recorder:     r,
			Delivered:    delivered,
			Failures:     failures,
		}

		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	if len(partitions) == 0 {
		g.Go(func() error {
			<-gctx.Done()
			return gctx.Err()
		})
	}

	err := g.Wait()

	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return ctx.Err()
	}

	return err
}
