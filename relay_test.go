package eventing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/codec"
	"github.com/saastack/eventing/internal/cluster"
	"github.com/saastack/eventing/internal/test"
	"github.com/saastack/eventing/persistence/driver/memory"
	"github.com/saastack/eventing/queue"
)

type relayed struct {
	N int `json:"n"`
}

func TestRelayRunner(t *testing.T) {
	t.Parallel()

	newRunner := func(
		t *testing.T,
		journals *memory.JournalStore,
		keyspaces *memory.KeyValueStore,
		received chan<- aggregate.Event,
	) *relayRunner {
		c := &codec.Registry{}
		if err := c.Register(relayed{}); err != nil {
			t.Fatal(err)
		}

		q := &queue.Queue{
			Journals:   journals,
			Codec:      c,
			Partitions: 8,
		}

		return &relayRunner{
			Node:      cluster.Node{ID: uuid.New()},
			Keyspaces: keyspaces,
			Supervisor: &queue.Supervisor{
				Queue:     q,
				Keyspaces: keyspaces,
				Consumer: queueConsumer(func(_ context.Context, ev aggregate.Event) error {
					received <- ev
					return nil
				}),
				PollInterval: 10 * time.Millisecond,
			},
			Logger:            test.NewLogger(t),
			PollInterval:      20 * time.Millisecond,
			HeartbeatInterval: 20 * time.Millisecond,
		}
	}

	t.Run("it delivers events from every partition when it is the only node", func(t *testing.T) {
		t.Parallel()

		received := make(chan aggregate.Event, 100)
		r := newRunner(t, &memory.JournalStore{}, &memory.KeyValueStore{}, received)

		test.
			RunInBackground(t, r.Run).
			UntilTestEnds()

		ev := aggregate.Event{
			ID:            uuid.New(),
			StreamName:    aggregate.StreamName("widget", "<id>"),
			AggregateType: "widget",
			AggregateID:   "<id>",
			Version:       1,
			EventType:     "relayed",
			Payload:       relayed{1},
			OccurredAt:    time.Now().UTC().Truncate(time.Millisecond),
		}

		if err := r.Supervisor.Queue.Enqueue(context.Background(), ev); err != nil {
			t.Fatal(err)
		}

		test.ExpectChannelToReceive(t, received, ev)
	})

	t.Run("it divides the partitions among the nodes", func(t *testing.T) {
		t.Parallel()

		journals := &memory.JournalStore{}
		keyspaces := &memory.KeyValueStore{}
		received := make(chan aggregate.Event, 100)

		a := newRunner(t, journals, keyspaces, received)
		b := newRunner(t, journals, keyspaces, received)

		var nodes cluster.Partitioner
		nodes.AddNode(a.Node.ID)
		nodes.AddNode(b.Node.ID)

		seen := map[int]int{}
		for _, p := range a.assigned(&nodes) {
			seen[p]++
		}
		for _, p := range b.assigned(&nodes) {
			seen[p]++
		}

		for p := 0; p < a.Supervisor.Queue.PartitionCount(); p++ {
			if seen[p] != 1 {
				t.Fatalf("partition %d is assigned to %d node(s)", p, seen[p])
			}
		}
	})

	t.Run("it assigns no partitions if it does not know of any nodes", func(t *testing.T) {
		t.Parallel()

		r := newRunner(t, &memory.JournalStore{}, &memory.KeyValueStore{}, nil)

		test.Expect(t, "unexpected partitions", r.assigned(&cluster.Partitioner{}), []int{})
	})

	t.Run("it returns the error that stopped delivery", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("<error>")
		r := newRunner(t, &memory.JournalStore{}, &memory.KeyValueStore{}, nil)
		r.Supervisor.Consumer = queueConsumer(func(context.Context, aggregate.Event) error {
			return cause
		})

		ev := aggregate.Event{
			ID:            uuid.New(),
			StreamName:    aggregate.StreamName("widget", "<id>"),
			AggregateType: "widget",
			AggregateID:   "<id>",
			Version:       1,
			EventType:     "relayed",
			Payload:       relayed{1},
		}

		if err := r.Supervisor.Queue.Enqueue(context.Background(), ev); err != nil {
			t.Fatal(err)
		}

		ctx, _ := test.ContextWithTimeout(t, 5*time.Second)

		if err := r.Run(ctx); !errors.Is(err, cause) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

type queueConsumer func(context.Context, aggregate.Event) error

func (fn queueConsumer) Consume(ctx context.Context, ev aggregate.Event) error {
	return fn(ctx, ev)
}
