package queue_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/codec"
	"github.com/saastack/eventing/internal/test"
	"github.com/saastack/eventing/persistence/driver/memory"
	. "github.com/saastack/eventing/queue"
	"pgregory.net/rapid"
)

type Changed struct {
	Value int `json:"value"`
}

type consumerFunc func(context.Context, aggregate.Event) error

func (fn consumerFunc) Consume(ctx context.Context, ev aggregate.Event) error {
	return fn(ctx, ev)
}

func newEvent(id string, version uint64, value int) aggregate.Event {
	return aggregate.Event{
		ID:            uuid.New(),
		StreamName:    aggregate.StreamName("widget", id),
		AggregateType: "widget",
		AggregateID:   id,
		Version:       version,
		EventType:     "Changed",
		Payload:       Changed{value},
		OccurredAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func newCodec(t *testing.T) *codec.Registry {
	c := &codec.Registry{}
	if err := c.Register(Changed{}); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestPartition(t *testing.T) {
	t.Parallel()

	t.Run("it always assigns an aggregate to the same partition", func(t *testing.T) {
		t.Parallel()

		rapid.Check(t, func(t *rapid.T) {
			id := rapid.String().Draw(t, "id")
			n := rapid.IntRange(1, 64).Draw(t, "partitions")

			p := Partition(id, n)
			if p < 0 || p >= n {
				t.Fatalf("partition %d is out of range [0, %d)", p, n)
			}

			if Partition(id, n) != p {
				t.Fatal("partition is not stable")
			}
		})
	})

	t.Run("it panics if the partition count is not positive", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic")
			}
		}()

		Partition("<id>", 0)
	})
}

func TestQueue(t *testing.T) {
	t.Parallel()

	t.Run("it delivers the events of each aggregate in order", func(t *testing.T) {
		t.Parallel()

		deps := setup(t)
		received := make(chan aggregate.Event, 100)

		deps.Supervisor.Consumer = consumerFunc(
			func(_ context.Context, ev aggregate.Event) error {
				received <- ev
				return nil
			},
		)

		test.
			RunInBackground(t, deps.Supervisor.Run).
			UntilTestEnds()

		var want []aggregate.Event
		for v := uint64(1); v <= 5; v++ {
			ev := newEvent("<id>", v, int(v))
			want = append(want, ev)

			if err := deps.Queue.Enqueue(context.Background(), ev); err != nil {
				t.Fatal(err)
			}
		}

		for _, ev := range want {
			test.ExpectChannelToReceive(t, received, ev)
		}
	})

	t.Run("it delivers events enqueued by another queue that shares the journal store", func(t *testing.T) {
		t.Parallel()

		deps := setup(t)
		received := make(chan aggregate.Event, 100)

		deps.Supervisor.Consumer = consumerFunc(
			func(_ context.Context, ev aggregate.Event) error {
				received <- ev
				return nil
			},
		)

		other := &Queue{
			Journals:   deps.Queue.Journals,
			Codec:      deps.Queue.Codec,
			Partitions: deps.Queue.Partitions,
		}

		first := newEvent("<id>", 1, 1)
		second := newEvent("<id>", 2, 2)
		third := newEvent("<id>", 3, 3)

		if err := deps.Queue.Enqueue(context.Background(), first); err != nil {
			t.Fatal(err)
		}

		if err := other.Enqueue(context.Background(), second); err != nil {
			t.Fatal(err)
		}

		// The first queue's cached end position is now stale.
		if err := deps.Queue.Enqueue(context.Background(), third); err != nil {
			t.Fatal(err)
		}

		test.
			RunInBackground(t, deps.Supervisor.Run).
			UntilTestEnds()

		test.ExpectChannelToReceive(t, received, first)
		test.ExpectChannelToReceive(t, received, second)
		test.ExpectChannelToReceive(t, received, third)
	})

	t.Run("it resumes delivery from the checkpoint after a restart", func(t *testing.T) {
		t.Parallel()

		deps := setup(t)
		received := make(chan aggregate.Event, 100)

		deps.Supervisor.Consumer = consumerFunc(
			func(_ context.Context, ev aggregate.Event) error {
				received <- ev
				return nil
			},
		)

		first := newEvent("<id>", 1, 1)
		second := newEvent("<id>", 2, 2)

		if err := deps.Queue.Enqueue(context.Background(), first); err != nil {
			t.Fatal(err)
		}

		task := test.
			RunInBackground(t, deps.Supervisor.Run).
			UntilStopped()

		test.ExpectChannelToReceive(t, received, first)
		task.StopAndWait()

		if err := deps.Queue.Enqueue(context.Background(), second); err != nil {
			t.Fatal(err)
		}

		test.
			RunInBackground(t, deps.Supervisor.Run).
			UntilTestEnds()

		test.ExpectChannelToReceive(t, received, second)
		test.ExpectChannelToBlockForDuration(t, 50*time.Millisecond, received)
	})

	t.Run("it redelivers an event that the consumer failed to handle", func(t *testing.T) {
		t.Parallel()

		deps := setup(t)
		cause := errors.New("<error>")
		fail := test.FailOnce(cause)
		received := make(chan aggregate.Event, 100)

		deps.Supervisor.Consumer = consumerFunc(
			func(_ context.Context, ev aggregate.Event) error {
				if err := fail(); err != nil {
					return err
				}
				received <- ev
				return nil
			},
		)

		ev := newEvent("<id>", 1, 1)

		if err := deps.Queue.Enqueue(context.Background(), ev); err != nil {
			t.Fatal(err)
		}

		ctx, _ := test.ContextWithTimeout(t, 5*time.Second)
		err := deps.Supervisor.Run(ctx)

		var deliveryErr *DeliveryError
		if !errors.As(err, &deliveryErr) {
			t.Fatalf("unexpected error: %v", err)
		}

		test.Expect(t, "unexpected stream", deliveryErr.Stream, ev.StreamName)
		test.Expect(t, "unexpected version", deliveryErr.Version, ev.Version)

		if !errors.Is(err, cause) {
			t.Fatal("expected error to wrap the cause")
		}

		test.
			RunInBackground(t, deps.Supervisor.Run).
			UntilTestEnds()

		test.ExpectChannelToReceive(t, received, ev)
	})

	t.Run("it delivers payloads of unregistered types as raw payloads", func(t *testing.T) {
		t.Parallel()

		deps := setup(t)
		received := make(chan aggregate.Event, 100)

		ev := newEvent("<id>", 1, 1)

		if err := deps.Queue.Enqueue(context.Background(), ev); err != nil {
			t.Fatal(err)
		}

		deps.Supervisor.Queue = &Queue{
			Journals:   deps.Queue.Journals,
			Codec:      &codec.Registry{},
			Partitions: deps.Queue.Partitions,
		}

		deps.Supervisor.Consumer = consumerFunc(
			func(_ context.Context, ev aggregate.Event) error {
				received <- ev
				return nil
			},
		)

		test.
			RunInBackground(t, deps.Supervisor.Run).
			UntilTestEnds()

		want := ev
		want.Payload = aggregate.RawPayload{
			Data:        []byte(`{"value":1}`),
			ContentType: codec.JSONContentType,
		}

		test.ExpectChannelToReceive(t, received, want)
	})

	t.Run("it only delivers from the assigned partitions", func(t *testing.T) {
		t.Parallel()

		deps := setup(t)
		received := make(chan aggregate.Event, 100)

		deps.Supervisor.Consumer = consumerFunc(
			func(_ context.Context, ev aggregate.Event) error {
				received <- ev
				return nil
			},
		)

		assigned := newEvent("<assigned>", 1, 1)
		n := Partition(assigned.AggregateID, deps.Queue.PartitionCount())

		var other aggregate.Event
		for i := 0; ; i++ {
			other = newEvent(fmt.Sprintf("<other-%d>", i), 1, 1)
			if Partition(other.AggregateID, deps.Queue.PartitionCount()) != n {
				break
			}
		}

		for _, ev := range []aggregate.Event{other, assigned} {
			if err := deps.Queue.Enqueue(context.Background(), ev); err != nil {
				t.Fatal(err)
			}
		}

		deps.Supervisor.Assigned = []int{n}

		test.
			RunInBackground(t, deps.Supervisor.Run).
			UntilTestEnds()

		test.ExpectChannelToReceive(t, received, assigned)
		test.ExpectChannelToBlockForDuration(t, 50*time.Millisecond, received)
	})

	t.Run("it waits for cancellation when no partitions are assigned", func(t *testing.T) {
		t.Parallel()

		deps := setup(t)
		deps.Supervisor.Consumer = consumerFunc(
			func(context.Context, aggregate.Event) error {
				t.Error("unexpected delivery")
				return nil
			},
		)
		deps.Supervisor.Assigned = []int{}

		if err := deps.Queue.Enqueue(context.Background(), newEvent("<id>", 1, 1)); err != nil {
			t.Fatal(err)
		}

		test.
			RunInBackground(t, deps.Supervisor.Run).
			UntilTestEnds()

		time.Sleep(50 * time.Millisecond)
	})

	t.Run("func Enqueue()", func(t *testing.T) {
		t.Parallel()

		t.Run("it returns an error if the journal cannot be written", func(t *testing.T) {
			t.Parallel()

			deps := setup(t)
			ev := newEvent("<id>", 1, 1)
			n := Partition(ev.AggregateID, deps.Queue.PartitionCount())

			memory.FailBeforeJournalAppend(
				deps.Journals,
				func([]byte) bool { return true },
				JournalPath(n)...,
			)

			err := deps.Queue.Enqueue(context.Background(), ev)
			if err == nil {
				t.Fatal("expected an error")
			}
		})

		t.Run("it returns an error if the payload type is not registered", func(t *testing.T) {
			t.Parallel()

			deps := setup(t)
			ev := newEvent("<id>", 1, 1)
			ev.Payload = struct{}{}

			if err := deps.Queue.Enqueue(context.Background(), ev); err == nil {
				t.Fatal("expected an error")
			}
		})

		t.Run("it spreads aggregates across partitions", func(t *testing.T) {
			t.Parallel()

			deps := setup(t)
			seen := map[int]struct{}{}

			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("<id-%d>", i)
				seen[Partition(id, deps.Queue.PartitionCount())] = struct{}{}
			}

			if len(seen) < 2 {
				t.Fatalf("expected aggregates to be spread across partitions, got %d partition(s)", len(seen))
			}
		})
	})
}

type dependencies struct {
	Journals   *memory.JournalStore
	Keyspaces  *memory.KeyValueStore
	Queue      *Queue
	Supervisor *Supervisor
}

func setup(t *testing.T) *dependencies {
	deps := &dependencies{
		Journals:  &memory.JournalStore{},
		Keyspaces: &memory.KeyValueStore{},
	}

	deps.Queue = &Queue{
		Journals:   deps.Journals,
		Codec:      newCodec(t),
		Partitions: 4,
		Telemetry:  test.NewTelemetryProvider(t),
	}

	deps.Supervisor = &Supervisor{
		Queue:        deps.Queue,
		Keyspaces:    deps.Keyspaces,
		PollInterval: 10 * time.Millisecond,
		Telemetry:    test.NewTelemetryProvider(t),
	}

	return deps
}
