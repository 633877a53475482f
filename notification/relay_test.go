package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/codec"
	"github.com/saastack/eventing/internal/test"
	. "github.com/saastack/eventing/notification"
	"github.com/saastack/eventing/notification/notificationtest"
	"github.com/saastack/eventing/persistence/driver/memory"
	"github.com/saastack/eventing/queue"
)

func TestSyncRelay(t *testing.T) {
	t.Parallel()

	t.Run("func RelayDomainEvent()", func(t *testing.T) {
		t.Parallel()

		t.Run("it delivers the event to every consumer in order", func(t *testing.T) {
			t.Parallel()

			var order []int

			relay := NewSyncRelay(
				ConsumerFunc(func(context.Context, aggregate.Event) error {
					order = append(order, 1)
					return nil
				}),
				ConsumerFunc(func(context.Context, aggregate.Event) error {
					order = append(order, 2)
					return nil
				}),
			)

			ev := newEvents("organization", "<id>", MemberAdded{"<user>"})[0]

			if err := relay.RelayDomainEvent(context.Background(), ev); err != nil {
				t.Fatal(err)
			}

			test.Expect(t, "unexpected delivery order", order, []int{1, 2})
		})

		t.Run("it continues after a consumer fails and reports every failure", func(t *testing.T) {
			t.Parallel()

			first := errors.New("<first>")
			second := errors.New("<second>")
			last := &notificationtest.Consumer{}

			relay := NewSyncRelay(
				ConsumerFunc(func(context.Context, aggregate.Event) error { return first }),
				ConsumerFunc(func(context.Context, aggregate.Event) error { return second }),
				last,
			)

			ev := newEvents("organization", "<id>", MemberAdded{"<user>"})[0]

			err := relay.RelayDomainEvent(context.Background(), ev)
			if !errors.Is(err, first) || !errors.Is(err, second) {
				t.Fatalf("unexpected error: %v", err)
			}

			var consumerErr *ConsumerError
			if !errors.As(err, &consumerErr) {
				t.Fatalf("expected a consumer error, got %v", err)
			}

			test.Expect(t, "unexpected consumer type", consumerErr.ConsumerType, "notification.ConsumerFunc")
			test.Expect(t, "unexpected consumed events", len(last.Events()), 1)
		})

		t.Run("it keeps earlier failures when the context is canceled", func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			cause := errors.New("<error>")
			last := &notificationtest.Consumer{}

			relay := NewSyncRelay(
				ConsumerFunc(func(context.Context, aggregate.Event) error {
					cancel()
					return cause
				}),
				last,
			)

			ev := newEvents("organization", "<id>", MemberAdded{"<user>"})[0]

			err := relay.RelayDomainEvent(ctx, ev)
			if !errors.Is(err, cause) {
				t.Fatalf("expected the consumer failure to be reported, got %v", err)
			}
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected the cancellation to be reported, got %v", err)
			}

			test.Expect(t, "unexpected consumed events", len(last.Events()), 0)
		})
	})
}

func TestQueueRelay(t *testing.T) {
	t.Parallel()

	t.Run("it delivers events to consumers asynchronously and in order", func(t *testing.T) {
		t.Parallel()

		c := &codec.Registry{}
		if err := c.Register(MemberAdded{}, MemberRemoved{}); err != nil {
			t.Fatal(err)
		}

		q := &queue.Queue{
			Journals:   &memory.JournalStore{},
			Codec:      c,
			Partitions: 4,
			Telemetry:  test.NewTelemetryProvider(t),
		}

		consumer := &notificationtest.Consumer{}
		delivered := consumer.Notify()

		test.
			RunInBackground(t, (&queue.Supervisor{
				Queue:        q,
				Keyspaces:    &memory.KeyValueStore{},
				Consumer:     NewSyncRelay(consumer),
				PollInterval: 10 * time.Millisecond,
				Telemetry:    test.NewTelemetryProvider(t),
			}).Run).
			UntilTestEnds()

		relay := &QueueRelay{Queue: q}
		events := newEvents("organization", "<id>", MemberAdded{"<a>"}, MemberRemoved{"<a>"}, MemberAdded{"<b>"})

		for _, ev := range events {
			if err := relay.RelayDomainEvent(context.Background(), ev); err != nil {
				t.Fatal(err)
			}
		}

		for _, want := range events {
			test.ExpectChannelToReceive(
				t,
				delivered,
				want,
				func(ev aggregate.Event) aggregate.Event {
					ev.OccurredAt = ev.OccurredAt.UTC()
					return ev
				},
			)
		}
	})
}
