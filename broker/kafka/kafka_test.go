package kafka_test

import (
	"context"
	"errors"
	"testing"

	"github.com/saastack/eventing/broker"
	. "github.com/saastack/eventing/broker/kafka"
	"github.com/saastack/eventing/internal/test"
	"github.com/saastack/eventing/notification/notificationtest"
)

type record struct {
	Topic   string
	Key     string
	Headers map[string]string
}

type fakeWriter struct {
	records []record
	err     error
}

func (w *fakeWriter) Write(_ context.Context, topic string, key, _ []byte, headers map[string]string) error {
	w.records = append(w.records, record{topic, string(key), headers})
	return w.err
}

func TestBroker(t *testing.T) {
	t.Parallel()

	ev := notificationtest.IntegrationEvent{
		ID: "<id>",
		To: "organization.events",
	}

	t.Run("func Publish()", func(t *testing.T) {
		t.Parallel()

		t.Run("it produces a record keyed by the event ID", func(t *testing.T) {
			t.Parallel()

			w := &fakeWriter{}

			if err := New(w).Publish(context.Background(), ev); err != nil {
				t.Fatal(err)
			}

			test.Expect(
				t,
				"unexpected records",
				w.records,
				[]record{
					{
						Topic: "organization.events",
						Key:   "<id>",
						Headers: map[string]string{
							broker.EventIDHeader:     "<id>",
							broker.EventTypeHeader:   "IntegrationEvent",
							broker.ContentTypeHeader: "application/json",
						},
					},
				},
			)
		})

		t.Run("it wraps writer errors", func(t *testing.T) {
			t.Parallel()

			cause := errors.New("<error>")
			err := New(&fakeWriter{err: cause}).Publish(context.Background(), ev)

			if !errors.Is(err, broker.ErrPublishFailed) || !errors.Is(err, cause) {
				t.Fatalf("unexpected error: %v", err)
			}
		})

		t.Run("it returns context errors unchanged", func(t *testing.T) {
			t.Parallel()

			err := New(&fakeWriter{err: context.DeadlineExceeded}).Publish(context.Background(), ev)
			if err != context.DeadlineExceeded {
				t.Fatalf("expected context.DeadlineExceeded, got %v", err)
			}
		})
	})
}

func TestNewWithKgo(t *testing.T) {
	t.Parallel()

	t.Run("it returns an error if there are no brokers", func(t *testing.T) {
		t.Parallel()

		_, _, err := NewWithKgo(Config{})
		if !errors.Is(err, broker.ErrPublishFailed) {
			t.Fatalf("expected ErrPublishFailed, got %v", err)
		}
	})
}

func TestNewWithKafkaGo(t *testing.T) {
	t.Parallel()

	t.Run("it returns an error if there are no brokers", func(t *testing.T) {
		t.Parallel()

		_, _, err := NewWithKafkaGo(Config{})
		if !errors.Is(err, broker.ErrPublishFailed) {
			t.Fatalf("expected ErrPublishFailed, got %v", err)
		}
	})

	t.Run("it does not connect until a message is written", func(t *testing.T) {
		t.Parallel()

		b, closer, err := NewWithKafkaGo(Config{Brokers: []string{"localhost:0"}})
		if err != nil {
			t.Fatal(err)
		}
		defer closer()

		if b == nil {
			t.Fatal("expected a broker")
		}
	})
}
