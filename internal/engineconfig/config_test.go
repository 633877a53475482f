package engineconfig_test

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/saastack/eventing/broker/kafka"
	"github.com/saastack/eventing/broker/memory"
	. "github.com/saastack/eventing/internal/engineconfig"
	"github.com/saastack/eventing/internal/telemetry/instrumentedpersistence"
	"github.com/saastack/eventing/notification/notificationtest"
	"github.com/saastack/eventing/persistence/driver/sqlite"
	"github.com/saastack/eventing/queue"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("it uses in-memory stores by default", func(t *testing.T) {
		t.Parallel()

		cfg := New[func(*Config)](nil)
		defer cfg.Close()

		if _, ok := cfg.Persistence.Journals.(*instrumentedpersistence.JournalStore); !ok {
			t.Fatalf("unexpected journal store: %T", cfg.Persistence.Journals)
		}

		if _, ok := cfg.Persistence.Keyspaces.(*instrumentedpersistence.KeyValueStore); !ok {
			t.Fatalf("unexpected key/value store: %T", cfg.Persistence.Keyspaces)
		}

		if cfg.NodeID == uuid.Nil {
			t.Fatal("expected a node ID to be generated")
		}

		if cfg.Telemetry.TracerProvider == nil || cfg.Telemetry.MeterProvider == nil || cfg.Telemetry.Logger == nil {
			t.Fatal("expected telemetry to be configured")
		}
	})

	t.Run("it keeps an explicit node ID", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		cfg := New([]func(*Config){
			func(c *Config) { c.NodeID = id },
		})

		if cfg.NodeID != id {
			t.Fatalf("unexpected node ID: got %s, want %s", cfg.NodeID, id)
		}
	})

	t.Run("it uses the default partition count for the asynchronous relay", func(t *testing.T) {
		t.Parallel()

		cfg := New([]func(*Config){
			func(c *Config) { c.Relay.Async = true },
		})

		if cfg.Relay.Partitions != queue.DefaultPartitions {
			t.Fatalf("unexpected partition count: %d", cfg.Relay.Partitions)
		}
	})

	t.Run("it panics if translators are configured without a broker", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic")
			}
		}()

		New([]func(*Config){
			func(c *Config) {
				c.Notification.Translators = append(
					c.Notification.Translators,
					&notificationtest.Translator{Type: "organization"},
				)
			},
		})
	})

	t.Run("it calls closers in reverse order", func(t *testing.T) {
		t.Parallel()

		var order []int

		cfg := New([]func(*Config){
			func(c *Config) {
				c.Closers = append(
					c.Closers,
					func() { order = append(order, 1) },
					func() { order = append(order, 2) },
				)
			},
		})

		cfg.Close()
		cfg.Close()

		if len(order) != 2 || order[0] != 2 || order[1] != 1 {
			t.Fatalf("unexpected order: %v", order)
		}
	})
}

func TestJournalStoreFromDSN(t *testing.T) {
	t.Parallel()

	t.Run("it supports SQLite", func(t *testing.T) {
		t.Parallel()

		dsn := &url.URL{
			Scheme: "sqlite",
			Opaque: filepath.Join(t.TempDir(), "eventing.db"),
		}

		s, closer, err := JournalStoreFromDSN(context.Background(), dsn)
		if err != nil {
			t.Fatal(err)
		}
		defer closer()

		if _, ok := s.(*sqlite.JournalStore); !ok {
			t.Fatalf("unexpected journal store: %T", s)
		}
	})

	t.Run("it returns an error for unsupported schemes", func(t *testing.T) {
		t.Parallel()

		_, _, err := JournalStoreFromDSN(context.Background(), &url.URL{Scheme: "mongodb"})
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("it returns an error if a DynamoDB table is not named", func(t *testing.T) {
		t.Parallel()

		_, _, err := JournalStoreFromDSN(context.Background(), &url.URL{Scheme: "dynamodb"})
		if err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestKeyValueStoreFromDSN(t *testing.T) {
	t.Parallel()

	t.Run("it supports SQLite", func(t *testing.T) {
		t.Parallel()

		dsn := &url.URL{
			Scheme: "sqlite",
			Opaque: filepath.Join(t.TempDir(), "eventing.db"),
		}

		s, closer, err := KeyValueStoreFromDSN(context.Background(), dsn)
		if err != nil {
			t.Fatal(err)
		}
		defer closer()

		if _, ok := s.(*sqlite.KeyValueStore); !ok {
			t.Fatalf("unexpected key/value store: %T", s)
		}
	})
}

func TestBrokerFromDSN(t *testing.T) {
	t.Parallel()

	t.Run("it supports the in-memory broker", func(t *testing.T) {
		t.Parallel()

		b, closer, err := BrokerFromDSN(&url.URL{Scheme: "memory"})
		if err != nil {
			t.Fatal(err)
		}
		defer closer()

		if _, ok := b.(*memory.Broker); !ok {
			t.Fatalf("unexpected broker: %T", b)
		}
	})

	t.Run("it supports the kafka-go client", func(t *testing.T) {
		t.Parallel()

		dsn, err := url.Parse("kafka://localhost:9092?client=kafka-go")
		if err != nil {
			t.Fatal(err)
		}

		b, closer, err := BrokerFromDSN(dsn)
		if err != nil {
			t.Fatal(err)
		}
		defer closer()

		if _, ok := b.(*kafka.Broker); !ok {
			t.Fatalf("unexpected broker: %T", b)
		}
	})

	t.Run("it returns an error for unsupported kafka clients", func(t *testing.T) {
		t.Parallel()

		dsn, err := url.Parse("kafka://localhost:9092?client=<unknown>")
		if err != nil {
			t.Fatal(err)
		}

		if _, _, err := BrokerFromDSN(dsn); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("it returns an error for unsupported schemes", func(t *testing.T) {
		t.Parallel()

		b, _, err := BrokerFromDSN(&url.URL{Scheme: "sqs"})
		if err == nil {
			t.Fatal("expected an error")
		}

		if b != nil {
			t.Fatal("expected a nil broker")
		}
	})

	t.Run("it returns a nil broker if the connection cannot be configured", func(t *testing.T) {
		t.Parallel()

		b, _, err := BrokerFromDSN(&url.URL{Scheme: "kafka"})
		if err == nil {
			t.Fatal("expected an error")
		}

		if b != nil {
			t.Fatal("expected a nil broker")
		}
	})
	t.Run("it ignores empty kafka hosts", func(t *testing.T) {
		t.Parallel()

		for _, client := range []string{"kgo", "kafka-go"} {
			b, _, err := BrokerFromDSN(&url.URL{
				Scheme:   "kafka",
				Host:     ", ,",
				RawQuery: "client=" + client,
			})
			if err == nil {
				t.Fatalf("%s: expected an error", client)
			}

			if b != nil {
				t.Fatalf("%s: expected a nil broker", client)
			}
		}
	})
}
