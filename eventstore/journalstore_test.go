package eventstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/codec"
	. "github.com/saastack/eventing/eventstore"
	"github.com/saastack/eventing/internal/test"
	"github.com/saastack/eventing/persistence/driver/memory"
)

type (
	Opened  struct{ Name string }
	Renamed struct{ Name string }
	Retired struct{}
)

func newStore(t *testing.T) (*JournalStore, *memory.JournalStore) {
	journals := &memory.JournalStore{}

	c := &codec.Registry{}
	if err := c.Register(Opened{}, Renamed{}); err != nil {
		t.Fatal(err)
	}

	return &JournalStore{
		Journals:  journals,
		Codec:     c,
		Telemetry: test.NewTelemetryProvider(t),
	}, journals
}

func events(stream string, first uint64, payloads ...any) []aggregate.Event {
	var result []aggregate.Event
	for i, p := range payloads {
		result = append(result, aggregate.Event{
			StreamName:    stream,
			AggregateType: "account",
			AggregateID:   "<id>",
			Version:       first + uint64(i),
			EventType:     aggregate.EventTypeOf(p),
			Payload:       p,
		})
	}
	return result
}

func TestJournalStore(t *testing.T) {
	t.Parallel()

	const stream = "account_<id>"

	t.Run("func Append()", func(t *testing.T) {
		t.Parallel()

		t.Run("it persists contiguous batches", func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store, _ := newStore(t)

			if err := store.Append(ctx, stream, events(stream, 1, Opened{"a"}, Renamed{"b"})); err != nil {
				t.Fatal(err)
			}

			if err := store.Append(ctx, stream, events(stream, 3, Renamed{"c"})); err != nil {
				t.Fatal(err)
			}

			v, err := store.Version(ctx, stream)
			if err != nil {
				t.Fatal(err)
			}

			test.Expect(t, "unexpected version", v, 3)
		})

		t.Run("it ignores an empty batch", func(t *testing.T) {
			t.Parallel()

			store, _ := newStore(t)

			if err := store.Append(context.Background(), stream, nil); err != nil {
				t.Fatal(err)
			}
		})

		t.Run("it returns a conflict error if the stream has already been updated", func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store, _ := newStore(t)

			if err := store.Append(ctx, stream, events(stream, 1, Opened{"a"})); err != nil {
				t.Fatal(err)
			}

			err := store.Append(ctx, stream, events(stream, 1, Opened{"b"}))
			if !errors.Is(err, ErrStreamAlreadyUpdated) {
				t.Fatalf("unexpected error: %v", err)
			}

			var conflict *ConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("unexpected error: %v", err)
			}

			test.Expect(
				t,
				"unexpected conflict",
				*conflict,
				ConflictError{
					StreamName:      stream,
					ExpectedVersion: 0,
					ActualVersion:   1,
				},
			)
		})

		t.Run("it returns a conflict error if the batch skips versions", func(t *testing.T) {
			t.Parallel()

			store, _ := newStore(t)

			err := store.Append(context.Background(), stream, events(stream, 2, Opened{"a"}))
			if !errors.Is(err, ErrStreamAlreadyUpdated) {
				t.Fatalf("unexpected error: %v", err)
			}
		})

		t.Run("it rejects a batch that is not contiguous", func(t *testing.T) {
			t.Parallel()

			store, _ := newStore(t)

			batch := events(stream, 1, Opened{"a"}, Renamed{"b"})
			batch[1].Version = 3

			err := store.Append(context.Background(), stream, batch)

			var invalid *InvalidBatchError
			if !errors.As(err, &invalid) {
				t.Fatalf("unexpected error: %v", err)
			}
		})

		t.Run("it rejects a batch containing events from another stream", func(t *testing.T) {
			t.Parallel()

			store, _ := newStore(t)

			err := store.Append(context.Background(), stream, events("<other>", 1, Opened{"a"}))

			var invalid *InvalidBatchError
			if !errors.As(err, &invalid) {
				t.Fatalf("unexpected error: %v", err)
			}
		})

		t.Run("it rejects a batch recorded by an aggregate of another stream", func(t *testing.T) {
			t.Parallel()

			store, _ := newStore(t)

			batch := events(stream, 1, Opened{"a"})
			batch[0].AggregateID = "<other>"

			err := store.Append(context.Background(), stream, batch)

			var invalid *InvalidBatchError
			if !errors.As(err, &invalid) {
				t.Fatalf("unexpected error: %v", err)
			}
		})

		t.Run("it keeps streams apart when aggregate types and IDs contain underscores", func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store, _ := newStore(t)

			identify := func(events []aggregate.Event, aggregateType, id string) []aggregate.Event {
				for i := range events {
					events[i].AggregateType = aggregateType
					events[i].AggregateID = id
				}
				return events
			}

			left := aggregate.StreamName("org_a", "b")
			right := aggregate.StreamName("org", "a_b")

			if left == right {
				t.Fatalf("expected distinct stream names, got %q", left)
			}

			if err := store.Append(ctx, left, identify(events(left, 1, Opened{"left"}), "org_a", "b")); err != nil {
				t.Fatal(err)
			}

			v, err := store.Version(ctx, right)
			if err != nil {
				t.Fatal(err)
			}
			test.Expect(t, "unexpected version", v, 0)

			if err := store.Append(ctx, right, identify(events(right, 1, Opened{"right"}), "org", "a_b")); err != nil {
				t.Fatal(err)
			}

			got, err := store.Load(ctx, right, 0)
			if err != nil {
				t.Fatal(err)
			}

			test.Expect(t, "unexpected event count", len(got), 1)
			test.Expect(t, "unexpected payload", got[0].Payload, any(Opened{"right"}))
			test.Expect(t, "unexpected aggregate type", got[0].AggregateType, "org")
			test.Expect(t, "unexpected aggregate ID", got[0].AggregateID, "a_b")
		})

		t.Run("it allows exactly one of several concurrent writers to succeed", func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store, _ := newStore(t)

			const writers = 10

			var (
				g         sync.WaitGroup
				m         sync.Mutex
				succeeded int
			)

			for i := 0; i < writers; i++ {
				g.Add(1)
				go func() {
					defer g.Done()

					err := store.Append(ctx, stream, events(stream, 1, Opened{"a"}))
					if err != nil && !errors.Is(err, ErrStreamAlreadyUpdated) {
						t.Error(err)
						return
					}

					if err == nil {
						m.Lock()
						succeeded++
						m.Unlock()
					}
				}()
			}

			g.Wait()

			test.Expect(t, "unexpected number of successful writers", succeeded, 1)
		})

		t.Run("it does not persist the batch if the journal append fails", func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store, journals := newStore(t)

			memory.FailBeforeJournalAppend(
				journals,
				func([]byte) bool { return true },
				JournalPath(stream)...,
			)

			if err := store.Append(ctx, stream, events(stream, 1, Opened{"a"})); err == nil {
				t.Fatal("expected an error")
			}

			v, err := store.Version(ctx, stream)
			if err != nil {
				t.Fatal(err)
			}

			test.Expect(t, "unexpected version", v, 0)
		})

		t.Run("it returns an error if the payload type is not registered", func(t *testing.T) {
			t.Parallel()

			store, _ := newStore(t)

			err := store.Append(context.Background(), stream, events(stream, 1, Retired{}))
			if !errors.As(err, new(*codec.UnknownTypeError)) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	})

	t.Run("func Load()", func(t *testing.T) {
		t.Parallel()

		setup := func(t *testing.T) *JournalStore {
			ctx := context.Background()
			store, _ := newStore(t)

			if err := store.Append(ctx, stream, events(stream, 1, Opened{"a"}, Renamed{"b"})); err != nil {
				t.Fatal(err)
			}
			if err := store.Append(ctx, stream, events(stream, 3, Renamed{"c"})); err != nil {
				t.Fatal(err)
			}
			if err := store.Append(ctx, stream, events(stream, 4, Renamed{"d"}, Renamed{"e"})); err != nil {
				t.Fatal(err)
			}

			return store
		}

		payloads := func(events []aggregate.Event) []any {
			var result []any
			for _, ev := range events {
				result = append(result, ev.Payload)
			}
			return result
		}

		t.Run("it returns the entire stream when afterVersion is zero", func(t *testing.T) {
			t.Parallel()

			store := setup(t)

			got, err := store.Load(context.Background(), stream, 0)
			if err != nil {
				t.Fatal(err)
			}

			test.Expect(
				t,
				"unexpected payloads",
				payloads(got),
				[]any{Opened{"a"}, Renamed{"b"}, Renamed{"c"}, Renamed{"d"}, Renamed{"e"}},
			)

			for i, ev := range got {
				test.Expect(t, "unexpected version", ev.Version, uint64(i+1))
				test.Expect(t, "unexpected stream", ev.StreamName, stream)
			}
		})

		t.Run("it returns the events after the given version", func(t *testing.T) {
			t.Parallel()

			store := setup(t)

			cases := map[uint64][]any{
				1: {Renamed{"b"}, Renamed{"c"}, Renamed{"d"}, Renamed{"e"}},
				2: {Renamed{"c"}, Renamed{"d"}, Renamed{"e"}},
				3: {Renamed{"d"}, Renamed{"e"}},
				4: {Renamed{"e"}},
				5: nil,
				9: nil,
			}

			for after, want := range cases {
				got, err := store.Load(context.Background(), stream, after)
				if err != nil {
					t.Fatal(err)
				}

				test.Expect(t, "unexpected payloads", payloads(got), want)
			}
		})

		t.Run("it returns nothing for an empty stream", func(t *testing.T) {
			t.Parallel()

			store, _ := newStore(t)

			got, err := store.Load(context.Background(), "<empty>", 0)
			if err != nil {
				t.Fatal(err)
			}

			if len(got) != 0 {
				t.Fatalf("unexpected events: %+v", got)
			}
		})

		t.Run("it passes unknown event types to the migrator", func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store, journals := newStore(t)

			if err := store.Append(ctx, stream, events(stream, 1, Opened{"a"})); err != nil {
				t.Fatal(err)
			}

			// A reader whose codec no longer knows about "Opened".
			c := &codec.Registry{}
			if err := c.Register(Renamed{}); err != nil {
				t.Fatal(err)
			}

			reader := &JournalStore{
				Journals: journals,
				Codec:    c,
				Migrator: aggregate.MigratorFunc(
					func(eventType string, data []byte, _ string) (any, bool, error) {
						if eventType != "Opened" {
							return nil, false, nil
						}
						var o Opened
						err := json.Unmarshal(data, &o)
						return Renamed{o.Name}, true, err
					},
				),
			}

			got, err := reader.Load(ctx, stream, 0)
			if err != nil {
				t.Fatal(err)
			}

			test.Expect(t, "unexpected payloads", payloads(got), []any{Renamed{"a"}})
			test.Expect(t, "unexpected event type", got[0].EventType, "Renamed")
		})

		t.Run("it leaves unmigrated payloads raw", func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store, journals := newStore(t)

			if err := store.Append(ctx, stream, events(stream, 1, Opened{"a"})); err != nil {
				t.Fatal(err)
			}

			reader := &JournalStore{
				Journals: journals,
				Codec:    &codec.Registry{},
			}

			got, err := reader.Load(ctx, stream, 0)
			if err != nil {
				t.Fatal(err)
			}

			test.Expect(
				t,
				"unexpected payload",
				got[0].Payload,
				any(aggregate.RawPayload{
					Data:        []byte(`{"Name":"a"}`),
					ContentType: codec.JSONContentType,
				}),
			)
		})
	})
}
