package eventing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/saastack/eventing"
	"github.com/saastack/eventing/aggregate"
	brokermemory "github.com/saastack/eventing/broker/memory"
	"github.com/saastack/eventing/internal/test"
	"github.com/saastack/eventing/notification/notificationtest"
	"github.com/saastack/eventing/persistence/driver/memory"
	"github.com/saastack/eventing/repository"
	"golang.org/x/exp/slices"
)

type (
	Created     struct{ Name string }
	MemberAdded struct{ UserID string }
)

type organization struct {
	aggregate.Root

	Name    string
	Members []string
}

func newOrganization(id string) *organization {
	o := &organization{}
	o.Init(o, "organization", id)
	return o
}

func (o *organization) ApplyEvent(payload any) error {
	switch p := payload.(type) {
	case Created:
		o.Name = p.Name
	case MemberAdded:
		if slices.Contains(o.Members, p.UserID) {
			return errors.New("user is already a member")
		}
		o.Members = append(o.Members, p.UserID)
	default:
		return fmt.Errorf("unexpected payload: %T", payload)
	}
	return nil
}

func (o *organization) Dehydrate() (map[string]any, error) {
	return map[string]any{
		"name":    o.Name,
		"members": o.Members,
	}, nil
}

func (o *organization) Rehydrate(p aggregate.Properties) error {
	if _, err := p.Get("name", &o.Name); err != nil {
		return err
	}
	_, err := p.Get("members", &o.Members)
	return err
}

func TestEngine(t *testing.T) {
	t.Parallel()

	newEngine := func(t *testing.T, options ...EngineOption) *Engine {
		e := New(
			append(
				[]EngineOption{
					WithJournalStore(&memory.JournalStore{}),
					WithKeyValueStore(&memory.KeyValueStore{}),
					WithEventTypes(Created{}, MemberAdded{}),
					WithLogger(test.NewLogger(t)),
				},
				options...,
			)...,
		)

		t.Cleanup(func() {
			if err := e.Close(); err != nil {
				t.Error(err)
			}
		})

		return e
	}

	save := func(t *testing.T, repo *repository.Repository[*organization]) {
		t.Helper()

		o := newOrganization("<id>")
		if err := o.Raise(Created{"<name>"}); err != nil {
			t.Fatal(err)
		}
		if err := o.Raise(MemberAdded{"<user>"}); err != nil {
			t.Fatal(err)
		}

		if err := repo.Save(context.Background(), o); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("it loads aggregates that were saved", func(t *testing.T) {
		t.Parallel()

		e := newEngine(t, WithSnapshotEvery(1))
		repo := NewRepository(e, "organization", newOrganization)

		save(t, repo)

		o, err := repo.Load(context.Background(), "<id>")
		if err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected name", o.Name, "<name>")
		test.Expect(t, "unexpected members", o.Members, []string{"<user>"})
		test.Expect(t, "unexpected version", o.Version(), uint64(2))
	})

	t.Run("it delivers events to consumers synchronously by default", func(t *testing.T) {
		t.Parallel()

		consumer := &notificationtest.Consumer{}
		e := newEngine(t, WithConsumer(consumer))
		repo := NewRepository(e, "organization", newOrganization)

		save(t, repo)

		var types []string
		for _, ev := range consumer.Events() {
			types = append(types, ev.EventType)
		}

		test.Expect(t, "unexpected events", types, []string{"Created", "MemberAdded"})
	})

	t.Run("it publishes integration events to the message broker", func(t *testing.T) {
		t.Parallel()

		broker := &brokermemory.Broker{}
		e := newEngine(
			t,
			WithMessageBroker(broker),
			WithTranslator(&notificationtest.Translator{Type: "organization"}),
		)
		repo := NewRepository(e, "organization", newOrganization)

		save(t, repo)

		test.Expect(t, "unexpected number of published events", len(broker.Published()), 2)
	})

	t.Run("it delivers events to consumers asynchronously while running", func(t *testing.T) {
		t.Parallel()

		consumer := &notificationtest.Consumer{}
		delivered := consumer.Notify()

		e := newEngine(t, WithConsumer(consumer), WithAsyncRelay(2))
		repo := NewRepository(e, "organization", newOrganization)

		save(t, repo)

		test.
			RunInBackground(t, e.Run).
			UntilTestEnds()

		for _, want := range []string{"Created", "MemberAdded"} {
			ctx, _ := test.ContextWithTimeout(t, 5*time.Second)

			select {
			case <-ctx.Done():
				t.Fatalf("timed out waiting for %s event", want)
			case ev := <-delivered:
				test.Expect(t, "unexpected event type", ev.EventType, want)
			}
		}
	})

	t.Run("it stops running when it is closed", func(t *testing.T) {
		t.Parallel()

		e := newEngine(t, WithAsyncRelay(2))

		task := test.
			RunInBackground(t, e.Run).
			UntilStopped()

		if err := e.Close(); err != nil {
			t.Fatal(err)
		}

		test.ExpectChannelToClose(t, task.Done())

		// Run may not have started before Close was called.
		if err := task.Err(); err != nil && !errors.Is(err, ErrClosed) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("it refuses to run once it has been closed", func(t *testing.T) {
		t.Parallel()

		e := newEngine(t)

		if err := e.Close(); err != nil {
			t.Fatal(err)
		}

		if err := e.Run(context.Background()); !errors.Is(err, ErrClosed) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("it panics if translators are configured without a message broker", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic")
			}
		}()

		New(
			WithJournalStore(&memory.JournalStore{}),
			WithKeyValueStore(&memory.KeyValueStore{}),
			WithTranslator(&notificationtest.Translator{Type: "organization"}),
		)
	})

	t.Run("func NewRepository()", func(t *testing.T) {
		t.Parallel()

		t.Run("it panics if the factory returns an aggregate of a different type", func(t *testing.T) {
			t.Parallel()

			e := newEngine(t)
			repo := NewRepository(e, "team", newOrganization)

			defer func() {
				if recover() == nil {
					t.Fatal("expected a panic")
				}
			}()

			repo.Load(context.Background(), "<id>") //nolint:errcheck
		})
	})
}
