package outbox_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dogmatiq/sqltest"
	"github.com/saastack/eventing/broker"
	. "github.com/saastack/eventing/broker/outbox"
	"github.com/saastack/eventing/internal/test"
	"github.com/saastack/eventing/notification/notificationtest"
	"gorm.io/gorm"
)

func newDB(t *testing.T) *gorm.DB {
	ctx := context.Background()

	database, err := sqltest.NewDatabase(ctx, sqltest.PGXDriver, sqltest.PostgreSQL)
	if err != nil {
		t.Skipf("PostgreSQL is not available: %s", err)
	}

	db, err := database.Open()
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatal(err)
		}

		if err := database.Close(); err != nil {
			t.Fatal(err)
		}
	})

	g, err := Open(ctx, db)
	if err != nil {
		t.Fatal(err)
	}

	return g
}

type fakeSender struct {
	sent []broker.Message
	fail func(broker.Message) error
}

func (s *fakeSender) Send(_ context.Context, m broker.Message) error {
	if s.fail != nil {
		if err := s.fail(m); err != nil {
			return err
		}
	}
	s.sent = append(s.sent, m)
	return nil
}

func TestOutbox(t *testing.T) {
	t.Parallel()

	t.Run("it relays published events to the target broker", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		b := &Broker{DB: db}
		target := &fakeSender{}

		d := &Dispatcher{
			DB:        db,
			Target:    target,
			Telemetry: test.NewTelemetryProvider(t),
		}

		ev := notificationtest.IntegrationEvent{ID: "<id>", To: "organization.events", Payload: "<payload>"}

		if err := b.Publish(context.Background(), ev); err != nil {
			t.Fatal(err)
		}

		n, err := d.DispatchPending(context.Background())
		if err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected number of relayed messages", n, 1)

		want, err := broker.Encode(ev)
		if err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected relayed messages", target.sent, []broker.Message{want})

		n, err = d.DispatchPending(context.Background())
		if err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "expected no messages to be relayed twice", n, 0)
	})

	t.Run("it writes the event within the given transaction", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		b := &Broker{DB: db}
		rollback := errors.New("<rollback>")

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := b.PublishInTx(
				context.Background(),
				tx,
				notificationtest.IntegrationEvent{ID: "<id>", To: "<topic>"},
			); err != nil {
				return err
			}
			return rollback
		})
		if !errors.Is(err, rollback) {
			t.Fatalf("unexpected error: %v", err)
		}

		var count int64
		if err := db.Model(&Message{}).Count(&count).Error; err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected number of outbox messages", count, int64(0))
	})

	t.Run("it records failures and retries the message later", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		b := &Broker{DB: db}
		cause := errors.New("<error>")
		fail := test.FailOnce(cause)

		target := &fakeSender{
			fail: func(broker.Message) error { return fail() },
		}

		d := &Dispatcher{DB: db, Target: target}

		if err := b.Publish(
			context.Background(),
			notificationtest.IntegrationEvent{ID: "<id>", To: "<topic>"},
		); err != nil {
			t.Fatal(err)
		}

		n, err := d.DispatchPending(context.Background())
		if !errors.Is(err, cause) {
			t.Fatalf("unexpected error: %v", err)
		}
		test.Expect(t, "unexpected number of relayed messages", n, 0)

		var sendErr *SendError
		if !errors.As(err, &sendErr) {
			t.Fatalf("expected a send error, got %v", err)
		}
		test.Expect(t, "unexpected event ID", sendErr.EventID, "<id>")
		test.Expect(t, "unexpected attempts", sendErr.Attempts, 1)

		var row Message
		if err := db.First(&row).Error; err != nil {
			t.Fatal(err)
		}
		test.Expect(t, "unexpected attempts", row.Attempts, 1)
		test.Expect(t, "unexpected last error", row.LastError, "<error>")

		n, err = d.DispatchPending(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		test.Expect(t, "unexpected number of relayed messages", n, 1)
	})

	t.Run("it does not relay later messages ahead of a failed one", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		b := &Broker{DB: db}
		fail := test.FailOnce(errors.New("<error>"))

		target := &fakeSender{
			fail: func(m broker.Message) error {
				if m.Key == "<first>" {
					return fail()
				}
				return nil
			},
		}

		d := &Dispatcher{DB: db, Target: target}

		for _, id := range []string{"<first>", "<second>"} {
			if err := b.Publish(
				context.Background(),
				notificationtest.IntegrationEvent{ID: id, To: "<topic>"},
			); err != nil {
				t.Fatal(err)
			}
		}

		if _, err := d.DispatchPending(context.Background()); err == nil {
			t.Fatal("expected an error")
		}
		test.Expect(t, "unexpected relayed messages", len(target.sent), 0)

		n, err := d.DispatchPending(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		test.Expect(t, "unexpected number of relayed messages", n, 2)

		var ids []string
		for _, m := range target.sent {
			ids = append(ids, m.Key)
		}
		test.Expect(t, "unexpected relay order", ids, []string{"<first>", "<second>"})
	})
}
