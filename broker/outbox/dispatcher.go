package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/saastack/eventing/broker"
	"github.com/saastack/eventing/internal/telemetry"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DefaultBatchSize is the number of messages relayed per batch when
	// [Dispatcher.BatchSize] is non-positive.
	DefaultBatchSize = 100

	// DefaultPollInterval is the interval at which the outbox is checked for
	// pending messages when [Dispatcher.PollInterval] is non-positive.
	DefaultPollInterval = time.Second
)

// Dispatcher relays pending outbox messages to a message broker.
type Dispatcher struct {
	DB           *gorm.DB
	Target       broker.Sender
	BatchSize    int
	PollInterval time.Duration
	Telemetry    *telemetry.Provider
}

// Run relays messages in outbox order until ctx is canceled or a message
// cannot be relayed.
//
// A failed message has its attempt count and last error recorded before Run
// returns a [*SendError]. It is the first message relayed by the next run.
func (d *Dispatcher) Run(ctx context.Context) error {
	interval := d.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	r := d.recorder()
	sent, failed := d.counters(r)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := d.dispatch(ctx, r, sent, failed); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// DispatchPending relays one batch of pending messages, in order, and returns
// the number that were sent.
//
// It stops at the first message that cannot be relayed and returns a
// [*SendError] describing it.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	r := d.recorder()
	sent, failed := d.counters(r)
	return d.dispatch(ctx, r, sent, failed)
}

func (d *Dispatcher) dispatch(
	ctx context.Context,
	r *telemetry.Recorder,
	sent, failedCounter metric.Int64Counter,
) (int, error) {
	size := d.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	ctx, span := r.StartSpan(ctx, "outbox.dispatch")
	defer span.End()

	var (
		count  int
		failed *SendError
	)

	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending []Message

		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("sent_at IS NULL").
			Order("id").
			Limit(size).
			Find(&pending).Error; err != nil {
			return err
		}

		for _, row := range pending {
			m, err := row.message()
			if err == nil {
				err = d.Target.Send(ctx, m)
			}

			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}

				if err := tx.Model(&row).Updates(map[string]any{
					"attempts":   gorm.Expr("attempts + 1"),
					"last_error": err.Error(),
				}).Error; err != nil {
					return err
				}

				// Later rows stay pending so that they are never sent ahead
				// of this one.
				failed = &SendError{
					OutboxID: row.ID,
					EventID:  row.EventID,
					Topic:    row.Topic,
					Attempts: row.Attempts + 1,
					Cause:    err,
				}

				return nil
			}

			now := time.Now().UTC()
			if err := tx.Model(&row).Update("sent_at", now).Error; err != nil {
				return err
			}

			sent.Add(ctx, 1)
			count++
		}

		return nil
	})
	if err != nil {
		span.Error("unable to dispatch outbox messages", err)
		return count, err
	}

	if count > 0 {
		span.Debug("relayed outbox messages", telemetry.Int("count", count))
	}

	if failed != nil {
		failedCounter.Add(ctx, 1)
		span.Error(
			"unable to relay outbox message",
			failed,
			telemetry.Int("outbox_id", failed.OutboxID),
			telemetry.String("topic", failed.Topic),
			telemetry.Int("attempts", failed.Attempts),
		)
		return count, failed
	}

	return count, nil
}

// SendError is returned when an outbox message cannot be relayed. The message
// and every message after it remain pending.
type SendError struct {
	OutboxID uint64
	EventID  string
	Topic    string
	Attempts int
	Cause    error
}

func (e *SendError) Error() string {
	return fmt.Sprintf(
		"cannot relay outbox message %d (event %q, topic %q, attempt %d): %s",
		e.OutboxID,
		e.EventID,
		e.Topic,
		e.Attempts,
		e.Cause,
	)
}

func (e *SendError) Unwrap() error {
	return e.Cause
}

func (d *Dispatcher) recorder() *telemetry.Recorder {
	return d.Telemetry.Recorder(
		"github.com/saastack/eventing/broker/outbox",
		"outbox",
	)
}

func (d *Dispatcher) counters(r *telemetry.Recorder) (sent, failed metric.Int64Counter) {
	sent = r.Int64Counter(
		"sent",
		metric.WithDescription("The number of outbox messages relayed to the broker."),
		metric.WithUnit("{message}"),
	)

	failed = r.Int64Counter(
		"failures",
		metric.WithDescription("The number of outbox messages that could not be relayed."),
		metric.WithUnit("{message}"),
	)

	return sent, failed
}
