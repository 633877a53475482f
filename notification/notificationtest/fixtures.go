// Package notificationtest contains test doubles for the notification
// pipeline.
package notificationtest

import (
	"context"
	"sync"

	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/notification"
	"golang.org/x/exp/slices"
)

// IntegrationEvent is a simple [notification.IntegrationEvent].
type IntegrationEvent struct {
	ID      string `json:"id"`
	To      string `json:"topic"`
	Payload string `json:"payload"`
}

// Topic returns e.To.
func (e IntegrationEvent) Topic() string { return e.To }

// EventID returns e.ID.
func (e IntegrationEvent) EventID() string { return e.ID }

// Translator is a [notification.Translator] that translates the events of one
// aggregate type using a function.
type Translator struct {
	Type          string
	TranslateFunc func(context.Context, aggregate.Event) (notification.IntegrationEvent, bool, error)
}

// AggregateType returns t.Type.
func (t *Translator) AggregateType() string { return t.Type }

// Translate calls t.TranslateFunc, or translates every event to an
// [IntegrationEvent] on the "<type>.events" topic if it is nil.
func (t *Translator) Translate(ctx context.Context, ev aggregate.Event) (notification.IntegrationEvent, bool, error) {
	if t.TranslateFunc != nil {
		return t.TranslateFunc(ctx, ev)
	}

	return IntegrationEvent{
		ID:      ev.ID.String(),
		To:      t.Type + ".events",
		Payload: ev.EventType,
	}, true, nil
}

// Consumer is a [notification.Consumer] that records the events it
// receives.
type Consumer struct {
	// ConsumeFunc, if non-nil, is called for each event. If it returns an
	// error the event is not recorded.
	ConsumeFunc func(context.Context, aggregate.Event) error

	m      sync.Mutex
	events []aggregate.Event
	ch     chan aggregate.Event
}

// Consume records ev.
func (c *Consumer) Consume(ctx context.Context, ev aggregate.Event) error {
	if c.ConsumeFunc != nil {
		if err := c.ConsumeFunc(ctx, ev); err != nil {
			return err
		}
	}

	c.m.Lock()
	c.events = append(c.events, ev)
	ch := c.ch
	c.m.Unlock()

	if ch != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- ev:
		}
	}

	return nil
}

// Events returns the events that have been consumed, in order.
func (c *Consumer) Events() []aggregate.Event {
	c.m.Lock()
	defer c.m.Unlock()
	return slices.Clone(c.events)
}

// Notify returns a channel that receives each event as it is consumed.
//
// It must be called before the consumer is used.
func (c *Consumer) Notify() <-chan aggregate.Event {
	c.m.Lock()
	defer c.m.Unlock()

	if c.ch == nil {
		c.ch = make(chan aggregate.Event, 100)
	}

	return c.ch
}
