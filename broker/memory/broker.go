// Package memory is an in-memory message broker, for use in tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/saastack/eventing/notification"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Broker is an implementation of [notification.MessageBroker] that records
// published events in memory and forwards them to subscribers.
type Broker struct {
	// BeforePublish, if non-nil, is called before each event is published.
	// If it returns an error the event is not published.
	BeforePublish func(notification.IntegrationEvent) error

	m           sync.Mutex
	published   []notification.IntegrationEvent
	subscribers map[chan<- notification.IntegrationEvent]struct{}
}

var _ notification.MessageBroker = (*Broker)(nil)

// Publish records ev and sends it to each subscriber.
//
// It blocks until every subscriber that was registered when Publish was
// called has received the event.
func (b *Broker) Publish(ctx context.Context, ev notification.IntegrationEvent) error {
	if b.BeforePublish != nil {
		if err := b.BeforePublish(ev); err != nil {
			return err
		}
	}

	b.m.Lock()
	b.published = append(b.published, ev)
	subscribers := maps.Keys(b.subscribers)
	b.m.Unlock()

	for _, ch := range subscribers {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- ev:
		}
	}

	return nil
}

// Published returns the events that have been published, in order.
func (b *Broker) Published() []notification.IntegrationEvent {
	b.m.Lock()
	defer b.m.Unlock()

	return slices.Clone(b.published)
}

// Subscribe registers ch to receive events as they are published.
func (b *Broker) Subscribe(ch chan<- notification.IntegrationEvent) {
	b.m.Lock()
	defer b.m.Unlock()

	if b.subscribers == nil {
		b.subscribers = map[chan<- notification.IntegrationEvent]struct{}{}
	}
	b.subscribers[ch] = struct{}{}
}

// Unsubscribe stops ch from receiving events.
func (b *Broker) Unsubscribe(ch chan<- notification.IntegrationEvent) {
	b.m.Lock()
	defer b.m.Unlock()

	delete(b.subscribers, ch)
}
