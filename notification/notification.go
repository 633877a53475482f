// Package notification relays persisted domain events to consumers and
// publishes integration events to a message broker.
package notification

import (
	"context"

	"github.com/saastack/eventing/aggregate"
)

// Consumer is a subscriber to domain events.
type Consumer interface {
	Consume(ctx context.Context, ev aggregate.Event) error
}

// ConsumerFunc is a function that implements [Consumer].
type ConsumerFunc func(ctx context.Context, ev aggregate.Event) error

// Consume calls fn(ctx, ev).
func (fn ConsumerFunc) Consume(ctx context.Context, ev aggregate.Event) error {
	return fn(ctx, ev)
}

// ConsumerRelay delivers domain events to consumers.
type ConsumerRelay interface {
	RelayDomainEvent(ctx context.Context, ev aggregate.Event) error
}

// IntegrationEvent is a public event derived from a domain event.
type IntegrationEvent interface {
	// Topic returns the name of the topic that the event is published to.
	Topic() string

	// EventID returns a unique identifier for the event.
	EventID() string
}

// Translator converts the domain events of one aggregate type into
// integration events.
type Translator interface {
	// AggregateType returns the type of aggregate whose events are
	// translated.
	AggregateType() string

	// Translate returns the integration event that corresponds to ev.
	//
	// ok is false if ev has no integration counterpart.
	Translate(ctx context.Context, ev aggregate.Event) (ie IntegrationEvent, ok bool, err error)
}

// MessageBroker publishes integration events.
type MessageBroker interface {
	Publish(ctx context.Context, ev IntegrationEvent) error
}
