// Package rabbitmq publishes integration events to a RabbitMQ topic exchange.
package rabbitmq

import (
	"context"
	"fmt"

	"github.com/saastack/eventing/broker"
	"github.com/saastack/eventing/notification"
)

// DefaultExchange is the exchange that integration events are published to
// when [Broker.Exchange] is empty.
const DefaultExchange = "integration"

// Publishing is a message to be published to an exchange.
type Publishing struct {
	Exchange   string
	RoutingKey string
	MessageID  string
	Body       []byte
	Headers    map[string]string
}

// Publisher publishes messages to RabbitMQ.
type Publisher interface {
	Publish(ctx context.Context, p Publishing) error
}

// Broker is a [notification.MessageBroker] that publishes each integration
// event to an exchange, using its topic as the routing key.
type Broker struct {
	Publisher Publisher
	Exchange  string
}

var (
	_ notification.MessageBroker = (*Broker)(nil)
	_ broker.Sender              = (*Broker)(nil)
)

// New returns a broker that publishes using p.
func New(p Publisher) *Broker {
	return &Broker{Publisher: p}
}

// Publish sends ev to RabbitMQ.
func (b *Broker) Publish(ctx context.Context, ev notification.IntegrationEvent) error {
	m, err := broker.Encode(ev)
	if err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	return b.Send(ctx, m)
}

// Send publishes an encoded message to the exchange, using its topic as the
// routing key.
func (b *Broker) Send(ctx context.Context, m broker.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if b.Publisher == nil {
		return fmt.Errorf("rabbitmq publish: %w", broker.ErrPublishFailed)
	}

	exchange := b.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}

	return broker.WrapPublishError(
		"rabbitmq",
		m.Topic,
		b.Publisher.Publish(ctx, Publishing{
			Exchange:   exchange,
			RoutingKey: m.Topic,
			MessageID:  m.Key,
			Body:       m.Body,
			Headers:    m.Headers,
		}),
	)
}
