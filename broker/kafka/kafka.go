// Package kafka publishes integration events to Kafka topics.
//
// Two client libraries are supported: franz-go, via [NewWithKgo], and
// segmentio's kafka-go, via [NewWithKafkaGo].
package kafka

import (
	"context"
	"fmt"

	"github.com/saastack/eventing/broker"
	"github.com/saastack/eventing/notification"
)

// Writer writes records to Kafka.
type Writer interface {
	Write(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

// Broker is a [notification.MessageBroker] that produces each integration
// event to the Kafka topic named by its topic, keyed by its event ID.
type Broker struct {
	Writer Writer
}

var (
	_ notification.MessageBroker = (*Broker)(nil)
	_ broker.Sender              = (*Broker)(nil)
)

// New returns a broker that writes using w.
func New(w Writer) *Broker {
	return &Broker{Writer: w}
}

// Publish sends ev to Kafka.
func (b *Broker) Publish(ctx context.Context, ev notification.IntegrationEvent) error {
	m, err := broker.Encode(ev)
	if err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}

	return b.Send(ctx, m)
}

// Send produces an encoded message to the topic it names.
func (b *Broker) Send(ctx context.Context, m broker.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if b.Writer == nil {
		return fmt.Errorf("kafka publish: %w", broker.ErrPublishFailed)
	}

	return broker.WrapPublishError(
		"kafka",
		m.Topic,
		b.Writer.Write(ctx, m.Topic, []byte(m.Key), m.Body, m.Headers),
	)
}
