package kafka

import (
	"context"
	"fmt"

	"github.com/saastack/eventing/broker"
	kafkago "github.com/segmentio/kafka-go"
)

type kafkaGoWriter struct{ w *kafkago.Writer }

func (w kafkaGoWriter) Write(
	ctx context.Context,
	topic string,
	key, value []byte,
	headers map[string]string,
) error {
	m := kafkago.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	}

	for k, v := range headers {
		m.Headers = append(m.Headers, kafkago.Header{Key: k, Value: []byte(v)})
	}

	return w.w.WriteMessages(ctx, m)
}

// NewWithKafkaGo returns a broker that produces using a kafka-go writer, along
// with a function that flushes and closes the writer.
func NewWithKafkaGo(cfg Config) (*Broker, func(), error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, fmt.Errorf("%w: kafka brokers required", broker.ErrPublishFailed)
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}

	if cfg.TLS != nil {
		w.Transport = &kafkago.Transport{
			TLS:      cfg.TLS,
			ClientID: cfg.ClientID,
		}
	}

	return New(kafkaGoWriter{w}), func() { _ = w.Close() }, nil
}
