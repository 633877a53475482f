package kafka

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/saastack/eventing/broker"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Config is the configuration for a Kafka producer.
type Config struct {
	Brokers    []string
	ClientID   string
	TLS        *tls.Config
	Idempotent bool
}

type kgoWriter struct{ cl *kgo.Client }

func (w kgoWriter) Write(
	ctx context.Context,
	topic string,
	key, value []byte,
	headers map[string]string,
) error {
	rec := &kgo.Record{
		Topic: topic,
		Key:   key,
		Value: value,
	}

	for k, v := range headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	return w.cl.ProduceSync(ctx, rec).FirstErr()
}

// NewWithKgo returns a broker that produces using a franz-go client, along
// with a function that closes the client.
func NewWithKgo(cfg Config) (*Broker, func(), error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, fmt.Errorf("%w: kafka brokers required", broker.ErrPublishFailed)
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}

	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	if cfg.TLS != nil {
		opts = append(opts, kgo.DialTLSConfig(cfg.TLS))
	}

	if !cfg.Idempotent {
		opts = append(opts, kgo.DisableIdempotentWrite())
	}

	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: kafka client: %w", broker.ErrPublishFailed, err)
	}

	return New(kgoWriter{cl}), cl.Close, nil
}
