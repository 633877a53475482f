// Package nats publishes integration events to NATS subjects.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/saastack/eventing/broker"
	"github.com/saastack/eventing/notification"
)

// Client publishes raw messages to NATS.
type Client interface {
	Publish(subject string, data []byte, headers map[string]string) error
}

// Broker is a [notification.MessageBroker] that publishes each integration
// event to the NATS subject named by its topic.
type Broker struct {
	Client Client
}

var (
	_ notification.MessageBroker = (*Broker)(nil)
	_ broker.Sender              = (*Broker)(nil)
)

// New returns a broker that publishes using c.
func New(c Client) *Broker {
	return &Broker{Client: c}
}

// Publish sends ev to NATS.
func (b *Broker) Publish(ctx context.Context, ev notification.IntegrationEvent) error {
	m, err := broker.Encode(ev)
	if err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}

	return b.Send(ctx, m)
}

// Send publishes an encoded message to the subject named by its topic.
func (b *Broker) Send(ctx context.Context, m broker.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if b.Client == nil {
		return fmt.Errorf("nats publish: %w", broker.ErrPublishFailed)
	}

	return broker.WrapPublishError(
		"nats",
		m.Topic,
		b.Client.Publish(m.Topic, m.Body, m.Headers),
	)
}

// Config is the configuration for a NATS connection.
type Config struct {
	URL           string
	Name          string
	ConnTimeout   time.Duration
	MaxReconnects int
}

type conn struct{ nc *nats.Conn }

func (c conn) Publish(subject string, data []byte, headers map[string]string) error {
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
	}

	if len(headers) > 0 {
		msg.Header = nats.Header{}
		for k, v := range headers {
			msg.Header.Add(k, v)
		}
	}

	if err := c.nc.PublishMsg(msg); err != nil {
		return err
	}

	return c.nc.Flush()
}

// NewWithNATS connects to NATS and returns a broker that publishes over that
// connection, along with a function that closes it.
func NewWithNATS(cfg Config) (*Broker, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: nats url required", broker.ErrPublishFailed)
	}

	var opts []nats.Option

	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}

	if cfg.ConnTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnTimeout))
	}

	if cfg.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(cfg.MaxReconnects))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: nats connect: %w", broker.ErrPublishFailed, err)
	}

	closer := func() {
		if !nc.IsClosed() {
			_ = nc.Drain()
			nc.Close()
		}
	}

	return New(conn{nc}), closer, nil
}
