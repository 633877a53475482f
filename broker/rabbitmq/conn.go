package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/saastack/eventing/broker"
)

// Config is the configuration for a RabbitMQ connection.
type Config struct {
	URL         string
	Exchange    string
	ConnTimeout time.Duration
	Logger      *slog.Logger
}

const maxBackoff = 30 * time.Second

// reconnectingPublisher is a [Publisher] that maintains a channel to
// RabbitMQ, reconnecting whenever the connection is lost.
type reconnectingPublisher struct {
	cfg Config

	m      sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	ready  chan struct{}
	closed chan struct{}
}

func newReconnectingPublisher(cfg Config) *reconnectingPublisher {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p := &reconnectingPublisher{
		cfg:    cfg,
		ready:  make(chan struct{}),
		closed: make(chan struct{}),
	}

	go p.run()

	return p
}

func (p *reconnectingPublisher) Publish(ctx context.Context, m Publishing) error {
	p.m.Lock()
	ready := p.ready
	p.m.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closed:
		return fmt.Errorf("%w: rabbitmq publisher is closed", broker.ErrPublishFailed)
	case <-ready:
	}

	p.m.Lock()
	ch := p.ch
	p.m.Unlock()

	if ch == nil {
		return fmt.Errorf("%w: rabbitmq not connected", broker.ErrPublishFailed)
	}

	var headers amqp.Table
	if len(m.Headers) > 0 {
		headers = amqp.Table{}
		for k, v := range m.Headers {
			headers[k] = v
		}
	}

	return ch.PublishWithContext(
		ctx,
		m.Exchange,
		m.RoutingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			MessageId:    m.MessageID,
			Headers:      headers,
			ContentType:  "application/json",
			Timestamp:    time.Now(),
			Body:         m.Body,
		},
	)
}

func (p *reconnectingPublisher) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(p.cfg.URL, amqp.Config{
		Locale:     "en_US",
		Properties: amqp.Table{"product": "eventing"},
		Dial:       amqp.DefaultDial(p.cfg.ConnTimeout),
	})
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	if err := ch.ExchangeDeclare(
		p.cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}

	return conn, ch, nil
}

func (p *reconnectingPublisher) run() {
	backoff := time.Second
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		conn, ch, err := p.dial()
		if err != nil {
			delay := backoff + time.Duration(rng.Int63n(int64(backoff/2)))
			if delay > maxBackoff {
				delay = maxBackoff
			}

			p.cfg.Logger.Warn(
				"unable to connect to rabbitmq",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", delay),
			)

			t := time.NewTimer(delay)
			select {
			case <-p.closed:
				t.Stop()
				return
			case <-t.C:
			}

			backoff = min(backoff*2, maxBackoff)
			continue
		}

		backoff = time.Second

		p.m.Lock()
		p.conn = conn
		p.ch = ch
		close(p.ready)
		p.m.Unlock()

		p.cfg.Logger.Debug("connected to rabbitmq", slog.String("exchange", p.cfg.Exchange))

		notify := conn.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-p.closed:
			_ = ch.Close()
			_ = conn.Close()
			return
		case err := <-notify:
			p.cfg.Logger.Warn("rabbitmq connection lost", slog.Any("error", err))
		}

		p.m.Lock()
		p.conn = nil
		p.ch = nil
		p.ready = make(chan struct{})
		p.m.Unlock()

		_ = ch.Close()
		_ = conn.Close()
	}
}

func (p *reconnectingPublisher) close() {
	p.m.Lock()
	defer p.m.Unlock()

	select {
	case <-p.closed:
		return
	default:
		close(p.closed)
	}

	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}

	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// NewWithAMQPConn returns a broker that publishes over a RabbitMQ connection
// that is re-established whenever it is lost, along with a function that
// closes it.
func NewWithAMQPConn(cfg Config) (*Broker, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: rabbitmq url required", broker.ErrPublishFailed)
	}

	p := newReconnectingPublisher(cfg)

	return &Broker{
		Publisher: p,
		Exchange:  p.cfg.Exchange,
	}, p.close, nil
}
