package engineconfig

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dogmatiq/ferrite"
	"github.com/saastack/eventing/broker/kafka"
	"github.com/saastack/eventing/broker/memory"
	"github.com/saastack/eventing/broker/nats"
	"github.com/saastack/eventing/broker/rabbitmq"
	"github.com/saastack/eventing/notification"
)

// brokerDSN is the DSN describing which message broker integration events
// are published to.
var brokerDSN = ferrite.
	URL("EVENTING_BROKER_DSN", "the DSN of the message broker that integration events are published to").
	Optional(ferrite.WithRegistry(FerriteRegistry))

// BrokerFromDSN returns the message broker described by the given DSN, along
// with a function that releases its resources.
//
// The supported schemes are "memory", "nats", "amqp", "amqps" and "kafka".
// Kafka DSNs take the form "kafka://host1:9092,host2:9092?client=kgo", where
// the client is either "kgo" (the default) or "kafka-go".
func BrokerFromDSN(dsn *url.URL) (notification.MessageBroker, func(), error) {
	switch dsn.Scheme {
	case "memory":
		return &memory.Broker{}, func() {}, nil

	case "nats", "tls":
		return adapt(nats.NewWithNATS(nats.Config{
			URL:  dsn.String(),
			Name: dsn.Query().Get("name"),
		}))

	case "amqp", "amqps":
		return adapt(rabbitmq.NewWithAMQPConn(rabbitmq.Config{
			URL:      dsn.String(),
			Exchange: dsn.Query().Get("exchange"),
		}))

	case "kafka":
		cfg := kafka.Config{
			ClientID: dsn.Query().Get("client_id"),
		}

		for _, host := range strings.Split(dsn.Host, ",") {
			if host = strings.TrimSpace(host); host != "" {
				cfg.Brokers = append(cfg.Brokers, host)
			}
		}

		switch client := dsn.Query().Get("client"); client {
		case "", "kgo", "franz-go":
			return adapt(kafka.NewWithKgo(cfg))
		case "kafka-go":
			return adapt(kafka.NewWithKafkaGo(cfg))
		default:
			return nil, nil, fmt.Errorf("unsupported kafka client: %q", client)
		}
	}

	return nil, nil, fmt.Errorf("unsupported message broker DSN scheme: %q", dsn.Scheme)
}

// adapt converts the result of an adapter's constructor to a
// [notification.MessageBroker]. The broker is a nil interface on error.
func adapt[T notification.MessageBroker](b T, closer func(), err error) (notification.MessageBroker, func(), error) {
	if err != nil {
		return nil, nil, err
	}
	return b, closer, nil
}

func (c *Config) finalizeBroker() {
	if c.UseEnv && c.Notification.Broker == nil {
		if dsn, ok := brokerDSN.Value(); ok {
			b, closer, err := BrokerFromDSN(dsn)
			if err != nil {
				panic(fmt.Sprintf("EVENTING_BROKER_DSN: %s", err))
			}
			c.Notification.Broker = b
			c.Closers = append(c.Closers, closer)
		}
	}

	if c.Notification.Broker == nil && len(c.Notification.Translators) != 0 {
		panic("integration event translators are configured without a message broker, set EVENTING_BROKER_DSN or provide the WithMessageBroker() option")
	}
}
