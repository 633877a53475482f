package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/internal/telemetry"
	"go.opentelemetry.io/otel/metric"
)

var errNilIntegrationEvent = errors.New("translator reported an integration event but returned nil")

// Notifier hands persisted domain events to a consumer relay and publishes
// their integration counterparts to a message broker.
type Notifier struct {
	relay       ConsumerRelay
	broker      MessageBroker
	translators map[string]Translator

	// Telemetry is the provider used to instrument the notifier.
	Telemetry *telemetry.Provider

	init      sync.Once
	recorder  *telemetry.Recorder
	relayed   metric.Int64Counter
	published metric.Int64Counter
}

// NewNotifier returns a notifier that relays events using relay and publishes
// integration events produced by the given translators to broker.
//
// relay and broker may be nil. It returns an error if more than one
// translator is given for the same aggregate type.
func NewNotifier(
	relay ConsumerRelay,
	broker MessageBroker,
	translators ...Translator,
) (*Notifier, error) {
	n := &Notifier{
		relay:       relay,
		broker:      broker,
		translators: map[string]Translator{},
	}

	for _, t := range translators {
		at := t.AggregateType()

		if x, ok := n.translators[at]; ok {
			return nil, fmt.Errorf(
				"cannot register translator %s for %q aggregates: already registered to %s",
				typeName(t),
				at,
				typeName(x),
			)
		}

		n.translators[at] = t
	}

	if len(n.translators) != 0 && broker == nil {
		return nil, errors.New("cannot register translators without a message broker")
	}

	return n, nil
}

// Notify relays each event in turn, then publishes its integration event, if
// any.
//
// Processing stops at the first failure, such that later events are never
// relayed ahead of an earlier event that failed.
func (n *Notifier) Notify(
	ctx context.Context,
	streamName string,
	events []aggregate.Event,
) error {
	if len(events) == 0 {
		return nil
	}

	n.setup()

	ctx, span := n.recorder.StartSpan(
		ctx,
		"notification.notify",
		telemetry.String("stream", streamName),
		telemetry.Int("event_count", len(events)),
	)
	defer span.End()

	for _, ev := range events {
		if err := n.notify(ctx, ev); err != nil {
			span.Error(
				"unable to notify event",
				err,
				telemetry.Int("version", ev.Version),
				telemetry.String("event_type", ev.EventType),
			)

			return fmt.Errorf(
				"cannot notify %q event at version %d of %q: %w",
				ev.EventType,
				ev.Version,
				streamName,
				err,
			)
		}
	}

	return nil
}

func (n *Notifier) notify(ctx context.Context, ev aggregate.Event) error {
	if n.relay != nil {
		if err := n.relay.RelayDomainEvent(ctx, ev); err != nil {
			return err
		}
		n.relayed.Add(ctx, 1)
	}

	t, ok := n.translators[ev.AggregateType]
	if !ok {
		return nil
	}

	ie, ok, err := t.Translate(ctx, ev)
	if err != nil {
		return &ProducerError{
			ProducerType: typeName(t),
			AggregateID:  ev.AggregateID,
			EventType:    ev.EventType,
			Cause:        err,
		}
	}
	if !ok {
		return nil
	}
	if ie == nil {
		return &ProducerError{
			ProducerType: typeName(t),
			AggregateID:  ev.AggregateID,
			EventType:    ev.EventType,
			Cause:        errNilIntegrationEvent,
		}
	}

	if err := n.broker.Publish(ctx, ie); err != nil {
		return &BrokerError{
			BrokerType:  typeName(n.broker),
			Topic:       ie.Topic(),
			AggregateID: ev.AggregateID,
			EventType:   ev.EventType,
			Cause:       err,
		}
	}

	n.published.Add(ctx, 1)

	return nil
}

func (n *Notifier) setup() {
	n.init.Do(func() {
		n.recorder = n.Telemetry.Recorder(
			"github.com/saastack/eventing/notification",
			"notification",
		)

		n.relayed = n.recorder.Int64Counter(
			"relayed",
			metric.WithDescription("The number of domain events passed to the consumer relay."),
			metric.WithUnit("{event}"),
		)

		n.published = n.recorder.Int64Counter(
			"published",
			metric.WithDescription("The number of integration events published to the message broker."),
			metric.WithUnit("{event}"),
		)
	})
}
