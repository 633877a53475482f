package notification

import (
	"fmt"
	"reflect"
)

// ConsumerError indicates that a consumer failed to handle a domain event.
type ConsumerError struct {
	ConsumerType string
	AggregateID  string
	EventType    string
	Cause        error
}

func (e *ConsumerError) Error() string {
	return fmt.Sprintf(
		"consumer %s failed to handle %q event of aggregate %q: %s",
		e.ConsumerType,
		e.EventType,
		e.AggregateID,
		e.Cause,
	)
}

func (e *ConsumerError) Unwrap() error {
	return e.Cause
}

// ProducerError indicates that a translator failed to produce an integration
// event.
type ProducerError struct {
	ProducerType string
	AggregateID  string
	EventType    string
	Cause        error
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf(
		"producer %s failed to translate %q event of aggregate %q: %s",
		e.ProducerType,
		e.EventType,
		e.AggregateID,
		e.Cause,
	)
}

func (e *ProducerError) Unwrap() error {
	return e.Cause
}

// BrokerError indicates that an integration event could not be published.
type BrokerError struct {
	BrokerType  string
	Topic       string
	AggregateID string
	EventType   string
	Cause       error
}

func (e *BrokerError) Error() string {
	return fmt.Sprintf(
		"broker %s failed to publish to %q for %q event of aggregate %q: %s",
		e.BrokerType,
		e.Topic,
		e.EventType,
		e.AggregateID,
		e.Cause,
	)
}

func (e *BrokerError) Unwrap() error {
	return e.Cause
}

// typeName returns the name of v's type, including its package path.
func typeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
