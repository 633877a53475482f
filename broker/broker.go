// Package broker contains the helpers shared by the message broker adapters.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/saastack/eventing/notification"
)

var (
	// ErrPublishFailed is wrapped by errors that occur while publishing.
	ErrPublishFailed = errors.New("publish failed")

	// ErrSerializationFailed is wrapped by errors that occur while encoding
	// an integration event.
	ErrSerializationFailed = errors.New("serialization failed")
)

// Header names attached to each published message.
const (
	EventIDHeader     = "event-id"
	EventTypeHeader   = "event-type"
	ContentTypeHeader = "content-type"
)

// Message is an integration event encoded for transmission.
type Message struct {
	Topic   string
	Key     string
	Body    []byte
	Headers map[string]string
}

// Sender sends encoded messages to a broker.
//
// Each of the broker adapters is a Sender, which allows messages that were
// encoded ahead of time, such as those in an outbox, to be relayed.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Encode converts an integration event to a JSON-encoded message.
//
// The event ID is used as the message key, such that brokers that support
// de-duplication or keyed partitioning can make use of it.
func Encode(ev notification.IntegrationEvent) (Message, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	return Message{
		Topic: ev.Topic(),
		Key:   ev.EventID(),
		Body:  body,
		Headers: map[string]string{
			EventIDHeader:     ev.EventID(),
			EventTypeHeader:   typeName(ev),
			ContentTypeHeader: "application/json",
		},
	}, nil
}

// WrapPublishError annotates err with the adapter label and
// [ErrPublishFailed], unless it is a context error.
func WrapPublishError(label, topic string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%s publish to %q: %w", label, topic, errors.Join(ErrPublishFailed, err))
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if n := t.Name(); n != "" {
		return n
	}

	return t.String()
}
