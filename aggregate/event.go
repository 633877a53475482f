package aggregate

import (
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is a domain event recorded by an aggregate.
type Event struct {
	// ID uniquely identifies the event.
	ID uuid.UUID

	// StreamName is the name of the event stream that the event belongs to.
	// See [StreamName].
	StreamName string

	// AggregateType and AggregateID identify the aggregate that recorded the
	// event.
	AggregateType string
	AggregateID   string

	// Version is the 1-based position of the event within its stream.
	Version uint64

	// EventType is the registered name of the payload's type.
	EventType string

	// Payload is the application-defined event value.
	//
	// When an event is loaded from an event store and its type is not known
	// to the codec, the payload is a [RawPayload].
	Payload any

	// Metadata is a set of arbitrary key/value pairs attached to the event.
	Metadata map[string]string

	// OccurredAt is the time at which the event was raised.
	OccurredAt time.Time
}

// RawPayload is the payload of an event whose type could not be decoded.
type RawPayload struct {
	Data        []byte
	ContentType string
}

// NamedEvent is an event payload that provides its own type name.
type NamedEvent interface {
	EventTypeName() string
}

// EventTypeOf returns the event type name of the given payload.
//
// If the payload implements [NamedEvent], its name is used. Otherwise the
// name of its Go type is used, ignoring any pointer indirection.
func EventTypeOf(payload any) string {
	if n, ok := payload.(NamedEvent); ok {
		return n.EventTypeName()
	}

	t := reflect.TypeOf(payload)
	if t == nil {
		return ""
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if n := t.Name(); n != "" {
		return n
	}

	return t.String()
}

// StreamName returns the name of the event stream for the aggregate with the
// given type and ID.
//
// The name has the form "<type>_<id>". Any underscore or backslash within the
// aggregate type is escaped with a backslash, such that distinct type and ID
// pairs always produce distinct names. See [ParseStreamName].
func StreamName(aggregateType, id string) string {
	if !strings.ContainsAny(aggregateType, `_\`) {
		return aggregateType + "_" + id
	}

	var b strings.Builder
	b.Grow(len(aggregateType) + len(id) + 4)

	for _, r := range aggregateType {
		if r == '_' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}

	b.WriteByte('_')
	b.WriteString(id)

	return b.String()
}

// ParseStreamName returns the aggregate type and ID encoded in a stream name
// produced by [StreamName]. ok is false if name is malformed.
func ParseStreamName(name string) (aggregateType, id string, ok bool) {
	var b strings.Builder

	for i := 0; i < len(name); i++ {
		switch c := name[i]; c {
		case '\\':
			i++
			if i == len(name) {
				return "", "", false
			}
			b.WriteByte(name[i])
		case '_':
			return b.String(), name[i+1:], true
		default:
			b.WriteByte(c)
		}
	}

	return "", "", false
}

// MetadataOption is an option that adds metadata to a raised event.
type MetadataOption func(map[string]string)

// WithMetadata returns an option that sets a metadata key to the given value.
func WithMetadata(k, v string) MetadataOption {
	return func(m map[string]string) {
		m[k] = v
	}
}
