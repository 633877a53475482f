package envelopepb

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/codec"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Marshal returns the envelope for ev, encoding its payload with c.
func Marshal(c *codec.Registry, ev aggregate.Event) (*Event, error) {
	name, contentType, data, err := c.Marshal(ev.Payload)
	if err != nil {
		return nil, err
	}

	env := &Event{
		Id:            ev.ID[:],
		StreamName:    ev.StreamName,
		AggregateType: ev.AggregateType,
		AggregateId:   ev.AggregateID,
		Version:       ev.Version,
		EventType:     name,
		ContentType:   contentType,
		Data:          data,
		Metadata:      ev.Metadata,
	}

	if !ev.OccurredAt.IsZero() {
		env.OccurredAt = timestamppb.New(ev.OccurredAt)
	}

	return env, nil
}

// Unmarshal returns the event described by x.
//
// The payload is decoded with c. It is left as an [aggregate.RawPayload] if
// its type is unknown to c.
func (x *Event) Unmarshal(c *codec.Registry) (aggregate.Event, error) {
	id, err := uuid.FromBytes(x.GetId())
	if err != nil {
		return aggregate.Event{}, fmt.Errorf("malformed event ID: %w", err)
	}

	ev := aggregate.Event{
		ID:            id,
		StreamName:    x.GetStreamName(),
		AggregateType: x.GetAggregateType(),
		AggregateID:   x.GetAggregateId(),
		Version:       x.GetVersion(),
		EventType:     x.GetEventType(),
		Metadata:      x.GetMetadata(),
	}

	if ts := x.GetOccurredAt(); ts != nil {
		ev.OccurredAt = ts.AsTime()
	}

	payload, err := c.Unmarshal(x.GetEventType(), x.GetContentType(), x.GetData())
	if err != nil {
		if !errors.As(err, new(*codec.UnknownTypeError)) {
			return aggregate.Event{}, err
		}

		payload = aggregate.RawPayload{
			Data:        x.GetData(),
			ContentType: x.GetContentType(),
		}
	}

	ev.Payload = payload

	return ev, nil
}
