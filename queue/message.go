package queue

import (
	"fmt"

	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/codec"
	"github.com/saastack/eventing/internal/envelopepb"
	"github.com/saastack/eventing/internal/protobuf/typedproto"
)

// marshalMessage returns the journal record of a single enqueued event.
func marshalMessage(c *codec.Registry, ev aggregate.Event) ([]byte, error) {
	env, err := envelopepb.Marshal(c, ev)
	if err != nil {
		return nil, err
	}

	return typedproto.Marshal(env)
}

// unmarshalMessage converts a journal record into an event.
//
// Payloads of unknown types are returned as [aggregate.RawPayload] so that
// the consumer may decide how to handle them.
func unmarshalMessage(c *codec.Registry, env *envelopepb.Event) (aggregate.Event, error) {
	ev, err := env.Unmarshal(c)
	if err != nil {
		return aggregate.Event{}, fmt.Errorf("cannot decode enqueued event: %w", err)
	}
	return ev, nil
}
