package eventstore

import (
	"fmt"

	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/codec"
	"github.com/saastack/eventing/eventstore/internal/journalpb"
	"github.com/saastack/eventing/internal/envelopepb"
)

// marshalBatch returns the journal record that holds a single batch of events.
func marshalBatch(
	c *codec.Registry,
	events []aggregate.Event,
) (*journalpb.Record, error) {
	rec := &journalpb.Record{
		VersionBefore: events[0].Version - 1,
		VersionAfter:  events[len(events)-1].Version,
	}

	for _, ev := range events {
		env, err := envelopepb.Marshal(c, ev)
		if err != nil {
			return nil, err
		}

		if ev.EventType != "" && ev.EventType != env.EventType {
			return nil, fmt.Errorf(
				"event type %q does not match registered name %q",
				ev.EventType,
				env.EventType,
			)
		}

		rec.Events = append(rec.Events, env)
	}

	return rec, nil
}

// decodeEvent converts env to an event on the given stream.
//
// If the payload's type is unknown to the codec the migrator is consulted. If
// the migrator does not handle it the payload is left as an
// [aggregate.RawPayload] to be resolved when the history is loaded.
func decodeEvent(
	c *codec.Registry,
	m aggregate.Migrator,
	streamName string,
	env *envelopepb.Event,
) (aggregate.Event, error) {
	ev, err := env.Unmarshal(c)
	if err != nil {
		return aggregate.Event{}, fmt.Errorf("cannot decode event at version %d: %w", env.GetVersion(), err)
	}

	ev.StreamName = streamName

	raw, ok := ev.Payload.(aggregate.RawPayload)
	if !ok || m == nil {
		return ev, nil
	}

	payload, ok, err := m.Migrate(ev.EventType, raw.Data, raw.ContentType)
	if err != nil {
		return aggregate.Event{}, fmt.Errorf(
			"cannot migrate %q event at version %d: %w",
			ev.EventType,
			ev.Version,
			err,
		)
	}

	if ok {
		ev.EventType = aggregate.EventTypeOf(payload)
		ev.Payload = payload
	}

	return ev, nil
}
