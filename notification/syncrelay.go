package notification

import (
	"context"
	"errors"

	"github.com/saastack/eventing/aggregate"
)

// SyncRelay is a [ConsumerRelay] that delivers each event to its consumers
// in-process, before returning.
type SyncRelay struct {
	Consumers []Consumer
}

// NewSyncRelay returns a relay that delivers events to the given consumers
// in the order they are given.
func NewSyncRelay(consumers ...Consumer) *SyncRelay {
	return &SyncRelay{Consumers: consumers}
}

// RelayDomainEvent delivers ev to every consumer.
//
// A failing consumer does not prevent delivery to the remaining consumers.
// The failures are returned together, each as a [*ConsumerError]. If ctx is
// canceled part way through, its error is joined with the failures so far.
func (r *SyncRelay) RelayDomainEvent(ctx context.Context, ev aggregate.Event) error {
	var errs []error

	for _, c := range r.Consumers {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		if err := c.Consume(ctx, ev); err != nil {
			errs = append(errs, &ConsumerError{
				ConsumerType: typeName(c),
				AggregateID:  ev.AggregateID,
				EventType:    ev.EventType,
				Cause:        err,
			})
		}
	}

	return errors.Join(errs...)
}

// Consume delivers ev to every consumer. It allows the relay itself to be
// used as a [Consumer], such as by the queue supervisor.
func (r *SyncRelay) Consume(ctx context.Context, ev aggregate.Event) error {
	return r.RelayDomainEvent(ctx, ev)
}
