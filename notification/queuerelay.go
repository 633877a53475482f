package notification

import (
	"context"

	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/queue"
)

// QueueRelay is a [ConsumerRelay] that enqueues events to a durable queue.
//
// Events are delivered to consumers asynchronously by a [queue.Supervisor],
// typically with a [SyncRelay] as its consumer.
type QueueRelay struct {
	Queue *queue.Queue
}

// RelayDomainEvent adds ev to the queue.
func (r *QueueRelay) RelayDomainEvent(ctx context.Context, ev aggregate.Event) error {
	return r.Queue.Enqueue(ctx, ev)
}
