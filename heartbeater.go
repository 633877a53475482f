package eventing

import (
	"context"
	"time"

	"github.com/saastack/eventing/internal/cluster"
)

// deregisterTimeout bounds how long a stopping node waits to remove its lease.
const deregisterTimeout = 15 * time.Second

// heartbeater renews a registered node's lease until ctx is canceled, then
// removes the lease.
type heartbeater struct {
	Registry *cluster.Registry
	Node     cluster.Node
}

// Run renews the lease after delay, then at the interval returned by each
// renewal.
func (h *heartbeater) Run(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// ctx is already canceled, so the lease is removed under a
			// detached context.
			dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deregisterTimeout)
			defer cancel()

			if err := h.Registry.Deregister(dctx, h.Node.ID); err != nil {
				return err
			}
			return ctx.Err()

		case <-timer.C:
			next, err := h.Registry.Heartbeat(ctx, h.Node.ID)
			if err != nil {
				return err
			}
			timer.Reset(next)
		}
	}
}
