package eventing

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/saastack/eventing/internal/cluster"
	"github.com/saastack/eventing/persistence/kv"
	"github.com/saastack/eventing/queue"
	"golang.org/x/sync/errgroup"
)

// relayRunner delivers events from the relay queue, sharing the queue's
// partitions among the nodes in the cluster.
type relayRunner struct {
	Node       cluster.Node
	Keyspaces  kv.Store
	Supervisor *queue.Supervisor
	Logger     *slog.Logger

	// PollInterval and HeartbeatInterval configure the cluster registry. The
	// registry's defaults are used if they are zero.
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
}

func (r *relayRunner) Run(ctx context.Context) error {
	ks, err := r.Keyspaces.Open(ctx, cluster.RegistryKeyspace)
	if err != nil {
		return err
	}
	defer ks.Close()

	reg := &cluster.Registry{
		Keyspace:          ks,
		PollInterval:      r.PollInterval,
		HeartbeatInterval: r.HeartbeatInterval,
		Logger:            r.Logger,
	}

	delay, err := reg.Register(ctx, r.Node)
	if err != nil {
		return err
	}

	hb := &heartbeater{
		Registry: reg,
		Node:     r.Node,
	}

	changes := make(chan cluster.MembershipChange)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hb.Run(ctx, delay)
	})

	g.Go(func() error {
		return reg.Watch(ctx, changes)
	})

	g.Go(func() error {
		return r.deliver(ctx, changes)
	})

	return g.Wait()
}

// deliver runs the supervisor for the partitions assigned to this node,
// restarting it each time the cluster's membership changes.
func (r *relayRunner) deliver(
	ctx context.Context,
	changes <-chan cluster.MembershipChange,
) error {
	var (
		nodes  cluster.Partitioner
		cancel context.CancelFunc
		done   chan error
	)

	stop := func() error {
		if cancel == nil {
			return nil
		}

		cancel()
		err := <-done
		cancel, done = nil, nil

		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	for {
		select {
		case <-ctx.Done():
			if err := stop(); err != nil {
				return err
			}
			return ctx.Err()

		case err := <-done:
			cancel()
			return err

		case change := <-changes:
			for _, n := range change.Joins {
				nodes.AddNode(n.ID)
			}
			for _, n := range change.Leaves {
				nodes.RemoveNode(n.ID)
			}

			if err := stop(); err != nil {
				return err
			}

			assigned := r.assigned(&nodes)

			r.Logger.DebugContext(
				ctx,
				"relay queue partitions assigned",
				slog.Int("nodes", nodes.Len()),
				slog.Any("partitions", assigned),
			)

			s := *r.Supervisor
			s.Assigned = assigned

			var runCtx context.Context
			runCtx, cancel = context.WithCancel(ctx)
			done = make(chan error, 1)

			go func() {
				done <- s.Run(runCtx)
			}()
		}
	}
}

// assigned returns the partitions of the queue that this node is responsible
// for.
func (r *relayRunner) assigned(nodes *cluster.Partitioner) []int {
	partitions := []int{}

	if nodes.Len() == 0 {
		return partitions
	}

	for i := 0; i < r.Supervisor.Queue.PartitionCount(); i++ {
		if nodes.Route("queue.partition."+strconv.Itoa(i)) == r.Node.ID {
			partitions = append(partitions, i)
		}
	}

	return partitions
}
