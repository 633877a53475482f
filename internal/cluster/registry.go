package cluster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/saastack/eventing/internal/protobuf/protokv"
	"github.com/saastack/eventing/persistence/kv"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	// DefaultRegistryPollInterval is how often [Registry.Watch] reads the
	// membership table when no interval is configured.
	DefaultRegistryPollInterval = 3 * time.Second

	// DefaultHeartbeatInterval is how often a member renews its lease when no
	// interval is configured.
	DefaultHeartbeatInterval = 10 * time.Second

	// RegistryKeyspace names the keyspace that holds member leases.
	RegistryKeyspace = "cluster.registry"
)

var (
	errNotMember    = errors.New("node is not a member of the cluster")
	errLeaseExpired = errors.New("membership lease has lapsed")
)

// MembershipChange describes the nodes that joined or left the cluster between
// two reads of the registry.
type MembershipChange struct {
	Joins  []Node
	Leaves []Node
}

func (c MembershipChange) empty() bool {
	return len(c.Joins) == 0 && len(c.Leaves) == 0
}

// Registry stores a lease for each member of the cluster.
//
// The key is the node ID and the value is a protobuf timestamp holding the
// lease deadline. A lease lasts two heartbeat intervals.
type Registry struct {
	Keyspace          kv.Keyspace
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
	Logger            *slog.Logger
}

// Register grants n a fresh lease and returns the time until its first
// heartbeat is due.
func (r *Registry) Register(ctx context.Context, n Node) (time.Duration, error) {
	interval, err := r.grant(ctx, n.ID, "node joined the cluster")
	if err != nil {
		return 0, fmt.Errorf("cannot register %s: %w", n.ID, err)
	}
	return interval, nil
}

// Deregister drops the lease held by the node with the given ID.
func (r *Registry) Deregister(ctx context.Context, id uuid.UUID) error {
	if err := r.Keyspace.Set(ctx, id[:], nil); err != nil {
		return fmt.Errorf("cannot deregister %s: %w", id, err)
	}

	r.logger().DebugContext(
		ctx,
		"node left the cluster",
		slog.String("node_id", id.String()),
	)

	return nil
}

// Heartbeat renews the lease of a registered node and returns the time until
// its next heartbeat is due.
//
// A node whose lease has already lapsed is removed and must register again.
func (r *Registry) Heartbeat(ctx context.Context, id uuid.UUID) (time.Duration, error) {
	deadline, ok, err := r.lease(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("cannot renew lease of %s: %w", id, err)
	}

	if !ok {
		return 0, fmt.Errorf("cannot renew lease of %s: %w", id, errNotMember)
	}

	if !time.Now().Before(deadline) {
		if err := r.Keyspace.Set(ctx, id[:], nil); err != nil {
			return 0, fmt.Errorf("cannot remove lapsed lease of %s: %w", id, err)
		}
		return 0, fmt.Errorf("cannot renew lease of %s: %w", id, errLeaseExpired)
	}

	interval, err := r.grant(ctx, id, "node lease renewed")
	if err != nil {
		return 0, fmt.Errorf("cannot renew lease of %s: %w", id, err)
	}
	return interval, nil
}

// Watch reads the membership table every poll interval and sends the
// difference from the previously delivered membership to ch.
//
// Nothing is sent while the membership is unchanged.
func (r *Registry) Watch(ctx context.Context, ch chan<- MembershipChange) error {
	interval := r.pollInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger().DebugContext(
		ctx,
		"polling cluster registry",
		slog.Duration("poll_interval", interval),
	)

	var known map[uuid.UUID]Node

	for {
		current, err := r.members(ctx)
		if err != nil {
			return fmt.Errorf("cannot read cluster membership: %w", err)
		}

		change := diff(known, current)

		var out chan<- MembershipChange // nil blocks forever
		if !change.empty() {
			out = ch
			r.logger().DebugContext(
				ctx,
				"cluster membership changed",
				slog.Int("joined", len(change.Joins)),
				slog.Int("left", len(change.Leaves)),
				slog.Int("members", len(current)),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case out <- change:
			known = current
		}
	}
}

// grant writes a new lease for id.
func (r *Registry) grant(ctx context.Context, id uuid.UUID, msg string) (time.Duration, error) {
	interval := r.heartbeatInterval()
	deadline := time.Now().Add(2 * interval)

	if err := protokv.Set(ctx, r.Keyspace, id[:], timestamppb.New(deadline)); err != nil {
		return 0, err
	}

	r.logger().DebugContext(
		ctx,
		msg,
		slog.String("node_id", id.String()),
		slog.Duration("heartbeat_interval", interval),
		slog.Time("lease_deadline", deadline),
	)

	return interval, nil
}

// lease returns the deadline of the lease held by id. ok is false if there is
// no lease.
func (r *Registry) lease(ctx context.Context, id uuid.UUID) (deadline time.Time, ok bool, err error) {
	ts, ok, err := protokv.Get[*timestamppb.Timestamp](ctx, r.Keyspace, id[:])
	if !ok || err != nil {
		return time.Time{}, false, err
	}
	return ts.AsTime(), true, nil
}

// members returns the nodes holding a live lease. Lapsed leases are removed.
func (r *Registry) members(ctx context.Context) (map[uuid.UUID]Node, error) {
	ctx, cancel := context.WithTimeout(ctx, r.pollInterval()/2)
	defer cancel()

	now := time.Now()
	live := map[uuid.UUID]Node{}
	var lapsed []uuid.UUID

	err := protokv.Range(
		ctx,
		r.Keyspace,
		func(_ context.Context, k []byte, ts *timestamppb.Timestamp) (bool, error) {
			id, err := uuid.FromBytes(k)
			if err != nil {
				return false, fmt.Errorf("malformed node ID in registry: %w", err)
			}

			if now.Before(ts.AsTime()) {
				live[id] = Node{ID: id}
			} else {
				lapsed = append(lapsed, id)
			}

			return true, nil
		},
	)
	if err != nil {
		return nil, err
	}

	for _, id := range lapsed {
		if err := r.Keyspace.Set(ctx, id[:], nil); err != nil {
			return nil, err
		}

		r.logger().DebugContext(
			ctx,
			"removed lapsed lease",
			slog.String("node_id", id.String()),
		)
	}

	return live, nil
}

func (r *Registry) heartbeatInterval() time.Duration {
	if r.HeartbeatInterval <= 0 {
		return DefaultHeartbeatInterval
	}
	return r.HeartbeatInterval
}

func (r *Registry) pollInterval() time.Duration {
	if r.PollInterval <= 0 {
		return DefaultRegistryPollInterval
	}
	return r.PollInterval
}

func (r *Registry) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func diff(prev, next map[uuid.UUID]Node) (c MembershipChange) {
	for id, n := range next {
		if _, ok := prev[id]; !ok {
			c.Joins = append(c.Joins, n)
		}
	}
	for id, n := range prev {
		if _, ok := next[id]; !ok {
			c.Leaves = append(c.Leaves, n)
		}
	}
	return c
}
