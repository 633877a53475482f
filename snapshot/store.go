// Package snapshot persists point-in-time snapshots of aggregates.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/internal/protobuf/protokv"
	"github.com/saastack/eventing/persistence/kv"
	"github.com/saastack/eventing/snapshot/internal/snapshotpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Store is a store of aggregate snapshots.
type Store interface {
	// Load returns the most recent snapshot of an aggregate.
	//
	// ok is false if there is no snapshot.
	Load(ctx context.Context, aggregateType, id string) (s aggregate.Snapshot, ok bool, err error)

	// Save persists a snapshot.
	//
	// It is a no-op if a snapshot of a later version has already been saved.
	Save(ctx context.Context, s aggregate.Snapshot) error
}

// KeyspaceName is the name of the keyspace used by [KeyValueStore].
const KeyspaceName = "snapshots"

// KeyValueStore is an implementation of [Store] that stores snapshots in a
// key/value keyspace.
type KeyValueStore struct {
	Keyspaces kv.Store
}

// Load returns the most recent snapshot of an aggregate.
func (s *KeyValueStore) Load(
	ctx context.Context,
	aggregateType, id string,
) (aggregate.Snapshot, bool, error) {
	ks, err := s.Keyspaces.Open(ctx, KeyspaceName)
	if err != nil {
		return aggregate.Snapshot{}, false, err
	}
	defer ks.Close()

	rec, ok, err := load(ctx, ks, aggregateType, id)
	if !ok || err != nil {
		return aggregate.Snapshot{}, false, err
	}

	return unmarshalSnapshot(rec), true, nil
}

// Save persists a snapshot.
//
// The version comparison and the write are not atomic, as [kv.Keyspace] has
// no conditional write. When two writers save snapshots of the same aggregate
// concurrently the last write wins, even if it holds the older version. This
// only delays hydration, as events after the snapshot are always replayed.
func (s *KeyValueStore) Save(ctx context.Context, snap aggregate.Snapshot) error {
	ks, err := s.Keyspaces.Open(ctx, KeyspaceName)
	if err != nil {
		return err
	}
	defer ks.Close()

	existing, ok, err := load(ctx, ks, snap.AggregateType, snap.AggregateID)
	if err != nil {
		return err
	}

	if ok && existing.GetVersion() > snap.Version {
		return nil
	}

	if err := protokv.Set(
		ctx,
		ks,
		key(snap.AggregateType, snap.AggregateID),
		marshalSnapshot(snap),
	); err != nil {
		return fmt.Errorf("cannot save snapshot: %w", err)
	}

	return nil
}

func load(
	ctx context.Context,
	ks kv.Keyspace,
	aggregateType, id string,
) (*snapshotpb.Snapshot, bool, error) {
	rec, ok, err := protokv.Get[*snapshotpb.Snapshot](ctx, ks, key(aggregateType, id))
	if err != nil {
		return nil, false, fmt.Errorf(
			"cannot load snapshot of %s: %w",
			aggregate.StreamName(aggregateType, id),
			err,
		)
	}
	return rec, ok, nil
}

func marshalSnapshot(snap aggregate.Snapshot) *snapshotpb.Snapshot {
	rec := &snapshotpb.Snapshot{
		AggregateType: snap.AggregateType,
		AggregateId:   snap.AggregateID,
		Version:       snap.Version,
		TakenAt:       timestamppb.New(snap.TakenAt),
	}

	if len(snap.Properties) != 0 {
		rec.Properties = make(map[string][]byte, len(snap.Properties))
		for k, v := range snap.Properties {
			rec.Properties[k] = v
		}
	}

	return rec
}

func unmarshalSnapshot(rec *snapshotpb.Snapshot) aggregate.Snapshot {
	snap := aggregate.Snapshot{
		AggregateType: rec.GetAggregateType(),
		AggregateID:   rec.GetAggregateId(),
		Version:       rec.GetVersion(),
		TakenAt:       rec.GetTakenAt().AsTime(),
	}

	if len(rec.GetProperties()) != 0 {
		snap.Properties = make(aggregate.Properties, len(rec.GetProperties()))
		for k, v := range rec.GetProperties() {
			snap.Properties[k] = json.RawMessage(v)
		}
	}

	return snap
}

// key returns the key of the snapshot of the given aggregate.
//
// [aggregate.StreamName] is unambiguous, so distinct aggregates never share a
// key.
func key(aggregateType, id string) []byte {
	return []byte(aggregate.StreamName(aggregateType, id))
}
