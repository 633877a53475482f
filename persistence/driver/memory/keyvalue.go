package memory

import (
	"context"
	"sync"

	"github.com/saastack/eventing/persistence/kv"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// KeyValueStore is an in-memory implementation of [kv.Store].
type KeyValueStore struct {
	keyspaces registry[keyspaceState]
}

// Open returns the keyspace with the given name.
func (s *KeyValueStore) Open(ctx context.Context, name string) (kv.Keyspace, error) {
	return &keyspaceHandle{handle[keyspaceState]{s.keyspaces.get(name)}}, ctx.Err()
}

type keyspaceState struct {
	sync.RWMutex

	values    map[string][]byte
	beforeSet func(k, v []byte) error
}

type keyspaceHandle struct {
	handle[keyspaceState]
}

func (h *keyspaceHandle) Get(ctx context.Context, k []byte) ([]byte, error) {
	s := h.mustState()

	s.RLock()
	defer s.RUnlock()

	return slices.Clone(s.values[string(k)]), ctx.Err()
}

func (h *keyspaceHandle) Has(ctx context.Context, k []byte) (bool, error) {
	s := h.mustState()

	s.RLock()
	defer s.RUnlock()

	_, ok := s.values[string(k)]
	return ok, ctx.Err()
}

func (h *keyspaceHandle) Set(ctx context.Context, k, v []byte) error {
	s := h.mustState()

	s.Lock()
	defer s.Unlock()

	if s.beforeSet != nil {
		if err := s.beforeSet(k, v); err != nil {
			return err
		}
	}

	if len(v) == 0 {
		delete(s.values, string(k))
		return ctx.Err()
	}

	if s.values == nil {
		s.values = map[string][]byte{}
	}
	s.values[string(k)] = slices.Clone(v)

	return ctx.Err()
}

// Range iterates over a copy of the keyspace, so fn may modify it.
func (h *keyspaceHandle) Range(ctx context.Context, fn kv.RangeFunc) error {
	s := h.mustState()

	s.RLock()
	values := maps.Clone(s.values)
	s.RUnlock()

	for k, v := range values {
		ok, err := fn(ctx, []byte(k), slices.Clone(v))
		if !ok || err != nil {
			return err
		}
	}

	return nil
}

// FailBeforeKeyspaceSet causes the next write of a pair that satisfies pred
// to the keyspace called name to fail without modifying the keyspace.
func FailBeforeKeyspaceSet(s *KeyValueStore, pred func(k, v []byte) bool, name string) {
	state := s.keyspaces.get(name)

	state.Lock()
	defer state.Unlock()

	fail := failOnce(func(p [2][]byte) bool {
		return pred(p[0], p[1])
	})
	state.beforeSet = func(k, v []byte) error {
		return fail([2][]byte{k, v})
	}
}
