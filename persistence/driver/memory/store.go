// Package memory provides journal and key/value stores that keep their data in
// process memory. They are the default stores of an engine that has no
// persistence configured, and are used throughout the test suites.
package memory

import (
	"errors"
	"sync"
)

// registry holds the shared state of each named journal or keyspace.
type registry[S any] struct {
	m      sync.Mutex
	states map[string]*S
}

// get returns the state called name, creating it if necessary.
func (r *registry[S]) get(name string) *S {
	r.m.Lock()
	defer r.m.Unlock()

	if s, ok := r.states[name]; ok {
		return s
	}

	if r.states == nil {
		r.states = map[string]*S{}
	}

	s := new(S)
	r.states[name] = s
	return s
}

// handle is an open reference to some shared state. It panics if it is used
// after it has been closed.
type handle[S any] struct {
	state *S
}

func (h *handle[S]) mustState() *S {
	if h.state == nil {
		panic("handle is closed")
	}
	return h.state
}

func (h *handle[S]) Close() error {
	if h.state == nil {
		return errors.New("handle is already closed")
	}
	h.state = nil
	return nil
}

// errInjected is the error returned by injected failures.
var errInjected = errors.New("<injected failure>")

// failOnce returns a hook that returns [errInjected] the first time it is
// called with a value that satisfies pred.
func failOnce[T any](pred func(T) bool) func(T) error {
	var m sync.Mutex
	failed := false

	return func(v T) error {
		m.Lock()
		defer m.Unlock()

		if failed || !pred(v) {
			return nil
		}
		failed = true
		return errInjected
	}
}
