// Package fsm runs simple finite state machines in which each state is a
// function that returns the [Action] to take next.
package fsm

import "context"

// State is a function that implements the logic for a single state.
type State func(context.Context) Action

type actionKind int

const (
	invalid actionKind = iota
	stay
	enter
	stop
	fail
)

// Action describes what the state machine does after a state has run.
type Action struct {
	kind actionKind
	next State
	err  error
}

// Stop stops the state machine. [Start] returns the context's error, if any.
func Stop() Action {
	return Action{kind: stop}
}

// Fail stops the state machine with the given error.
func Fail(err error) Action {
	return Action{kind: fail, err: err}
}

// StayInCurrentState runs the current state again.
//
// When returned from the final state it stops the state machine without
// changing the error returned by [Start].
func StayInCurrentState() Action {
	return Action{kind: stay}
}

// EnterState transitions to next.
func EnterState(next State) Action {
	if next == nil {
		panic("state must not be nil")
	}
	return Action{kind: enter, next: next}
}

// Option changes the behavior of a state machine.
type Option func(*machine)

// WithFinalState sets a state that runs whenever the state machine stops.
//
// It may perform cleanup, or enter another state to keep the machine running.
func WithFinalState(s State) Option {
	return func(m *machine) {
		m.final = s
	}
}

type machine struct {
	current State
	final   State
	err     error
}

// Start runs the state machine from the initial state until it stops.
func Start(ctx context.Context, initial State, options ...Option) error {
	m := &machine{current: initial}
	for _, opt := range options {
		opt(m)
	}

	for m.current != nil {
		if m.apply(ctx, m.current(ctx), false) {
			continue
		}

		if m.final != nil {
			m.apply(ctx, m.final(ctx), true)
		}
	}

	return m.err
}

// apply updates m according to act. It returns false if the machine has
// stopped.
func (m *machine) apply(ctx context.Context, act Action, final bool) bool {
	switch act.kind {
	case stay:
		if final {
			m.current = nil
			return false
		}
		return true
	case enter:
		m.current = act.next
		return true
	case stop:
		m.current, m.err = nil, ctx.Err()
		return false
	case fail:
		m.current, m.err = nil, act.err
		return false
	}

	panic("state must return a valid action")
}
