package fsm_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/saastack/eventing/internal/fsm"
	"github.com/saastack/eventing/internal/test"
)

func TestStart(t *testing.T) {
	t.Parallel()

	t.Run("it transitions between states until stopped", func(t *testing.T) {
		t.Parallel()

		var visited []string

		var first, second State
		first = func(context.Context) Action {
			visited = append(visited, "first")
			return EnterState(second)
		}
		second = func(context.Context) Action {
			visited = append(visited, "second")
			if len(visited) < 4 {
				return EnterState(first)
			}
			return Stop()
		}

		if err := Start(context.Background(), first); err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected states", visited, []string{"first", "second", "first", "second"})
	})

	t.Run("it returns the context error when stopped after cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Start(ctx, func(context.Context) Action {
			return Stop()
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("it returns the error that caused it to fail", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("<error>")

		err := Start(context.Background(), func(context.Context) Action {
			return Fail(cause)
		})
		if err != cause {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("it enters the final state without discarding the error", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("<error>")
		finalized := false

		err := Start(
			context.Background(),
			func(context.Context) Action {
				return Fail(cause)
			},
			WithFinalState(func(context.Context) Action {
				finalized = true
				return StayInCurrentState()
			}),
		)

		if err != cause {
			t.Fatalf("unexpected error: %v", err)
		}

		if !finalized {
			t.Fatal("expected the final state to be entered")
		}
	})

	t.Run("it keeps running if the final state enters another state", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		var initial State
		initial = func(context.Context) Action {
			attempts++
			return Fail(errors.New("<error>"))
		}

		err := Start(
			context.Background(),
			initial,
			WithFinalState(func(context.Context) Action {
				if attempts < 3 {
					return EnterState(initial)
				}
				return Stop()
			}),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		test.Expect(t, "unexpected number of attempts", attempts, 3)
	})

	t.Run("it panics if a state returns the zero action", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic")
			}
		}()

		Start(context.Background(), func(context.Context) Action { //nolint:errcheck
			return Action{}
		})
	})
}
