package test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// errStopped is the cancellation cause used when a task is stopped
// explicitly.
var errStopped = errors.New("task stopped")

// stopTimeout is how long a task may take to return after its context is
// canceled.
const stopTimeout = 10 * time.Second

// TaskRunner starts a function in the background. See [RunInBackground].
type TaskRunner struct {
	t  *testing.T
	fn func(context.Context) error
}

// RunInBackground returns a [TaskRunner] that runs fn in its own goroutine.
func RunInBackground(t *testing.T, fn func(context.Context) error) TaskRunner {
	t.Helper()
	return TaskRunner{t, fn}
}

// UntilStopped starts the task. It runs until [Task.Stop] is called or the
// test ends.
func (r TaskRunner) UntilStopped() *Task {
	r.t.Helper()
	return r.start()
}

// UntilTestEnds starts the task and fails the test if the task returns
// before the test ends.
func (r TaskRunner) UntilTestEnds() *Task {
	r.t.Helper()

	task := r.start()

	r.t.Cleanup(func() {
		r.t.Helper()

		select {
		case <-task.done:
			if task.err == nil {
				r.t.Error("background task returned before the test ended")
			} else if task.err != errStopped {
				r.t.Errorf("background task failed before the test ended: %s", task.err)
			}
			return
		default:
		}

		task.Stop()
		if err := task.wait(); err != errStopped {
			r.t.Errorf("background task returned an unexpected error: %v", err)
		}
	})

	return task
}

func (r TaskRunner) start() *Task {
	r.t.Helper()

	ctx, cancel := context.WithCancelCause(context.Background())
	task := &Task{
		t:      r.t,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(task.done)

		err := r.fn(ctx)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			err = context.Cause(ctx)
		}
		task.err = err
	}()

	r.t.Cleanup(func() {
		r.t.Helper()

		cancel(nil)
		if task.wait() == errWaitTimeout {
			r.t.Errorf("background task did not return within %s of being canceled", stopTimeout)
		}
	})

	return task
}

var errWaitTimeout = errors.New("timed out waiting for task to return")

// Task is a function running in the background.
type Task struct {
	t      *testing.T
	cancel context.CancelCauseFunc
	done   chan struct{}
	err    error
}

// Stop cancels the task's context without waiting for it to return.
func (t *Task) Stop() {
	t.cancel(errStopped)
}

// StopAndWait stops the task and waits for it to return. The test fails if
// the task returns anything other than a cancellation error.
func (t *Task) StopAndWait() {
	t.t.Helper()

	t.Stop()

	switch err := t.wait(); err {
	case errStopped:
	case errWaitTimeout:
		t.t.Fatalf("background task did not return within %s of being stopped", stopTimeout)
	default:
		t.t.Fatalf("background task returned an unexpected error: %v", err)
	}
}

// Done returns a channel that is closed when the task returns.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task's error. The test fails if the task is still running.
//
// A task that returns because it was stopped has a nil error.
func (t *Task) Err() error {
	t.t.Helper()

	select {
	case <-t.done:
	default:
		t.t.Fatal("background task has not returned")
	}

	if t.err == errStopped {
		return nil
	}
	return t.err
}

func (t *Task) wait() error {
	timer := time.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-t.done:
		return t.err
	case <-timer.C:
		return errWaitTimeout
	}
}

// FailOnce returns a function that returns err the first time it is called,
// and nil thereafter.
func FailOnce(err error) func() error {
	var called atomic.Bool

	return func() error {
		if called.CompareAndSwap(false, true) {
			return err
		}
		return nil
	}
}
