package test

import (
	"context"
	"time"
)

// ContextWithTimeout returns a context that is cancelled when the test completes.
func ContextWithTimeout(
	t TestingT,
	timeout time.Duration,
) (context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)

	return ctx, cancel
}

// contextOf returns a context that is cancelled when the test completes, or
// after a default timeout.
func contextOf(t TestingT) context.Context {
	t.Helper()

	ctx, _ := ContextWithTimeout(t, defaultTimeout)
	return ctx
}

const defaultTimeout = 5 * time.Second
