package test

import (
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"google.golang.org/protobuf/testing/protocmp"
)

// TestingT is the subset of [testing.TB] used by this package.
type TestingT interface {
	Helper()
	Cleanup(func())
	Log(...any)
	Fatal(...any)
	Fatalf(string, ...any)
	Error(...any)
	Errorf(string, ...any)
}

// FailerT is the subset of [testing.TB] needed to fail a test. It is also
// satisfied by *rapid.T.
type FailerT interface {
	Helper()
	Log(...any)
	Fatal(...any)
}

// Expect fails the test if got and want differ, after applying each of the
// transforms to both values.
func Expect[T any](
	t FailerT,
	failMessage string,
	got, want T,
	transforms ...func(T) T,
) {
	t.Helper()

	for _, fn := range transforms {
		got, want = fn(got), fn(want)
	}

	diff := cmp.Diff(
		want,
		got,
		protocmp.Transform(),
		cmpopts.EquateEmpty(),
		cmpopts.EquateErrors(),
	)
	if diff != "" {
		t.Log(failMessage)
		t.Fatal(diff)
	}
}

// ExpectChannelToReceive waits for a value on ch and compares it to want.
func ExpectChannelToReceive[T any](
	t TestingT,
	ch <-chan T,
	want T,
	transforms ...func(T) T,
) {
	t.Helper()

	ctx := contextOf(t)

	select {
	case <-ctx.Done():
		t.Fatalf("no value received on channel: %s", ctx.Err())
	case got, ok := <-ch:
		if !ok {
			t.Fatal("channel closed while expecting to receive a value")
		}
		Expect(t, "channel received an unexpected value", got, want, transforms...)
	}
}

// ExpectChannelToClose waits for ch to be closed.
func ExpectChannelToClose[T any](t TestingT, ch <-chan T) {
	t.Helper()

	ctx := contextOf(t)

	select {
	case <-ctx.Done():
		t.Fatalf("channel was not closed: %s", ctx.Err())
	case v, ok := <-ch:
		if ok {
			t.Fatalf("channel received %v while expecting it to be closed", v)
		}
	}
}

// ExpectChannelToBlockForDuration fails the test if a value is received on
// ch, or ch is closed, before d elapses.
func ExpectChannelToBlockForDuration[T any](t TestingT, d time.Duration, ch <-chan T) {
	t.Helper()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case v, ok := <-ch:
		if ok {
			t.Fatalf("channel received %v while expecting it to block", v)
		}
		t.Fatal("channel closed while expecting it to block")
	}
}
