// Package signaling provides channel-based notification primitives that are
// usable as zero values.
package signaling

import "sync"

// chanOnce lazily allocates a channel with the given buffer size.
type chanOnce struct {
	once sync.Once
	ch   chan struct{}
}

func (c *chanOnce) get(size int) chan struct{} {
	c.once.Do(func() {
		c.ch = make(chan struct{}, size)
	})
	return c.ch
}

// Event is an edge-triggered signal. Multiple calls to Signal between reads
// coalesce into a single notification.
type Event struct {
	c chanOnce
}

// Signaled returns a channel that is readable if the event has occurred since
// it was last read.
func (e *Event) Signaled() <-chan struct{} {
	return e.c.get(1)
}

// Signal records an occurrence of the event.
func (e *Event) Signal() {
	select {
	case e.c.get(1) <- struct{}{}:
	default:
	}
}

// Latch is a level-triggered signal. Once set it stays set.
type Latch struct {
	c    chanOnce
	once sync.Once
}

// Signaled returns a channel that is closed once the latch is set.
func (l *Latch) Signaled() <-chan struct{} {
	return l.c.get(0)
}

// Signal sets the latch. It is safe to call more than once.
func (l *Latch) Signal() {
	l.once.Do(func() {
		close(l.c.get(0))
	})
}

// IsSet reports whether the latch has been set.
func (l *Latch) IsSet() bool {
	select {
	case <-l.Signaled():
		return true
	default:
		return false
	}
}
