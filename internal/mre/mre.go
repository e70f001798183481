// Package mre implements a manual-reset event: a latch that stays signalled
// until it is explicitly reset.
package mre

import (
	"context"
	"sync"
)

// Event is a manual-reset event. The zero value is not usable, see [New].
type Event struct {
	ch  chan struct{}
	mu  sync.Mutex
	set bool
}

// New returns an event, signalled if initial is true.
func New(initial bool) *Event {
	e := &Event{ch: make(chan struct{})}
	if initial {
		e.set = true
		close(e.ch)
	}
	return e
}

// Set signals the event, releasing all current and future waiters until
// [Event.Reset] is called. Setting a signalled event is a no-op.
func (e *Event) Set() {
	e.mu.Lock()
	if !e.set {
		e.set = true
		close(e.ch)
	}
	e.mu.Unlock()
}

// Reset clears the event. Resetting an unsignalled event is a no-op.
func (e *Event) Reset() {
	e.mu.Lock()
	if e.set {
		e.set = false
		e.ch = make(chan struct{})
	}
	e.mu.Unlock()
}

// IsSet reports whether the event is currently signalled.
func (e *Event) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set
}

// C returns a channel that is closed once the event is signalled. The
// channel must be obtained again after each wait, as a reset replaces it.
func (e *Event) C() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ch
}

// Wait blocks until the event is signalled, or ctx is done.
func (e *Event) Wait(ctx context.Context) error {
	select {
	case <-e.C():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
