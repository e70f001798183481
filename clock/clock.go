// Package clock provides the time sources used to pace frames, with
// controllable implementations for tests.
package clock

import (
	"sync"
	"time"
)

type (
	// Clock reports the current time.
	Clock interface {
		Now() time.Time
	}

	// Real is the system clock, with monotonic readings.
	Real struct{}

	// Mock is a manually advanced clock, safe for concurrent use.
	Mock struct {
		now time.Time
		mu  sync.Mutex
	}
)

func (Real) Now() time.Time { return time.Now() }

// NewMock returns a Mock starting at now.
func NewMock(now time.Time) *Mock {
	return &Mock{now: now}
}

func (x *Mock) Now() time.Time {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.now
}

// Set moves the clock to t, which may be in the past.
func (x *Mock) Set(t time.Time) {
	x.mu.Lock()
	x.now = t
	x.mu.Unlock()
}

// Advance moves the clock forward by d, returning the new time.
func (x *Mock) Advance(d time.Duration) time.Time {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.now = x.now.Add(d)
	return x.now
}
