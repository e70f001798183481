package clock

import (
	"runtime"
	"sync"
	"time"
)

type (
	// Sleeper blocks the calling goroutine for a duration.
	Sleeper interface {
		Sleep(d time.Duration)
	}

	// PreciseSleeper sleeps for all but the last scheduler period of a
	// duration, then yields until the deadline, trading CPU for accuracy.
	PreciseSleeper struct {
		// Clock is the time source. **Defaults to [Real].**
		Clock Clock
		// SchedulerPeriod is the expected granularity of OS sleeps.
		// **Defaults to 8ms.**
		SchedulerPeriod time.Duration
	}

	// MockSleeper advances a [Mock] instead of blocking, recording each
	// sleep.
	MockSleeper struct {
		Clock  *Mock
		sleeps []time.Duration
		mu     sync.Mutex
	}
)

const defaultSchedulerPeriod = 8 * time.Millisecond

func (x PreciseSleeper) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	c := x.Clock
	if c == nil {
		c = Real{}
	}
	period := x.SchedulerPeriod
	if period <= 0 {
		period = defaultSchedulerPeriod
	}
	deadline := c.Now().Add(d)
	if coarse := d - period; coarse > 0 {
		time.Sleep(coarse)
	}
	for c.Now().Before(deadline) {
		runtime.Gosched()
	}
}

func (x *MockSleeper) Sleep(d time.Duration) {
	x.mu.Lock()
	x.sleeps = append(x.sleeps, d)
	x.mu.Unlock()
	if d > 0 {
		x.Clock.Advance(d)
	}
}

// Sleeps returns every requested duration, in order.
func (x *MockSleeper) Sleeps() []time.Duration {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]time.Duration(nil), x.sleeps...)
}
