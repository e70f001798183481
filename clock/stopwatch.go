package clock

import (
	"sync"
	"time"
)

// Stopwatch measures elapsed time, accumulating across start/stop cycles.
// Safe for concurrent use.
type Stopwatch struct {
	clock   Clock
	started time.Time
	elapsed time.Duration
	mu      sync.Mutex
	running bool
}

// NewStopwatch returns a stopped, zeroed stopwatch reading c. A nil c uses
// [Real].
func NewStopwatch(c Clock) *Stopwatch {
	if c == nil {
		c = Real{}
	}
	return &Stopwatch{clock: c}
}

// Start resumes measuring. Starting a running stopwatch is a no-op.
func (x *Stopwatch) Start() {
	x.mu.Lock()
	if !x.running {
		x.started = x.clock.Now()
		x.running = true
	}
	x.mu.Unlock()
}

// Stop pauses measuring, retaining the elapsed time.
func (x *Stopwatch) Stop() {
	x.mu.Lock()
	if x.running {
		x.elapsed += x.clock.Now().Sub(x.started)
		x.running = false
	}
	x.mu.Unlock()
}

// Reset stops the stopwatch and zeroes the elapsed time.
func (x *Stopwatch) Reset() {
	x.mu.Lock()
	x.elapsed = 0
	x.running = false
	x.mu.Unlock()
}

// Restart zeroes the elapsed time and starts measuring.
func (x *Stopwatch) Restart() {
	x.mu.Lock()
	x.elapsed = 0
	x.started = x.clock.Now()
	x.running = true
	x.mu.Unlock()
}

// Running reports whether the stopwatch is measuring.
func (x *Stopwatch) Running() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.running
}

// Elapsed returns the total measured time.
func (x *Stopwatch) Elapsed() time.Duration {
	x.mu.Lock()
	defer x.mu.Unlock()
	d := x.elapsed
	if x.running {
		d += x.clock.Now().Sub(x.started)
	}
	return d
}
