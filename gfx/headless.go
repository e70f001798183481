package gfx

import (
	"sync"
)

type (
	// Headless is a Context without a real graphics API. It records how it
	// is driven, so it doubles as a test double. Safe for concurrent use.
	Headless struct {
		err      error
		stats    HeadlessStats
		area     Rect
		current  int
		mu       sync.Mutex
		api      API
		vsync    VSyncMode
		isBound  bool
		interval int
	}

	// HeadlessStats is a snapshot of how a [Headless] context was driven.
	HeadlessStats struct {
		// Intervals lists each swap interval set, in order.
		Intervals []int
		// Threads lists the OS thread id of each MakeCurrent, in order.
		// Thread ids are only available on linux, and are 0 elsewhere.
		Threads         []int
		MakeCurrent     int
		MakeNoneCurrent int
		Swaps           int
	}
)

var _ Context = (*Headless)(nil)

// NewHeadless returns a headless context reporting [APINone] and [VSyncOff],
// with a drawable area of width x height.
func NewHeadless(width, height int) *Headless {
	return &Headless{area: Box(width, height), current: -1}
}

// WithAPI sets the reported API, returning the receiver. It is intended for
// simulating real APIs in tests, and must be called before the context is
// shared.
func (x *Headless) WithAPI(api API) *Headless {
	x.api = api
	return x
}

// WithVSync sets the reported vsync mode, returning the receiver. It must be
// called before the context is shared.
func (x *Headless) WithVSync(mode VSyncMode) *Headless {
	x.vsync = mode
	return x
}

// SetErr makes MakeCurrent and SwapBuffers fail with err, nil restoring
// normal behaviour.
func (x *Headless) SetErr(err error) {
	x.mu.Lock()
	x.err = err
	x.mu.Unlock()
}

func (x *Headless) MakeCurrent() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	tid := threadID()
	x.stats.MakeCurrent++
	x.stats.Threads = append(x.stats.Threads, tid)
	if x.err != nil {
		return x.err
	}
	x.isBound = true
	x.current = tid
	return nil
}

func (x *Headless) MakeNoneCurrent() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.stats.MakeNoneCurrent++
	if x.isBound && x.current == threadID() {
		x.isBound = false
		x.current = -1
	}
	return nil
}

func (x *Headless) SwapBuffers() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.stats.Swaps++
	return x.err
}

func (x *Headless) API() API { return x.api }

func (x *Headless) VSync() VSyncMode { return x.vsync }

func (x *Headless) SetSwapInterval(interval int) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.interval = interval
	x.stats.Intervals = append(x.stats.Intervals, interval)
	return nil
}

// SwapInterval returns the most recently set swap interval.
func (x *Headless) SwapInterval() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.interval
}

func (x *Headless) DrawableArea() Rect {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.area
}

// Resize changes the drawable area.
func (x *Headless) Resize(width, height int) {
	x.mu.Lock()
	x.area = Box(width, height)
	x.mu.Unlock()
}

// Current returns the thread id the context is bound to, and whether it is
// bound at all.
func (x *Headless) Current() (int, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.current, x.isBound
}

// Stats returns a snapshot of the recorded calls.
func (x *Headless) Stats() HeadlessStats {
	x.mu.Lock()
	defer x.mu.Unlock()
	s := x.stats
	s.Intervals = append([]int(nil), s.Intervals...)
	s.Threads = append([]int(nil), s.Threads...)
	return s
}
