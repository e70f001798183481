package affinity

import (
	"sync"

	"github.com/joeycumines/go-renderloop/internal/goid"
)

type (
	// Pinner is the OS affinity primitive used by [Manager].
	//
	// SetThreadMask applies to the calling OS thread, so callers must hold
	// it via runtime.LockOSThread.
	Pinner interface {
		// ProcessMask returns the set of cores the process may run on.
		ProcessMask() (Mask, error)
		// SetThreadMask restricts the calling thread to mask. On success, it
		// returns a func that restores the affinity the thread had before the
		// call, as the OS reported it, including any CPUs a [Mask] cannot
		// represent. The restore func must be called on the same thread.
		SetThreadMask(mask Mask) (restore func() error, err error)
	}

	// StaticPinner reports a fixed process mask, and records pin requests
	// instead of applying them. Useful to simulate topologies.
	//
	// The affinity of each goroutine is tracked separately, starting at Mask.
	// Restores are recorded as pins of the previous mask.
	StaticPinner struct {
		// Err, if set, is returned by SetThreadMask.
		Err     error
		threads map[uint64]Mask
		pins    []Mask
		Mask    Mask
		mu      sync.Mutex
	}
)

// SystemPinner returns the [Pinner] for the host OS.
func SystemPinner() Pinner { return systemPinner{} }

func (x *StaticPinner) ProcessMask() (Mask, error) {
	return x.Mask, nil
}

func (x *StaticPinner) SetThreadMask(mask Mask) (func() error, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.Err != nil {
		return nil, x.Err
	}
	id := goid.Get()
	prev := x.threadMaskLocked(id)
	x.setLocked(id, mask)
	return func() error {
		x.mu.Lock()
		defer x.mu.Unlock()
		x.setLocked(id, prev)
		return nil
	}, nil
}

// ThreadMask returns the mask last applied to the calling goroutine, or Mask
// if there is none.
func (x *StaticPinner) ThreadMask() Mask {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.threadMaskLocked(goid.Get())
}

func (x *StaticPinner) threadMaskLocked(id uint64) Mask {
	if m, ok := x.threads[id]; ok {
		return m
	}
	return x.Mask
}

func (x *StaticPinner) setLocked(id uint64, mask Mask) {
	if x.threads == nil {
		x.threads = make(map[uint64]Mask)
	}
	x.threads[id] = mask
	x.pins = append(x.pins, mask)
}

// Pins returns every mask applied so far, in order.
func (x *StaticPinner) Pins() []Mask {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]Mask(nil), x.pins...)
}
