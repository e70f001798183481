// Package affinity hands out single-core CPU affinity to the OS threads that
// own graphics contexts, spreading them across the cores the process is
// allowed to run on.
package affinity

import (
	"fmt"
	"maps"
	"sync"

	"github.com/joeycumines/go-renderloop/internal/goid"
	"github.com/joeycumines/go-renderloop/internal/logging"
	"github.com/joeycumines/logiface"
)

// Manager tracks how many threads are pinned to each allowed core.
//
// The table is built once, from the process mask, and only the counts change
// afterward. A single Manager should be shared by every dispatcher and pacer
// in the process. Methods are safe for concurrent use.
type Manager struct {
	pinner Pinner
	logger *logiface.Logger[logiface.Event]
	counts map[Mask]int
	// restores are the pending affinity restores per goroutine, most recent
	// allocation last
	restores map[uint64][]func() error
	cores    []Mask
	allowed  Mask
	mu       sync.Mutex
}

// NewManager reads the process mask and returns a Manager with a zero count
// for every allowed core.
func NewManager(opts ...Option) (*Manager, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	allowed, err := cfg.pinner.ProcessMask()
	if err != nil {
		return nil, fmt.Errorf("affinity: read process mask: %w", err)
	}
	if allowed == 0 {
		return nil, ErrEmptyMask
	}
	m := &Manager{
		pinner:   cfg.pinner,
		logger:   cfg.logger,
		counts:   make(map[Mask]int, allowed.Count()),
		restores: make(map[uint64][]func() error),
		cores:    allowed.Bits(),
		allowed:  allowed,
	}
	for _, core := range m.cores {
		m.counts[core] = 0
	}
	m.log().Debug().
		Stringer("allowed", allowed).
		Int("cores", len(m.cores)).
		Log("affinity manager initialised")
	return m, nil
}

// Allowed returns the process mask the manager was built from.
func (m *Manager) Allowed() Mask { return m.allowed }

// Cores returns every allowed core, in ascending order.
func (m *Manager) Cores() []Mask { return append([]Mask(nil), m.cores...) }

// Counts returns a snapshot of the assignment count per core.
func (m *Manager) Counts() map[Mask]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.counts)
}

// AllocateCore selects a core, increments its count, and pins the calling OS
// thread to it, returning the selected core. The caller must hold its thread
// via runtime.LockOSThread, and should release the core with
// [Manager.FreeCore], on the same thread.
//
// A non-zero requested mask selects the lowest core present in both
// requested and the allowed mask. A zero mask selects the least loaded
// allowed core, ties going to the lowest.
//
// Selection and the count update are atomic with respect to other calls.
// The pin is applied outside the lock, and the count is rolled back if it
// fails. If no core matches, the error wraps [ErrNoCoreAvailable].
func (m *Manager) AllocateCore(requested Mask) (Mask, error) {
	m.mu.Lock()
	core := m.selectLocked(requested)
	if core == 0 {
		m.mu.Unlock()
		return 0, &AllocationError{Err: ErrNoCoreAvailable, Requested: requested, Allowed: m.allowed}
	}
	m.counts[core]++
	m.mu.Unlock()

	restore, err := m.pinner.SetThreadMask(core)
	m.mu.Lock()
	if err != nil {
		if m.counts[core] > 0 {
			m.counts[core]--
		}
		m.mu.Unlock()
		return 0, &AllocationError{Err: err, Requested: requested, Allowed: m.allowed, Core: core}
	}
	id := goid.Get()
	m.restores[id] = append(m.restores[id], restore)
	m.mu.Unlock()

	m.log().Debug().
		Stringer("core", core).
		Stringer("requested", requested).
		Log("allocated core")
	return core, nil
}

// MustAllocateCore is [Manager.AllocateCore], but panics on failure.
func (m *Manager) MustAllocateCore(requested Mask) Mask {
	core, err := m.AllocateCore(requested)
	if err != nil {
		panic(err)
	}
	return core
}

func (m *Manager) selectLocked(requested Mask) Mask {
	if requested != 0 {
		return (requested & m.allowed).Lowest()
	}
	var (
		best      Mask
		bestCount int
	)
	for _, core := range m.cores {
		if n := m.counts[core]; best == 0 || n < bestCount {
			best, bestCount = core, n
		}
	}
	return best
}

// FreeCore decrements the count for core (never below zero), and restores
// the calling thread's affinity to what it was before its most recent
// [Manager.AllocateCore]. If the calling thread has no allocation pending
// restore, its affinity is set to the full allowed mask instead.
//
// Unknown cores are logged and ignored, returning an error wrapping
// [ErrUnknownCore]. An error restoring the affinity is returned after the
// count has been updated.
func (m *Manager) FreeCore(core Mask) error {
	id := goid.Get()
	var restore func() error
	m.mu.Lock()
	n, ok := m.counts[core]
	if ok && n > 0 {
		m.counts[core] = n - 1
	}
	if pending := m.restores[id]; ok && len(pending) != 0 {
		restore = pending[len(pending)-1]
		if len(pending) == 1 {
			delete(m.restores, id)
		} else {
			m.restores[id] = pending[:len(pending)-1]
		}
	}
	m.mu.Unlock()

	if !ok {
		m.log().Warning().
			Stringer("core", core).
			Log("free of unknown core ignored")
		return fmt.Errorf("%w: %s", ErrUnknownCore, core)
	}

	if restore == nil {
		_, err := m.pinner.SetThreadMask(m.allowed)
		restore = func() error { return err }
	}
	if err := restore(); err != nil {
		m.log().Err().
			Err(err).
			Stringer("core", core).
			Log("failed to restore thread affinity")
		return fmt.Errorf("affinity: restore thread affinity: %w", err)
	}

	m.log().Debug().
		Stringer("core", core).
		Log("freed core")
	return nil
}

func (m *Manager) log() *logiface.Logger[logiface.Event] {
	return logging.Or(m.logger)
}
