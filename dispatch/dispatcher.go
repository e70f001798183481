// Package dispatch runs work on a dedicated OS thread that holds a graphics
// context current, giving many goroutines serialized access to it.
//
// Each [Dispatcher] owns one thread, pinned to a core allocated from an
// [affinity.Manager]. Actions submitted via [Dispatcher.Invoke] run on that
// thread in submission order, one at a time.
package dispatch

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-renderloop/affinity"
	"github.com/joeycumines/go-renderloop/gfx"
	"github.com/joeycumines/go-renderloop/internal/goid"
	"github.com/joeycumines/go-renderloop/internal/logging"
	"github.com/joeycumines/go-renderloop/internal/mre"
	"github.com/joeycumines/logiface"
)

// Dispatcher executes actions on a context owning thread. Methods are safe
// for concurrent use, and misuse (nil receiver, nil action, use after close)
// is logged rather than panicking.
type Dispatcher struct {
	err      error
	gctx     gfx.Context
	cores    *affinity.Manager
	logger   *logiface.Logger[logiface.Event]
	wake     *mre.Event
	done     chan struct{}
	queue    []func()
	name     string
	owner    goid.Owner
	core     atomic.Uint64
	mask     affinity.Mask
	policy   PanicPolicy
	mu       sync.Mutex
	closed   bool // no longer accepting work
	draining bool // exit once the queue is empty
	aborted  bool // exit after the in-flight action
}

var (
	misuse = logging.NewThrottle()

	// closedChan is the Done channel of a nil dispatcher.
	closedChan = func() chan struct{} {
		ch := make(chan struct{})
		close(ch)
		return ch
	}()
)

// New starts a dispatcher for gctx. The calling thread releases gctx before
// the owner thread is started, and the owner thread makes it current once
// pinned.
//
// If the owner thread cannot be pinned, it exits without running anything:
// the failure is logged, [Dispatcher.Done] is closed, and [Dispatcher.Err]
// reports it.
func New(gctx gfx.Context, cores *affinity.Manager, opts ...Option) (*Dispatcher, error) {
	if gctx == nil {
		return nil, gfx.ErrNoContext
	}
	if cores == nil {
		return nil, ErrNilManager
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	x := &Dispatcher{
		gctx:   gctx,
		cores:  cores,
		logger: cfg.logger,
		wake:   mre.New(false),
		done:   make(chan struct{}),
		name:   cfg.name,
		mask:   cfg.mask,
		policy: cfg.policy,
	}

	if err := gctx.MakeNoneCurrent(); err != nil {
		x.log().Warning().
			Str("dispatcher", x.name).
			Err(err).
			Log("failed to release context on constructing thread")
	}

	go x.run()

	return x, nil
}

// Invoke appends fn to the queue, waking the owner thread if it is idle. It
// never blocks on, or reports the outcome of, fn.
func (x *Dispatcher) Invoke(fn func()) {
	if x == nil {
		reportMisuse(nil, "", "invoke on nil dispatcher ignored")
		return
	}
	if fn == nil {
		reportMisuse(x.log(), x.name, "invoke of nil action ignored")
		return
	}
	if !x.enqueue(fn) {
		reportMisuse(x.log(), x.name, "invoke on closed dispatcher ignored")
	}
}

// InvokeWait submits fn, then blocks until it has run, or ctx is done. A
// panic in fn is returned as a [*PanicError], after being handled per the
// configured [PanicPolicy].
//
// It returns [ErrReentrant] if called from the owner thread, and
// [ErrClosed] if the dispatcher stops before fn runs.
func (x *Dispatcher) InvokeWait(ctx context.Context, fn func()) error {
	if x == nil {
		return ErrClosed
	}
	if fn == nil {
		return ErrNilAction
	}
	if x.owner.IsCurrent() {
		return ErrReentrant
	}

	result := make(chan error, 1)
	if !x.enqueue(func() {
		var ok bool
		defer func() {
			if ok {
				result <- nil
				return
			}
			r := recover()
			result <- &PanicError{Value: r, Stack: debug.Stack()}
			panic(r)
		}()
		fn()
		ok = true
	}) {
		return ErrClosed
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-x.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrClosed
		}
	}
}

func (x *Dispatcher) enqueue(fn func()) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return false
	}
	x.queue = append(x.queue, fn)
	x.wake.Set()
	return true
}

// Shutdown stops accepting work, and waits for the owner thread to run the
// remaining queue, release the context and free its core. It returns
// ctx.Err() if ctx is done first, in which case the owner thread continues
// to drain in the background.
//
// Shutdown is idempotent, and may be called concurrently with Close. It
// returns [ErrReentrant] if called from the owner thread.
func (x *Dispatcher) Shutdown(ctx context.Context) error {
	if x == nil {
		return ErrClosed
	}
	if x.owner.IsCurrent() {
		return ErrReentrant
	}
	x.mu.Lock()
	x.closed = true
	x.draining = true
	x.wake.Set()
	x.mu.Unlock()

	select {
	case <-x.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, discards the queue, and waits for the owner
// thread to finish its in-flight action and exit. Called from an action, it
// returns without waiting, and the owner thread exits once that action
// returns. Close is idempotent.
func (x *Dispatcher) Close() error {
	if x == nil {
		return ErrClosed
	}
	x.mu.Lock()
	discarded := len(x.queue)
	x.closed = true
	x.aborted = true
	x.queue = nil
	x.wake.Set()
	x.mu.Unlock()

	if discarded != 0 {
		x.log().Info().
			Str("dispatcher", x.name).
			Int("discarded", discarded).
			Log("dispatcher closed with queued actions")
	}

	if !x.owner.IsCurrent() {
		<-x.done
	}
	return nil
}

// Done returns a channel that is closed once the owner thread has exited.
func (x *Dispatcher) Done() <-chan struct{} {
	if x == nil {
		return closedChan
	}
	return x.done
}

// Err returns the reason the owner thread exited, which is nil for a normal
// shutdown, or if it is still running.
func (x *Dispatcher) Err() error {
	if x == nil {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.err
}

// Core returns the core the owner thread is pinned to, or 0 if it is not
// (yet, or any longer) pinned.
func (x *Dispatcher) Core() affinity.Mask {
	if x == nil {
		return 0
	}
	return affinity.Mask(x.core.Load())
}

// Pending returns the number of queued actions, excluding any in flight.
func (x *Dispatcher) Pending() int {
	if x == nil {
		return 0
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.queue)
}

// Name returns the name attached to log events.
func (x *Dispatcher) Name() string {
	if x == nil {
		return ""
	}
	return x.name
}

func (x *Dispatcher) run() {
	runtime.LockOSThread()
	x.owner.Claim()
	defer x.owner.Release()
	defer close(x.done)

	core, err := x.cores.AllocateCore(x.mask)
	if err != nil {
		x.log().Crit().
			Str("dispatcher", x.name).
			Err(err).
			Log("failed to allocate core, dispatcher will not run")
		x.fail(err)
		// the thread may be partially pinned, let it die with the goroutine
		return
	}
	x.core.Store(uint64(core))

	defer func() {
		x.core.Store(0)
		// a thread left pinned to one core must not return to the scheduler
		if err := x.cores.FreeCore(core); err == nil {
			runtime.UnlockOSThread()
		}
	}()

	x.log().Info().
		Str("dispatcher", x.name).
		Stringer("core", core).
		Log("dispatcher started")

	x.makeCurrent()
	defer x.releaseContext()

	for {
		<-x.wake.C()
		x.makeCurrent()
		if !x.drain() {
			break
		}
	}

	x.log().Info().
		Str("dispatcher", x.name).
		Log("dispatcher stopped")
}

// drain runs queued actions until the queue is empty, returning false if the
// owner thread should exit.
func (x *Dispatcher) drain() bool {
	for {
		x.mu.Lock()
		if x.aborted {
			x.mu.Unlock()
			return false
		}
		if len(x.queue) == 0 {
			x.wake.Reset()
			draining := x.draining
			x.mu.Unlock()
			return !draining
		}
		fn := x.queue[0]
		x.queue[0] = nil
		x.queue = x.queue[1:]
		x.mu.Unlock()

		if !x.execute(fn) {
			return false
		}
	}
}

// execute runs fn, applying the panic policy, and returning false if the
// owner thread must exit.
func (x *Dispatcher) execute(fn func()) (ok bool) {
	defer func() {
		if ok {
			return
		}
		r := recover()
		perr := &PanicError{Value: r, Stack: debug.Stack()}
		x.log().Err().
			Str("dispatcher", x.name).
			Str("policy", x.policy.String()).
			Err(perr).
			Log("action panicked")
		if x.policy == PanicTerminate {
			x.mu.Lock()
			x.closed = true
			x.aborted = true
			x.queue = nil
			x.mu.Unlock()
			x.fail(perr)
			return
		}
		ok = true
	}()
	fn()
	return true
}

func (x *Dispatcher) fail(err error) {
	x.mu.Lock()
	x.closed = true
	if x.err == nil {
		x.err = err
	}
	x.queue = nil
	x.mu.Unlock()
}

func (x *Dispatcher) makeCurrent() {
	if err := x.gctx.MakeCurrent(); err != nil {
		x.log().Warning().
			Str("dispatcher", x.name).
			Err(err).
			Log("failed to make context current")
	}
}

func (x *Dispatcher) releaseContext() {
	if err := x.gctx.MakeNoneCurrent(); err != nil {
		x.log().Warning().
			Str("dispatcher", x.name).
			Err(err).
			Log("failed to release context")
	}
}

func (x *Dispatcher) log() *logiface.Logger[logiface.Event] {
	if x == nil {
		return logging.Default()
	}
	return logging.Or(x.logger)
}

func reportMisuse(l *logiface.Logger[logiface.Event], name, msg string) {
	if !misuse.Allow(msg) {
		return
	}
	if l == nil {
		l = logging.Default()
	}
	l.Err().
		Str("dispatcher", name).
		Log(msg)
}
