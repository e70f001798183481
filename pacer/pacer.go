// Package pacer drives a graphics context through a frame-paced update and
// render loop, on a dedicated OS thread.
//
// A [Pacer] measures the time since its last update, and runs an update
// once that reaches the target period derived from the update frequency.
// Updates whose work overruns the period are tracked by a saturating
// counter, and once enough accumulate the loop reports itself as running
// slowly, which disables the vertical sync wait for contexts configured for
// adaptive vsync.
package pacer

import (
	"context"
	"errors"
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-renderloop/affinity"
	"github.com/joeycumines/go-renderloop/clock"
	"github.com/joeycumines/go-renderloop/dispatch"
	"github.com/joeycumines/go-renderloop/gfx"
	"github.com/joeycumines/go-renderloop/internal/goid"
	"github.com/joeycumines/go-renderloop/internal/logging"
	"github.com/joeycumines/go-renderloop/internal/mre"
	"github.com/joeycumines/go-renderloop/internal/timerres"
	"github.com/joeycumines/logiface"
)

var (
	// ErrNilHandler is returned by [New] without a handler.
	ErrNilHandler = errors.New("pacer: handler is nil")

	// ErrStopped is returned by [Pacer.Shutdown] when called from one of the
	// pacer's own callbacks, and by blocking calls on a nil pacer.
	ErrStopped = errors.New("pacer: pacer is stopped")
)

var (
	misuse = logging.NewThrottle()

	// closedChan is the Done channel of a nil pacer.
	closedChan = func() chan struct{} {
		ch := make(chan struct{})
		close(ch)
		return ch
	}()
)

// Pacer runs a [Handler] at a target update frequency. Methods are safe for
// concurrent use, and on a nil receiver they report zero values, or log the
// misuse, rather than panicking. Callbacks run on the owner thread, and must not block on
// the pacer itself.
type Pacer struct {
	err         error
	gctx        gfx.Context
	cores       *affinity.Manager
	handler     Handler
	logger      *logiface.Logger[logiface.Event]
	sleeper     clock.Sleeper
	watch       *clock.Stopwatch
	wake        *mre.Event
	stop        chan struct{}
	done        chan struct{}
	name        string
	owner       goid.Owner
	counter     slowCounter
	frequency   atomic.Uint64
	updateTime  atomic.Int64
	frames      atomic.Uint64
	core        atomic.Uint64
	timerPeriod time.Duration
	mask        affinity.Mask
	stopOnce    sync.Once
	mu          sync.Mutex
	policy      dispatch.PanicPolicy
	paused      atomic.Bool
	stopped     atomic.Bool
	slow        atomic.Bool
}

// New starts a pacer for gctx, in the paused state. The calling thread
// releases gctx, and the owner thread makes it current once pinned, then
// calls [Handler.Initialized] and waits for [Pacer.ResumeLoop].
//
// If the owner thread cannot be pinned it exits without calling the
// handler: the failure is logged, the pacer is stopped, and [Pacer.Err]
// reports it.
func New(gctx gfx.Context, cores *affinity.Manager, handler Handler, opts ...Option) (*Pacer, error) {
	x, err := newPacer(gctx, cores, handler, opts)
	if err != nil {
		return nil, err
	}
	if err := gctx.MakeNoneCurrent(); err != nil {
		x.log().Warning().
			Str("pacer", x.name).
			Err(err).
			Log("failed to release context on constructing thread")
	}
	go x.run()
	return x, nil
}

func newPacer(gctx gfx.Context, cores *affinity.Manager, handler Handler, opts []Option) (*Pacer, error) {
	if gctx == nil {
		return nil, gfx.ErrNoContext
	}
	if cores == nil {
		return nil, dispatch.ErrNilManager
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	x := &Pacer{
		gctx:        gctx,
		cores:       cores,
		handler:     handler,
		logger:      cfg.logger,
		sleeper:     cfg.sleeper,
		watch:       clock.NewStopwatch(cfg.clock),
		wake:        mre.New(false),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		name:        cfg.name,
		timerPeriod: cfg.timerPeriod,
		mask:        cfg.mask,
		policy:      cfg.policy,
	}
	x.paused.Store(true)
	x.frequency.Store(math.Float64bits(cfg.frequency))
	return x, nil
}

// ResumeLoop starts, or resumes, pacing frames. It never blocks.
func (x *Pacer) ResumeLoop() {
	if x == nil {
		x.reportMisuse("resume of nil pacer ignored")
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.stopped.Load() {
		x.reportMisuse("resume of stopped pacer ignored")
		return
	}
	x.paused.Store(false)
	x.wake.Set()
}

// PauseLoop pauses pacing after the current iteration. It never blocks, and
// never interrupts an in-flight callback.
func (x *Pacer) PauseLoop() {
	if x == nil {
		x.reportMisuse("pause of nil pacer ignored")
		return
	}
	x.mu.Lock()
	x.paused.Store(true)
	x.wake.Reset()
	x.mu.Unlock()
}

// Stop requests the loop exit, without waiting. The owner thread observes it
// at the top of its next iteration, at most one period later. Stop is
// idempotent.
func (x *Pacer) Stop() {
	if x == nil {
		return
	}
	x.stopOnce.Do(func() {
		x.mu.Lock()
		x.paused.Store(true)
		x.wake.Reset()
		x.stopped.Store(true)
		x.mu.Unlock()
		close(x.stop)
	})
}

// Shutdown stops the loop, and waits for the owner thread to release the
// context and free its core, or for ctx to be done. Called from a callback,
// it returns [ErrStopped] without stopping anything.
func (x *Pacer) Shutdown(ctx context.Context) error {
	if x == nil {
		return ErrStopped
	}
	if x.owner.IsCurrent() {
		return ErrStopped
	}
	x.Stop()
	select {
	case <-x.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop, and waits for the owner thread to exit, unless
// called from a callback. Close is idempotent.
func (x *Pacer) Close() error {
	if x == nil {
		return ErrStopped
	}
	x.Stop()
	if !x.owner.IsCurrent() {
		<-x.done
	}
	return nil
}

// Done returns a channel that is closed once the owner thread has exited.
func (x *Pacer) Done() <-chan struct{} {
	if x == nil {
		return closedChan
	}
	return x.done
}

// Err returns the reason the owner thread exited abnormally, or nil.
func (x *Pacer) Err() error {
	if x == nil {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.err
}

// State returns the current lifecycle state.
func (x *Pacer) State() State {
	switch {
	case x == nil:
		return StateStopped
	case x.stopped.Load():
		return StateStopped
	case x.paused.Load():
		return StatePaused
	default:
		return StateRunning
	}
}

// SetUpdateFrequency sets the target update frequency, in Hz, clamped per
// [ClampFrequency], and returns the stored value. It takes effect from the
// next iteration.
func (x *Pacer) SetUpdateFrequency(hz float64) float64 {
	v := ClampFrequency(hz)
	if x == nil {
		x.reportMisuse("frequency change of nil pacer ignored")
		return 0
	}
	if v != hz {
		x.log().Notice().
			Str("pacer", x.name).
			Float64("requested", hz).
			Float64("frequency", v).
			Log("update frequency clamped")
	}
	x.frequency.Store(math.Float64bits(v))
	return v
}

// UpdateFrequency returns the target update frequency, in Hz, 0 meaning
// uncapped.
func (x *Pacer) UpdateFrequency() float64 {
	if x == nil {
		return 0
	}
	return math.Float64frombits(x.frequency.Load())
}

// TargetPeriod returns the period derived from the update frequency, 0
// meaning uncapped.
func (x *Pacer) TargetPeriod() time.Duration { return periodOf(x.UpdateFrequency()) }

// IsRunningSlowly reports whether enough recent updates overran the target
// period.
func (x *Pacer) IsRunningSlowly() bool { return x != nil && x.slow.Load() }

// UpdateTime returns the elapsed time passed to the most recent update.
func (x *Pacer) UpdateTime() time.Duration {
	if x == nil {
		return 0
	}
	return time.Duration(x.updateTime.Load())
}

// ResetTimeSinceLastUpdate restarts the measurement of time since the last
// update, e.g. after a resize or a long pause.
func (x *Pacer) ResetTimeSinceLastUpdate() {
	if x == nil {
		x.reportMisuse("reset of nil pacer ignored")
		return
	}
	x.watch.Restart()
}

// Frames returns the number of processed updates.
func (x *Pacer) Frames() uint64 {
	if x == nil {
		return 0
	}
	return x.frames.Load()
}

// Core returns the core the owner thread is pinned to, or 0.
func (x *Pacer) Core() affinity.Mask {
	if x == nil {
		return 0
	}
	return affinity.Mask(x.core.Load())
}

// Name returns the name attached to log events.
func (x *Pacer) Name() string {
	if x == nil {
		return ""
	}
	return x.name
}

func (x *Pacer) run() {
	runtime.LockOSThread()
	x.owner.Claim()
	defer x.owner.Release()
	defer close(x.done)

	core, err := x.cores.AllocateCore(x.mask)
	if err != nil {
		x.log().Crit().
			Str("pacer", x.name).
			Err(err).
			Log("failed to allocate core, pacer will not run")
		x.fail(err)
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

	x.makeCurrent()
	defer x.releaseContext()

	if restore, err := timerres.Begin(x.timerPeriod); err != nil {
		x.log().Warning().
			Str("pacer", x.name).
			Err(err).
			Log("failed to raise timer resolution")
	} else {
		defer restore()
		if timerres.Supported {
			x.log().Debug().
				Str("pacer", x.name).
				Dur("period", x.timerPeriod).
				Log("timer resolution raised")
		}
	}

	x.log().Info().
		Str("pacer", x.name).
		Stringer("core", core).
		Float64("frequency", x.UpdateFrequency()).
		Log("pacer started")

	if !x.call(x.handler.Initialized) {
		return
	}

	for !x.stopped.Load() {
		select {
		case <-x.wake.C():
		case <-x.stop:
		}
		x.watch.Start()
		for !x.paused.Load() && !x.stopped.Load() {
			if !x.iterate() {
				return
			}
		}
	}

	x.log().Info().
		Str("pacer", x.name).
		Uint64("frames", x.Frames()).
		Log("pacer stopped")
}

// iterate runs one pass of the loop, returning false if the owner thread
// must exit.
func (x *Pacer) iterate() bool {
	x.makeCurrent()

	elapsed := x.watch.Elapsed()
	period := x.TargetPeriod()

	if period == 0 || elapsed >= period {
		x.watch.Restart()
		x.updateTime.Store(int64(elapsed))

		event := FrameEvent{Elapsed: elapsed, Area: x.gctx.DrawableArea()}
		if !x.call(func() { x.handler.Update(event) }) ||
			!x.call(func() { x.handler.Render(event) }) {
			return false
		}
		x.frames.Add(1)

		work := x.watch.Elapsed()
		slow := x.counter.observe(work > period)
		if slow != x.slow.Load() {
			x.log().Debug().
				Str("pacer", x.name).
				Bool("slow", slow).
				Dur("work", work).
				Dur("period", period).
				Log("running slowly changed")
		}
		x.slow.Store(slow)

		if x.gctx.API() != gfx.APINone && x.gctx.VSync() == gfx.VSyncAdaptive {
			interval := 1
			if slow {
				interval = 0
			}
			if err := x.gctx.SetSwapInterval(interval); err != nil {
				x.log().Warning().
					Str("pacer", x.name).
					Err(err).
					Log("failed to set swap interval")
			}
		}
	}

	if remaining := period - x.watch.Elapsed(); remaining > 0 {
		x.sleeper.Sleep(remaining)
	}

	if err := x.gctx.SwapBuffers(); err != nil {
		x.log().Warning().
			Str("pacer", x.name).
			Err(err).
			Log("failed to swap buffers")
	}
	return true
}

// call runs a callback, applying the panic policy, and returning false if
// the owner thread must exit.
func (x *Pacer) call(fn func()) (ok bool) {
	defer func() {
		if ok {
			return
		}
		r := recover()
		perr := &dispatch.PanicError{Value: r, Stack: debug.Stack()}
		x.log().Err().
			Str("pacer", x.name).
			Str("policy", x.policy.String()).
			Err(perr).
			Log("callback panicked")
		if x.policy == dispatch.PanicTerminate {
			x.fail(perr)
			return
		}
		ok = true
	}()
	fn()
	return true
}

func (x *Pacer) fail(err error) {
	x.mu.Lock()
	if x.err == nil {
		x.err = err
	}
	x.mu.Unlock()
	x.Stop()
}

func (x *Pacer) makeCurrent() {
	if err := x.gctx.MakeCurrent(); err != nil {
		x.log().Warning().
			Str("pacer", x.name).
			Err(err).
			Log("failed to make context current")
	}
}

func (x *Pacer) releaseContext() {
	if err := x.gctx.MakeNoneCurrent(); err != nil {
		x.log().Warning().
			Str("pacer", x.name).
			Err(err).
			Log("failed to release context")
	}
}

func (x *Pacer) log() *logiface.Logger[logiface.Event] {
	if x == nil {
		return logging.Default()
	}
	return logging.Or(x.logger)
}

func (x *Pacer) reportMisuse(msg string) {
	if !misuse.Allow(msg) {
		return
	}
	var name string
	if x != nil {
		name = x.name
	}
	x.log().Err().
		Str("pacer", name).
		Log(msg)
}
