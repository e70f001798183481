package pacer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joeycumines/go-renderloop/affinity"
	"github.com/joeycumines/go-renderloop/clock"
	"github.com/joeycumines/go-renderloop/dispatch"
	"github.com/joeycumines/go-renderloop/internal/timerres"
	"github.com/joeycumines/logiface"
)

// pacerOptions holds configuration options for Pacer creation.
type pacerOptions struct {
	clock       clock.Clock
	sleeper     clock.Sleeper
	logger      *logiface.Logger[logiface.Event]
	name        string
	frequency   float64
	timerPeriod time.Duration
	mask        affinity.Mask
	policy      dispatch.PanicPolicy
}

// Option configures a Pacer instance.
type Option interface {
	applyPacer(*pacerOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyPacerFunc func(*pacerOptions) error
}

func (o *optionImpl) applyPacer(opts *pacerOptions) error {
	return o.applyPacerFunc(opts)
}

// WithAffinityMask restricts the owner thread to the lowest allowed core in
// mask. **Defaults to 0, selecting the least loaded core.**
func WithAffinityMask(mask affinity.Mask) Option {
	return &optionImpl{func(opts *pacerOptions) error {
		opts.mask = mask
		return nil
	}}
}

// WithUpdateFrequency sets the initial update frequency, clamped per
// [ClampFrequency]. **Defaults to 0, uncapped.**
func WithUpdateFrequency(hz float64) Option {
	return &optionImpl{func(opts *pacerOptions) error {
		opts.frequency = ClampFrequency(hz)
		return nil
	}}
}

// WithLogger sets the logger. **Defaults to the module-wide logger.**
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *pacerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithPanicPolicy sets the behaviour for panicking callbacks.
// **Defaults to [dispatch.PanicIsolate].**
func WithPanicPolicy(policy dispatch.PanicPolicy) Option {
	return &optionImpl{func(opts *pacerOptions) error {
		switch policy {
		case dispatch.PanicIsolate, dispatch.PanicTerminate:
		default:
			return fmt.Errorf("pacer: invalid panic policy: %s", policy)
		}
		opts.policy = policy
		return nil
	}}
}

// WithName sets the name attached to log events.
// **Defaults to a random UUID.**
func WithName(name string) Option {
	return &optionImpl{func(opts *pacerOptions) error {
		opts.name = name
		return nil
	}}
}

// WithClock sets the time source used to measure frames.
// **Defaults to [clock.Real].**
func WithClock(c clock.Clock) Option {
	return &optionImpl{func(opts *pacerOptions) error {
		opts.clock = c
		return nil
	}}
}

// WithSleeper sets how the owner thread waits out the remainder of each
// period. **Defaults to a [clock.PreciseSleeper] on the configured clock.**
func WithSleeper(s clock.Sleeper) Option {
	return &optionImpl{func(opts *pacerOptions) error {
		opts.sleeper = s
		return nil
	}}
}

// WithTimerPeriod sets the host timer resolution requested while the loop
// runs, which is also the expected sleep granularity.
// **Defaults to 8ms.**
func WithTimerPeriod(period time.Duration) Option {
	return &optionImpl{func(opts *pacerOptions) error {
		if period <= 0 {
			return fmt.Errorf("pacer: invalid timer period: %s", period)
		}
		opts.timerPeriod = period
		return nil
	}}
}

// resolveOptions applies Option instances to pacerOptions.
func resolveOptions(opts []Option) (*pacerOptions, error) {
	cfg := &pacerOptions{
		timerPeriod: timerres.DefaultPeriod,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyPacer(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.name == "" {
		cfg.name = uuid.NewString()
	}
	if cfg.clock == nil {
		cfg.clock = clock.Real{}
	}
	if cfg.sleeper == nil {
		cfg.sleeper = clock.PreciseSleeper{Clock: cfg.clock, SchedulerPeriod: cfg.timerPeriod}
	}
	return cfg, nil
}
