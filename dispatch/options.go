package dispatch

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/joeycumines/go-renderloop/affinity"
	"github.com/joeycumines/logiface"
)

// dispatcherOptions holds configuration options for Dispatcher creation.
type dispatcherOptions struct {
	logger *logiface.Logger[logiface.Event]
	name   string
	mask   affinity.Mask
	policy PanicPolicy
}

// Option configures a Dispatcher instance.
type Option interface {
	applyDispatcher(*dispatcherOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyDispatcherFunc func(*dispatcherOptions) error
}

func (o *optionImpl) applyDispatcher(opts *dispatcherOptions) error {
	return o.applyDispatcherFunc(opts)
}

// WithAffinityMask restricts the owner thread to the lowest allowed core in
// mask. **Defaults to 0, selecting the least loaded core.**
func WithAffinityMask(mask affinity.Mask) Option {
	return &optionImpl{func(opts *dispatcherOptions) error {
		opts.mask = mask
		return nil
	}}
}

// WithLogger sets the logger. **Defaults to the module-wide logger.**
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *dispatcherOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithPanicPolicy sets the behaviour for panicking actions.
// **Defaults to [PanicIsolate].**
func WithPanicPolicy(policy PanicPolicy) Option {
	return &optionImpl{func(opts *dispatcherOptions) error {
		switch policy {
		case PanicIsolate, PanicTerminate:
		default:
			return fmt.Errorf("dispatch: invalid panic policy: %s", policy)
		}
		opts.policy = policy
		return nil
	}}
}

// WithName sets the name attached to log events.
// **Defaults to a random UUID.**
func WithName(name string) Option {
	return &optionImpl{func(opts *dispatcherOptions) error {
		opts.name = name
		return nil
	}}
}

// resolveOptions applies Option instances to dispatcherOptions.
func resolveOptions(opts []Option) (*dispatcherOptions, error) {
	cfg := &dispatcherOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyDispatcher(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.name == "" {
		cfg.name = uuid.NewString()
	}
	return cfg, nil
}
