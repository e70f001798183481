package affinity

import (
	"github.com/joeycumines/logiface"
)

// managerOptions holds configuration options for Manager creation.
type managerOptions struct {
	pinner Pinner
	logger *logiface.Logger[logiface.Event]
}

// Option configures a Manager instance.
type Option interface {
	applyManager(*managerOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyManagerFunc func(*managerOptions) error
}

func (o *optionImpl) applyManager(opts *managerOptions) error {
	return o.applyManagerFunc(opts)
}

// WithPinner replaces the OS affinity primitive, e.g. with a [StaticPinner].
// **Defaults to [SystemPinner].**
func WithPinner(pinner Pinner) Option {
	return &optionImpl{func(opts *managerOptions) error {
		opts.pinner = pinner
		return nil
	}}
}

// WithLogger sets the logger. **Defaults to the module-wide logger.**
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *managerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// resolveOptions applies Option instances to managerOptions.
func resolveOptions(opts []Option) (*managerOptions, error) {
	cfg := &managerOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyManager(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.pinner == nil {
		cfg.pinner = SystemPinner()
	}
	return cfg, nil
}
