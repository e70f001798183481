// Package logging builds the structured loggers used across the module, and
// holds the process-wide default.
package logging

import (
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the logger type accepted by every component.
type Logger = logiface.Logger[logiface.Event]

var defaultLogger atomic.Pointer[Logger]

// New returns a logger writing to handler, filtered to level.
//
// A nil handler results in a nil (disabled) logger.
func New(handler slog.Handler, level logiface.Level) *Logger {
	if handler == nil {
		return nil
	}
	w := &Writer{Handler: handler}
	return logiface.New[*Event](
		logiface.WithEventFactory[*Event](w),
		logiface.WithEventReleaser[*Event](w),
		logiface.WithWriter[*Event](w),
		logiface.WithLevel[*Event](level),
	).Logger()
}

// NewText is a convenience for a [slog.TextHandler] backed logger. The
// handler itself is opened to all levels, so level alone determines output.
func NewText(w io.Writer, level logiface.Level) *Logger {
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}), level)
}

// NewJSON returns a logger writing newline delimited JSON objects to w,
// filtered to level.
func NewJSON(w io.Writer, level logiface.Level) *Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}

// Default returns the process-wide logger, which is nil (discarding all
// output) until [SetDefault] is called.
func Default() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger. Passing nil disables logging.
func SetDefault(l *Logger) {
	defaultLogger.Store(l)
}

// Or returns l, falling back to [Default] if l is nil.
func Or(l *Logger) *Logger {
	if l != nil {
		return l
	}
	return Default()
}

// Throttle limits repetitive log events per category, e.g. misuse reports
// from hot paths. The zero value is not usable, see [NewThrottle].
type Throttle struct {
	limiter *catrate.Limiter
}

// NewThrottle returns a throttle allowing one event per second, and ten per
// minute, for each category.
func NewThrottle() *Throttle {
	return &Throttle{limiter: catrate.NewLimiter(map[time.Duration]int{
		time.Second: 1,
		time.Minute: 10,
	})}
}

// Allow reports whether an event for category should be logged. A nil
// receiver allows everything.
func (x *Throttle) Allow(category any) bool {
	if x == nil {
		return true
	}
	_, ok := x.limiter.Allow(category)
	return ok
}
