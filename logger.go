package renderloop

import (
	"github.com/joeycumines/go-renderloop/internal/logging"
	"github.com/joeycumines/logiface"
)

// SetLogger configures the logger used by every component that was not
// given one explicitly. Passing nil restores the default, which discards all
// output. Safe for concurrent use.
func SetLogger(l *logiface.Logger[logiface.Event]) {
	logging.SetDefault(l)
}

// Logger returns the logger configured by [SetLogger], or nil.
func Logger() *logiface.Logger[logiface.Event] {
	return logging.Default()
}
