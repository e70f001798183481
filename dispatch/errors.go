package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when work is submitted to, or awaited from, a
	// dispatcher that has stopped accepting it.
	ErrClosed = errors.New("dispatch: dispatcher is closed")

	// ErrReentrant is returned by blocking calls made from the owner
	// thread, which would otherwise deadlock.
	ErrReentrant = errors.New("dispatch: cannot block on the owner thread")

	// ErrNilAction is returned when submitting a nil func.
	ErrNilAction = errors.New("dispatch: action is nil")

	// ErrNilManager is returned by constructors without an affinity manager.
	ErrNilManager = errors.New("dispatch: affinity manager is nil")
)

// PanicPolicy selects what happens when an action panics on the owner
// thread.
type PanicPolicy int

const (
	// PanicIsolate recovers and logs the panic, then continues with the
	// next action.
	PanicIsolate PanicPolicy = iota
	// PanicTerminate logs the panic, then stops the owner thread. Queued and
	// future actions are discarded, and [Dispatcher.Err] reports the panic.
	PanicTerminate
)

func (x PanicPolicy) String() string {
	switch x {
	case PanicIsolate:
		return "isolate"
	case PanicTerminate:
		return "terminate"
	default:
		return fmt.Sprintf("PanicPolicy(%d)", int(x))
	}
}

// PanicError is a panic recovered from an action.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("dispatch: action panicked: %v", e.Value)
}

// Unwrap returns the panic value, if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
