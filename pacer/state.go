package pacer

import (
	"time"

	"github.com/joeycumines/go-renderloop/gfx"
)

// State is the lifecycle state of a [Pacer].
//
//	StatePaused → StateRunning   [ResumeLoop]
//	StateRunning → StatePaused   [PauseLoop]
//	StatePaused, StateRunning → StateStopped   [Stop, Shutdown, Close]
//	StateStopped → (terminal)
type State int32

const (
	// StateStopped is terminal: the owner thread has exited, or is exiting.
	StateStopped State = iota
	// StatePaused means the owner thread is idle, waiting for a resume.
	StatePaused
	// StateRunning means frames are being paced.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StatePaused:
		return "Paused"
	case StateRunning:
		return "Running"
	default:
		return "Unknown"
	}
}

// FrameEvent describes one processed update, and is passed unchanged to
// both Update and Render.
type FrameEvent struct {
	// Area is the drawable area at the start of the update.
	Area gfx.Rect
	// Elapsed is the time since the previous update.
	Elapsed time.Duration
}

// Seconds returns Elapsed in seconds.
func (e FrameEvent) Seconds() float64 { return e.Elapsed.Seconds() }

type (
	// Handler receives the callbacks of a [Pacer], on its owner thread, with
	// the context current.
	Handler interface {
		// Initialized is called once, before the first frame.
		Initialized()
		// Update advances state by one frame.
		Update(FrameEvent)
		// Render draws the frame. It is always called after Update, with
		// the same event.
		Render(FrameEvent)
	}

	// HandlerFuncs implements [Handler] with optional funcs.
	HandlerFuncs struct {
		OnInitialized func()
		OnUpdate      func(FrameEvent)
		OnRender      func(FrameEvent)
	}
)

var _ Handler = HandlerFuncs{}

func (x HandlerFuncs) Initialized() {
	if x.OnInitialized != nil {
		x.OnInitialized()
	}
}

func (x HandlerFuncs) Update(e FrameEvent) {
	if x.OnUpdate != nil {
		x.OnUpdate(e)
	}
}

func (x HandlerFuncs) Render(e FrameEvent) {
	if x.OnRender != nil {
		x.OnRender(e)
	}
}
