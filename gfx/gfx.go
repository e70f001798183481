// Package gfx defines the graphics context capability driven by dispatchers
// and pacers, and the settings used to create one.
//
// A context may be current on at most one OS thread at a time. Nothing here
// enforces that: whoever calls MakeCurrent must first ensure any other
// thread has called MakeNoneCurrent.
package gfx

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

type (
	// Context is a graphics context that can be bound to the calling OS
	// thread. Implementations report failures via errors, which callers log
	// rather than propagate.
	Context interface {
		// MakeCurrent binds the context to the calling thread.
		MakeCurrent() error
		// MakeNoneCurrent unbinds any context from the calling thread.
		MakeNoneCurrent() error
		// SwapBuffers presents the back buffer.
		SwapBuffers() error
		// API reports the underlying graphics API, where APINone means a
		// headless context without real presentation.
		API() API
		// VSync reports the configured vertical sync mode.
		VSync() VSyncMode
		// SetSwapInterval sets the number of vertical blanks to wait per
		// swap, where 0 disables the wait.
		SetSwapInterval(interval int) error
		// DrawableArea returns the current drawable region, in pixels.
		DrawableArea() Rect
	}

	// Rect is a drawable region, in pixels.
	Rect = image.Rectangle

	// API identifies a graphics API.
	API int

	// VSyncMode selects how swaps synchronise with the display.
	VSyncMode int
)

const (
	// APINone is a headless context, without real presentation.
	APINone API = iota
	APIOpenGL
	APIOpenGLES
	// APISoftware is a CPU rasterised context.
	APISoftware
	// APITerminal is a character cell terminal.
	APITerminal
)

const (
	// VSyncOff never waits for vertical blank.
	VSyncOff VSyncMode = iota
	// VSyncOn always waits for vertical blank.
	VSyncOn
	// VSyncAdaptive waits for vertical blank, unless the loop is running
	// slowly.
	VSyncAdaptive
)

// ErrNoContext is reported when an operation targets a context that does not
// exist (yet).
var ErrNoContext = errors.New("gfx: context is nil")

var (
	apiNames   = [...]string{APINone: "none", APIOpenGL: "opengl", APIOpenGLES: "opengles", APISoftware: "software", APITerminal: "terminal"}
	vsyncNames = [...]string{VSyncOff: "off", VSyncOn: "on", VSyncAdaptive: "adaptive"}
)

// Box returns the rectangle at the origin with the given size.
func Box(width, height int) Rect { return image.Rect(0, 0, width, height) }

func (x API) String() string {
	if x >= 0 && int(x) < len(apiNames) {
		return apiNames[x]
	}
	return fmt.Sprintf("API(%d)", int(x))
}

func (x API) MarshalText() ([]byte, error) { return []byte(x.String()), nil }

func (x *API) UnmarshalText(text []byte) error {
	v, err := parseName(apiNames[:], string(text))
	if err != nil {
		return fmt.Errorf("gfx: invalid api: %w", err)
	}
	*x = API(v)
	return nil
}

func (x VSyncMode) String() string {
	if x >= 0 && int(x) < len(vsyncNames) {
		return vsyncNames[x]
	}
	return fmt.Sprintf("VSyncMode(%d)", int(x))
}

func (x VSyncMode) MarshalText() ([]byte, error) { return []byte(x.String()), nil }

func (x *VSyncMode) UnmarshalText(text []byte) error {
	v, err := parseName(vsyncNames[:], string(text))
	if err != nil {
		return fmt.Errorf("gfx: invalid vsync mode: %w", err)
	}
	*x = VSyncMode(v)
	return nil
}

func parseName(names []string, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%q not one of %s", s, strings.Join(names, ", "))
}
