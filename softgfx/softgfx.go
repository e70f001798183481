// Package softgfx implements a CPU rasterised graphics context on top of
// github.com/gogpu/gg.
//
// Drawing happens on a back buffer, via [Context.Canvas], on the thread that
// holds the context current. SwapBuffers publishes a snapshot of the back
// buffer, which any goroutine may read via [Context.Front].
package softgfx

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gg"
	"github.com/joeycumines/go-renderloop/gfx"
)

// ErrClosed is returned by operations on a closed context.
var ErrClosed = errors.New("softgfx: context is closed")

// Context is a software [gfx.Context].
type Context struct {
	canvas   *gg.Context
	front    atomic.Pointer[image.RGBA]
	swaps    atomic.Uint64
	interval atomic.Int64
	mu       sync.Mutex
	vsync    gfx.VSyncMode
	bound    atomic.Bool
	closed   bool
}

var _ gfx.Context = (*Context)(nil)

// New allocates a back buffer sized per settings.Context.Size.
func New(settings gfx.Settings) (*Context, error) {
	w, h := settings.Context.Size()
	c := &Context{
		canvas: gg.NewContext(w, h),
		vsync:  settings.VSync(),
	}
	c.canvas.ClearWithColor(gg.Black)
	c.interval.Store(1)
	return c, nil
}

// Canvas returns the back buffer. It must only be used by the thread that
// holds the context current.
func (x *Context) Canvas() *gg.Context { return x.canvas }

func (x *Context) MakeCurrent() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return ErrClosed
	}
	x.bound.Store(true)
	return nil
}

func (x *Context) MakeNoneCurrent() error {
	x.bound.Store(false)
	return nil
}

// Current reports whether the context has been made current, and not since
// released.
func (x *Context) Current() bool { return x.bound.Load() }

func (x *Context) SwapBuffers() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return ErrClosed
	}
	img, ok := x.canvas.Image().(*image.RGBA)
	if !ok {
		return fmt.Errorf("softgfx: unexpected back buffer type %T", x.canvas.Image())
	}
	x.front.Store(img)
	x.swaps.Add(1)
	return nil
}

func (x *Context) API() gfx.API { return gfx.APISoftware }

func (x *Context) VSync() gfx.VSyncMode { return x.vsync }

// SetSwapInterval records the interval. There is no display to synchronise
// with, so it has no other effect.
func (x *Context) SetSwapInterval(interval int) error {
	x.interval.Store(int64(interval))
	return nil
}

// SwapInterval returns the most recently set swap interval, initially 1.
func (x *Context) SwapInterval() int { return int(x.interval.Load()) }

func (x *Context) DrawableArea() gfx.Rect {
	x.mu.Lock()
	defer x.mu.Unlock()
	return gfx.Box(x.canvas.Width(), x.canvas.Height())
}

// Resize reallocates the back buffer. The front buffer is unchanged until
// the next swap.
func (x *Context) Resize(width, height int) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return ErrClosed
	}
	if err := x.canvas.Resize(width, height); err != nil {
		return fmt.Errorf("softgfx: %w", err)
	}
	return nil
}

// Front returns the most recently swapped frame, or nil before the first
// swap. The image must not be modified.
func (x *Context) Front() *image.RGBA { return x.front.Load() }

// Swaps returns the number of successful swaps.
func (x *Context) Swaps() uint64 { return x.swaps.Load() }

// SavePNG writes the front buffer to path.
func (x *Context) SavePNG(path string) error {
	img := x.Front()
	if img == nil {
		return errors.New("softgfx: no frame has been presented")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Close releases the back buffer. Close is idempotent.
func (x *Context) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return nil
	}
	x.closed = true
	x.bound.Store(false)
	return x.canvas.Close()
}
