// Package termgfx implements a character cell graphics context on top of a
// github.com/gdamore/tcell/v2 screen, where a swap shows the screen.
package termgfx

import (
	"errors"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/joeycumines/go-renderloop/gfx"
)

// ErrNilScreen is returned by [New] without a screen.
var ErrNilScreen = errors.New("termgfx: screen is nil")

// Context is a terminal [gfx.Context]. Drawable area is measured in cells.
type Context struct {
	screen   tcell.Screen
	presents atomic.Uint64
	interval atomic.Int64
	mu       sync.Mutex
	vsync    gfx.VSyncMode
	bound    atomic.Bool
}

var _ gfx.Context = (*Context)(nil)

// New wraps screen, which the caller must have initialised, and must
// finalise after the context is no longer used.
func New(screen tcell.Screen, settings gfx.Settings) (*Context, error) {
	if screen == nil {
		return nil, ErrNilScreen
	}
	c := &Context{screen: screen, vsync: settings.VSync()}
	c.interval.Store(1)
	return c, nil
}

// Screen returns the wrapped screen, for drawing by the thread that holds
// the context current.
func (x *Context) Screen() tcell.Screen { return x.screen }

func (x *Context) MakeCurrent() error {
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
	x.screen.Show()
	x.mu.Unlock()
	x.presents.Add(1)
	return nil
}

func (x *Context) API() gfx.API { return gfx.APITerminal }

func (x *Context) VSync() gfx.VSyncMode { return x.vsync }

// SetSwapInterval records the interval. Terminals have no vertical blank, so
// it has no other effect.
func (x *Context) SetSwapInterval(interval int) error {
	x.interval.Store(int64(interval))
	return nil
}

// SwapInterval returns the most recently set swap interval, initially 1.
func (x *Context) SwapInterval() int { return int(x.interval.Load()) }

func (x *Context) DrawableArea() gfx.Rect {
	w, h := x.screen.Size()
	return gfx.Box(w, h)
}

// Presents returns the number of swaps.
func (x *Context) Presents() uint64 { return x.presents.Load() }

// Blit draws img scaled to the drawable area, one full block per cell,
// coloured by the pixel at the centre of the region the cell covers.
func (x *Context) Blit(img image.Image) {
	if img == nil {
		return
	}
	w, h := x.screen.Size()
	b := img.Bounds()
	if w <= 0 || h <= 0 || b.Empty() {
		return
	}
	for cy := range h {
		py := b.Min.Y + (2*cy+1)*b.Dy()/(2*h)
		for cx := range w {
			px := b.Min.X + (2*cx+1)*b.Dx()/(2*w)
			r, g, bl, _ := img.At(px, py).RGBA()
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(bl>>8)))
			x.screen.SetContent(cx, cy, '█', nil, style)
		}
	}
}
