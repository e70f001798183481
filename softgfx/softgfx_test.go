package softgfx

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/go-renderloop/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, w, h int) *Context {
	t.Helper()
	s := gfx.DefaultSettings()
	s.Context.Width, s.Context.Height = w, h
	s.Control.VSync = gfx.VSyncAdaptive
	c, err := New(s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestContext_capabilities(t *testing.T) {
	c := newTestContext(t, 32, 16)
	assert.Equal(t, gfx.APISoftware, c.API())
	assert.Equal(t, gfx.VSyncAdaptive, c.VSync())
	assert.Equal(t, gfx.Box(32, 16), c.DrawableArea())
	assert.Equal(t, 1, c.SwapInterval())
	require.NoError(t, c.SetSwapInterval(0))
	assert.Equal(t, 0, c.SwapInterval())
}

func TestContext_swapPublishesBackBuffer(t *testing.T) {
	c := newTestContext(t, 16, 16)
	assert.Nil(t, c.Front())

	require.NoError(t, c.MakeCurrent())
	assert.True(t, c.Current())

	dc := c.Canvas()
	dc.SetRGB(1, 0, 0)
	dc.DrawRectangle(0, 0, 16, 16)
	require.NoError(t, dc.Fill())

	// not visible until swapped
	assert.Nil(t, c.Front())
	require.NoError(t, c.SwapBuffers())
	front := c.Front()
	require.NotNil(t, front)
	assert.Equal(t, uint64(1), c.Swaps())

	px := front.RGBAAt(8, 8)
	assert.Greater(t, px.R, uint8(200))
	assert.Less(t, px.G, uint8(50))

	// drawing after the swap leaves the published frame untouched
	dc.SetRGB(0, 0, 1)
	dc.DrawRectangle(0, 0, 16, 16)
	require.NoError(t, dc.Fill())
	assert.Equal(t, px, c.Front().RGBAAt(8, 8))

	require.NoError(t, c.MakeNoneCurrent())
	assert.False(t, c.Current())
}

func TestNew_ignoresHardwareSettings(t *testing.T) {
	s := gfx.Settings{Context: gfx.ContextSettings{
		API:         gfx.APIOpenGLES,
		Major:       2,
		Profile:     gfx.ProfileCompatibility,
		Flags:       gfx.FlagDebug | gfx.FlagOffscreen,
		Samples:     8,
		DepthBits:   16,
		StencilBits: 1,
		SRGB:        true,
		Width:       24,
		Height:      12,
	}}
	c, err := New(s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	assert.Equal(t, gfx.APISoftware, c.API())
	assert.Equal(t, gfx.VSyncOff, c.VSync())
	assert.Equal(t, gfx.Box(24, 12), c.DrawableArea())
}

func TestContext_Resize(t *testing.T) {
	c := newTestContext(t, 16, 16)
	require.NoError(t, c.Resize(40, 30))
	assert.Equal(t, gfx.Box(40, 30), c.DrawableArea())
	assert.Error(t, c.Resize(0, 30))
}

func TestContext_SavePNG(t *testing.T) {
	c := newTestContext(t, 8, 4)
	path := filepath.Join(t.TempDir(), "frame.png")
	assert.Error(t, c.SavePNG(path))

	require.NoError(t, c.SwapBuffers())
	require.NoError(t, c.SavePNG(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, gfx.Box(8, 4), img.Bounds())
}

func TestContext_Close(t *testing.T) {
	c := newTestContext(t, 4, 4)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.MakeCurrent(), ErrClosed)
	assert.ErrorIs(t, c.SwapBuffers(), ErrClosed)
	assert.ErrorIs(t, c.Resize(8, 8), ErrClosed)
}
