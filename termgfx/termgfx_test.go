package termgfx

import (
	"image"
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/joeycumines/go-renderloop/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(w, h)
	return screen
}

func TestNew_nilScreen(t *testing.T) {
	_, err := New(nil, gfx.Settings{})
	assert.ErrorIs(t, err, ErrNilScreen)
}

func TestContext(t *testing.T) {
	screen := newSimScreen(t, 20, 10)
	s := gfx.DefaultSettings()
	s.Control.VSync = gfx.VSyncOn
	c, err := New(screen, s)
	require.NoError(t, err)

	assert.Same(t, screen, c.Screen())
	assert.Equal(t, gfx.APITerminal, c.API())
	assert.Equal(t, gfx.VSyncOn, c.VSync())
	assert.Equal(t, gfx.Box(20, 10), c.DrawableArea())
	assert.Equal(t, 1, c.SwapInterval())
	require.NoError(t, c.SetSwapInterval(0))
	assert.Equal(t, 0, c.SwapInterval())

	require.NoError(t, c.MakeCurrent())
	assert.True(t, c.Current())

	screen.SetContent(1, 1, 'x', nil, tcell.StyleDefault)
	require.NoError(t, c.SwapBuffers())
	assert.Equal(t, uint64(1), c.Presents())

	mainc, _, _, _ := screen.GetContent(1, 1)
	assert.Equal(t, 'x', mainc)

	screen.SetSize(30, 12)
	assert.Equal(t, gfx.Box(30, 12), c.DrawableArea())

	require.NoError(t, c.MakeNoneCurrent())
	assert.False(t, c.Current())
}

func TestContext_Blit(t *testing.T) {
	screen := newSimScreen(t, 4, 2)
	c, err := New(screen, gfx.Settings{})
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := range 4 {
		for x := range 8 {
			if x < 4 {
				img.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}
	c.Blit(img)
	c.Blit(nil)

	mainc, _, style, _ := screen.GetContent(0, 0)
	assert.Equal(t, '█', mainc)
	fg, _, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)

	_, _, style, _ = screen.GetContent(3, 1)
	fg, _, _ = style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0, 0, 255), fg)
}
