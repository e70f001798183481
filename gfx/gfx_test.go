package gfx

import (
	"errors"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_text(t *testing.T) {
	for _, api := range []API{APINone, APIOpenGL, APIOpenGLES, APISoftware, APITerminal} {
		b, err := api.MarshalText()
		require.NoError(t, err)
		var got API
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, api, got)
	}
	assert.Equal(t, "API(9)", API(9).String())

	var api API
	require.NoError(t, api.UnmarshalText([]byte(" OpenGL ")))
	assert.Equal(t, APIOpenGL, api)
	assert.Error(t, api.UnmarshalText([]byte("vulkan")))
}

func TestVSyncMode_text(t *testing.T) {
	assert.Equal(t, "adaptive", VSyncAdaptive.String())
	assert.Equal(t, "VSyncMode(-1)", VSyncMode(-1).String())
	var mode VSyncMode
	require.NoError(t, mode.UnmarshalText([]byte("on")))
	assert.Equal(t, VSyncOn, mode)
	assert.Error(t, mode.UnmarshalText([]byte("sometimes")))
}

func TestSettings_defaults(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, APIOpenGL, s.Context.API)
	assert.Equal(t, [2]int{3, 3}, [2]int{s.Context.Major, s.Context.Minor})
	assert.Equal(t, ProfileCore, s.Context.Profile)
	assert.Equal(t, VSyncOff, s.VSync())

	w, h := s.Context.Size()
	assert.Equal(t, [2]int{100, 100}, [2]int{w, h})
	w, h = ContextSettings{Width: 640}.Size()
	assert.Equal(t, [2]int{640, 100}, [2]int{w, h})

	assert.Equal(t, VSyncOff, Settings{}.VSync())
}

func TestSettings_Clone(t *testing.T) {
	s := DefaultSettings()
	s.Control.VSync = VSyncAdaptive
	c := s.Clone()
	c.Control.VSync = VSyncOn
	c.Context.Width = 1
	assert.Equal(t, VSyncAdaptive, s.VSync())
	assert.Equal(t, 100, s.Context.Width)

	assert.Nil(t, Settings{}.Clone().Control)
}

func TestSettings_toml(t *testing.T) {
	const doc = `
[context]
api = "opengles"
major = 3
minor = 2
width = 320
height = 240
samples = 4

[control]
vsync = "adaptive"
`
	s := DefaultSettings()
	_, err := toml.Decode(doc, &s)
	require.NoError(t, err)

	want := DefaultSettings()
	want.Context.API = APIOpenGLES
	want.Context.Minor = 2
	want.Context.Width = 320
	want.Context.Height = 240
	want.Context.Samples = 4
	want.Control.VSync = VSyncAdaptive
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestHeadless(t *testing.T) {
	h := NewHeadless(64, 48)
	assert.Equal(t, APINone, h.API())
	assert.Equal(t, VSyncOff, h.VSync())
	assert.Equal(t, Box(64, 48), h.DrawableArea())

	_, bound := h.Current()
	assert.False(t, bound)

	require.NoError(t, h.MakeCurrent())
	_, bound = h.Current()
	assert.True(t, bound)
	require.NoError(t, h.SwapBuffers())
	require.NoError(t, h.SetSwapInterval(1))
	require.NoError(t, h.SetSwapInterval(0))
	assert.Equal(t, 0, h.SwapInterval())
	require.NoError(t, h.MakeNoneCurrent())
	_, bound = h.Current()
	assert.False(t, bound)

	h.Resize(10, 20)
	assert.Equal(t, Box(10, 20), h.DrawableArea())

	failure := errors.New("lost device")
	h.SetErr(failure)
	assert.ErrorIs(t, h.MakeCurrent(), failure)
	assert.ErrorIs(t, h.SwapBuffers(), failure)

	stats := h.Stats()
	assert.Equal(t, 2, stats.MakeCurrent)
	assert.Equal(t, 1, stats.MakeNoneCurrent)
	assert.Equal(t, 2, stats.Swaps)
	assert.Equal(t, []int{1, 0}, stats.Intervals)
	assert.Len(t, stats.Threads, 2)
}

func TestHeadless_withOptions(t *testing.T) {
	h := NewHeadless(1, 1).WithAPI(APIOpenGL).WithVSync(VSyncAdaptive)
	assert.Equal(t, APIOpenGL, h.API())
	assert.Equal(t, VSyncAdaptive, h.VSync())
}
