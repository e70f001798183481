package main

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gogpu/gg"
	"github.com/joeycumines/go-renderloop/gfx"
	"github.com/joeycumines/go-renderloop/pacer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBounce(t *testing.T) {
	for _, tc := range [...]struct {
		name             string
		pos, vel, limit  float64
		wantPos, wantVel float64
	}{
		{`inside`, 5, 1, 10, 5, 1},
		{`below`, -2, -1, 10, 2, 1},
		{`above`, 13, 1, 10, 7, -1},
		{`far above`, 30, 1, 10, 0, -1},
		{`no room`, 5, 1, 0, 0, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pos, vel := bounce(tc.pos, tc.vel, tc.limit)
			assert.Equal(t, tc.wantPos, pos)
			assert.Equal(t, tc.wantVel, vel)
		})
	}
}

func TestScene_update(t *testing.T) {
	s := newScene(nil, [3]float64{1, 1, 1})
	area := gfx.Box(100, 100)
	s.update(area, pacer.FrameEvent{Area: area, Elapsed: 500 * time.Millisecond})
	assert.Equal(t, 60.0, s.x)
	assert.Equal(t, 45.0, s.y)

	// 60 + 60 overshoots the 76 pixel limit by 44
	s.update(area, pacer.FrameEvent{Area: area, Elapsed: 500 * time.Millisecond})
	assert.Equal(t, 32.0, s.x)
	assert.Equal(t, -float64(speed), s.vx)
}

func TestScene_render(t *testing.T) {
	canvas := gg.NewContext(64, 64)
	defer canvas.Close()
	s := newScene(canvas, [3]float64{1, 0, 0})
	s.x, s.y = 10, 10
	require.NoError(t, s.render())

	img, ok := canvas.Image().(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(20, 20))
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(50, 50))
}

func TestAddVectors(t *testing.T) {
	out := make([]float32, 3)
	addVectors([]float32{1, 2, 3}, []float32{10, 20, 30}, out)
	assert.Equal(t, []float32{11, 22, 33}, out)
}
