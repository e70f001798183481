package main

import (
	"github.com/gogpu/gg"
	"github.com/joeycumines/go-renderloop/gfx"
	"github.com/joeycumines/go-renderloop/pacer"
)

// scene is a square bouncing around the drawable area, drawn with gg. It is
// only used by the thread the context is current on.
type scene struct {
	canvas *gg.Context
	colour [3]float64
	x, y   float64
	vx, vy float64
	size   float64
}

// speed is in pixels per second.
const speed = 120

func newScene(canvas *gg.Context, colour [3]float64) *scene {
	return &scene{
		canvas: canvas,
		colour: colour,
		size:   24,
		vx:     speed,
		vy:     speed * 0.75,
	}
}

// update moves the square by the frame's elapsed time, reflecting off the
// edges of area.
func (x *scene) update(area gfx.Rect, e pacer.FrameEvent) {
	dt := e.Seconds()
	x.x, x.vx = bounce(x.x+x.vx*dt, x.vx, float64(area.Dx())-x.size)
	x.y, x.vy = bounce(x.y+x.vy*dt, x.vy, float64(area.Dy())-x.size)
}

func bounce(pos, vel, limit float64) (float64, float64) {
	if limit <= 0 {
		return 0, vel
	}
	switch {
	case pos < 0:
		return -pos, -vel
	case pos > limit:
		return max(0, 2*limit-pos), -vel
	default:
		return pos, vel
	}
}

func (x *scene) render() error {
	x.canvas.ClearWithColor(gg.Black)
	x.canvas.SetRGB(x.colour[0], x.colour[1], x.colour[2])
	x.canvas.DrawRectangle(x.x, x.y, x.size, x.size)
	return x.canvas.Fill()
}

// handler adapts the scene to a pacer, logging render failures.
func (x *scene) handler(onError func(error)) pacer.Handler {
	return pacer.HandlerFuncs{
		OnUpdate: func(e pacer.FrameEvent) { x.update(e.Area, e) },
		OnRender: func(pacer.FrameEvent) {
			if err := x.render(); err != nil {
				onError(err)
			}
		},
	}
}
