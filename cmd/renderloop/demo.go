package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joeycumines/go-renderloop/affinity"
	"github.com/joeycumines/go-renderloop/dispatch"
	"github.com/joeycumines/go-renderloop/gfx"
	"github.com/joeycumines/go-renderloop/internal/logging"
	"github.com/joeycumines/go-renderloop/pacer"
	"github.com/joeycumines/go-renderloop/softgfx"
	"github.com/joeycumines/go-renderloop/termgfx"
	"golang.org/x/sync/errgroup"
)

type (
	demo struct {
		cores  *affinity.Manager
		logger *logging.Logger
		// newScreen is tcell.NewScreen, replaced in tests.
		newScreen func() (tcell.Screen, error)
		cfg       Config
	}

	// view is a loop's software context and scene.
	view struct {
		gctx  *softgfx.Context
		scene *scene
		loop  LoopConfig
	}

	// stopper is implemented by pacers and dispatchers.
	stopper interface {
		Shutdown(ctx context.Context) error
		Name() string
	}
)

func (x *demo) run(ctx context.Context) (err error) {
	views := make([]*view, 0, len(x.cfg.Loops))
	defer func() {
		for _, v := range views {
			if e := v.gctx.Close(); e != nil {
				err = errors.Join(err, e)
			}
		}
	}()
	for _, loop := range x.cfg.Loops {
		v, err := x.newView(loop)
		if err != nil {
			return err
		}
		views = append(views, v)
	}

	var stoppers []stopper
	defer func() {
		err = errors.Join(err, x.shutdown(stoppers))
		if err == nil {
			err = x.save(views)
		}
	}()

	compute, err := dispatch.New(gfx.NewHeadless(1, 1), x.cores,
		dispatch.WithName("compute"),
		dispatch.WithAffinityMask(x.cfg.Compute.Core),
		dispatch.WithLogger(x.logger))
	if err != nil {
		return err
	}
	stoppers = append(stoppers, compute)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return x.runCompute(ctx, compute) })

	switch x.cfg.Mode {
	case ModeSoft:
		for _, v := range views {
			p, err := x.newPacer(v.gctx, v.loop, v.scene.handler(x.renderFailed(v.loop.Name)))
			if err != nil {
				return err
			}
			stoppers = append(stoppers, p)
			p.ResumeLoop()
		}

	case ModeTerminal:
		v := views[0]
		p, err := x.newPacer(v.gctx, v.loop, v.scene.handler(x.renderFailed(v.loop.Name)))
		if err != nil {
			return err
		}
		stoppers = append(stoppers, p)
		t, err := x.startTerminal(ctx, g, v)
		if err != nil {
			return err
		}
		stoppers = append(stoppers, t)
		p.ResumeLoop()
		t.ResumeLoop()

	case ModeManual:
		v := views[0]
		d, err := dispatch.New(v.gctx, x.cores,
			dispatch.WithName(v.loop.Name),
			dispatch.WithAffinityMask(v.loop.Core),
			dispatch.WithLogger(x.logger))
		if err != nil {
			return err
		}
		stoppers = append(stoppers, d)
		g.Go(func() error { return x.runManual(ctx, d, v) })
	}

	<-ctx.Done()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func (x *demo) newView(loop LoopConfig) (*view, error) {
	gctx, err := softgfx.New(x.cfg.Graphics)
	if err != nil {
		return nil, fmt.Errorf("loop %q: %w", loop.Name, err)
	}
	return &view{
		gctx:  gctx,
		scene: newScene(gctx.Canvas(), loop.Colour),
		loop:  loop,
	}, nil
}

func (x *demo) newPacer(gctx gfx.Context, loop LoopConfig, handler pacer.Handler) (*pacer.Pacer, error) {
	return pacer.New(gctx, x.cores, handler,
		pacer.WithName(loop.Name),
		pacer.WithUpdateFrequency(loop.Frequency),
		pacer.WithAffinityMask(loop.Core),
		pacer.WithLogger(x.logger))
}

func (x *demo) renderFailed(name string) func(error) {
	return func(err error) {
		x.logger.Err().
			Str("loop", name).
			Err(err).
			Log("render failed")
	}
}

// runCompute submits the configured compute jobs, one at a time.
func (x *demo) runCompute(ctx context.Context, d *dispatch.Dispatcher) error {
	for i := range x.cfg.Compute.Jobs {
		elapsed, err := computeJob(ctx, d, x.cfg.Compute.Size)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		x.logger.Info().
			Int("job", i).
			Int("size", x.cfg.Compute.Size).
			Dur("elapsed", elapsed).
			Stringer("core", d.Core()).
			Log("compute job done")
	}
	return nil
}

// runManual draws a frame per tick on d's owner thread, without a pacer.
// Ticks are dropped while a frame is still in flight.
func (x *demo) runManual(ctx context.Context, d *dispatch.Dispatcher, v *view) error {
	period := time.Duration(float64(time.Second) / v.loop.Frequency)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	last := time.Now()
	inflight := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			select {
			case inflight <- struct{}{}:
			default:
				continue
			}
			elapsed := now.Sub(last)
			last = now
			d.Invoke(func() {
				defer func() { <-inflight }()
				event := pacer.FrameEvent{Area: v.gctx.DrawableArea(), Elapsed: elapsed}
				v.scene.update(event.Area, event)
				if err := v.scene.render(); err != nil {
					x.renderFailed(v.loop.Name)(err)
					return
				}
				if err := v.gctx.SwapBuffers(); err != nil {
					x.renderFailed(v.loop.Name)(err)
				}
			})
		}
	}
}

// terminal is a pacer mirroring a view to the terminal, which owns the
// screen.
type terminal struct {
	*pacer.Pacer
	screen tcell.Screen
}

// Shutdown stops the pacer, then restores the terminal.
func (x *terminal) Shutdown(ctx context.Context) error {
	err := x.Pacer.Shutdown(ctx)
	x.screen.Fini()
	return err
}

// startTerminal creates a pacer mirroring v's frames to the terminal, and
// stops the demo on Escape or Ctrl-C.
func (x *demo) startTerminal(ctx context.Context, g *errgroup.Group, v *view) (*terminal, error) {
	newScreen := x.newScreen
	if newScreen == nil {
		newScreen = tcell.NewScreen
	}
	screen, err := newScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	term, err := termgfx.New(screen, x.cfg.Graphics)
	if err != nil {
		screen.Fini()
		return nil, err
	}

	p, err := pacer.New(term, x.cores, pacer.HandlerFuncs{
		OnRender: func(pacer.FrameEvent) {
			if img := v.gctx.Front(); img != nil {
				term.Blit(img)
			}
		},
	},
		pacer.WithName("terminal"),
		pacer.WithUpdateFrequency(x.cfg.Terminal),
		pacer.WithLogger(x.logger))
	if err != nil {
		screen.Fini()
		return nil, err
	}

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}()
	g.Go(func() error {
		select {
		case <-quit:
			return context.Canceled
		case <-ctx.Done():
			return nil
		}
	})
	return &terminal{Pacer: p, screen: screen}, nil
}

func (x *demo) shutdown(stoppers []stopper) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var err error
	for i := len(stoppers) - 1; i >= 0; i-- {
		s := stoppers[i]
		if e := s.Shutdown(ctx); e != nil {
			err = errors.Join(err, fmt.Errorf("shutdown %q: %w", s.Name(), e))
		}
	}
	return err
}

func (x *demo) save(views []*view) error {
	if x.cfg.Output == "" {
		return nil
	}
	if err := os.MkdirAll(x.cfg.Output, 0o755); err != nil {
		return err
	}
	for _, v := range views {
		if v.gctx.Front() == nil {
			x.logger.Warning().
				Str("loop", v.loop.Name).
				Log("no frame to save")
			continue
		}
		path := filepath.Join(x.cfg.Output, v.loop.Name+".png")
		if err := v.gctx.SavePNG(path); err != nil {
			return err
		}
		x.logger.Info().
			Str("loop", v.loop.Name).
			Str("path", path).
			Uint64("swaps", v.gctx.Swaps()).
			Log("saved frame")
	}
	return nil
}
