package main

import (
	"context"
	"math/rand/v2"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/starfield/config"
	"github.com/lixenwraith/starfield/engine"
	"github.com/lixenwraith/starfield/field"
	"github.com/lixenwraith/starfield/render"
	"github.com/lixenwraith/starfield/terminal"
)

// app wires the starfield onto a terminal screen
// Everything that touches the canvas or the banner runs on the loop goroutine
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	screen tcell.Screen

	canvas       *render.Canvas
	banner       *render.Banner
	orchestrator *render.Orchestrator
	loop         *engine.Loop
	renderer     *field.Renderer
	pump         *terminal.EventPump
}

// newApp builds the pipeline on an initialized screen; cfg must be validated
func newApp(cfg *config.Config, screen tcell.Screen, log *zap.Logger) (*app, error) {
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	bg, titleFg, taglineFg := cfg.Colors()

	a := &app{cfg: cfg, log: log, screen: screen}

	a.canvas = render.NewCanvas(0, 0, bg)
	a.banner = &render.Banner{
		Title:   cfg.Banner.Title,
		Tagline: cfg.Banner.Tagline,
		TitleFg: titleFg,
		TextFg:  taglineFg,
	}

	a.orchestrator = render.NewOrchestrator(screen, bg)
	a.orchestrator.Register(render.NewCanvasLayer(a.canvas), render.PriorityBackground)
	a.orchestrator.Register(a.banner, render.PriorityOverlay)

	a.loop = engine.NewLoop(cfg.FrameInterval(), log)
	a.loop.OnFrameEnd(a.orchestrator.Present)

	a.renderer = field.New(a.canvas, a.loop, newRand(cfg.Seed), params)

	a.pump = terminal.NewEventPump(screen, terminal.PumpOptions{
		ScaleX:   render.DotsX,
		ScaleY:   render.DotsY,
		Exec:     a.loop.Post,
		Debounce: cfg.ResizeDebounce,
		Log:      log,
	})

	return a, nil
}

// newRand seeds a PCG source; zero seed draws from the runtime entropy source
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// run animates until ctx is cancelled or the user quits, then tears down in order:
// renderer (cancels its frame), loop, screen, event pump
func (a *app) run(ctx context.Context, watcher *config.Watcher) error {
	a.renderer.Mount(a.pump)
	a.pump.Start()
	a.loop.Start()

	w, h := a.pump.Size()
	a.log.Info("starfield running",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Int("stars", a.renderer.Len()),
		zap.Int("fps", a.cfg.FPS),
	)

	if watcher != nil {
		if err := watcher.Start(ctx); err != nil {
			a.log.Warn("config watch disabled", zap.Error(err))
			watcher.Stop()
			watcher = nil
		}
	}

	select {
	case <-ctx.Done():
	case <-a.pump.Done():
	}

	if watcher != nil {
		watcher.Stop()
	}
	a.renderer.Close()
	a.loop.Stop()
	a.screen.Fini()
	a.pump.Wait()

	a.log.Info("starfield stopped",
		zap.Stringer("state", a.renderer.State()),
		zap.Uint64("frames", a.renderer.Frames()),
		zap.Uint64("presented", a.orchestrator.Frames()),
		zap.Uint64("ticks", a.loop.Ticks()),
		zap.Int("pending_frames", a.loop.Pending()),
	)
	return nil
}

// reload applies a new config from the watcher; fps and color mode need a restart
func (a *app) reload(cfg *config.Config) {
	a.loop.Post(func() {
		params, err := cfg.Params()
		if err != nil {
			a.log.Warn("reload skipped", zap.Error(err))
			return
		}
		bg, titleFg, taglineFg := cfg.Colors()

		if cfg.FPS != a.cfg.FPS || cfg.ColorMode != a.cfg.ColorMode {
			a.log.Info("fps and color mode changes apply on restart")
		}

		a.canvas.SetBackground(bg)
		a.orchestrator.Buffer().SetBackground(bg)
		a.banner.Title = cfg.Banner.Title
		a.banner.Tagline = cfg.Banner.Tagline
		a.banner.TitleFg = titleFg
		a.banner.TextFg = taglineFg
		a.renderer.SetParams(params)

		a.log.Info("config applied",
			zap.Int("stars", a.renderer.Len()),
			zap.String("star_color", params.Color.Hex()),
			zap.String("background", bg.Hex()),
		)
	})
}
