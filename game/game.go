// Package game hosts the particle field in a raylib window, or headless
// with a virtual clock for benchmarking and telemetry runs.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/backdrop/config"
	"github.com/pthm-cable/backdrop/field"
	"github.com/pthm-cable/backdrop/renderer"
	"github.com/pthm-cable/backdrop/telemetry"
	"github.com/pthm-cable/backdrop/ui"
	"github.com/pthm-cable/backdrop/viewport"
)

// Game owns the window-side state and implements field.Host.
type Game struct {
	field.FrameQueue
	field.ResizeListeners

	cfg  *config.Config
	opts Options
	seed int64
	rng  *rand.Rand

	field   *field.Field
	tracker viewport.Tracker

	// Exactly one of these is set once the field attaches
	surface  *renderer.Surface
	headless *countingSurface

	// Headless viewport and virtual clock
	width, height int
	dpr           float64
	clock         time.Duration
	framePeriod   time.Duration

	hud *ui.HUD

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	snapshotDir      string
	logStats         bool
	statsCallback    func(telemetry.FrameWindow)

	// Totals for the HUD
	frames    int64
	executed  int
	skipped   int
	lastLines int
}

// NewGame creates the host, attaches the field and starts its loop.
// In graphics mode the raylib window must already be open.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	fps := cfg.Screen.TargetFPS
	if fps <= 0 {
		fps = DefaultFPS
	}

	g := &Game{
		cfg:         cfg,
		opts:        opts,
		seed:        seed,
		rng:         rand.New(rand.NewSource(seed)),
		width:       firstPositive(opts.Width, cfg.Screen.Width, DefaultWidth),
		height:      firstPositive(opts.Height, cfg.Screen.Height, DefaultHeight),
		dpr:         viewport.NormalizeScale(opts.DPR),
		framePeriod: time.Second / time.Duration(fps),
		hud:         ui.NewHUD(),
		logStats:    opts.LogStats,
	}

	windowSec := opts.StatsWindowSec
	if windowSec <= 0 {
		windowSec = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(windowSec, g.Now)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)
	g.snapshotDir = opts.SnapshotDir

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	g.field = field.New(g, cfg.FieldParams(),
		field.WithRand(g.rng),
		field.WithObserver(field.Observers{g.collector, g.perfCollector, g}),
	)
	w, h := g.Viewport()
	g.tracker.Observe(w, h, g.DevicePixelRatio())

	if err := g.field.Setup(); err != nil {
		om.Close()
		return nil, fmt.Errorf("setting up field: %w", err)
	}
	if opts.Snapshot != "" {
		if err := g.restoreSnapshot(opts.Snapshot); err != nil {
			return nil, errors.Join(err, g.Unload())
		}
	}
	return g, nil
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

// Viewport implements field.Host.
func (g *Game) Viewport() (w, h float64) {
	if g.opts.Headless {
		return float64(g.width), float64(g.height)
	}
	return float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())
}

// DevicePixelRatio implements field.Host.
func (g *Game) DevicePixelRatio() float64 {
	if g.opts.Headless {
		return g.dpr
	}
	return float64(rl.GetWindowScaleDPI().X)
}

// PrefersReducedMotion implements field.Host.
func (g *Game) PrefersReducedMotion() bool {
	return g.cfg.Motion.ReducedMotion || g.opts.ReducedMotion
}

// AttachSurface implements field.Host.
func (g *Game) AttachSurface(w, h int, scale float64) (field.Surface, error) {
	if g.opts.Headless {
		g.headless = &countingSurface{w: w, h: h}
		return g.headless, nil
	}
	s, err := renderer.NewSurface(w, h, scale)
	if err != nil {
		return nil, err
	}
	g.surface = s
	return s, nil
}

// Now returns the host clock passed to frame callbacks.
func (g *Game) Now() time.Duration {
	if g.opts.Headless {
		return g.clock
	}
	return time.Duration(rl.GetTime() * float64(time.Second))
}

// FrameSkipped implements field.Observer for the HUD totals.
func (g *Game) FrameSkipped() { g.skipped++ }

// FrameExecuted implements field.Observer for the HUD totals.
func (g *Game) FrameExecuted(s field.StepStats) {
	g.executed++
	g.lastLines = s.Lines
}

// Reseeded implements field.Observer.
func (g *Game) Reseeded(count int) {
	slog.Debug("field reseeded", "particles", count)
}

// Update runs one display frame in graphics mode.
func (g *Game) Update() {
	g.handleInput()

	g.perfCollector.RecordFrame()
	g.RunFrame(g.Now())
	g.frames++

	g.flushTelemetry()
}

// UpdateHeadless advances the virtual clock by StepsPerUpdate display frames.
func (g *Game) UpdateHeadless() {
	steps := g.opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		g.RunFrame(g.clock)
		g.frames++
		g.flushTelemetry()
		g.clock += g.framePeriod
	}
}

// SetViewport changes the headless viewport and fires resize listeners.
func (g *Game) SetViewport(w, h int, dpr float64) {
	g.width, g.height = w, h
	g.dpr = viewport.NormalizeScale(dpr)
	g.checkResize()
}

// checkResize notifies listeners when the host size or DPR changed.
func (g *Game) checkResize() {
	w, h := g.Viewport()
	if g.tracker.Observe(w, h, g.DevicePixelRatio()) {
		g.NotifyResize()
	}
}

// Field returns the hosted field.
func (g *Game) Field() *field.Field {
	return g.field
}

// Frames returns the number of display frames run so far.
func (g *Game) Frames() int64 {
	return g.frames
}

// SetStatsCallback registers a function called with every flushed window.
func (g *Game) SetStatsCallback(fn func(telemetry.FrameWindow)) {
	g.statsCallback = fn
}

// Unload tears down the field and closes telemetry output.
func (g *Game) Unload() error {
	var firstErr error
	if err := g.field.Teardown(); err != nil {
		firstErr = fmt.Errorf("tearing down field: %w", err)
	}
	if err := g.outputManager.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing output: %w", err)
	}
	return firstErr
}
