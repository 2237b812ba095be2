// Package ebitenview hosts the particle field in an ebiten window.
//
// View implements both ebiten.Game and field.Host. Layout reports the
// backing size, so the offscreen surface is composited 1:1 and the field
// draws at full device resolution.
package ebitenview

import (
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/pthm-cable/backdrop/config"
	"github.com/pthm-cable/backdrop/field"
	"github.com/pthm-cable/backdrop/telemetry"
	"github.com/pthm-cable/backdrop/viewport"
)

// Options configures a View.
type Options struct {
	Seed          int64
	ReducedMotion bool
	LogStats      bool

	// Clock returns the time passed to frame callbacks. Defaults to the
	// wall clock since NewView.
	Clock func() time.Duration
	// ScaleFactor returns the device pixel ratio. Defaults to the
	// current monitor's scale factor.
	ScaleFactor func() float64
	// NewSurface creates the drawing surface. Defaults to an offscreen
	// ebiten image.
	NewSurface func(w, h int, scale float64) field.Surface
}

// View is the ebiten host.
type View struct {
	field.FrameQueue
	field.ResizeListeners

	cfg  *config.Config
	opts Options

	field   *field.Field
	surface field.Surface
	tracker viewport.Tracker
	started bool

	// Logical size from the last Layout call
	outsideW, outsideH int
	dpr                float64

	background color.NRGBA
	showHUD    bool
	collector  *telemetry.Collector
	executed   int
	skipped    int
	lastLines  int
}

// NewView creates an ebiten host. The field is set up on the first
// Update, after ebiten has reported the window size through Layout.
func NewView(cfg *config.Config, opts Options) *View {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Clock == nil {
		start := time.Now()
		opts.Clock = func() time.Duration { return time.Since(start) }
	}
	if opts.ScaleFactor == nil {
		opts.ScaleFactor = func() float64 { return ebiten.Monitor().DeviceScaleFactor() }
	}
	if opts.NewSurface == nil {
		opts.NewSurface = func(w, h int, scale float64) field.Surface { return NewSurface(w, h, scale) }
	}

	v := &View{
		cfg:        cfg,
		opts:       opts,
		outsideW:   cfg.Screen.Width,
		outsideH:   cfg.Screen.Height,
		dpr:        1,
		background: cfg.Derived.Background,
		showHUD:    true,
	}
	v.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, opts.Clock)
	v.field = field.New(v, cfg.FieldParams(),
		field.WithRand(rand.New(rand.NewSource(opts.Seed))),
		field.WithObserver(field.Observers{v.collector, v}),
	)
	return v
}

// Viewport implements field.Host.
func (v *View) Viewport() (w, h float64) {
	return float64(v.outsideW), float64(v.outsideH)
}

// DevicePixelRatio implements field.Host.
func (v *View) DevicePixelRatio() float64 {
	return v.dpr
}

// PrefersReducedMotion implements field.Host.
func (v *View) PrefersReducedMotion() bool {
	return v.cfg.Motion.ReducedMotion || v.opts.ReducedMotion
}

// AttachSurface implements field.Host.
func (v *View) AttachSurface(w, h int, scale float64) (field.Surface, error) {
	v.surface = v.opts.NewSurface(w, h, scale)
	return v.surface, nil
}

// FrameSkipped implements field.Observer.
func (v *View) FrameSkipped() { v.skipped++ }

// FrameExecuted implements field.Observer.
func (v *View) FrameExecuted(s field.StepStats) {
	v.executed++
	v.lastLines = s.Lines
}

// Reseeded implements field.Observer.
func (v *View) Reseeded(count int) {}

// Layout implements ebiten.Game. It records the logical size and returns
// the backing size.
func (v *View) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.outsideW, v.outsideH = outsideWidth, outsideHeight
	v.dpr = viewport.NormalizeScale(v.opts.ScaleFactor())
	return viewport.New(float64(outsideWidth), float64(outsideHeight), v.dpr).Backing()
}

// Update implements ebiten.Game.
func (v *View) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		v.showHUD = !v.showHUD
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.field.Reseed()
	}
	return v.tick()
}

// tick sets the field up on first use, fires resize listeners and runs
// one animation frame.
func (v *View) tick() error {
	w, h := v.Viewport()
	changed := v.tracker.Observe(w, h, v.dpr)

	if !v.started {
		if err := v.field.Setup(); err != nil {
			return fmt.Errorf("setting up field: %w", err)
		}
		v.started = true
	} else if changed {
		v.NotifyResize()
	}

	v.RunFrame(v.opts.Clock())

	if v.collector.ShouldFlush() {
		stats := v.collector.Flush()
		if v.opts.LogStats {
			stats.LogStats()
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (v *View) Draw(screen *ebiten.Image) {
	screen.Fill(v.background)

	if s, ok := v.surface.(*Surface); ok {
		if img := s.Image(); img != nil {
			screen.DrawImage(img, nil)
		}
	}

	if v.showHUD {
		ebitenutil.DebugPrint(screen, v.hudText())
	}
}

func (v *View) hudText() string {
	motion := "on"
	if v.field.ReducedMotion() {
		motion = "reduced"
	}
	return fmt.Sprintf("TPS: %.0f  FPS: %.0f\nParticles: %d  Lines: %d\nFrames: %d run / %d skipped\nDPR: %.2f  Motion: %s\nH: HUD  R: Reseed  Esc: Quit",
		ebiten.ActualTPS(), ebiten.ActualFPS(),
		v.field.Count(), v.lastLines,
		v.executed, v.skipped,
		v.dpr, motion)
}

// Field returns the hosted field.
func (v *View) Field() *field.Field {
	return v.field
}

// Close tears the field down.
func (v *View) Close() error {
	if err := v.field.Teardown(); err != nil {
		return fmt.Errorf("tearing down field: %w", err)
	}
	slog.Info("ebiten view closed", "executed", v.executed, "skipped", v.skipped)
	return nil
}
