// Package terminal hosts the particle field in a terminal through tcell.
//
// The viewport is the terminal grid scaled by a nominal cell size, so a
// field tuned for windows keeps roughly the same density on a terminal.
// The device pixel ratio is always 1.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/backdrop/config"
	"github.com/pthm-cable/backdrop/field"
	"github.com/pthm-cable/backdrop/telemetry"
	"github.com/pthm-cable/backdrop/viewport"
)

// Options configures a Host.
type Options struct {
	Seed          int64
	ReducedMotion bool
	LogStats      bool
	// Clock defaults to the wall clock since New.
	Clock func() time.Duration
}

// Host runs a field on a tcell screen. It is driven either by Run or,
// in tests, by calling HandleEvent and Tick directly.
type Host struct {
	field.FrameQueue
	field.ResizeListeners

	screen tcell.Screen
	cfg    *config.Config
	opts   Options

	field     *field.Field
	surface   *Surface
	tracker   viewport.Tracker
	collector *telemetry.Collector
}

// New creates a host on an initialized screen.
func New(screen tcell.Screen, cfg *config.Config, opts Options) *Host {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Clock == nil {
		start := time.Now()
		opts.Clock = func() time.Duration { return time.Since(start) }
	}

	h := &Host{
		screen: screen,
		cfg:    cfg,
		opts:   opts,
	}
	h.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, opts.Clock)
	h.field = field.New(h, cfg.FieldParams(),
		field.WithRand(rand.New(rand.NewSource(opts.Seed))),
		field.WithObserver(h.collector),
	)
	return h
}

// Viewport implements field.Host.
func (h *Host) Viewport() (w, hh float64) {
	cols, rows := h.screen.Size()
	return float64(cols) * h.cfg.Terminal.CellWidth, float64(rows) * h.cfg.Terminal.CellHeight
}

// DevicePixelRatio implements field.Host.
func (h *Host) DevicePixelRatio() float64 { return 1 }

// PrefersReducedMotion implements field.Host.
func (h *Host) PrefersReducedMotion() bool {
	return h.cfg.Motion.ReducedMotion || h.opts.ReducedMotion
}

// AttachSurface implements field.Host.
func (h *Host) AttachSurface(w, hh int, scale float64) (field.Surface, error) {
	h.surface = NewSurface(h.screen, w, hh, scale,
		h.cfg.Terminal.CellWidth, h.cfg.Terminal.CellHeight,
		h.cfg.Derived.TerminalBackground)
	return h.surface, nil
}

// Start sets the field up on the current screen size.
func (h *Host) Start() error {
	w, hh := h.Viewport()
	h.tracker.Observe(w, hh, 1)
	if err := h.field.Setup(); err != nil {
		return fmt.Errorf("setting up field: %w", err)
	}
	if h.field.ReducedMotion() {
		// Nothing will draw; blank the screen once
		h.surface.Clear()
		h.surface.Flush()
	}
	return nil
}

// HandleEvent applies one tcell event. It returns false when the event
// asks to quit.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q':
				return false
			case 'r':
				h.field.Reseed()
			}
		}

	case *tcell.EventResize:
		h.screen.Sync()
		h.checkResize()
	}
	return true
}

// checkResize notifies listeners when the grid size changed.
func (h *Host) checkResize() {
	w, hh := h.Viewport()
	if h.tracker.Observe(w, hh, 1) {
		h.NotifyResize()
		if h.field.ReducedMotion() {
			h.surface.Flush()
		}
	}
}

// Tick runs one animation frame and flushes telemetry when due.
func (h *Host) Tick() {
	h.RunFrame(h.opts.Clock())

	if h.collector.ShouldFlush() {
		stats := h.collector.Flush()
		if h.opts.LogStats {
			stats.LogStats()
		}
	}
}

// Run sets the field up and drives it until ctx is done or a quit key
// is pressed. The field is torn down before Run returns.
func (h *Host) Run(ctx context.Context) error {
	if err := h.Start(); err != nil {
		return err
	}

	poll := time.Duration(h.cfg.Terminal.PollMS) * time.Millisecond
	if poll <= 0 {
		poll = 8 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-done:
				return
			}
		}
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop

		case ev := <-eventChan:
			if !h.HandleEvent(ev) {
				break loop
			}

		case <-ticker.C:
			h.Tick()
		}
	}

	if err := h.field.Teardown(); err != nil {
		return fmt.Errorf("tearing down field: %w", err)
	}
	slog.Info("terminal host stopped", "particles", h.field.Count())
	return nil
}

// Field returns the hosted field.
func (h *Host) Field() *field.Field {
	return h.field
}

// Surface returns the attached surface, or nil before Start.
func (h *Host) Surface() *Surface {
	return h.surface
}
