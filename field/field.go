// Package field simulates the particle backdrop: a small batch of drifting
// dots that bounce off the viewport edges, linked by faint lines when they
// come close. The package is host-agnostic; windows and terminals plug in
// through Host and Surface.
package field

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/backdrop/viewport"
)

var (
	// ErrNotSetUp is returned by Teardown before Setup.
	ErrNotSetUp = errors.New("field: not set up")
	// ErrAlreadySetUp is returned by a second Setup.
	ErrAlreadySetUp = errors.New("field: already set up")
	// ErrTornDown is returned by any lifecycle call after Teardown.
	ErrTornDown = errors.New("field: torn down")
)

type lifecycle uint8

const (
	stateIdle lifecycle = iota
	stateSetUp
	stateTornDown
)

// Option configures a Field.
type Option func(*Field)

// WithRand sets the random source used to generate particles.
func WithRand(rng *rand.Rand) Option {
	return func(f *Field) { f.rng = rng }
}

// WithObserver sets the frame loop observer.
func WithObserver(obs Observer) Option {
	return func(f *Field) { f.obs = obs }
}

// Field owns the particle batch, the drawing surface and the frame loop.
// It is not safe for concurrent use; hosts drive it from one goroutine.
type Field struct {
	host   Host
	params Params
	rng    *rand.Rand
	obs    Observer

	state     lifecycle
	surface   Surface
	view      viewport.Viewport
	particles []Particle
	reduced   bool

	removeResize func()
	frame        FrameHandle
	running      bool
	executed     bool
	lastFrame    time.Duration
}

// New creates a field bound to host. Nothing happens until Setup.
func New(host Host, params Params, opts ...Option) *Field {
	f := &Field{
		host:   host,
		params: params,
		obs:    nopObserver{},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if f.obs == nil {
		f.obs = nopObserver{}
	}
	return f
}

// Setup attaches the surface, generates the first batch and starts the
// frame loop. Under reduced motion the surface is attached but stays blank
// and the loop never starts.
func (f *Field) Setup() error {
	switch f.state {
	case stateSetUp:
		return ErrAlreadySetUp
	case stateTornDown:
		return ErrTornDown
	}

	f.reduced = f.host.PrefersReducedMotion()
	f.view = f.readViewport()

	bw, bh := f.view.Backing()
	s, err := f.host.AttachSurface(bw, bh, f.view.Scale)
	if err != nil {
		return fmt.Errorf("attaching surface: %w", err)
	}
	f.surface = s
	f.state = stateSetUp
	f.removeResize = f.host.AddResizeListener(f.handleResize)

	if f.reduced {
		slog.Info("reduced motion requested, field stays blank",
			"backing_w", bw, "backing_h", bh)
		return nil
	}

	f.populate()
	f.running = true
	f.frame = f.host.RequestFrame(f.animate)

	slog.Info("field set up",
		"particles", len(f.particles),
		"backing_w", bw,
		"backing_h", bh,
		"dpr", f.view.Scale,
	)
	return nil
}

// Teardown stops the loop and removes the surface. The resize listener is
// removed and the pending frame cancelled before the surface is detached.
func (f *Field) Teardown() error {
	switch f.state {
	case stateIdle:
		return ErrNotSetUp
	case stateTornDown:
		return ErrTornDown
	}

	if f.removeResize != nil {
		f.removeResize()
		f.removeResize = nil
	}
	if f.frame != 0 {
		f.host.CancelFrame(f.frame)
		f.frame = 0
	}
	f.running = false
	f.state = stateTornDown

	s := f.surface
	f.surface = nil
	f.particles = nil

	if err := s.Detach(); err != nil {
		return fmt.Errorf("detaching surface: %w", err)
	}
	slog.Info("field torn down")
	return nil
}

// Step runs one simulation and render step: move every particle, redraw
// them, then link close pairs. It does nothing unless the field is set up
// with motion enabled.
func (f *Field) Step() StepStats {
	if f.state != stateSetUp || f.reduced {
		return StepStats{}
	}

	w, h := f.view.Bounds()
	stats := StepStats{Particles: len(f.particles)}

	start := time.Now()
	for i := range f.particles {
		f.particles[i].Update(w, h)
	}
	stats.Update = time.Since(start)

	start = time.Now()
	f.surface.Clear()
	for i := range f.particles {
		p := &f.particles[i]
		f.surface.FillCircle(p.Pos.X, p.Pos.Y, p.Size, f.params.Fill)
	}
	stats.Draw = time.Since(start)

	start = time.Now()
	stats.Lines = f.connect()
	f.surface.Flush()
	stats.Connect = time.Since(start)

	return stats
}

// connect strokes a line between every pair closer than the scaled
// connect distance.
func (f *Field) connect() int {
	threshold := f.params.ConnectDistance * f.view.Scale
	lines := 0
	for i := 0; i < len(f.particles); i++ {
		a := &f.particles[i]
		for j := i + 1; j < len(f.particles); j++ {
			b := &f.particles[j]
			alpha, ok := f.params.LineOpacity(Distance(*a, *b), threshold)
			if !ok {
				continue
			}
			f.surface.StrokeLine(a.Pos.X, a.Pos.Y, b.Pos.X, b.Pos.Y,
				f.params.LineWidth, f.params.lineColor(alpha))
			lines++
		}
	}
	return lines
}

// animate is the recurring frame callback.
func (f *Field) animate(ts time.Duration) {
	if !f.running {
		return
	}
	f.frame = f.host.RequestFrame(f.animate)

	if f.executed && ts-f.lastFrame < f.params.FrameInterval {
		f.obs.FrameSkipped()
		return
	}
	f.executed = true
	f.lastFrame = ts

	f.obs.FrameExecuted(f.Step())
}

// handleResize resizes the surface and replaces the batch.
func (f *Field) handleResize() {
	if f.state != stateSetUp {
		return
	}
	f.view = f.readViewport()
	bw, bh := f.view.Backing()
	f.surface.Resize(bw, bh, f.view.Scale)

	f.particles = f.particles[:0]
	if !f.reduced {
		f.populate()
	}
	slog.Debug("field resized",
		"particles", len(f.particles),
		"backing_w", bw,
		"backing_h", bh,
	)
}

// Reseed discards the batch and generates a fresh one for the current
// viewport. It is a no-op unless the field is running.
func (f *Field) Reseed() {
	if !f.running {
		return
	}
	f.particles = f.particles[:0]
	f.populate()
}

// Restore replaces the batch with ps, for replaying a saved state. Each
// position is clamped into the current bounds. Like Reseed it is a no-op
// unless the field is running.
func (f *Field) Restore(ps []Particle) {
	if !f.running {
		return
	}
	w, h := f.view.Bounds()
	f.particles = append(f.particles[:0], ps...)
	for i := range f.particles {
		p := &f.particles[i]
		p.Pos.X = min(max(p.Pos.X, 0), w)
		p.Pos.Y = min(max(p.Pos.Y, 0), h)
	}
	f.obs.Reseeded(len(f.particles))
}

// populate appends a fresh batch sized for the current viewport.
func (f *Field) populate() {
	n := f.params.ParticleCount(f.view.W)
	w, h := f.view.Bounds()
	for i := 0; i < n; i++ {
		f.particles = append(f.particles, newParticle(f.rng, w, h, f.params))
	}
	f.obs.Reseeded(n)
}

func (f *Field) readViewport() viewport.Viewport {
	w, h := f.host.Viewport()
	return viewport.New(w, h, f.host.DevicePixelRatio())
}

// SetParams replaces the field constants. Look and pacing change on the
// next frame; count and size ranges apply from the next batch.
func (f *Field) SetParams(p Params) {
	f.params = p
}

// Params returns the current field constants.
func (f *Field) Params() Params {
	return f.params
}

// Particles returns a copy of the current batch.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Count returns the number of particles in the batch.
func (f *Field) Count() int {
	return len(f.particles)
}

// Running reports whether the frame loop is active.
func (f *Field) Running() bool {
	return f.running
}

// ReducedMotion reports the preference read at setup.
func (f *Field) ReducedMotion() bool {
	return f.reduced
}

// Viewport returns the viewport the current batch was generated for.
func (f *Field) Viewport() viewport.Viewport {
	return f.view
}

// Bounds returns the backing surface size particles are confined to.
func (f *Field) Bounds() (w, h float64) {
	return f.view.Bounds()
}
