package field

import (
	"errors"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

func checkBounds(t *testing.T, f *Field) {
	t.Helper()
	w, h := f.Bounds()
	for i, p := range f.Particles() {
		if p.Pos.X < 0 || p.Pos.X > w || p.Pos.Y < 0 || p.Pos.Y > h {
			t.Fatalf("particle %d at (%f, %f) outside [0,%f]x[0,%f]", i, p.Pos.X, p.Pos.Y, w, h)
		}
	}
}

func TestSetupCount(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
		dpr  float64
		want int
	}{
		{"desktop capped", 1000, 800, 1, 50},
		{"wide capped", 2560, 1440, 1, 50},
		{"narrow", 390, 844, 3, 19},
		{"tiny", 19, 100, 1, 0},
		{"exact multiple", 600, 400, 2, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost(tt.w, tt.h, tt.dpr)
			f := New(host, DefaultParams(), seeded())
			if err := f.Setup(); err != nil {
				t.Fatalf("Setup: %v", err)
			}
			if got := f.Count(); got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
			bw, bh := int(tt.w*tt.dpr), int(tt.h*tt.dpr)
			if host.surface.w != bw || host.surface.h != bh {
				t.Errorf("surface backing (%d, %d), want (%d, %d)", host.surface.w, host.surface.h, bw, bh)
			}
			checkBounds(t, f)
		})
	}
}

func TestSetupParticleRanges(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	params := DefaultParams()
	f := New(host, params, seeded())
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	for i, p := range f.Particles() {
		if p.Size < params.SizeMin || p.Size >= params.SizeMax {
			t.Errorf("particle %d size %f outside [%f, %f)", i, p.Size, params.SizeMin, params.SizeMax)
		}
		if math.Abs(p.Vel.X) > params.Speed || math.Abs(p.Vel.Y) > params.Speed {
			t.Errorf("particle %d velocity (%f, %f) exceeds %f", i, p.Vel.X, p.Vel.Y, params.Speed)
		}
	}
}

func TestStepKeepsBounds(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	params := DefaultParams()
	params.Speed = 40 // large steps hit the walls often
	f := New(host, params, seeded())
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	for i := 0; i < 500; i++ {
		f.Step()
		checkBounds(t, f)
	}
}

func TestStepDrawsEveryParticle(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	f := New(host, DefaultParams(), seeded())
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	stats := f.Step()
	s := host.surface
	if s.clears != 1 || s.flushes != 1 {
		t.Errorf("expected one clear and one flush, got %d and %d", s.clears, s.flushes)
	}
	if s.circles != 50 || stats.Particles != 50 {
		t.Errorf("expected 50 circles, got %d (stats %d)", s.circles, stats.Particles)
	}
	if s.lines != stats.Lines {
		t.Errorf("stats report %d lines, surface saw %d", stats.Lines, s.lines)
	}
}

func TestConnectThreshold(t *testing.T) {
	tests := []struct {
		name      string
		dpr       float64
		gap       float64
		wantLines int
	}{
		{"close", 1, 100, 1},
		{"at threshold", 1, 150, 0},
		{"past threshold", 1, 200, 0},
		{"scaled by dpr", 2, 200, 1},
		{"past scaled threshold", 2, 300, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost(1000, 800, tt.dpr)
			f := New(host, DefaultParams(), seeded())
			if err := f.Setup(); err != nil {
				t.Fatalf("Setup: %v", err)
			}
			f.particles = []Particle{
				{Pos: r2.Vec{X: 100, Y: 100}, Size: 1},
				{Pos: r2.Vec{X: 100 + tt.gap, Y: 100}, Size: 1},
			}

			stats := f.Step()
			if stats.Lines != tt.wantLines {
				t.Errorf("Lines = %d, want %d", stats.Lines, tt.wantLines)
			}
		})
	}
}

func TestReducedMotion(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	host.reduced = true
	obs := &countingObserver{}
	f := New(host, DefaultParams(), seeded(), WithObserver(obs))
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if f.Count() != 0 {
		t.Errorf("expected no particles, got %d", f.Count())
	}
	if f.Running() {
		t.Error("loop should not start under reduced motion")
	}
	if host.Pending() != 0 {
		t.Errorf("expected no frame request, got %d", host.Pending())
	}
	if host.surface == nil || host.surface.detached {
		t.Fatal("surface should stay attached")
	}

	host.RunFrame(0)
	f.Step()
	if s := host.surface; s.clears != 0 || s.circles != 0 || s.lines != 0 {
		t.Errorf("expected no draw calls, got clears=%d circles=%d lines=%d", s.clears, s.circles, s.lines)
	}

	host.resize(1200, 900)
	if f.Count() != 0 {
		t.Errorf("resize under reduced motion produced %d particles", f.Count())
	}
	if host.surface.resizes != 1 || host.surface.w != 1200 {
		t.Errorf("surface should follow the viewport, got resizes=%d w=%d", host.surface.resizes, host.surface.w)
	}
}

func TestResizeRegenerates(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	obs := &countingObserver{}
	f := New(host, DefaultParams(), seeded(), WithObserver(obs))
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	host.resize(400, 300)
	if f.Count() != 20 {
		t.Errorf("expected 20 particles after resize, got %d", f.Count())
	}
	if w, h := f.Bounds(); w != 400 || h != 300 {
		t.Errorf("expected bounds (400, 300), got (%f, %f)", w, h)
	}
	checkBounds(t, f)

	if len(obs.reseeds) != 2 || obs.reseeds[0] != 50 || obs.reseeds[1] != 20 {
		t.Errorf("unexpected reseed events %v", obs.reseeds)
	}
	if !f.Running() {
		t.Error("loop should keep running across a resize")
	}

	host.RunFrame(0)
	if host.surface.circles != 20 {
		t.Errorf("next frame should draw the new batch, drew %d", host.surface.circles)
	}
}

func TestResizeDuringLoop(t *testing.T) {
	host := newFakeHost(1000, 800, 2)
	f := New(host, DefaultParams(), seeded())
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	ts := time.Duration(0)
	for i := 0; i < 10; i++ {
		host.RunFrame(ts)
		ts += 20 * time.Millisecond
		if i == 4 {
			host.resize(500, 500)
		}
		checkBounds(t, f)
	}
	if f.Count() != 25 {
		t.Errorf("expected 25 particles, got %d", f.Count())
	}
}

func TestFrameGate(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	obs := &countingObserver{}
	f := New(host, DefaultParams(), seeded(), WithObserver(obs))
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	frames := []time.Duration{
		0,                      // first frame always runs
		5 * time.Millisecond,   // skipped
		16 * time.Millisecond,  // skipped
		17 * time.Millisecond,  // runs (>= 16.67ms since 0)
		20 * time.Millisecond,  // skipped
		40 * time.Millisecond,  // runs
		100 * time.Millisecond, // runs, no catch-up
	}
	for _, ts := range frames {
		if ran := host.RunFrame(ts); ran != 1 {
			t.Fatalf("frame at %s ran %d callbacks, want 1", ts, ran)
		}
	}

	if obs.executed != 4 {
		t.Errorf("executed = %d, want 4", obs.executed)
	}
	if obs.skipped != 3 {
		t.Errorf("skipped = %d, want 3", obs.skipped)
	}
	if host.Pending() != 1 {
		t.Errorf("loop should keep one callback scheduled, got %d", host.Pending())
	}
	if host.surface.clears != 4 {
		t.Errorf("expected 4 redraws, got %d", host.surface.clears)
	}
}

func TestTwoStepsWithoutResize(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	f := New(host, DefaultParams(), seeded())
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	before := f.Particles()
	f.Step()
	checkBounds(t, f)
	f.Step()
	checkBounds(t, f)

	after := f.Particles()
	if len(after) != len(before) {
		t.Fatalf("count changed from %d to %d", len(before), len(after))
	}
	for i := range after {
		if after[i].Size != before[i].Size {
			t.Errorf("particle %d size changed", i)
		}
		if math.Abs(after[i].Vel.X) != math.Abs(before[i].Vel.X) ||
			math.Abs(after[i].Vel.Y) != math.Abs(before[i].Vel.Y) {
			t.Errorf("particle %d speed magnitude changed", i)
		}
	}
}

func TestParticlesReturnsCopy(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	f := New(host, DefaultParams(), seeded())
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	ps := f.Particles()
	ps[0].Pos.X = -1000
	if f.Particles()[0].Pos.X == -1000 {
		t.Error("mutating the returned slice changed field state")
	}
}

func TestTeardown(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	f := New(host, DefaultParams(), seeded())
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	host.RunFrame(0)

	if err := f.Teardown(); err != nil {
		t.Fatalf("Teardown: %v", err)
	}

	want := []string{"attach", "remove-listener", "cancel-frame", "detach"}
	if len(host.events) != len(want) {
		t.Fatalf("events = %v, want %v", host.events, want)
	}
	for i := range want {
		if host.events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, host.events[i], want[i])
		}
	}

	if f.Running() {
		t.Error("loop still running after teardown")
	}
	if host.Pending() != 0 {
		t.Errorf("pending frames after teardown: %d", host.Pending())
	}
	if host.ResizeListeners.Len() != 0 {
		t.Errorf("resize listeners after teardown: %d", host.ResizeListeners.Len())
	}

	host.RunFrame(time.Second)
	host.resize(400, 400)
	f.Step()
	if host.surface.drawAfterDetach != 0 {
		t.Errorf("%d surface calls after detach", host.surface.drawAfterDetach)
	}

	if err := f.Teardown(); !errors.Is(err, ErrTornDown) {
		t.Errorf("second Teardown = %v, want ErrTornDown", err)
	}
}

func TestTeardownInsideFrame(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	f := New(host, DefaultParams(), seeded())

	// A callback queued ahead of the field's tears it down mid-frame.
	var torn error
	host.RequestFrame(func(time.Duration) { torn = f.Teardown() })
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	host.RunFrame(0)
	if torn != nil {
		t.Fatalf("Teardown: %v", torn)
	}
	if host.surface.drawAfterDetach != 0 {
		t.Errorf("%d surface calls after detach", host.surface.drawAfterDetach)
	}
}

func TestLifecycleErrors(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	f := New(host, DefaultParams(), seeded())

	if err := f.Teardown(); !errors.Is(err, ErrNotSetUp) {
		t.Errorf("Teardown before Setup = %v, want ErrNotSetUp", err)
	}
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := f.Setup(); !errors.Is(err, ErrAlreadySetUp) {
		t.Errorf("second Setup = %v, want ErrAlreadySetUp", err)
	}
	if err := f.Teardown(); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if err := f.Setup(); !errors.Is(err, ErrTornDown) {
		t.Errorf("Setup after Teardown = %v, want ErrTornDown", err)
	}
}

func TestSetupAttachError(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	boom := errors.New("no gpu")
	host.attachErr = boom

	f := New(host, DefaultParams(), seeded())
	err := f.Setup()
	if !errors.Is(err, boom) {
		t.Fatalf("Setup = %v, want wrapped %v", err, boom)
	}
	if host.Pending() != 0 || host.ResizeListeners.Len() != 0 {
		t.Error("failed setup should not register anything")
	}
}

func TestReseed(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	obs := &countingObserver{}
	f := New(host, DefaultParams(), seeded(), WithObserver(obs))
	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	before := f.Particles()
	f.Reseed()
	after := f.Particles()

	if len(after) != 50 {
		t.Fatalf("expected 50 particles after reseed, got %d", len(after))
	}
	if after[0].Pos == before[0].Pos {
		t.Error("reseed should produce a fresh batch")
	}
	if len(obs.reseeds) != 2 {
		t.Errorf("expected 2 reseed events, got %d", len(obs.reseeds))
	}
}

func TestRestore(t *testing.T) {
	host := newFakeHost(1000, 800, 1)
	f := New(host, DefaultParams(), seeded())

	saved := []Particle{
		{Pos: r2.Vec{X: 10, Y: 20}, Vel: r2.Vec{X: 0.05, Y: -0.05}, Size: 1},
		{Pos: r2.Vec{X: 1500, Y: -5}, Vel: r2.Vec{X: -0.01}, Size: 1.5},
	}

	// Not running yet
	f.Restore(saved)
	if f.Count() != 0 {
		t.Fatal("restore before setup should be ignored")
	}

	if err := f.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	f.Restore(saved)

	got := f.Particles()
	if len(got) != 2 {
		t.Fatalf("expected 2 particles, got %d", len(got))
	}
	if got[0] != saved[0] {
		t.Errorf("in-bounds particle changed: %+v", got[0])
	}
	if got[1].Pos != (r2.Vec{X: 1000, Y: 0}) || got[1].Vel != saved[1].Vel {
		t.Errorf("out-of-bounds particle not clamped: %+v", got[1])
	}
	checkBounds(t, f)

	// The caller's slice is not aliased
	saved[0].Pos.X = 999
	if f.Particles()[0].Pos.X != 10 {
		t.Error("restore should copy the batch")
	}
}
