package telemetry

import (
	"time"

	"github.com/pthm-cable/backdrop/field"
)

// Clock returns the host time used to place frames in windows.
type Clock func() time.Duration

// Collector accumulates frame loop events within time windows and produces
// FrameWindow records. It implements field.Observer.
type Collector struct {
	window time.Duration
	clock  Clock

	// Current window tracking
	windowStart time.Duration

	// Event counters for current window
	executed  int
	skipped   int
	reseeds   int
	lines     int
	particles int

	lastExecuted time.Duration
	hasExecuted  bool
	intervals    []float64 // ms between executed frames
}

// NewCollector creates a new frame stats collector.
// windowDurationSec: how long each window lasts in host seconds
// clock: the host clock, read on every event
func NewCollector(windowDurationSec float64, clock Clock) *Collector {
	window := time.Duration(windowDurationSec * float64(time.Second))
	if window <= 0 {
		window = time.Second
	}
	return &Collector{
		window:      window,
		clock:       clock,
		windowStart: clock(),
	}
}

// FrameSkipped records a gated callback.
func (c *Collector) FrameSkipped() {
	c.skipped++
}

// FrameExecuted records an executed frame.
func (c *Collector) FrameExecuted(s field.StepStats) {
	now := c.clock()
	if c.hasExecuted {
		c.intervals = append(c.intervals, float64(now-c.lastExecuted)/float64(time.Millisecond))
	}
	c.lastExecuted = now
	c.hasExecuted = true

	c.executed++
	c.lines += s.Lines
	c.particles = s.Particles
}

// Reseeded records a batch (re)generation.
func (c *Collector) Reseeded(count int) {
	c.reseeds++
	c.particles = count
}

// ShouldFlush returns true if the current window has elapsed.
func (c *Collector) ShouldFlush() bool {
	return c.clock()-c.windowStart >= c.window
}

// Flush produces a FrameWindow and resets counters for the next window.
func (c *Collector) Flush() FrameWindow {
	now := c.clock()
	elapsed := (now - c.windowStart).Seconds()

	mean, std, p50, p90 := ComputeIntervalStats(c.intervals)

	stats := FrameWindow{
		WindowStartSec: c.windowStart.Seconds(),
		WindowEndSec:   now.Seconds(),
		Callbacks:      c.executed + c.skipped,
		Executed:       c.executed,
		Skipped:        c.skipped,
		IntervalMeanMS: mean,
		IntervalStdMS:  std,
		IntervalP50MS:  p50,
		IntervalP90MS:  p90,
		Particles:      c.particles,
		Reseeds:        c.reseeds,
	}
	if elapsed > 0 {
		stats.ExecutedPerSec = float64(c.executed) / elapsed
	}
	if c.executed > 0 {
		stats.LinesMean = float64(c.lines) / float64(c.executed)
	}

	// Reset for next window; particle count and last frame carry over
	c.windowStart = now
	c.executed = 0
	c.skipped = 0
	c.reseeds = 0
	c.lines = 0
	c.intervals = c.intervals[:0]

	return stats
}

// WindowDuration returns the window length.
func (c *Collector) WindowDuration() time.Duration {
	return c.window
}
