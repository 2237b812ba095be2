package field

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"
)

// Params holds the constants of the particle field.
type Params struct {
	Cap             int           // Upper bound on particle count
	Divisor         float64       // Logical pixels of viewport width per particle
	ConnectDistance float64       // Link threshold in logical pixels (scaled by DPR)
	SizeMin         float64       // Smallest particle radius
	SizeMax         float64       // Radius upper bound (exclusive)
	Speed           float64       // Velocity components are uniform in [-Speed, Speed)
	Fill            color.NRGBA   // Particle fill
	Line            color.NRGBA   // Link stroke color; alpha comes from LineOpacity
	LineAlpha       float64       // Link opacity at distance 0
	LineWidth       float64       // Link stroke width in backing pixels
	FrameInterval   time.Duration // Minimum time between executed frames
}

// DefaultParams returns the stock field look.
func DefaultParams() Params {
	return Params{
		Cap:             50,
		Divisor:         20,
		ConnectDistance: 150,
		SizeMin:         0.5,
		SizeMax:         2.0,
		Speed:           0.075,
		Fill:            color.NRGBA{R: 255, G: 255, B: 255, A: 128},
		Line:            color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		LineAlpha:       0.8,
		LineWidth:       0.8,
		FrameInterval:   16670 * time.Microsecond,
	}
}

// ParticleCount returns min(Cap, floor(viewportWidth / Divisor)).
func (p Params) ParticleCount(viewportWidth float64) int {
	if p.Divisor <= 0 || viewportWidth <= 0 || p.Cap <= 0 {
		return 0
	}
	n := math.Floor(viewportWidth / p.Divisor)
	if n >= float64(p.Cap) {
		return p.Cap
	}
	return int(n)
}

// LineOpacity returns the link opacity for two particles d apart.
// The second result is false when no line should be drawn.
func (p Params) LineOpacity(d, threshold float64) (float64, bool) {
	if threshold <= 0 || d < 0 || d >= threshold {
		return 0, false
	}
	return p.LineAlpha * (1 - d/threshold), true
}

// Validate reports every inconsistent value.
func (p Params) Validate() error {
	var errs []error
	if p.Cap < 0 {
		errs = append(errs, fmt.Errorf("cap must be >= 0, got %d", p.Cap))
	}
	if p.Divisor <= 0 {
		errs = append(errs, fmt.Errorf("divisor must be > 0, got %g", p.Divisor))
	}
	if p.ConnectDistance < 0 {
		errs = append(errs, fmt.Errorf("connect_distance must be >= 0, got %g", p.ConnectDistance))
	}
	if p.SizeMin < 0 || p.SizeMax < p.SizeMin {
		errs = append(errs, fmt.Errorf("size range [%g, %g) is invalid", p.SizeMin, p.SizeMax))
	}
	if p.Speed < 0 {
		errs = append(errs, fmt.Errorf("speed must be >= 0, got %g", p.Speed))
	}
	if !(p.LineAlpha > 0 && p.LineAlpha <= 1) {
		errs = append(errs, fmt.Errorf("line_alpha must be in (0, 1], got %g", p.LineAlpha))
	}
	if p.LineWidth <= 0 {
		errs = append(errs, fmt.Errorf("line_width must be > 0, got %g", p.LineWidth))
	}
	if p.FrameInterval < 0 {
		errs = append(errs, fmt.Errorf("frame_interval must be >= 0, got %s", p.FrameInterval))
	}
	return errors.Join(errs...)
}

// lineColor returns the link color at the given opacity.
func (p Params) lineColor(alpha float64) color.NRGBA {
	c := p.Line
	c.A = uint8(math.Round(clamp01(alpha) * 255))
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
