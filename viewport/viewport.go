// Package viewport maps the logical size a host reports onto the backing
// resolution of a drawing surface.
package viewport

import "math"

// Viewport is a logical (CSS-like) window size plus the device pixel ratio
// that scales it to backing pixels.
type Viewport struct {
	// Logical dimensions, as reported by the host
	W, H float64

	// Device pixel ratio (1.0 = one backing pixel per logical pixel)
	Scale float64
}

// New creates a viewport. A non-positive or NaN scale is treated as 1.
func New(w, h, scale float64) Viewport {
	return Viewport{
		W:     math.Max(w, 0),
		H:     math.Max(h, 0),
		Scale: NormalizeScale(scale),
	}
}

// NormalizeScale returns scale, or 1 when scale is not a usable ratio.
func NormalizeScale(scale float64) float64 {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return 1
	}
	return scale
}

// Backing returns the backing surface size in device pixels.
// Fractional pixels are truncated, matching how a canvas stores its width.
func (v Viewport) Backing() (w, h int) {
	return int(v.W * v.Scale), int(v.H * v.Scale)
}

// Bounds returns the backing size as floats, the space particles live in.
func (v Viewport) Bounds() (w, h float64) {
	bw, bh := v.Backing()
	return float64(bw), float64(bh)
}

// Equal reports whether two viewports produce the same surface.
func (v Viewport) Equal(o Viewport) bool {
	return v.W == o.W && v.H == o.H && v.Scale == o.Scale
}

// Tracker detects changes in the viewport a host reports between frames.
// Hosts without resize events poll through it once per frame.
type Tracker struct {
	current Viewport
	primed  bool
}

// Observe records the latest host size and reports whether it differs from
// the previous observation. The first observation never counts as a change.
func (t *Tracker) Observe(w, h, scale float64) bool {
	next := New(w, h, scale)
	if !t.primed {
		t.current = next
		t.primed = true
		return false
	}
	if next.Equal(t.current) {
		return false
	}
	t.current = next
	return true
}
