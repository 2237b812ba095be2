package game

import "image/color"

// countingSurface stands in for the window in headless mode.
type countingSurface struct {
	w, h     int
	scale    float64
	detached bool

	clears, circles, lines, flushes int
}

func (s *countingSurface) Resize(w, h int, scale float64) {
	s.w, s.h, s.scale = w, h, scale
}

func (s *countingSurface) Clear() { s.clears++ }

func (s *countingSurface) FillCircle(x, y, r float64, c color.NRGBA) { s.circles++ }

func (s *countingSurface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) { s.lines++ }

func (s *countingSurface) Flush() { s.flushes++ }

func (s *countingSurface) Detach() error {
	s.detached = true
	return nil
}
