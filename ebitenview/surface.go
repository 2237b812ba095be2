package ebitenview

import (
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ErrDetached is returned when a detached surface is detached again.
var ErrDetached = errors.New("ebitenview: surface detached")

// Surface draws the field into an offscreen image at backing resolution.
type Surface struct {
	img      *ebiten.Image
	w, h     int
	scale    float64
	detached bool
}

// NewSurface allocates an offscreen image of w x h backing pixels.
func NewSurface(w, h int, scale float64) *Surface {
	s := &Surface{}
	s.alloc(w, h, scale)
	return s
}

func (s *Surface) alloc(w, h int, scale float64) {
	s.img = ebiten.NewImage(max(w, 1), max(h, 1))
	s.w, s.h, s.scale = w, h, scale
}

// Resize reallocates the image for a new backing size.
func (s *Surface) Resize(w, h int, scale float64) {
	if s.detached {
		return
	}
	if w == s.w && h == s.h {
		s.scale = scale
		return
	}
	s.img.Deallocate()
	s.alloc(w, h, scale)
}

// Clear makes the image fully transparent.
func (s *Surface) Clear() {
	if s.detached {
		return
	}
	s.img.Clear()
}

// FillCircle draws an antialiased filled circle in backing pixels.
func (s *Surface) FillCircle(x, y, r float64, c color.NRGBA) {
	if s.detached {
		return
	}
	vector.DrawFilledCircle(s.img, float32(x), float32(y), float32(r), c, true)
}

// StrokeLine draws an antialiased line segment in backing pixels.
func (s *Surface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	if s.detached {
		return
	}
	vector.StrokeLine(s.img, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), c, true)
}

// Flush is a no-op; the image is composited in Draw.
func (s *Surface) Flush() {}

// Detach frees the image. A second call returns ErrDetached.
func (s *Surface) Detach() error {
	if s.detached {
		return ErrDetached
	}
	s.img.Deallocate()
	s.detached = true
	return nil
}

// Image returns the offscreen image, or nil once detached.
func (s *Surface) Image() *ebiten.Image {
	if s.detached {
		return nil
	}
	return s.img
}
