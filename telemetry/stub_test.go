package telemetry

import (
	"image/color"
	"time"

	"github.com/pthm-cable/backdrop/field"
)

// stubHost is a minimal field.Host with a settable clock.
type stubHost struct {
	field.FrameQueue
	field.ResizeListeners

	w, h float64
	now  time.Duration
}

func (h *stubHost) Now() time.Duration           { return h.now }
func (h *stubHost) Viewport() (float64, float64) { return h.w, h.h }
func (h *stubHost) DevicePixelRatio() float64    { return 1 }
func (h *stubHost) PrefersReducedMotion() bool   { return false }

func (h *stubHost) AttachSurface(w, hh int, scale float64) (field.Surface, error) {
	return nopSurface{}, nil
}

type nopSurface struct{}

func (nopSurface) Resize(int, int, float64)                                {}
func (nopSurface) Clear()                                                  {}
func (nopSurface) FillCircle(x, y, r float64, c color.NRGBA)               {}
func (nopSurface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {}
func (nopSurface) Flush()                                                  {}
func (nopSurface) Detach() error                                           { return nil }
