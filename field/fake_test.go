package field

import (
	"errors"
	"image/color"
	"math/rand"
)

// fakeHost is an in-memory Host that records lifecycle calls.
type fakeHost struct {
	FrameQueue
	ResizeListeners

	w, h      float64
	dpr       float64
	reduced   bool
	attachErr error

	surface *recordingSurface
	events  []string
}

func newFakeHost(w, h, dpr float64) *fakeHost {
	return &fakeHost{w: w, h: h, dpr: dpr}
}

func (h *fakeHost) Viewport() (float64, float64) { return h.w, h.h }
func (h *fakeHost) DevicePixelRatio() float64    { return h.dpr }
func (h *fakeHost) PrefersReducedMotion() bool   { return h.reduced }

func (h *fakeHost) AttachSurface(w, hh int, scale float64) (Surface, error) {
	if h.attachErr != nil {
		return nil, h.attachErr
	}
	h.events = append(h.events, "attach")
	h.surface = &recordingSurface{host: h, w: w, h: hh, scale: scale}
	return h.surface, nil
}

func (h *fakeHost) AddResizeListener(fn func()) func() {
	remove := h.ResizeListeners.AddResizeListener(fn)
	return func() {
		h.events = append(h.events, "remove-listener")
		remove()
	}
}

func (h *fakeHost) CancelFrame(fh FrameHandle) {
	h.events = append(h.events, "cancel-frame")
	h.FrameQueue.CancelFrame(fh)
}

// resize changes the viewport and fires the listeners.
func (h *fakeHost) resize(w, hh float64) {
	h.w, h.h = w, hh
	h.NotifyResize()
}

// recordingSurface counts draw calls and fails loudly on use after detach.
type recordingSurface struct {
	host     *fakeHost
	w, h     int
	scale    float64
	detached bool

	clears, circles, lines, flushes, resizes int
	drawAfterDetach                          int
	lastLine                                 color.NRGBA
}

func (s *recordingSurface) touch() {
	if s.detached {
		s.drawAfterDetach++
	}
}

func (s *recordingSurface) Resize(w, h int, scale float64) {
	s.touch()
	s.w, s.h, s.scale = w, h, scale
	s.resizes++
}

func (s *recordingSurface) Clear() {
	s.touch()
	s.clears++
}

func (s *recordingSurface) FillCircle(x, y, r float64, c color.NRGBA) {
	s.touch()
	s.circles++
}

func (s *recordingSurface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	s.touch()
	s.lines++
	s.lastLine = c
}

func (s *recordingSurface) Flush() {
	s.touch()
	s.flushes++
}

func (s *recordingSurface) Detach() error {
	if s.detached {
		return errors.New("already detached")
	}
	s.detached = true
	s.host.events = append(s.host.events, "detach")
	return nil
}

// countingObserver tallies loop events.
type countingObserver struct {
	skipped, executed int
	reseeds           []int
	lastStats         StepStats
}

func (o *countingObserver) FrameSkipped() { o.skipped++ }
func (o *countingObserver) FrameExecuted(s StepStats) {
	o.executed++
	o.lastStats = s
}
func (o *countingObserver) Reseeded(n int) { o.reseeds = append(o.reseeds, n) }

func seeded() Option {
	return WithRand(rand.New(rand.NewSource(42)))
}
