package field

import "image/color"

// Surface is a full-viewport drawing layer behind the host's content.
// Coordinates and sizes are in backing pixels.
type Surface interface {
	// Resize sets the backing size. The displayed size is the backing
	// size divided by scale.
	Resize(w, h int, scale float64)
	Clear()
	FillCircle(x, y, r float64, c color.NRGBA)
	StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA)
	// Flush presents what was drawn since the last Clear.
	Flush()
	// Detach removes the surface from the host and frees it.
	Detach() error
}

// Host is the environment a Field runs in: a window, a terminal, or a
// test double.
type Host interface {
	// Viewport returns the logical size of the visible area.
	Viewport() (w, h float64)
	DevicePixelRatio() float64
	PrefersReducedMotion() bool

	// AttachSurface creates a surface with the given backing size and
	// places it behind all other content.
	AttachSurface(w, h int, scale float64) (Surface, error)

	// AddResizeListener registers fn for viewport changes and returns a
	// function that unregisters it.
	AddResizeListener(fn func()) (remove func())

	RequestFrame(fn FrameFunc) FrameHandle
	CancelFrame(h FrameHandle)
}

// ResizeListeners is a small registry hosts embed to satisfy
// AddResizeListener.
type ResizeListeners struct {
	next int
	fns  map[int]func()
}

// AddResizeListener registers fn and returns its remover.
func (l *ResizeListeners) AddResizeListener(fn func()) func() {
	if l.fns == nil {
		l.fns = make(map[int]func())
	}
	l.next++
	id := l.next
	l.fns[id] = fn
	return func() { delete(l.fns, id) }
}

// NotifyResize calls every registered listener in registration order.
func (l *ResizeListeners) NotifyResize() {
	for id := 1; id <= l.next; id++ {
		if fn, ok := l.fns[id]; ok {
			fn()
		}
	}
}

// Len returns the number of registered listeners.
func (l *ResizeListeners) Len() int {
	return len(l.fns)
}
