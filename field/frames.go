package field

import "time"

// FrameFunc is an animation-frame callback. ts is the host clock at the
// start of the frame.
type FrameFunc func(ts time.Duration)

// FrameHandle identifies a requested frame callback. Zero means none.
type FrameHandle uint64

type frameRequest struct {
	handle FrameHandle
	fn     FrameFunc
}

// FrameQueue is a requestAnimationFrame-style scheduler. Hosts own one and
// drain it once per display frame.
type FrameQueue struct {
	next    FrameHandle
	pending []frameRequest
	current []frameRequest
}

// RequestFrame schedules fn for the next RunFrame.
func (q *FrameQueue) RequestFrame(fn FrameFunc) FrameHandle {
	q.next++
	q.pending = append(q.pending, frameRequest{handle: q.next, fn: fn})
	return q.next
}

// CancelFrame drops a scheduled callback. Cancelling a callback that is
// part of the batch currently running prevents it from running.
// Unknown or already-run handles are ignored.
func (q *FrameQueue) CancelFrame(h FrameHandle) {
	if h == 0 {
		return
	}
	for i := range q.pending {
		if q.pending[i].handle == h {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
	for i := range q.current {
		if q.current[i].handle == h {
			q.current[i].fn = nil
			return
		}
	}
}

// RunFrame runs every callback requested before the call, in request
// order. Callbacks requested while running are deferred to the next frame.
// It returns how many callbacks ran.
func (q *FrameQueue) RunFrame(ts time.Duration) int {
	q.current = q.pending
	q.pending = nil

	ran := 0
	for i := range q.current {
		fn := q.current[i].fn
		if fn == nil {
			continue
		}
		q.current[i].fn = nil
		fn(ts)
		ran++
	}
	q.current = nil
	return ran
}

// Pending returns the number of callbacks waiting for the next frame.
func (q *FrameQueue) Pending() int {
	return len(q.pending)
}
