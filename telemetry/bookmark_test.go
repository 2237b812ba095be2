package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func steadyWindow(i int) FrameWindow {
	return FrameWindow{
		WindowEndSec:   float64(i+1) * 5,
		Executed:       300,
		ExecutedPerSec: 60,
		IntervalP90MS:  16.7,
		Particles:      50,
	}
}

func TestBookmarkDetector_Stall(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(steadyWindow(i))
	}

	stalled := steadyWindow(5)
	stalled.ExecutedPerSec = 20
	stalled.Executed = 100

	if !hasBookmark(bd.Check(stalled), BookmarkStall) {
		t.Error("expected stall bookmark")
	}
}

func TestBookmarkDetector_StallNeedsHistory(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(steadyWindow(0))

	stalled := steadyWindow(1)
	stalled.ExecutedPerSec = 1
	if hasBookmark(bd.Check(stalled), BookmarkStall) {
		t.Error("stall needs at least 3 windows of history")
	}
}

func TestBookmarkDetector_Jitter(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 4; i++ {
		bd.Check(steadyWindow(i))
	}

	jittery := steadyWindow(4)
	jittery.IntervalP90MS = 50

	bookmarks := bd.Check(jittery)
	if !hasBookmark(bookmarks, BookmarkJitter) {
		t.Error("expected jitter bookmark")
	}
	if hasBookmark(bookmarks, BookmarkStall) {
		t.Error("unchanged rate should not stall")
	}
}

func TestBookmarkDetector_Reseed(t *testing.T) {
	bd := NewBookmarkDetector(10)

	w := steadyWindow(0)
	w.Reseeds = 1
	if !hasBookmark(bd.Check(w), BookmarkReseed) {
		t.Error("expected reseed bookmark")
	}
	if hasBookmark(bd.Check(steadyWindow(1)), BookmarkReseed) {
		t.Error("no reseed in window")
	}
}

func TestBookmarkDetector_SteadyOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var fired []int
	for i := 0; i < 15; i++ {
		if hasBookmark(bd.Check(steadyWindow(i)), BookmarkSteady) {
			fired = append(fired, i)
		}
	}
	// Four windows fill the check, then five steady checks in a row
	if len(fired) != 1 || fired[0] != 7 {
		t.Errorf("steady fired at %v, want [7]", fired)
	}
}

func TestBookmarkDetector_SteadyResets(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 6; i++ {
		bd.Check(steadyWindow(i))
	}

	wobble := steadyWindow(6)
	wobble.ExecutedPerSec = 40
	bd.Check(wobble)

	// The wobble stays in the last four windows for four more checks
	var fired []int
	for i := 7; i < 20; i++ {
		if hasBookmark(bd.Check(steadyWindow(i)), BookmarkSteady) {
			fired = append(fired, i)
		}
	}
	if len(fired) != 1 || fired[0] != 14 {
		t.Errorf("steady fired at %v, want [14]", fired)
	}
}
