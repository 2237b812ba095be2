package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkStall  BookmarkType = "stall"
	BookmarkJitter BookmarkType = "jitter"
	BookmarkReseed BookmarkType = "reseed"
	BookmarkSteady BookmarkType = "steady"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type         BookmarkType `json:"type" csv:"type"`
	WindowEndSec float64      `json:"window_end_sec" csv:"window_end_sec"`
	Description  string       `json:"description" csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"window_end_sec", b.WindowEndSec,
		"description", b.Description,
	)
}

// BookmarkDetector flags frame windows worth a closer look: pacing that
// dropped or wobbled against recent history, batches that were replaced,
// and the point where pacing settles.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []FrameWindow
	historySize int
	historyIdx  int
	historyFull bool

	steadyWindows int // consecutive windows with steady pacing
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady detection
	}
	return &BookmarkDetector{
		history:     make([]FrameWindow, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest window and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(w FrameWindow) []Bookmark {
	var bookmarks []Bookmark

	if w.Reseeds > 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:         BookmarkReseed,
			WindowEndSec: w.WindowEndSec,
			Description:  fmt.Sprintf("Batch replaced %d time(s), now %d particles", w.Reseeds, w.Particles),
		})
	}

	// Stall: executed rate < half the rolling average
	if b := bd.checkStall(w); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Jitter: p90 interval > 2x rolling average
	if b := bd.checkJitter(w); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(w)

	// Steady: executed rate varies < 5% over the last 4 windows
	if b := bd.checkSteady(w); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(w FrameWindow) {
	bd.history[bd.historyIdx] = w
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []FrameWindow {
	var ordered []FrameWindow
	if bd.historyFull {
		ordered = append(ordered, bd.history[bd.historyIdx:]...)
	}
	ordered = append(ordered, bd.history[:bd.historyIdx]...)
	if len(ordered) > n {
		ordered = ordered[len(ordered)-n:]
	}
	return ordered
}

func (bd *BookmarkDetector) checkStall(w FrameWindow) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	rates := make([]float64, len(history))
	for i, h := range history {
		rates[i] = h.ExecutedPerSec
	}
	avg := stat.Mean(rates, nil)
	if avg == 0 {
		return nil
	}

	if w.ExecutedPerSec < avg*0.5 {
		return &Bookmark{
			Type:         BookmarkStall,
			WindowEndSec: w.WindowEndSec,
			Description:  fmt.Sprintf("Executed %.1f frames/s, %.0f%% of average %.1f", w.ExecutedPerSec, 100*w.ExecutedPerSec/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkJitter(w FrameWindow) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 || w.Executed < 2 {
		return nil
	}

	p90s := make([]float64, len(history))
	for i, h := range history {
		p90s[i] = h.IntervalP90MS
	}
	avg := stat.Mean(p90s, nil)
	if avg == 0 {
		return nil
	}

	if w.IntervalP90MS > avg*2 {
		return &Bookmark{
			Type:         BookmarkJitter,
			WindowEndSec: w.WindowEndSec,
			Description:  fmt.Sprintf("p90 interval %.1fms is %.1fx average (%.1fms)", w.IntervalP90MS, w.IntervalP90MS/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSteady(w FrameWindow) *Bookmark {
	last := bd.recent(4)
	if len(last) < 4 || w.Executed == 0 {
		bd.steadyWindows = 0
		return nil
	}

	rates := make([]float64, len(last))
	for i, h := range last {
		rates[i] = h.ExecutedPerSec
	}
	mean, variance := stat.PopMeanVariance(rates, nil)

	// CV^2 < 0.0025 means CV < 5%
	if mean > 0 && variance/(mean*mean) < 0.0025 {
		bd.steadyWindows++
	} else {
		bd.steadyWindows = 0
	}

	if bd.steadyWindows == 5 { // trigger exactly once per steady run
		return &Bookmark{
			Type:         BookmarkSteady,
			WindowEndSec: w.WindowEndSec,
			Description:  fmt.Sprintf("Pacing steady at %.1f frames/s with %d particles", mean, w.Particles),
		}
	}
	return nil
}
