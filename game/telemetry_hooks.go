package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/backdrop/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush() {
		return
	}

	stats := g.collector.Flush()
	perfStats := g.perfCollector.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteFrames(stats); err != nil {
			slog.Error("failed to write frames", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndSec); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	// Check for bookmarks
	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		// Save snapshot on bookmark
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm, stats.WindowEndSec)
		}
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark, windowEndSec float64) {
	snapshot := telemetry.NewSnapshot(g.field, g.seed, windowEndSec, bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "particles", len(snapshot.Particles))
}

// restoreSnapshot loads a saved batch into the running field.
func (g *Game) restoreSnapshot(path string) error {
	snapshot, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}

	v := g.field.Viewport()
	if v.W != snapshot.ViewportW || v.H != snapshot.ViewportH || v.Scale != snapshot.DPR {
		slog.Warn("snapshot viewport differs, positions are clamped",
			"snapshot_w", snapshot.ViewportW,
			"snapshot_h", snapshot.ViewportH,
			"snapshot_dpr", snapshot.DPR,
			"viewport_w", v.W,
			"viewport_h", v.H,
			"dpr", v.Scale,
		)
	}

	g.field.Restore(snapshot.FieldParticles())
	slog.Info("snapshot restored", "path", path, "particles", g.field.Count(), "seed", snapshot.RNGSeed)
	return nil
}
