package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// FrameWindow holds aggregated frame loop statistics for a time window.
type FrameWindow struct {
	WindowStartSec float64 `csv:"-"`
	WindowEndSec   float64 `csv:"window_end_sec"`

	// Frame callbacks during window
	Callbacks      int     `csv:"callbacks"`
	Executed       int     `csv:"executed"`
	Skipped        int     `csv:"skipped"`
	ExecutedPerSec float64 `csv:"executed_per_sec"`

	// Interval between executed frames
	IntervalMeanMS float64 `csv:"interval_mean_ms"`
	IntervalStdMS  float64 `csv:"interval_std_ms"`
	IntervalP50MS  float64 `csv:"interval_p50_ms"`
	IntervalP90MS  float64 `csv:"interval_p90_ms"`

	// Field state
	Particles int     `csv:"particles"` // at window end
	LinesMean float64 `csv:"lines_mean"`
	Reseeds   int     `csv:"reseeds"`
}

// Quantile returns the empirical p-quantile of a sorted slice.
// p is clamped to [0, 1]. Returns 0 if the slice is empty.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeIntervalStats calculates mean, standard deviation, and the median
// and 90th percentile of frame intervals.
func ComputeIntervalStats(values []float64) (mean, std, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}
	if n == 1 {
		return values[0], 0, values[0], values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = Quantile(sorted, 0.50)
	p90 = Quantile(sorted, 0.90)

	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameWindow) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("window_start_sec", s.WindowStartSec),
		slog.Float64("window_end_sec", s.WindowEndSec),
		slog.Int("callbacks", s.Callbacks),
		slog.Int("executed", s.Executed),
		slog.Int("skipped", s.Skipped),
		slog.Float64("executed_per_sec", s.ExecutedPerSec),
		slog.Float64("interval_mean_ms", s.IntervalMeanMS),
		slog.Float64("interval_std_ms", s.IntervalStdMS),
		slog.Float64("interval_p50_ms", s.IntervalP50MS),
		slog.Float64("interval_p90_ms", s.IntervalP90MS),
		slog.Int("particles", s.Particles),
		slog.Float64("lines_mean", s.LinesMean),
		slog.Int("reseeds", s.Reseeds),
	)
}

// LogStats logs the window using slog.
func (s FrameWindow) LogStats() {
	slog.Info("frames",
		"window_end_sec", s.WindowEndSec,
		"executed", s.Executed,
		"skipped", s.Skipped,
		"executed_per_sec", s.ExecutedPerSec,
		"interval_p50_ms", s.IntervalP50MS,
		"interval_p90_ms", s.IntervalP90MS,
		"particles", s.Particles,
		"lines_mean", s.LinesMean,
		"reseeds", s.Reseeds,
	)
}
