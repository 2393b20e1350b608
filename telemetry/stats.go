package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// StepStats holds aggregated solver statistics for a window of steps.
type StepStats struct {
	WindowStartStep int64   `csv:"-"`
	WindowEndStep   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Steps           int     `csv:"steps"`

	GridW int `csv:"grid_w"`
	GridH int `csv:"grid_h"`

	// Impulses during the window
	Splats   int `csv:"splats"`
	Bursts   int `csv:"bursts"`
	Emitters int `csv:"emitters"` // Live emitters at window end

	// Mean |div| of the advected velocity, before projection, per step
	DivBeforeMean float64 `csv:"div_before_mean"`
	DivBeforeP50  float64 `csv:"div_before_p50"`
	DivBeforeP90  float64 `csv:"div_before_p90"`
	DivBeforeMax  float64 `csv:"div_before_max"`

	// Mean |div| after projection, sampled every divergence_interval steps
	DivAfterMean float64 `csv:"div_after_mean"`
	DivSamples   int     `csv:"div_samples"`

	// Field totals at window end
	DyeMass       float64 `csv:"dye_mass"`       // Mean |dye| per channel
	KineticEnergy float64 `csv:"kinetic_energy"` // Mean |v|² per cell
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	if lo+1 >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// Summary returns mean, median, p90 and max of values. values is not modified.
func Summary(values []float64) (mean, p50, p90, peak float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = floats.Sum(values) / float64(len(values))

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return mean, Percentile(sorted, 0.5), Percentile(sorted, 0.9), sorted[len(sorted)-1]
}

// LogValue implements slog.LogValuer for structured logging.
func (s StepStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartStep),
		slog.Int64("window_end", s.WindowEndStep),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("grid_w", s.GridW),
		slog.Int("grid_h", s.GridH),
		slog.Int("splats", s.Splats),
		slog.Int("bursts", s.Bursts),
		slog.Int("emitters", s.Emitters),
		slog.Float64("div_before_mean", s.DivBeforeMean),
		slog.Float64("div_before_p90", s.DivBeforeP90),
		slog.Float64("div_after_mean", s.DivAfterMean),
		slog.Float64("dye_mass", s.DyeMass),
		slog.Float64("kinetic_energy", s.KineticEnergy),
	)
}

// LogStats logs the window stats using slog.
func (s StepStats) LogStats() {
	slog.Info("stats", "window", s)
}
