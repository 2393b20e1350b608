package game

import (
	"log/slog"

	"github.com/pthm-cable/ink/fluid"
	"github.com/pthm-cable/ink/telemetry"
)

// flushTelemetry closes the stats window when it is complete: field totals are
// sampled, the window is logged and written to CSV.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.step) {
		return
	}

	gw, gh := g.driver.GridSize()
	bursts, wanderers := g.emitters.Counts()
	stats := g.collector.Flush(g.step, telemetry.FieldTotals{
		GridW:         gw,
		GridH:         gh,
		DyeMass:       fluid.MeanAbs(g.driver.Dye()),
		KineticEnergy: fluid.Energy(g.driver.Velocity()),
		Emitters:      bursts + wanderers,
	})
	perfStats := g.perf.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteSteps(stats); err != nil {
			slog.Error("failed to write step stats", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndStep); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
