package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/ink/fluid"
)

func TestCollector_FlushWindow(t *testing.T) {
	c := NewCollector(4, 0.016)

	for step := int64(1); step <= 4; step++ {
		c.RecordStep(fluid.StepInfo{Step: step, Splats: 2, DivergenceBefore: float64(step)})
		if step < 4 && c.ShouldFlush(step) {
			t.Fatalf("flush requested early at step %d", step)
		}
	}
	c.RecordDivergenceAfter(0.5)
	c.RecordBurst()

	if !c.ShouldFlush(4) {
		t.Fatal("expected flush after 4 steps")
	}
	stats := c.Flush(4, FieldTotals{GridW: 64, GridH: 36, DyeMass: 0.2, KineticEnergy: 3, Emitters: 5})

	if stats.WindowStartStep != 0 || stats.WindowEndStep != 4 || stats.Steps != 4 {
		t.Errorf("window = [%d, %d] over %d steps", stats.WindowStartStep, stats.WindowEndStep, stats.Steps)
	}
	if stats.Splats != 8 || stats.Bursts != 1 || stats.Emitters != 5 {
		t.Errorf("counts: splats=%d bursts=%d emitters=%d", stats.Splats, stats.Bursts, stats.Emitters)
	}
	if stats.DivBeforeMean != 2.5 || stats.DivBeforeMax != 4 {
		t.Errorf("div before mean=%v max=%v, want 2.5 and 4", stats.DivBeforeMean, stats.DivBeforeMax)
	}
	if stats.DivAfterMean != 0.5 || stats.DivSamples != 1 {
		t.Errorf("div after mean=%v samples=%d", stats.DivAfterMean, stats.DivSamples)
	}
	if math.Abs(stats.SimTimeSec-0.064) > 1e-6 {
		t.Errorf("sim time = %v, want 0.064", stats.SimTimeSec)
	}
	if stats.GridW != 64 || stats.GridH != 36 || stats.DyeMass != 0.2 || stats.KineticEnergy != 3 {
		t.Errorf("field totals not carried: %+v", stats)
	}
}

func TestCollector_ResetsAfterFlush(t *testing.T) {
	c := NewCollector(2, 0.016)
	c.RecordStep(fluid.StepInfo{Step: 1, Splats: 3, DivergenceBefore: 1})
	c.RecordStep(fluid.StepInfo{Step: 2, Splats: 3, DivergenceBefore: 1})
	c.Flush(2, FieldTotals{})

	if c.ShouldFlush(3) {
		t.Error("new window should not be complete after one step")
	}
	c.RecordStep(fluid.StepInfo{Step: 3})
	c.RecordStep(fluid.StepInfo{Step: 4})
	stats := c.Flush(4, FieldTotals{})

	if stats.WindowStartStep != 2 || stats.Splats != 0 || stats.DivBeforeMean != 0 || stats.DivSamples != 0 {
		t.Errorf("counters leaked into the next window: %+v", stats)
	}
}

func TestCollector_MinimumWindow(t *testing.T) {
	c := NewCollector(0, 0.016)
	if c.WindowSteps() != 1 {
		t.Errorf("window = %d, want 1", c.WindowSteps())
	}
}
