package telemetry

import "github.com/pthm-cable/ink/fluid"

// Collector accumulates per-step measurements and produces a StepStats every
// windowSteps steps.
type Collector struct {
	windowSteps int64
	dt          float32

	windowStart int64
	steps       int
	splats      int
	bursts      int
	divBefore   []float64
	divAfter    []float64
}

// NewCollector creates a collector that flushes every windowSteps steps of dt
// seconds each.
func NewCollector(windowSteps int, dt float32) *Collector {
	if windowSteps < 1 {
		windowSteps = 1
	}
	return &Collector{
		windowSteps: int64(windowSteps),
		dt:          dt,
		divBefore:   make([]float64, 0, windowSteps),
	}
}

// RecordStep folds one completed step into the window.
func (c *Collector) RecordStep(info fluid.StepInfo) {
	c.steps++
	c.splats += info.Splats
	c.divBefore = append(c.divBefore, info.DivergenceBefore)
}

// RecordDivergenceAfter records a post-projection divergence sample.
func (c *Collector) RecordDivergenceAfter(meanAbs float64) {
	c.divAfter = append(c.divAfter, meanAbs)
}

// RecordBurst records a click burst.
func (c *Collector) RecordBurst() {
	c.bursts++
}

// ShouldFlush reports whether the window ending at step is complete.
func (c *Collector) ShouldFlush(step int64) bool {
	return step-c.windowStart >= c.windowSteps
}

// FieldTotals are end-of-window measurements taken from the live fields.
type FieldTotals struct {
	GridW, GridH  int
	DyeMass       float64
	KineticEnergy float64
	Emitters      int
}

// Flush produces the window's StepStats and starts a new window at step.
func (c *Collector) Flush(step int64, totals FieldTotals) StepStats {
	beforeMean, beforeP50, beforeP90, beforeMax := Summary(c.divBefore)
	afterMean, _, _, _ := Summary(c.divAfter)

	stats := StepStats{
		WindowStartStep: c.windowStart,
		WindowEndStep:   step,
		SimTimeSec:      float64(step) * float64(c.dt),
		Steps:           c.steps,

		GridW: totals.GridW,
		GridH: totals.GridH,

		Splats:   c.splats,
		Bursts:   c.bursts,
		Emitters: totals.Emitters,

		DivBeforeMean: beforeMean,
		DivBeforeP50:  beforeP50,
		DivBeforeP90:  beforeP90,
		DivBeforeMax:  beforeMax,

		DivAfterMean: afterMean,
		DivSamples:   len(c.divAfter),

		DyeMass:       totals.DyeMass,
		KineticEnergy: totals.KineticEnergy,
	}

	c.windowStart = step
	c.steps, c.splats, c.bursts = 0, 0, 0
	c.divBefore = c.divBefore[:0]
	c.divAfter = c.divAfter[:0]

	return stats
}

// WindowSteps returns the number of steps per window.
func (c *Collector) WindowSteps() int64 {
	return c.windowSteps
}
