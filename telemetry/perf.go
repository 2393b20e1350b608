package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"github.com/pthm-cable/ink/fluid"
)

// Phase names outside the solver. The solver's own phases are the fluid.Phase*
// constants, reported through fluid.PhaseTimer.
const (
	PhaseInput     = "input"
	PhaseEmitters  = "emitters"
	PhaseTelemetry = "telemetry"
)

// AllPhases lists every phase in step order.
var AllPhases = slices.Concat([]string{PhaseInput, PhaseEmitters}, fluid.Phases, []string{PhaseTelemetry})

// PerfSample holds timing data for a single step.
type PerfSample struct {
	StepDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks step timing over a rolling window. It satisfies
// fluid.PhaseTimer, so the driver reports its own phases into the open step.
type PerfCollector struct {
	ring  []PerfSample
	next  int
	count int

	open       map[string]time.Duration
	stepStart  time.Time
	phaseStart time.Time
	phase      string

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize steps.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		ring: make([]PerfSample, windowSize),
		open: make(map[string]time.Duration),
	}
}

// StartTick begins timing a step.
func (p *PerfCollector) StartTick() {
	p.stepStart = time.Now()
	p.open = make(map[string]time.Duration, len(AllPhases))
	p.phase = ""
}

// StartPhase closes the running phase, if any, and starts timing the next.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.open[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the step and stores it in the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.phase = ""

	p.ring[p.next] = PerfSample{StepDuration: now.Sub(p.stepStart), Phases: p.open}
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// RecordFrame records the time since the previous frame, for windowed hosts.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P90TickDuration time.Duration

	// Average duration per phase and its share of the average step
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	st := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		st.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return st
	}

	steps := make([]float64, p.count)
	var total time.Duration
	for i, s := range p.ring[:p.count] {
		steps[i] = float64(s.StepDuration)
		total += s.StepDuration
		for phase, d := range s.Phases {
			st.PhaseAvg[phase] += d
		}
	}
	slices.Sort(steps)

	n := time.Duration(p.count)
	st.AvgTickDuration = total / n
	st.MinTickDuration = time.Duration(steps[0])
	st.MaxTickDuration = time.Duration(steps[len(steps)-1])
	st.P90TickDuration = time.Duration(Percentile(steps, 0.9))

	for phase, sum := range st.PhaseAvg {
		st.PhaseAvg[phase] = sum / n
		if st.AvgTickDuration > 0 {
			st.PhasePct[phase] = float64(st.PhaseAvg[phase]) / float64(st.AvgTickDuration) * 100
		}
	}
	if st.AvgTickDuration > 0 {
		st.TicksPerSecond = float64(time.Second) / float64(st.AvgTickDuration)
	}
	return st
}

// LogStats logs the window at info level. Phases under 0.1% are omitted.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_step_us", s.AvgTickDuration.Microseconds(),
		"p90_step_us", s.P90TickDuration.Microseconds(),
		"max_step_us", s.MaxTickDuration.Microseconds(),
		"steps_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range AllPhases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_step_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_step_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_step_us", s.MaxTickDuration.Microseconds()),
		slog.Int64("p90_step_us", s.P90TickDuration.Microseconds()),
		slog.Float64("steps_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range AllPhases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd         int64   `csv:"window_end"`
	AvgStepUS         int64   `csv:"avg_step_us"`
	MinStepUS         int64   `csv:"min_step_us"`
	MaxStepUS         int64   `csv:"max_step_us"`
	P90StepUS         int64   `csv:"p90_step_us"`
	StepsPerSec       float64 `csv:"steps_per_sec"`
	FPS               float64 `csv:"fps"`
	InputPct          float64 `csv:"input_pct"`
	EmittersPct       float64 `csv:"emitters_pct"`
	SplatPct          float64 `csv:"splat_pct"`
	AdvectVelocityPct float64 `csv:"advect_velocity_pct"`
	AdvectDyePct      float64 `csv:"advect_dye_pct"`
	VorticityPct      float64 `csv:"vorticity_pct"`
	DivergencePct     float64 `csv:"divergence_pct"`
	PressurePct       float64 `csv:"pressure_pct"`
	GradientPct       float64 `csv:"gradient_pct"`
	TelemetryPct      float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the row ending at step windowEnd.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:         windowEnd,
		AvgStepUS:         s.AvgTickDuration.Microseconds(),
		MinStepUS:         s.MinTickDuration.Microseconds(),
		MaxStepUS:         s.MaxTickDuration.Microseconds(),
		P90StepUS:         s.P90TickDuration.Microseconds(),
		StepsPerSec:       s.TicksPerSecond,
		FPS:               s.FPS,
		InputPct:          s.PhasePct[PhaseInput],
		EmittersPct:       s.PhasePct[PhaseEmitters],
		SplatPct:          s.PhasePct[fluid.PhaseSplat],
		AdvectVelocityPct: s.PhasePct[fluid.PhaseAdvectVelocity],
		AdvectDyePct:      s.PhasePct[fluid.PhaseAdvectDye],
		VorticityPct:      s.PhasePct[fluid.PhaseVorticity],
		DivergencePct:     s.PhasePct[fluid.PhaseDivergence],
		PressurePct:       s.PhasePct[fluid.PhasePressure],
		GradientPct:       s.PhasePct[fluid.PhaseGradient],
		TelemetryPct:      s.PhasePct[PhaseTelemetry],
	}
}
