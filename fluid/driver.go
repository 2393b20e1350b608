package fluid

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/ink/config"
)

// PhaseTimer receives the name of each step phase as it begins.
// telemetry.PerfCollector implements it.
type PhaseTimer interface {
	StartPhase(phase string)
}

// StepInfo describes the most recent step.
type StepInfo struct {
	Step             int64
	Splats           int
	DivergenceBefore float64 // Mean |div| of the advected velocity, before projection
}

// Driver runs one simulation step per call and is the only writer of the
// fields it owns. Splats may be queued from any goroutine; everything else
// must be called from the goroutine that calls Step.
type Driver struct {
	cfg    config.FluidConfig
	logger *slog.Logger
	timer  PhaseTimer

	store        *Store
	viewW, viewH int

	mu      sync.Mutex
	pending []Splat
	spare   []Splat

	stepping     bool
	resizeW      int
	resizeH      int
	resizeQueued bool

	last StepInfo
}

// NewDriver validates cfg and allocates fields for a viewW×viewH viewport.
func NewDriver(viewW, viewH int, cfg config.FluidConfig) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{
		cfg:    cfg,
		logger: slog.Default(),
	}
	if err := d.allocate(viewW, viewH); err != nil {
		return nil, err
	}
	return d, nil
}

// SetLogger replaces the default logger.
func (d *Driver) SetLogger(l *slog.Logger) {
	if l != nil {
		d.logger = l
	}
}

// SetPhaseTimer installs an optional per-phase timer.
func (d *Driver) SetPhaseTimer(t PhaseTimer) {
	d.timer = t
}

// Config returns the active solver parameters.
func (d *Driver) Config() config.FluidConfig {
	return d.cfg
}

// SetConfig swaps solver parameters between steps. A resolution change
// reallocates the fields.
func (d *Driver) SetConfig(cfg config.FluidConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	rescale := cfg.ResolutionScale != d.cfg.ResolutionScale
	old := d.cfg
	d.cfg = cfg
	if rescale {
		if err := d.allocate(d.viewW, d.viewH); err != nil {
			d.cfg = old
			return err
		}
	}
	return nil
}

// allocate builds a new store for the viewport. The old store survives a
// failed allocation.
func (d *Driver) allocate(viewW, viewH int) error {
	if viewW <= 0 || viewH <= 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrAllocation, viewW, viewH)
	}
	w, h := d.cfg.GridSize(viewW, viewH)
	store, err := NewStore(w, h)
	if err != nil {
		d.logger.Error("fluid allocation failed", "grid_w", w, "grid_h", h, "error", err)
		return err
	}
	if d.store != nil {
		d.store.Dispose()
	}
	d.store = store
	d.viewW, d.viewH = viewW, viewH
	return nil
}

// Resize tears down every field and reallocates for the new viewport. Contents
// are discarded. Called during a step, the resize is applied when the step ends.
func (d *Driver) Resize(viewW, viewH int) error {
	if viewW <= 0 || viewH <= 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrAllocation, viewW, viewH)
	}
	if d.stepping {
		d.resizeW, d.resizeH, d.resizeQueued = viewW, viewH, true
		return nil
	}
	w, h := d.cfg.GridSize(viewW, viewH)
	if w == d.store.Width && h == d.store.Height {
		d.viewW, d.viewH = viewW, viewH
		return nil
	}
	if err := d.allocate(viewW, viewH); err != nil {
		return err
	}
	d.logger.Info("fluid resized", "view_w", viewW, "view_h", viewH, "grid_w", w, "grid_h", h)
	return nil
}

// Reset zeroes every field and drops queued splats.
func (d *Driver) Reset() {
	d.mu.Lock()
	d.pending = d.pending[:0]
	d.mu.Unlock()
	d.store.Clear()
}

// AddSplat queues an impulse for the next step. Safe from any goroutine.
// Non-finite splats are dropped.
func (d *Driver) AddSplat(s Splat) {
	if !finite(s.X, s.Y, s.DX, s.DY, s.Color[0], s.Color[1], s.Color[2]) {
		d.logger.Warn("dropping non-finite splat", "x", s.X, "y", s.Y)
		return
	}
	d.mu.Lock()
	d.pending = append(d.pending, s)
	d.mu.Unlock()
}

// Pending returns the number of queued splats.
func (d *Driver) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Step advances the simulation by dt: queued splats, velocity self-advection,
// dye advection, optional vorticity confinement, divergence, the Jacobi
// pressure solve and gradient subtraction, strictly in that order.
func (d *Driver) Step(dt float32) {
	if d.stepping {
		panic("fluid: Step called re-entrantly")
	}
	d.stepping = true
	defer d.endStep()

	s := d.store
	cfg := &d.cfg

	d.mu.Lock()
	splats := d.pending
	d.pending = d.spare[:0]
	d.mu.Unlock()

	d.phase(PhaseSplat)
	for _, sp := range splats {
		d.applySplat(sp)
	}
	d.spare = splats[:0]

	d.phase(PhaseAdvectVelocity)
	Advect(Pass{
		Name:   PhaseAdvectVelocity,
		Inputs: []*Field{s.Velocity.Read(), s.Velocity.Read()},
		Output: s.Velocity.Write(),
	}, dt, float32(cfg.DissipationVelocity))
	s.Velocity.Swap()

	d.phase(PhaseAdvectDye)
	Advect(Pass{
		Name:   PhaseAdvectDye,
		Inputs: []*Field{s.Velocity.Read(), s.Dye.Read()},
		Output: s.Dye.Write(),
	}, dt, float32(cfg.DissipationDye))
	s.Dye.Swap()

	if cfg.Curl > 0 {
		d.phase(PhaseVorticity)
		Curl(Pass{Name: PhaseVorticity, Inputs: []*Field{s.Velocity.Read()}, Output: s.Curl})
		Vorticity(Pass{
			Name:   PhaseVorticity,
			Inputs: []*Field{s.Velocity.Read(), s.Curl},
			Output: s.Velocity.Write(),
		}, float32(cfg.Curl), dt)
		s.Velocity.Swap()
	}

	d.phase(PhaseDivergence)
	Divergence(Pass{Name: PhaseDivergence, Inputs: []*Field{s.Velocity.Read()}, Output: s.Divergence})
	before := MeanAbs(s.Divergence)

	d.phase(PhasePressure)
	SolvePressure(s.Pressure, s.Divergence, cfg.Iterations)

	d.phase(PhaseGradient)
	SubtractGradient(Pass{
		Name:   PhaseGradient,
		Inputs: []*Field{s.Pressure.Read(), s.Velocity.Read()},
		Output: s.Velocity.Write(),
	})
	s.Velocity.Swap()

	d.last = StepInfo{Step: d.last.Step + 1, Splats: len(splats), DivergenceBefore: before}
}

func (d *Driver) endStep() {
	d.stepping = false
	if d.resizeQueued {
		d.resizeQueued = false
		if err := d.Resize(d.resizeW, d.resizeH); err != nil {
			d.logger.Error("deferred resize failed", "error", err)
		}
	}
}

func (d *Driver) applySplat(sp Splat) {
	s := d.store
	radius := float32(d.cfg.SplatRadius)
	force := float32(d.cfg.SplatForce)
	aspect := s.AspectRatio()

	splatInto(s.Velocity, SplatParams{
		X: sp.X, Y: sp.Y, Radius: radius, Aspect: aspect,
		Value: [4]float32{sp.DX * force, sp.DY * force},
	})
	splatInto(s.Dye, SplatParams{
		X: sp.X, Y: sp.Y, Radius: radius, Aspect: aspect,
		Value: [4]float32{sp.Color[0], sp.Color[1], sp.Color[2]},
	})
}

func (d *Driver) phase(name string) {
	if d.timer != nil {
		d.timer.StartPhase(name)
	}
}

// MeasureDivergence returns the mean |div| of the current velocity. It reuses
// the divergence field, which the next step rewrites before reading.
func (d *Driver) MeasureDivergence() float64 {
	return MeanAbsDivergence(d.store.Velocity.Read(), d.store.Divergence)
}

// LastStep describes the most recent Step.
func (d *Driver) LastStep() StepInfo {
	return d.last
}

// Dye returns the current dye field. The handle is valid until the next Step
// or Resize.
func (d *Driver) Dye() *Field {
	return d.store.Dye.Read()
}

// Velocity returns the current velocity field, valid until the next Step.
func (d *Driver) Velocity() *Field {
	return d.store.Velocity.Read()
}

// Store exposes the field store for inspection and tests.
func (d *Driver) Store() *Store {
	return d.store
}

// GridSize returns the simulation grid dimensions.
func (d *Driver) GridSize() (int, int) {
	return d.store.Width, d.store.Height
}

// Dispose releases every field.
func (d *Driver) Dispose() {
	d.store.Dispose()
}

func finite(vs ...float32) bool {
	for _, v := range vs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
