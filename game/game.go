// Package game runs the ink simulation: it feeds pointer and emitter splats to
// the fluid driver, steps it at a fixed rate and draws the result with raylib.
// Headless runs skip every raylib call.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/ink/config"
	"github.com/pthm-cable/ink/emitter"
	"github.com/pthm-cable/ink/fluid"
	"github.com/pthm-cable/ink/input"
	"github.com/pthm-cable/ink/renderer"
	"github.com/pthm-cable/ink/telemetry"
	"github.com/pthm-cable/ink/ui"
)

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	dt   float32
	step int64

	driver   *fluid.Driver
	tracker  *input.Tracker
	emitters *emitter.System
	script   script

	// Telemetry
	perf          *telemetry.PerfCollector
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.StepStats)
	logStats      bool

	// Rendering, nil when headless
	fluidRenderer *renderer.FluidRenderer
	flowRenderer  *renderer.FlowRenderer
	hud           *ui.HUD
	perfPanel     *ui.PerfPanel
	tuning        *ui.TuningPanel

	headless         bool
	screenW, screenH int
	stepsPerUpdate   int
	paused           bool
	showFlow         bool
	showPerf         bool
}

// NewGameWithOptions builds the solver, emitters and telemetry for opts. In
// graphical mode the raylib window must already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	g := &Game{
		cfg:            cfg,
		dt:             cfg.Derived.DT32,
		script:         defaultScript(),
		statsCallback:  opts.StatsCallback,
		logStats:       opts.LogStats,
		headless:       opts.Headless,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
	}

	g.screenW, g.screenH = cfg.Screen.Width, cfg.Screen.Height
	if !g.headless {
		g.screenW, g.screenH = screenSize()
	}

	driver, err := fluid.NewDriver(g.screenW, g.screenH, cfg.Fluid)
	if err != nil {
		return nil, fmt.Errorf("creating fluid driver: %w", err)
	}
	g.driver = driver

	g.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	g.driver.SetPhaseTimer(g.perf)
	g.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, g.dt)

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.driver.Dispose()
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if g.outputManager != nil {
		if err := g.outputManager.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
	}

	g.tracker = input.NewTracker(cfg.Input, g.screenW, g.screenH)
	g.emitters = emitter.NewSystem(cfg.Emitters, cfg.Input, opts.Seed)

	if !g.headless {
		w, h := int32(g.screenW), int32(g.screenH)
		g.fluidRenderer = renderer.NewFluidRenderer(w, h, float32(cfg.Fluid.AlphaScale))
		g.flowRenderer = renderer.NewFlowRenderer(w, h)
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(w-230, 10, 220)
		g.tuning = ui.NewTuningPanel(float32(w)-260, 10, 250)
	}

	gw, gh := g.driver.GridSize()
	slog.Info("game created",
		"view_w", g.screenW,
		"view_h", g.screenH,
		"grid_w", gw,
		"grid_h", gh,
		"headless", g.headless,
	)
	return g, nil
}

// Update handles input and runs stepsPerUpdate fixed steps unless paused.
func (g *Game) Update() {
	g.handleInput()
	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.perf.StartTick()
		g.perf.StartPhase(telemetry.PhaseInput)
		if i == 0 {
			g.handlePointer()
		}
		g.simulationStep()
		g.perf.EndTick()
	}
}

// UpdateHeadless runs stepsPerUpdate steps with scripted input instead of the
// pointer.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.perf.StartTick()
		g.perf.StartPhase(telemetry.PhaseInput)
		g.scriptedInput()
		g.simulationStep()
		g.perf.EndTick()
	}
}

// scriptedInput queues the stirring splat for the current time and fires the
// periodic burst.
func (g *Game) scriptedInput() {
	t := float64(g.step) * float64(g.dt)
	sp := g.script.splat(t, g.cfg.Emitters.Force, g.tracker.Color())
	g.driver.AddSplat(sp)
	g.tracker.Touch()

	if g.script.burst(g.step) {
		x, y := g.script.position(t)
		g.burst(float32(x), float32(y))
	}
}

// simulationStep runs one fixed step: emitters, the solver, then telemetry.
func (g *Game) simulationStep() {
	dt := float64(g.dt)

	g.perf.StartPhase(telemetry.PhaseEmitters)
	g.tracker.Advance(dt)
	g.emitters.Update(dt, g.tracker.Idle(), g.tracker.Hue(), g.driver)

	g.driver.Step(g.dt)
	g.step++

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordStep(g.driver.LastStep())
	if n := g.cfg.Telemetry.DivergenceInterval; n > 0 && g.step%int64(n) == 0 {
		g.collector.RecordDivergenceAfter(g.driver.MeasureDivergence())
	}
	g.flushTelemetry()
}

// burst spawns click emitters at a normalized position.
func (g *Game) burst(x, y float32) {
	g.emitters.Burst(x, y, g.tracker.Hue())
	g.collector.RecordBurst()
}

// reset clears the fluid and every emitter.
func (g *Game) reset() {
	g.driver.Reset()
	g.emitters.Clear()
	slog.Info("fluid reset", "step", g.step)
}

// applyFluidConfig swaps solver parameters, keeping the old ones on error.
func (g *Game) applyFluidConfig(cfg config.FluidConfig) {
	if err := g.driver.SetConfig(cfg); err != nil {
		slog.Warn("rejected solver parameters", "error", err)
		return
	}
	if g.fluidRenderer != nil {
		g.fluidRenderer.SetAlphaScale(float32(cfg.AlphaScale))
	}
}

// Unload releases GPU resources, closes output files and frees the fields.
func (g *Game) Unload() {
	if g.fluidRenderer != nil {
		g.fluidRenderer.Unload()
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output files", "error", err)
		}
	}
	g.driver.Dispose()
}

// Tick returns the number of completed steps.
func (g *Game) Tick() int64 {
	return g.step
}

// Driver returns the fluid driver.
func (g *Game) Driver() *fluid.Driver {
	return g.driver
}

// Paused reports whether stepping is suspended.
func (g *Game) Paused() bool {
	return g.paused
}
