package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ink/ui"
)

// Draw renders the dye, the optional overlays and the panels. Tuning changes
// made this frame apply before the next step.
func (g *Game) Draw() {
	g.perf.RecordFrame()
	g.fluidRenderer.Update(g.driver.Dye())

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.fluidRenderer.Draw()
	if g.showFlow {
		g.flowRenderer.Draw(g.driver.Velocity())
	}

	gw, gh := g.driver.GridSize()
	bursts, wanderers := g.emitters.Counts()
	last := g.driver.LastStep()
	g.hud.Draw(ui.HUDData{
		Title:      "Ink",
		Step:       g.step,
		FPS:        rl.GetFPS(),
		GridW:      gw,
		GridH:      gh,
		Splats:     last.Splats,
		Bursts:     bursts,
		Wanderers:  wanderers,
		Divergence: last.DivergenceBefore,
		Paused:     g.paused,
	})
	g.hud.DrawControls(int32(g.screenH), Controls)

	if g.showPerf {
		g.perfPanel.Draw(g.perf.Stats())
	}

	next, changed, reset := g.tuning.Draw(g.driver.Config())
	if changed {
		g.applyFluidConfig(next)
	}
	if reset {
		g.reset()
	}

	rl.EndDrawing()
}
