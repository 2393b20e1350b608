package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func screenSize() (int, int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
		g.tracker.Leave()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.reset()
	}
	if rl.IsKeyPressed(rl.KeyV) {
		g.showFlow = !g.showFlow
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyT) {
		g.tuning.Toggle()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}
}

// handlePointer turns mouse movement into splats and clicks into bursts.
// The pointer is ignored over the tuning panel and outside the window.
func (g *Game) handlePointer() {
	mouse := rl.GetMousePosition()
	if !rl.IsCursorOnScreen() || g.tuning.Contains(mouse.X, mouse.Y) {
		g.tracker.Leave()
		return
	}

	if sp, ok := g.tracker.Move(float64(mouse.X), float64(mouse.Y)); ok {
		g.driver.AddSplat(sp)
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		x, y := g.tracker.Normalize(float64(mouse.X), float64(mouse.Y))
		g.tracker.Touch()
		g.burst(x, y)
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := screenSize()
	if w == g.screenW && h == g.screenH {
		return
	}
	if err := g.driver.Resize(w, h); err != nil {
		slog.Error("fluid resize failed", "view_w", w, "view_h", h, "error", err)
		return
	}
	g.screenW, g.screenH = w, h

	g.tracker.Resize(w, h)
	g.fluidRenderer.Resize(float32(w), float32(h))
	g.flowRenderer.Resize(int32(w), int32(h))
	g.perfPanel.SetPosition(int32(w)-230, 10)
	g.tuning.SetPosition(float32(w)-260, 10)
}
