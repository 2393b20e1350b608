package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ink/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Step         int64
	FPS          int32
	GridW, GridH int
	Splats       int // Applied in the last step
	Bursts       int
	Wanderers    int
	Divergence   float64 // Mean |div| before projection, last step
	Paused       bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Step: %d | FPS: %d | Grid: %dx%d", data.Step, data.FPS, data.GridW, data.GridH),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Splats: %d | Emitters: %d+%d | div: %.4f", data.Splats, data.Bursts, data.Wanderers, data.Divergence),
		10, 55, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 75, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase step breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel. Phases over 25% of the step are highlighted.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	inner := p.width - pad*2
	height := int32(len(telemetry.AllPhases)+3)*r.Theme.LineHeight + pad*2

	r.DrawPanel(p.x, p.y, p.width, height)
	x, y := p.x+pad, p.y+pad

	y = r.DrawSectionHeader(x, y, "Step Performance")
	y = r.DrawLabelValue(x, y, "avg / p90", fmt.Sprintf("%d / %d us",
		stats.AvgTickDuration.Microseconds(), stats.P90TickDuration.Microseconds()))
	y = r.DrawLabelValue(x, y, "steps/s", fmt.Sprintf("%.0f", stats.TicksPerSecond))

	for _, phase := range telemetry.AllPhases {
		y = r.DrawPercentBar(x, y, phase, stats.PhasePct[phase], 25, inner)
	}
}
