package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ink/config"
)

// Tunable is one solver parameter exposed as a slider.
type Tunable struct {
	Label    string
	Min, Max float32
	Integer  bool
	Get      func(*config.FluidConfig) float32
	Set      func(*config.FluidConfig, float32)
}

// FluidTunables lists the parameters the tuning panel edits.
var FluidTunables = []Tunable{
	{
		Label: "Jacobi iterations", Min: 1, Max: 60, Integer: true,
		Get: func(c *config.FluidConfig) float32 { return float32(c.Iterations) },
		Set: func(c *config.FluidConfig, v float32) { c.Iterations = int(v) },
	},
	{
		Label: "Velocity dissipation", Min: 0.8, Max: 1,
		Get: func(c *config.FluidConfig) float32 { return float32(c.DissipationVelocity) },
		Set: func(c *config.FluidConfig, v float32) { c.DissipationVelocity = float64(v) },
	},
	{
		Label: "Dye dissipation", Min: 0.8, Max: 1,
		Get: func(c *config.FluidConfig) float32 { return float32(c.DissipationDye) },
		Set: func(c *config.FluidConfig, v float32) { c.DissipationDye = float64(v) },
	},
	{
		Label: "Splat radius", Min: 0.0005, Max: 0.02,
		Get: func(c *config.FluidConfig) float32 { return float32(c.SplatRadius) },
		Set: func(c *config.FluidConfig, v float32) { c.SplatRadius = float64(v) },
	},
	{
		Label: "Splat force", Min: 0, Max: 20,
		Get: func(c *config.FluidConfig) float32 { return float32(c.SplatForce) },
		Set: func(c *config.FluidConfig, v float32) { c.SplatForce = float64(v) },
	},
	{
		Label: "Vorticity (curl)", Min: 0, Max: 50,
		Get: func(c *config.FluidConfig) float32 { return float32(c.Curl) },
		Set: func(c *config.FluidConfig, v float32) { c.Curl = float64(v) },
	},
	{
		Label: "Alpha scale", Min: 0.1, Max: 2,
		Get: func(c *config.FluidConfig) float32 { return float32(c.AlphaScale) },
		Set: func(c *config.FluidConfig, v float32) { c.AlphaScale = float64(v) },
	},
}

// TuningPanel draws sliders for FluidTunables.
type TuningPanel struct {
	renderer *Renderer
	x, y     float32
	width    float32
	visible  bool
}

// NewTuningPanel creates a hidden tuning panel.
func NewTuningPanel(x, y, width float32) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *TuningPanel) SetPosition(x, y float32) {
	p.x, p.y = x, y
}

// Toggle switches panel visibility.
func (p *TuningPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// IsVisible returns whether the panel is shown.
func (p *TuningPanel) IsVisible() bool {
	return p.visible
}

// Contains reports whether a screen point falls on the visible panel, so the
// host can keep slider drags out of the fluid.
func (p *TuningPanel) Contains(x, y float32) bool {
	if !p.visible {
		return false
	}
	return rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, p.bounds())
}

func (p *TuningPanel) bounds() rl.Rectangle {
	h := float32(len(FluidTunables))*38 + 70
	return rl.Rectangle{X: p.x, Y: p.y, Width: p.width, Height: h}
}

// Draw renders the sliders for cfg and returns the edited copy. changed is
// false when nothing moved. reset is true when the reset button was pressed.
func (p *TuningPanel) Draw(cfg config.FluidConfig) (out config.FluidConfig, changed, reset bool) {
	out = cfg
	if !p.visible {
		return out, false, false
	}

	r := p.renderer
	b := p.bounds()
	r.DrawPanel(int32(b.X), int32(b.Y), int32(b.Width), int32(b.Height))

	pad := float32(r.Theme.Padding)
	x, y := p.x+pad, p.y+pad
	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Solver"))
	sliderW := p.width - pad*2 - 60

	for _, t := range FluidTunables {
		cur := t.Get(&out)
		rl.DrawText(t.Label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 14

		next := gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16},
			"", "",
			cur, t.Min, t.Max,
		)
		if t.Integer {
			next = float32(math.Round(float64(next)))
		}
		rl.DrawText(formatTunable(t, cur), int32(x+sliderW+8), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
		if next != cur {
			t.Set(&out, next)
			changed = true
		}
		y += 24
	}

	if gui.Button(rl.Rectangle{X: x, Y: y + 4, Width: 100, Height: 24}, "Reset fluid") {
		reset = true
	}
	return out, changed, reset
}

func formatTunable(t Tunable, v float32) string {
	switch {
	case t.Integer:
		return fmt.Sprintf("%d", int(v))
	case t.Max <= 0.1:
		return fmt.Sprintf("%.4f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
