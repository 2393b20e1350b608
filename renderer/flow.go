package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ink/fluid"
)

// FlowRenderer draws the velocity field as short line segments on a coarse
// lattice, for debugging.
type FlowRenderer struct {
	width, height int32
	spacing       int32   // Pixels between samples
	scale         float32 // Pixels per cell/second of velocity
}

// NewFlowRenderer creates a velocity overlay for a width×height window.
func NewFlowRenderer(width, height int32) *FlowRenderer {
	return &FlowRenderer{
		width:   width,
		height:  height,
		spacing: 24,
		scale:   0.05,
	}
}

// Resize updates the window dimensions.
func (r *FlowRenderer) Resize(w, h int32) {
	r.width, r.height = w, h
}

// Draw samples velocity at every lattice point and draws it with additive
// blending. Faster flow is brighter.
func (r *FlowRenderer) Draw(vel *fluid.Field) {
	rl.BeginBlendMode(rl.BlendAdditive)

	half := float32(r.spacing) / 2
	maxLen := float32(r.spacing) * 1.5
	for py := int32(0); py < r.height; py += r.spacing {
		for px := int32(0); px < r.width; px += r.spacing {
			sx, sy := float32(px)+half, float32(py)+half
			u := sx / float32(r.width)
			v := 1 - sy/float32(r.height)

			vx := vel.Sample(u, v, 0)
			vy := vel.Sample(u, v, 1)
			length := float32(math.Hypot(float64(vx), float64(vy))) * r.scale
			if length < 0.5 {
				continue
			}
			k := r.scale
			if length > maxLen {
				k *= maxLen / length
				length = maxLen
			}

			alpha := uint8(60 + 195*length/maxLen)
			// Screen y points down
			end := rl.Vector2{X: sx + vx*k, Y: sy - vy*k}
			rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, end, 1.5, rl.Color{R: 50, G: 100, B: 130, A: alpha})
			rl.DrawCircleV(end, 1.5, rl.Color{R: 120, G: 200, B: 230, A: alpha})
		}
	}

	rl.EndBlendMode()
}
