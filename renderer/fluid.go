// Package renderer draws simulation state with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ink/fluid"
)

// FluidRenderer uploads the dye field to a texture each frame and stretches it
// over the window. The texture is grid-sized; bilinear filtering smooths the
// upscale.
type FluidRenderer struct {
	display *fluid.Display

	tex        rl.Texture2D
	texW, texH int

	screenW, screenH float32
	initialized      bool
}

// NewFluidRenderer creates a renderer for a screenW×screenH window.
func NewFluidRenderer(screenW, screenH int32, alphaScale float32) *FluidRenderer {
	return &FluidRenderer{
		display: fluid.NewDisplay(alphaScale),
		screenW: float32(screenW),
		screenH: float32(screenH),
	}
}

// init allocates the texture (must be called after the raylib window exists).
func (r *FluidRenderer) init(gridW, gridH int) {
	img := rl.GenImageColor(gridW, gridH, rl.Blank)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterBilinear)
	rl.SetTextureWrap(r.tex, rl.WrapClamp)
	rl.UnloadImage(img)

	r.texW, r.texH = gridW, gridH
	r.initialized = true
}

// Resize updates the window dimensions.
func (r *FluidRenderer) Resize(w, h float32) {
	r.screenW, r.screenH = w, h
}

// SetAlphaScale changes the brightness-to-alpha factor.
func (r *FluidRenderer) SetAlphaScale(a float32) {
	r.display.AlphaScale = a
}

// Update uploads the dye field. A change in grid size recreates the texture.
func (r *FluidRenderer) Update(dye *fluid.Field) {
	if r.initialized && (dye.Width != r.texW || dye.Height != r.texH) {
		r.Unload()
	}
	if !r.initialized {
		r.init(dye.Width, dye.Height)
	}
	rl.UpdateTexture(r.tex, r.display.Pixels(dye))
}

// Draw composites the dye over whatever has been drawn this frame.
func (r *FluidRenderer) Draw() {
	if !r.initialized {
		return
	}
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(r.texW), Height: float32(r.texH)}
	dst := rl.Rectangle{X: 0, Y: 0, Width: r.screenW, Height: r.screenH}

	rl.BeginBlendMode(rl.BlendAlpha)
	rl.DrawTexturePro(r.tex, src, dst, rl.Vector2{}, 0, rl.White)
	rl.EndBlendMode()
}

// Unload frees GPU resources.
func (r *FluidRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
