package fluid

import (
	"fmt"
	"math"
)

// Splat is one pointer impulse. X, Y are normalized [0,1] with Y up; DX, DY is
// the velocity delta before the force multiplier; Color is added to the dye.
type Splat struct {
	X, Y   float32
	DX, DY float32
	Color  [3]float32
}

// SplatParams shapes a Gaussian impulse.
type SplatParams struct {
	X, Y   float32 // Centre in normalized coordinates
	Value  [4]float32
	Radius float32 // Falloff in squared normalized units, must be > 0
	Aspect float32 // Grid width / height; stretches x so splats stay round
}

// ApplySplat adds exp(-|d|²/radius) * value to every cell of Inputs[0] and writes
// the result to Output. d is the aspect-corrected offset from the centre.
func ApplySplat(p Pass, sp SplatParams) {
	p.check(1, 0)
	src, out := p.Inputs[0], p.Output
	if src.Channels != out.Channels {
		panic("fluid: splat source and output channel counts differ")
	}
	if !(sp.Radius > 0) {
		panic(fmt.Sprintf("fluid: splat radius %v must be positive", sp.Radius))
	}

	w, h, ch := out.Width, out.Height, out.Channels
	tx, ty := out.Texel()
	for y := 0; y < h; y++ {
		dy := (float32(y)+0.5)*ty - sp.Y
		for x := 0; x < w; x++ {
			dx := ((float32(x)+0.5)*tx - sp.X) * sp.Aspect
			g := float32(math.Exp(float64(-(dx*dx + dy*dy) / sp.Radius)))

			i := out.Index(x, y)
			for c := 0; c < ch; c++ {
				out.Data[i+c] = src.Data[i+c] + g*sp.Value[c]
			}
		}
	}
}

// splatInto renders one impulse into a double buffer and swaps it.
func splatInto(buf *DoubleBuffer, sp SplatParams) {
	ApplySplat(Pass{
		Name:   PhaseSplat,
		Inputs: []*Field{buf.Read()},
		Output: buf.Write(),
	}, sp)
	buf.Swap()
}
