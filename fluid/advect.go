package fluid

import "gonum.org/v1/gonum/blas/blas32"

// Advect moves Inputs[1] (the source) along Inputs[0] (the velocity) by dt and
// scales the result by dissipation. Semi-Lagrangian: each output cell traces back
// along the velocity at its own position and samples the source there, so it is
// stable for any dt.
//
// Velocity is in cells per unit time, which makes the normalized trace
// p - v*dt*texel a cell-space offset of v*dt.
func Advect(p Pass, dt, dissipation float32) {
	p.check(2, 0)
	vel, src, out := p.Inputs[0], p.Inputs[1], p.Output
	if vel.Channels != VelocityChannels {
		panic("fluid: advect velocity input must have 2 channels")
	}
	if src.Channels != out.Channels {
		panic("fluid: advect source and output channel counts differ")
	}

	w, h, ch := out.Width, out.Height, out.Channels
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			vi := vel.Index(x, y)
			fx := float32(x) - vel.Data[vi]*dt
			fy := float32(y) - vel.Data[vi+1]*dt

			oi := out.Index(x, y)
			for c := 0; c < ch; c++ {
				out.Data[oi+c] = src.sampleBilinear(fx, fy, c)
			}
		}
	}

	if dissipation != 1 {
		blas32.Scal(dissipation, blas32.Vector{N: len(out.Data), Inc: 1, Data: out.Data})
	}
}
