package fluid

// Jacobi performs one relaxation pass of the pressure Poisson equation.
// Inputs[0] is the previous pressure iterate, Inputs[1] the divergence.
// Neighbours outside the domain reuse the centre value.
func Jacobi(p Pass) {
	p.check(2, ScalarChannels)
	prs, div, out := p.Inputs[0], p.Inputs[1], p.Output
	if prs.Channels != ScalarChannels || div.Channels != ScalarChannels {
		panic("fluid: jacobi inputs must be scalar fields")
	}

	w, h := out.Width, out.Height
	pd := prs.Data
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			i := row + x
			c := pd[i]
			l, r, b, t := c, c, c, c
			if x > 0 {
				l = pd[i-1]
			}
			if x < w-1 {
				r = pd[i+1]
			}
			if y > 0 {
				b = pd[i-w]
			}
			if y < h-1 {
				t = pd[i+w]
			}
			out.Data[i] = 0.25 * (l + r + t + b - div.Data[i])
		}
	}
}

// SolvePressure runs iterations Jacobi passes, swapping the pressure pair after
// each. The current pressure is the initial guess.
func SolvePressure(pressure *DoubleBuffer, divergence *Field, iterations int) {
	for i := 0; i < iterations; i++ {
		Jacobi(Pass{
			Name:   PhasePressure,
			Inputs: []*Field{pressure.Read(), divergence},
			Output: pressure.Write(),
		})
		pressure.Swap()
	}
}
