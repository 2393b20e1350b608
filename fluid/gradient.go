package fluid

// SubtractGradient removes the pressure gradient from velocity.
// Inputs[0] is pressure, Inputs[1] velocity; out-of-domain pressure
// neighbours clamp to the edge cell. The gradient uses the same half-weighted
// central difference as Divergence, so the correction never overshoots.
func SubtractGradient(p Pass) {
	p.check(2, VelocityChannels)
	prs, vel, out := p.Inputs[0], p.Inputs[1], p.Output
	if prs.Channels != ScalarChannels || vel.Channels != VelocityChannels {
		panic("fluid: gradient wants scalar pressure and 2-channel velocity")
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

			vi := i * VelocityChannels
			out.Data[vi] = vel.Data[vi] - 0.5*(r-l)
			out.Data[vi+1] = vel.Data[vi+1] - 0.5*(t-b)
		}
	}
}
