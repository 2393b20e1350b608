package fluid

// Divergence writes the central-difference divergence of Inputs[0] (velocity)
// into the scalar Output. A neighbour outside the domain is the centre cell's
// own component negated, which makes the walls free-slip and impermeable.
func Divergence(p Pass) {
	p.check(1, ScalarChannels)
	vel, out := p.Inputs[0], p.Output
	if vel.Channels != VelocityChannels {
		panic("fluid: divergence input must have 2 channels")
	}

	w, h := out.Width, out.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ci := vel.Index(x, y)
			cx, cy := vel.Data[ci], vel.Data[ci+1]

			l, r, b, t := -cx, -cx, -cy, -cy
			if x > 0 {
				l = vel.Data[ci-VelocityChannels]
			}
			if x < w-1 {
				r = vel.Data[ci+VelocityChannels]
			}
			if y > 0 {
				b = vel.Data[vel.Index(x, y-1)+1]
			}
			if y < h-1 {
				t = vel.Data[vel.Index(x, y+1)+1]
			}

			out.Data[y*w+x] = 0.5 * ((r - l) + (t - b))
		}
	}
}
