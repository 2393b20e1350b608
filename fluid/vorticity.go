package fluid

import "math"

// Curl writes the scalar vorticity of Inputs[0] into Output, with clamp-to-edge
// neighbours.
func Curl(p Pass) {
	p.check(1, ScalarChannels)
	vel, out := p.Inputs[0], p.Output

	w, h := out.Width, out.Height
	for y := 0; y < h; y++ {
		ym, yp := max(y-1, 0), min(y+1, h-1)
		for x := 0; x < w; x++ {
			xm, xp := max(x-1, 0), min(x+1, w-1)
			l := vel.At(xm, y, 1)
			r := vel.At(xp, y, 1)
			b := vel.At(x, ym, 0)
			t := vel.At(x, yp, 0)
			out.Data[y*w+x] = 0.5 * ((r - l) - (t - b))
		}
	}
}

// Vorticity adds a confinement force that pushes velocity around curl peaks,
// restoring small eddies lost to numerical diffusion. Inputs[0] is velocity,
// Inputs[1] the curl from Curl.
func Vorticity(p Pass, strength, dt float32) {
	p.check(2, VelocityChannels)
	vel, curl, out := p.Inputs[0], p.Inputs[1], p.Output

	w, h := out.Width, out.Height
	cd := curl.Data
	for y := 0; y < h; y++ {
		ym, yp := max(y-1, 0), min(y+1, h-1)
		for x := 0; x < w; x++ {
			xm, xp := max(x-1, 0), min(x+1, w-1)
			i := y*w + x

			fx := 0.5 * (abs32(cd[yp*w+x]) - abs32(cd[ym*w+x]))
			fy := 0.5 * (abs32(cd[y*w+xp]) - abs32(cd[y*w+xm]))
			n := float32(math.Sqrt(float64(fx*fx+fy*fy))) + 1e-5
			fx /= n
			fy /= n

			c := cd[i]
			vi := i * VelocityChannels
			out.Data[vi] = vel.Data[vi] + fx*c*strength*dt
			out.Data[vi+1] = vel.Data[vi+1] - fy*c*strength*dt
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
