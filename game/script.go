package game

import (
	"math"

	"github.com/pthm-cable/ink/fluid"
)

// script stands in for the pointer in headless runs: a point circling the
// centre stirs the fluid every step and a burst fires at it periodically.
type script struct {
	radius     float64 // Normalized
	period     float64 // Seconds per revolution
	burstEvery int64   // Steps between bursts (0 = never)
}

func defaultScript() script {
	return script{radius: 0.25, period: 4, burstEvery: 120}
}

// position returns the stirring point at time t.
func (s script) position(t float64) (x, y float64) {
	a := 2 * math.Pi * t / s.period
	return 0.5 + s.radius*math.Cos(a), 0.5 + s.radius*math.Sin(a)
}

// splat returns the stirring splat at time t. force converts the point's speed
// in normalized units per second into a splat delta.
func (s script) splat(t, force float64, color [3]float32) fluid.Splat {
	x, y := s.position(t)
	w := 2 * math.Pi / s.period
	a := w * t
	return fluid.Splat{
		X:     float32(x),
		Y:     float32(y),
		DX:    float32(-s.radius * w * math.Sin(a) * force),
		DY:    float32(s.radius * w * math.Cos(a) * force),
		Color: color,
	}
}

// burst reports whether a burst fires on the given step.
func (s script) burst(step int64) bool {
	return s.burstEvery > 0 && step > 0 && step%s.burstEvery == 0
}
