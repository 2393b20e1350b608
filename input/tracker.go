// Package input reduces host pointer events to fluid splats.
package input

import (
	"math"

	"github.com/crazy3lf/colorconv"
	"github.com/pthm-cable/ink/config"
	"github.com/pthm-cable/ink/fluid"
)

// Tracker turns pointer positions in window pixels (y down) into splats in
// normalized fluid coordinates (y up). Each movement splats at the new position
// with the pixel delta scaled by motion_scale. Splat colour cycles through the
// hue wheel over time.
type Tracker struct {
	cfg          config.InputConfig
	viewW, viewH float64

	hue          float64
	lastX, lastY float64
	tracking     bool
	idle         float64
}

// NewTracker creates a tracker for a viewW×viewH window.
func NewTracker(cfg config.InputConfig, viewW, viewH int) *Tracker {
	t := &Tracker{cfg: cfg}
	t.Resize(viewW, viewH)
	return t
}

// Resize updates the window size. The next movement starts a new stroke.
func (t *Tracker) Resize(viewW, viewH int) {
	t.viewW = float64(max(viewW, 1))
	t.viewH = float64(max(viewH, 1))
	t.tracking = false
}

// Move records the pointer at window pixel (x, y). It returns a splat when the
// pointer moved since the previous event of the same stroke.
func (t *Tracker) Move(x, y float64) (fluid.Splat, bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return fluid.Splat{}, false
	}
	if !t.tracking {
		t.lastX, t.lastY, t.tracking = x, y, true
		return fluid.Splat{}, false
	}
	dx, dy := x-t.lastX, y-t.lastY
	t.lastX, t.lastY = x, y
	if dx == 0 && dy == 0 {
		return fluid.Splat{}, false
	}
	t.idle = 0

	nx, ny := t.Normalize(x, y)
	return fluid.Splat{
		X:     nx,
		Y:     ny,
		DX:    float32(dx * t.cfg.MotionScale),
		DY:    float32(-dy * t.cfg.MotionScale),
		Color: t.Color(),
	}, true
}

// Leave ends the current stroke, e.g. when the pointer leaves the window.
func (t *Tracker) Leave() {
	t.tracking = false
}

// Touch marks input activity that does not move the pointer, such as a click.
func (t *Tracker) Touch() {
	t.idle = 0
}

// Advance moves the palette along by dt seconds and ages the idle timer.
func (t *Tracker) Advance(dt float64) {
	t.hue = math.Mod(t.hue+t.cfg.HueSpeed*dt, 360)
	if t.hue < 0 {
		t.hue += 360
	}
	t.idle += dt
}

// Idle returns the seconds since the last pointer activity.
func (t *Tracker) Idle() float64 {
	return t.idle
}

// Hue returns the current palette hue in degrees.
func (t *Tracker) Hue() float64 {
	return t.hue
}

// Normalize maps a window pixel to fluid coordinates: [0,1] on both axes with
// y pointing up.
func (t *Tracker) Normalize(x, y float64) (float32, float32) {
	return float32(x / t.viewW), float32(1 - y/t.viewH)
}

// Color returns the current splat colour scaled by color_intensity.
func (t *Tracker) Color() [3]float32 {
	return HueColor(t.hue, t.cfg)
}

// HueColor converts a hue in degrees to a dye colour using the configured
// saturation, value and intensity.
func HueColor(hue float64, cfg config.InputConfig) [3]float32 {
	k := float32(cfg.ColorIntensity)
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}
	r, g, b, err := colorconv.HSVToRGB(hue, cfg.Saturation, cfg.Value)
	if err != nil {
		return [3]float32{k, k, k}
	}
	return [3]float32{
		float32(r) / 255 * k,
		float32(g) / 255 * k,
		float32(b) / 255 * k,
	}
}
