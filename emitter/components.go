// Package emitter drives splats that are not tied to the pointer: short click
// bursts that fly outward and fade, and slow wanderers that keep an idle screen
// moving. Emitters are ECS entities; each one queues a splat per update.
package emitter

// Position is in normalized fluid coordinates, y up.
type Position struct {
	X, Y float32
}

// Velocity is in normalized units per second.
type Velocity struct {
	X, Y float32
}

// Tint is the dye an emitter deposits at full strength.
type Tint struct {
	RGB [3]float32
}

// Life tracks a burst emitter's age. Its dye fades linearly to zero at Span.
type Life struct {
	Age  float32
	Span float32
}

// Fade returns the remaining strength in [0, 1].
func (l *Life) Fade() float32 {
	if l.Span <= 0 || l.Age >= l.Span {
		return 0
	}
	return 1 - l.Age/l.Span
}

// Wander marks an idle emitter. Offset selects its path through the noise field.
type Wander struct {
	Offset float64
}
