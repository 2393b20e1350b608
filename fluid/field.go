// Package fluid implements a grid-based "stable fluids" solver: semi-Lagrangian
// advection, Jacobi pressure relaxation and gradient projection, expressed as a
// fixed sequence of full-grid passes over double-buffered fields.
//
// Cell (x, y) sits at normalized coordinate ((x+0.5)/W, (y+0.5)/H). Row 0 is the
// bottom of the domain.
package fluid

import (
	"errors"
	"fmt"
)

// MaxCells bounds a single field allocation.
const MaxCells = 1 << 24

// ErrAllocation is wrapped by every field allocation failure.
var ErrAllocation = errors.New("field allocation failed")

// Field is a single-buffered W×H grid with Channels floats per cell, row-major.
type Field struct {
	Width, Height int
	Channels      int
	Data          []float32

	disposed bool
}

// NewField allocates a zeroed field.
func NewField(width, height, channels int) (*Field, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrAllocation, width, height)
	}
	if channels < 1 || channels > 4 {
		return nil, fmt.Errorf("%w: %d channels", ErrAllocation, channels)
	}
	if width > MaxCells/height {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrAllocation, width, height, MaxCells)
	}
	return &Field{
		Width:    width,
		Height:   height,
		Channels: channels,
		Data:     make([]float32, width*height*channels),
	}, nil
}

// Index returns the offset of channel 0 of cell (x, y).
func (f *Field) Index(x, y int) int {
	return (y*f.Width + x) * f.Channels
}

// At returns channel c of cell (x, y).
func (f *Field) At(x, y, c int) float32 {
	return f.Data[f.Index(x, y)+c]
}

// Set writes channel c of cell (x, y).
func (f *Field) Set(x, y, c int, v float32) {
	f.Data[f.Index(x, y)+c] = v
}

// Fill sets every cell to the given per-channel values.
func (f *Field) Fill(values ...float32) {
	f.mustLive()
	for i := 0; i < len(f.Data); i += f.Channels {
		for c := 0; c < f.Channels && c < len(values); c++ {
			f.Data[i+c] = values[c]
		}
	}
}

// Clear zeroes the field.
func (f *Field) Clear() {
	f.mustLive()
	clear(f.Data)
}

// Texel returns the size of one cell in normalized coordinates.
func (f *Field) Texel() (float32, float32) {
	return 1 / float32(f.Width), 1 / float32(f.Height)
}

// SameShape reports whether g has the same resolution as f.
func (f *Field) SameShape(g *Field) bool {
	return f.Width == g.Width && f.Height == g.Height
}

// sampleBilinear interpolates channel c at cell-space coordinates (fx, fy), where
// integer coordinates are cell centers. Coordinates outside the grid clamp to the
// edge cells.
func (f *Field) sampleBilinear(fx, fy float32, c int) float32 {
	maxX := float32(f.Width - 1)
	maxY := float32(f.Height - 1)
	if fx < 0 {
		fx = 0
	} else if fx > maxX {
		fx = maxX
	}
	if fy < 0 {
		fy = 0
	} else if fy > maxY {
		fy = maxY
	}

	x0 := int(fx)
	y0 := int(fy)
	tx := fx - float32(x0)
	ty := fy - float32(y0)
	x1 := x0 + 1
	if x1 >= f.Width {
		x1 = f.Width - 1
	}
	y1 := y0 + 1
	if y1 >= f.Height {
		y1 = f.Height - 1
	}

	v00 := f.At(x0, y0, c)
	v10 := f.At(x1, y0, c)
	v01 := f.At(x0, y1, c)
	v11 := f.At(x1, y1, c)

	a := v00 + (v10-v00)*tx
	b := v01 + (v11-v01)*tx
	return a + (b-a)*ty
}

// Sample returns channel c bilinearly interpolated at normalized (u, v) with
// clamp-to-edge addressing.
func (f *Field) Sample(u, v float32, c int) float32 {
	return f.sampleBilinear(u*float32(f.Width)-0.5, v*float32(f.Height)-0.5, c)
}

// Dispose releases the backing storage. Any later use panics.
func (f *Field) Dispose() {
	f.Data = nil
	f.disposed = true
}

// Disposed reports whether Dispose has been called.
func (f *Field) Disposed() bool {
	return f.disposed
}

func (f *Field) mustLive() {
	if f.disposed {
		panic("fluid: use of disposed field")
	}
}

// DoubleBuffer is a ping-pong pair of fields. Which one is current is a single
// index; Swap flips it without copying.
type DoubleBuffer struct {
	bufs [2]*Field
	cur  uint8
}

// NewDoubleBuffer allocates both halves of a pair.
func NewDoubleBuffer(width, height, channels int) (*DoubleBuffer, error) {
	a, err := NewField(width, height, channels)
	if err != nil {
		return nil, err
	}
	b, err := NewField(width, height, channels)
	if err != nil {
		a.Dispose()
		return nil, err
	}
	return &DoubleBuffer{bufs: [2]*Field{a, b}}, nil
}

// Read returns the current field. Stages sample from it.
func (d *DoubleBuffer) Read() *Field {
	return d.bufs[d.cur]
}

// Write returns the other field. Stages render into it, then Swap.
func (d *DoubleBuffer) Write() *Field {
	return d.bufs[d.cur^1]
}

// Swap exchanges the read and write roles.
func (d *DoubleBuffer) Swap() {
	d.cur ^= 1
}

// Clear zeroes both halves.
func (d *DoubleBuffer) Clear() {
	d.bufs[0].Clear()
	d.bufs[1].Clear()
}

// Dispose releases both halves.
func (d *DoubleBuffer) Dispose() {
	d.bufs[0].Dispose()
	d.bufs[1].Dispose()
}
