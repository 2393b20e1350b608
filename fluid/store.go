package fluid

import "fmt"

// Channel counts per field kind.
const (
	VelocityChannels = 2
	DyeChannels      = 3
	ScalarChannels   = 1
)

// Store owns every field of one simulation at a fixed resolution.
// A resize builds a new Store; fields are never resampled.
type Store struct {
	Width, Height int

	Velocity *DoubleBuffer
	Dye      *DoubleBuffer
	Pressure *DoubleBuffer

	Divergence *Field
	Curl       *Field
}

// NewStore allocates all fields at width×height. On failure everything
// allocated so far is released.
func NewStore(width, height int) (*Store, error) {
	s := &Store{Width: width, Height: height}
	var err error
	fail := func(name string) (*Store, error) {
		s.Dispose()
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if s.Velocity, err = NewDoubleBuffer(width, height, VelocityChannels); err != nil {
		return fail("velocity")
	}
	if s.Dye, err = NewDoubleBuffer(width, height, DyeChannels); err != nil {
		return fail("dye")
	}
	if s.Pressure, err = NewDoubleBuffer(width, height, ScalarChannels); err != nil {
		return fail("pressure")
	}
	if s.Divergence, err = NewField(width, height, ScalarChannels); err != nil {
		return fail("divergence")
	}
	if s.Curl, err = NewField(width, height, ScalarChannels); err != nil {
		return fail("curl")
	}
	return s, nil
}

// AspectRatio returns width / height of the grid.
func (s *Store) AspectRatio() float32 {
	return float32(s.Width) / float32(s.Height)
}

// Clear zeroes every field without reallocating.
func (s *Store) Clear() {
	s.Velocity.Clear()
	s.Dye.Clear()
	s.Pressure.Clear()
	s.Divergence.Clear()
	s.Curl.Clear()
}

// Dispose releases every field. Safe on a partially built store.
func (s *Store) Dispose() {
	if s == nil {
		return
	}
	if s.Velocity != nil {
		s.Velocity.Dispose()
	}
	if s.Dye != nil {
		s.Dye.Dispose()
	}
	if s.Pressure != nil {
		s.Pressure.Dispose()
	}
	if s.Divergence != nil {
		s.Divergence.Dispose()
	}
	if s.Curl != nil {
		s.Curl.Dispose()
	}
}
