package fluid

import "gonum.org/v1/gonum/blas/blas32"

// MeanAbs returns the mean absolute value over every channel of f.
func MeanAbs(f *Field) float64 {
	f.mustLive()
	if len(f.Data) == 0 {
		return 0
	}
	sum := blas32.Asum(blas32.Vector{N: len(f.Data), Inc: 1, Data: f.Data})
	return float64(sum) / float64(len(f.Data))
}

// Energy returns the mean squared magnitude per cell of f.
func Energy(f *Field) float64 {
	f.mustLive()
	cells := f.Width * f.Height
	if cells == 0 {
		return 0
	}
	v := blas32.Vector{N: len(f.Data), Inc: 1, Data: f.Data}
	return float64(blas32.Dot(v, v)) / float64(cells)
}

// MeanAbsDivergence measures how compressible a velocity field is, using the
// same stencil and wall rule as the Divergence stage. scratch receives the
// divergence and must be a distinct scalar field of the same size.
func MeanAbsDivergence(velocity, scratch *Field) float64 {
	Divergence(Pass{Name: PhaseDivergence, Inputs: []*Field{velocity}, Output: scratch})
	return MeanAbs(scratch)
}
