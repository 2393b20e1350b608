package fluid

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

// project runs divergence, the Jacobi solve and gradient subtraction on s.
func project(s *Store, iterations int) {
	Divergence(Pass{Name: PhaseDivergence, Inputs: []*Field{s.Velocity.Read()}, Output: s.Divergence})
	SolvePressure(s.Pressure, s.Divergence, iterations)
	SubtractGradient(Pass{
		Name:   PhaseGradient,
		Inputs: []*Field{s.Pressure.Read(), s.Velocity.Read()},
		Output: s.Velocity.Write(),
	})
	s.Velocity.Swap()
}

func newTestStore(t *testing.T, w, h int) *Store {
	t.Helper()
	s, err := NewStore(w, h)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	t.Cleanup(s.Dispose)
	return s
}

func TestProjectionReducesDivergence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 5; trial++ {
		s := newTestStore(t, 64, 64)
		scratch, _ := NewField(64, 64, ScalarChannels)

		// A handful of interior impulses in random directions
		for k := 0; k < 6; k++ {
			splatInto(s.Velocity, SplatParams{
				X:      0.2 + 0.6*rng.Float32(),
				Y:      0.2 + 0.6*rng.Float32(),
				Value:  [4]float32{10*rng.Float32() - 5, 10*rng.Float32() - 5},
				Radius: 0.005,
				Aspect: s.AspectRatio(),
			})
		}

		before := MeanAbsDivergence(s.Velocity.Read(), scratch)
		project(s, 10)
		after := MeanAbsDivergence(s.Velocity.Read(), scratch)

		if !(after < before) {
			t.Errorf("trial %d: expected mean |div| to drop, before=%.6f after=%.6f", trial, before, after)
		}
	}
}

func TestMoreIterationsDoNotHurt(t *testing.T) {
	measure := func(iterations int) float64 {
		s := newTestStore(t, 48, 48)
		scratch, _ := NewField(48, 48, ScalarChannels)
		splatInto(s.Velocity, SplatParams{X: 0.5, Y: 0.5, Value: [4]float32{5, 0}, Radius: 0.005, Aspect: 1})
		project(s, iterations)
		return MeanAbsDivergence(s.Velocity.Read(), scratch)
	}

	prev := math.Inf(1)
	for _, iterations := range []int{1, 5, 10, 20, 40} {
		got := measure(iterations)
		if got > prev {
			t.Errorf("%d iterations left more divergence than fewer: %.6f > %.6f", iterations, got, prev)
		}
		prev = got
	}
}

func TestBoundaryBlocksInflow(t *testing.T) {
	const n = 32
	s := newTestStore(t, n, n)
	s.Velocity.Read().Fill(1, 0) // Flow straight into the right wall

	project(s, 10)

	vel := s.Velocity.Read()
	for y := 0; y < n; y++ {
		right := vel.At(n-1, y, 0)
		if math.Abs(float64(right)) >= 1 {
			t.Fatalf("row %d: right wall normal velocity %.4f not reduced", y, right)
		}
		left := vel.At(0, y, 0)
		if math.Abs(float64(left)) >= 1 {
			t.Fatalf("row %d: left wall normal velocity %.4f not reduced", y, left)
		}
	}
	// Far from the walls the uniform flow is untouched
	if v := vel.At(n/2, n/2, 0); math.Abs(float64(v)-1) > 1e-4 {
		t.Errorf("interior velocity changed: %.6f", v)
	}
}

func TestDivergenceWallReflection(t *testing.T) {
	s := newTestStore(t, 4, 4)
	s.Velocity.Read().Fill(1, 0)

	Divergence(Pass{Name: PhaseDivergence, Inputs: []*Field{s.Velocity.Read()}, Output: s.Divergence})

	// Left edge: L = -C.x = -1, R = 1 -> 0.5*(1 - -1) = 1
	if d := s.Divergence.At(0, 1, 0); d != 1 {
		t.Errorf("left edge divergence = %f, want 1", d)
	}
	// Right edge: R = -C.x = -1, L = 1 -> -1
	if d := s.Divergence.At(3, 1, 0); d != -1 {
		t.Errorf("right edge divergence = %f, want -1", d)
	}
	if d := s.Divergence.At(1, 1, 0); d != 0 {
		t.Errorf("interior divergence = %f, want 0", d)
	}
}

func TestAdvectionConservesDyeWithoutFlow(t *testing.T) {
	s := newTestStore(t, 24, 16)
	rng := rand.New(rand.NewSource(7))
	for i := range s.Dye.Read().Data {
		s.Dye.Read().Data[i] = rng.Float32()
	}
	initial := append([]float32(nil), s.Dye.Read().Data...)

	for step := 0; step < 20; step++ {
		Advect(Pass{
			Name:   PhaseAdvectDye,
			Inputs: []*Field{s.Velocity.Read(), s.Dye.Read()},
			Output: s.Dye.Write(),
		}, 0.016, 1)
		s.Dye.Swap()
	}

	for i, v := range s.Dye.Read().Data {
		if v != initial[i] {
			t.Fatalf("dye[%d] changed: %v -> %v", i, initial[i], v)
		}
	}
}

func TestAdvectionDissipationDecay(t *testing.T) {
	const dissipation = 0.9
	const steps = 8

	s := newTestStore(t, 16, 16)
	rng := rand.New(rand.NewSource(3))
	for i := range s.Dye.Read().Data {
		s.Dye.Read().Data[i] = rng.Float32()
	}
	initial := MeanAbs(s.Dye.Read())

	for step := 0; step < steps; step++ {
		Advect(Pass{
			Name:   PhaseAdvectDye,
			Inputs: []*Field{s.Velocity.Read(), s.Dye.Read()},
			Output: s.Dye.Write(),
		}, 0.016, dissipation)
		s.Dye.Swap()
	}

	want := initial * math.Pow(dissipation, steps)
	got := MeanAbs(s.Dye.Read())
	if math.Abs(got-want) > 1e-5*initial {
		t.Errorf("mean dye after %d steps = %.7f, want %.7f", steps, got, want)
	}
}

func TestAdvectionTransportsAlongFlow(t *testing.T) {
	s := newTestStore(t, 16, 1)
	s.Velocity.Read().Fill(1, 0) // One cell per unit time to the right
	s.Dye.Read().Set(4, 0, 0, 1)

	Advect(Pass{
		Name:   PhaseAdvectDye,
		Inputs: []*Field{s.Velocity.Read(), s.Dye.Read()},
		Output: s.Dye.Write(),
	}, 1, 1)
	s.Dye.Swap()

	if v := s.Dye.Read().At(5, 0, 0); v != 1 {
		t.Errorf("expected dye to move one cell right, got %f at x=5", v)
	}
	if v := s.Dye.Read().At(4, 0, 0); v != 0 {
		t.Errorf("expected source cell emptied, got %f", v)
	}
}

func TestSplatPeakAndFalloff(t *testing.T) {
	const n = 33 // Odd so a cell centre sits exactly at (0.5, 0.5)
	s := newTestStore(t, n, n)

	splatInto(s.Velocity, SplatParams{X: 0.5, Y: 0.5, Value: [4]float32{1, 0}, Radius: 0.005, Aspect: 1})

	vel := s.Velocity.Read()
	c := n / 2
	if peak := vel.At(c, c, 0); math.Abs(float64(peak)-1) > 1e-5 {
		t.Errorf("centre value = %f, want 1", peak)
	}
	if vy := vel.At(c, c, 1); vy != 0 {
		t.Errorf("splat leaked into y component: %f", vy)
	}

	type sample struct {
		dist, v float64
	}
	var samples []sample
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dx, dy := float64(x-c), float64(y-c)
			samples = append(samples, sample{math.Hypot(dx, dy), float64(vel.At(x, y, 0))})
		}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].dist < samples[j].dist })
	for i := 1; i < len(samples); i++ {
		if samples[i].dist > samples[i-1].dist && samples[i].v > samples[i-1].v+1e-7 {
			t.Fatalf("falloff not monotonic: d=%.3f v=%.6f after d=%.3f v=%.6f",
				samples[i].dist, samples[i].v, samples[i-1].dist, samples[i-1].v)
		}
	}
}

func TestSplatIsRoundOnWideGrids(t *testing.T) {
	s := newTestStore(t, 64, 32)
	splatInto(s.Dye, SplatParams{X: 0.5, Y: 0.5, Value: [4]float32{1, 1, 1}, Radius: 0.01, Aspect: s.AspectRatio()})

	dye := s.Dye.Read()
	// Three cells right and three cells up are the same physical distance
	// once the aspect correction is applied.
	right := dye.At(32+3, 16, 0)
	up := dye.At(32, 16+3, 0)
	if math.Abs(float64(right-up)) > 0.02 {
		t.Errorf("splat not round: right=%f up=%f", right, up)
	}
}

func TestJacobiUsesPreviousIterate(t *testing.T) {
	s := newTestStore(t, 3, 3)
	s.Divergence.Fill(0)
	s.Pressure.Read().Fill(2)

	SolvePressure(s.Pressure, s.Divergence, 3)

	// Uniform pressure with zero divergence is a fixed point
	for i, v := range s.Pressure.Read().Data {
		if v != 2 {
			t.Fatalf("pressure[%d] = %f, want 2", i, v)
		}
	}
}

func TestVorticityKeepsStillFluidStill(t *testing.T) {
	s := newTestStore(t, 8, 8)
	Curl(Pass{Name: PhaseVorticity, Inputs: []*Field{s.Velocity.Read()}, Output: s.Curl})
	Vorticity(Pass{
		Name:   PhaseVorticity,
		Inputs: []*Field{s.Velocity.Read(), s.Curl},
		Output: s.Velocity.Write(),
	}, 30, 0.016)

	for i, v := range s.Velocity.Write().Data {
		if v != 0 {
			t.Fatalf("velocity[%d] = %f, want 0", i, v)
		}
	}
}

func TestVorticityStrengthensVortex(t *testing.T) {
	const n = 32
	s := newTestStore(t, n, n)
	vel := s.Velocity.Read()
	// Gaussian vortex centred between the middle cells
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			dx, dy := float64(x)-15.5, float64(y)-15.5
			g := math.Exp(-(dx*dx + dy*dy) / 16)
			vel.Set(x, y, 0, float32(-dy*g))
			vel.Set(x, y, 1, float32(dx*g))
		}
	}

	Curl(Pass{Name: PhaseVorticity, Inputs: []*Field{vel}, Output: s.Curl})
	before := MeanAbs(s.Curl)

	Vorticity(Pass{
		Name:   PhaseVorticity,
		Inputs: []*Field{vel, s.Curl},
		Output: s.Velocity.Write(),
	}, 30, 0.016)
	s.Velocity.Swap()

	Curl(Pass{Name: PhaseVorticity, Inputs: []*Field{s.Velocity.Read()}, Output: s.Curl})
	after := MeanAbs(s.Curl)

	if after <= before*1.02 {
		t.Errorf("mean |curl| %.5f -> %.5f, want confinement to strengthen the vortex", before, after)
	}
}

func TestCurlOfRotation(t *testing.T) {
	const n = 9
	s := newTestStore(t, n, n)
	vel := s.Velocity.Read()
	// Counter-clockwise rotation about the centre: v = (-y, x)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			vel.Set(x, y, 0, -float32(y-n/2))
			vel.Set(x, y, 1, float32(x-n/2))
		}
	}

	Curl(Pass{Name: PhaseVorticity, Inputs: []*Field{vel}, Output: s.Curl})

	if c := s.Curl.At(n/2, n/2, 0); math.Abs(float64(c)-2) > 1e-5 {
		t.Errorf("curl at centre = %f, want 2", c)
	}
}

func BenchmarkProject(b *testing.B) {
	s, _ := NewStore(320, 180)
	splatInto(s.Velocity, SplatParams{X: 0.5, Y: 0.5, Value: [4]float32{5, 2}, Radius: 0.005, Aspect: s.AspectRatio()})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		project(s, 10)
	}
}
