package fluid

import "fmt"

// Pass names one full-grid stage invocation: the fields it samples and the
// field it renders into. Output must never be one of Inputs.
type Pass struct {
	Name   string
	Inputs []*Field
	Output *Field
}

// Phase names reported to a PhaseTimer.
const (
	PhaseSplat          = "splat"
	PhaseAdvectVelocity = "advect_velocity"
	PhaseAdvectDye      = "advect_dye"
	PhaseVorticity      = "vorticity"
	PhaseDivergence     = "divergence"
	PhasePressure       = "pressure"
	PhaseGradient       = "gradient"
)

// Phases lists the step phases in execution order.
var Phases = []string{
	PhaseSplat, PhaseAdvectVelocity, PhaseAdvectDye, PhaseVorticity,
	PhaseDivergence, PhasePressure, PhaseGradient,
}

// check panics when the descriptor is malformed. Aliasing and shape mismatches
// are caller bugs, not runtime conditions.
func (p Pass) check(inputs int, outChannels int) {
	if len(p.Inputs) != inputs {
		panic(fmt.Sprintf("fluid: pass %q wants %d inputs, got %d", p.Name, inputs, len(p.Inputs)))
	}
	if p.Output == nil {
		panic(fmt.Sprintf("fluid: pass %q has no output", p.Name))
	}
	p.Output.mustLive()
	if outChannels > 0 && p.Output.Channels != outChannels {
		panic(fmt.Sprintf("fluid: pass %q output has %d channels, want %d", p.Name, p.Output.Channels, outChannels))
	}
	for _, in := range p.Inputs {
		if in == nil {
			panic(fmt.Sprintf("fluid: pass %q has a nil input", p.Name))
		}
		in.mustLive()
		if in == p.Output {
			panic(fmt.Sprintf("fluid: pass %q reads and writes the same field", p.Name))
		}
		if !in.SameShape(p.Output) {
			panic(fmt.Sprintf("fluid: pass %q mixes %dx%d and %dx%d fields",
				p.Name, in.Width, in.Height, p.Output.Width, p.Output.Height))
		}
	}
}
