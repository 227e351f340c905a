package metrics

import (
	"math"

	"github.com/kvistgaard/tribody/internal/orbit"
)

// EnergyDrift tracks the worst relative deviation of total mechanical
// energy from its value at the first observed frame. For a well-behaved
// fixed-step run the value stays small and shrinks with the timestep.
type EnergyDrift struct {
	name     string
	h        orbit.Hamiltonian
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(h orbit.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", h: h}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s orbit.System, t float64) {
	energy := e.h.Energy(s)

	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
