package orbit

import "gonum.org/v1/gonum/spatial/r2"

// Force computes the instantaneous acceleration acting on each body.
type Force interface {
	Accelerations(s System) [3]r2.Vec
}

// Hamiltonian is implemented by force models with a conserved total energy.
type Hamiltonian interface {
	Energy(s System) float64
}

// Stepper advances a system by one fixed timestep. Implementations must
// be deterministic: the same (s, t, dt) always yields the same result.
type Stepper interface {
	Step(f Force, s System, t, dt float64) System
}

// Metric accumulates a scalar diagnostic over a run.
type Metric interface {
	Name() string
	Observe(s System, t float64)
	Value() float64
	Reset()
}

// Observer receives every accepted frame during a run.
type Observer interface {
	OnStep(s System, t float64)
}
