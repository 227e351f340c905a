package integrators

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kvistgaard/tribody/internal/orbit"
)

// Euler is the semi-implicit Euler scheme: velocities absorb the
// current acceleration first, then positions move with the updated
// velocities. First order, but symplectic, so it avoids the secular
// energy growth of the explicit form.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(f orbit.Force, s orbit.System, _, dt float64) orbit.System {
	acc := f.Accelerations(s)
	out := s
	for i := range out {
		out[i].Vel = r2.Add(out[i].Vel, r2.Scale(dt, acc[i]))
		out[i].Pos = r2.Add(out[i].Pos, r2.Scale(dt, out[i].Vel))
	}
	return out
}
