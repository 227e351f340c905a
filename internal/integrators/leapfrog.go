package integrators

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kvistgaard/tribody/internal/orbit"
)

// Leapfrog is the kick-drift-kick form of velocity Verlet: half kick,
// full drift, half kick. Second order and symplectic, so energy
// oscillates around the true value instead of drifting away.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(f orbit.Force, s orbit.System, _, dt float64) orbit.System {
	half := dt * 0.5

	acc := f.Accelerations(s)
	out := s
	for i := range out {
		out[i].Vel = r2.Add(out[i].Vel, r2.Scale(half, acc[i]))
	}
	for i := range out {
		out[i].Pos = r2.Add(out[i].Pos, r2.Scale(dt, out[i].Vel))
	}

	acc = f.Accelerations(out)
	for i := range out {
		out[i].Vel = r2.Add(out[i].Vel, r2.Scale(half, acc[i]))
	}
	return out
}
