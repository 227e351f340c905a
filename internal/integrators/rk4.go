package integrators

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kvistgaard/tribody/internal/orbit"
)

// RK4 is the classical fourth-order Runge-Kutta scheme: four force
// evaluations per step, combined with weights 1,2,2,1 over 6.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(f orbit.Force, s orbit.System, _, dt float64) orbit.System {
	k1 := eval(f, s)
	k2 := eval(f, shifted(s, k1, dt*0.5))
	k3 := eval(f, shifted(s, k2, dt*0.5))
	k4 := eval(f, shifted(s, k3, dt))

	dt6 := dt / 6.0
	out := s
	for i := range out {
		dp := r2.Add(r2.Add(r2.Add(k1.vel[i], r2.Scale(2, k2.vel[i])), r2.Scale(2, k3.vel[i])), k4.vel[i])
		dv := r2.Add(r2.Add(r2.Add(k1.acc[i], r2.Scale(2, k2.acc[i])), r2.Scale(2, k3.acc[i])), k4.acc[i])
		out[i].Pos = r2.Add(out[i].Pos, r2.Scale(dt6, dp))
		out[i].Vel = r2.Add(out[i].Vel, r2.Scale(dt6, dv))
	}
	return out
}
