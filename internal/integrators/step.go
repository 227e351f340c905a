package integrators

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kvistgaard/tribody/internal/orbit"
)

// deriv is the state derivative of a system: rate of change of each
// body's position (its velocity) and of its velocity (its acceleration).
type deriv struct {
	vel [3]r2.Vec
	acc [3]r2.Vec
}

func eval(f orbit.Force, s orbit.System) deriv {
	d := deriv{acc: f.Accelerations(s)}
	for i := range s {
		d.vel[i] = s[i].Vel
	}
	return d
}

// shifted returns a copy of s advanced along d by h. The argument is
// received by value, so the caller's system is never touched.
func shifted(s orbit.System, d deriv, h float64) orbit.System {
	for i := range s {
		s[i].Pos = r2.Add(s[i].Pos, r2.Scale(h, d.vel[i]))
		s[i].Vel = r2.Add(s[i].Vel, r2.Scale(h, d.acc[i]))
	}
	return s
}
