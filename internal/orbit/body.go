package orbit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Body is a point mass moving in the plane.
type Body struct {
	Mass float64
	Pos  r2.Vec
	Vel  r2.Vec
}

// System is the instantaneous state of the three bodies. It is a plain
// value: assignment copies the whole state, so steppers can work on
// intermediate copies without aliasing the caller's frame.
type System [3]Body

// NewSystem validates the bodies and assembles a system. Masses must be
// positive and finite, positions and velocities finite.
func NewSystem(b1, b2, b3 Body) (System, error) {
	s := System{b1, b2, b3}
	for i, b := range s {
		if b.Mass <= 0 || math.IsNaN(b.Mass) || math.IsInf(b.Mass, 0) {
			return System{}, fmt.Errorf("%w: body %d mass %v (must be positive)", ErrInvalidConfig, i, b.Mass)
		}
		if !finite(b.Pos) || !finite(b.Vel) {
			return System{}, fmt.Errorf("%w: body %d has non-finite position or velocity", ErrInvalidConfig, i)
		}
	}
	return s, nil
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Valid reports whether every mass, position and velocity is finite.
func (s System) Valid() bool {
	for _, b := range s {
		if math.IsNaN(b.Mass) || math.IsInf(b.Mass, 0) {
			return false
		}
		if !finite(b.Pos) || !finite(b.Vel) {
			return false
		}
	}
	return true
}

func (s System) TotalMass() float64 {
	return s[0].Mass + s[1].Mass + s[2].Mass
}

func (s System) CenterOfMass() r2.Vec {
	var c r2.Vec
	for _, b := range s {
		c = r2.Add(c, r2.Scale(b.Mass, b.Pos))
	}
	return r2.Scale(1/s.TotalMass(), c)
}

// Momentum returns the total linear momentum.
func (s System) Momentum() r2.Vec {
	var p r2.Vec
	for _, b := range s {
		p = r2.Add(p, r2.Scale(b.Mass, b.Vel))
	}
	return p
}

// AngularMomentum returns the z component of the total angular momentum
// about the origin.
func (s System) AngularMomentum() float64 {
	var l float64
	for _, b := range s {
		l += b.Mass * r2.Cross(b.Pos, b.Vel)
	}
	return l
}

func (s System) KineticEnergy() float64 {
	var ke float64
	for _, b := range s {
		ke += 0.5 * b.Mass * r2.Norm2(b.Vel)
	}
	return ke
}

// MinSeparation returns the smallest pairwise distance between bodies.
func (s System) MinSeparation() float64 {
	min := math.Inf(1)
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if d := r2.Norm(r2.Sub(s[j].Pos, s[i].Pos)); d < min {
				min = d
			}
		}
	}
	return min
}
