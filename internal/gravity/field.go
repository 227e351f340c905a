package gravity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kvistgaard/tribody/internal/orbit"
)

const (
	// DefaultG is the SI gravitational constant. Scaled scenarios
	// (figure-eight, Lagrange) override it with G = 1.
	DefaultG = 6.6743e-11

	// DefaultEpsilon is the close-encounter distance floor.
	DefaultEpsilon = 1e-4
)

// Field is the pairwise inverse-square gravitational force model.
// Pair distances are floored at Epsilon so a close encounter saturates
// the force instead of dividing toward infinity. The floor is a
// stability safeguard, not physics; Epsilon = 0 disables it.
type Field struct {
	G       float64
	Epsilon float64
}

func New(g, epsilon float64) (*Field, error) {
	if g <= 0 || math.IsNaN(g) || math.IsInf(g, 0) {
		return nil, fmt.Errorf("%w: G = %v (must be positive and finite)", orbit.ErrInvalidConfig, g)
	}
	if epsilon < 0 || math.IsNaN(epsilon) || math.IsInf(epsilon, 0) {
		return nil, fmt.Errorf("%w: epsilon = %v (must be non-negative and finite)", orbit.ErrInvalidConfig, epsilon)
	}
	return &Field{G: g, Epsilon: epsilon}, nil
}

// Accelerations computes the net gravitational acceleration on each
// body from the other two. Pairs are visited in index order, so the
// floating-point accumulation order is fixed and results are
// bit-reproducible for identical inputs.
func (f *Field) Accelerations(s orbit.System) [3]r2.Vec {
	var acc [3]r2.Vec

	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			d := r2.Sub(s[j].Pos, s[i].Pos)
			r := r2.Norm(d)
			if r < f.Epsilon {
				r = f.Epsilon
			}
			r3Inv := 1.0 / (r * r * r)

			acc[i] = r2.Add(acc[i], r2.Scale(f.G*s[j].Mass*r3Inv, d))
			acc[j] = r2.Sub(acc[j], r2.Scale(f.G*s[i].Mass*r3Inv, d))
		}
	}

	return acc
}

// Energy returns total mechanical energy, kinetic plus pairwise
// gravitational potential. The same distance floor used for forces
// keeps the potential bounded near coincidence.
func (f *Field) Energy(s orbit.System) float64 {
	e := s.KineticEnergy()

	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			r := r2.Norm(r2.Sub(s[j].Pos, s[i].Pos))
			if r < f.Epsilon {
				r = f.Epsilon
			}
			e -= f.G * s[i].Mass * s[j].Mass / r
		}
	}

	return e
}
