package integrators

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kvistgaard/tribody/internal/gravity"
	"github.com/kvistgaard/tribody/internal/orbit"
)

// springField pulls every body toward the origin with a = -pos, three
// independent unit harmonic oscillators with known analytic solution
// x(t) = x0*cos(t), vx(t) = -x0*sin(t).
type springField struct{}

func (springField) Accelerations(s orbit.System) [3]r2.Vec {
	var acc [3]r2.Vec
	for i, b := range s {
		acc[i] = b.Pos.Scale(-1)
	}
	return acc
}

func springSystem() orbit.System {
	return orbit.System{
		{Mass: 1, Pos: r2.Vec{X: 1}},
		{Mass: 1, Pos: r2.Vec{X: 2}},
		{Mass: 1, Pos: r2.Vec{X: 3}},
	}
}

func runSteps(st orbit.Stepper, f orbit.Force, s orbit.System, steps int, dt float64) orbit.System {
	for i := 0; i < steps; i++ {
		s = st.Step(f, s, float64(i)*dt, dt)
	}
	return s
}

// maxError returns the worst position error against the analytic
// oscillator solution at time t.
func maxError(s orbit.System, t float64) float64 {
	worst := 0.0
	for i, b := range s {
		x0 := float64(i + 1)
		if e := math.Abs(b.Pos.X - x0*math.Cos(t)); e > worst {
			worst = e
		}
		if e := math.Abs(b.Vel.X + x0*math.Sin(t)); e > worst {
			worst = e
		}
	}
	return worst
}

func TestRK4Accuracy(t *testing.T) {
	s := runSteps(NewRK4(), springField{}, springSystem(), 100, 0.01)
	if err := maxError(s, 1.0); err > 1e-6 {
		t.Errorf("RK4 error after 100 steps = %g, want < 1e-6", err)
	}
}

func TestLeapfrogAccuracy(t *testing.T) {
	s := runSteps(NewLeapfrog(), springField{}, springSystem(), 100, 0.01)
	if err := maxError(s, 1.0); err > 1e-3 {
		t.Errorf("leapfrog error after 100 steps = %g, want < 1e-3", err)
	}
}

func TestEulerAccuracy(t *testing.T) {
	s := runSteps(NewEuler(), springField{}, springSystem(), 100, 0.01)
	if err := maxError(s, 1.0); err > 0.1 {
		t.Errorf("euler error after 100 steps = %g, want < 0.1", err)
	}
}

// Halving dt should shrink RK4's global error by roughly 2^4.
func TestRK4ConvergenceOrder(t *testing.T) {
	coarse := maxError(runSteps(NewRK4(), springField{}, springSystem(), 10, 0.1), 1.0)
	fine := maxError(runSteps(NewRK4(), springField{}, springSystem(), 20, 0.05), 1.0)

	if fine == 0 {
		t.Skip("fine solution at rounding noise")
	}
	if ratio := coarse / fine; ratio < 8 {
		t.Errorf("error ratio = %.2f, want >= 8 for a 4th-order scheme", ratio)
	}
}

func TestLeapfrogTimeReversible(t *testing.T) {
	f := springField{}
	lf := NewLeapfrog()
	s0 := springSystem()

	s1 := lf.Step(f, s0, 0, 0.05)
	back := lf.Step(f, s1, 0.05, -0.05)

	for i := range s0 {
		if d := r2.Norm(back[i].Pos.Sub(s0[i].Pos)); d > 1e-10 {
			t.Errorf("body %d position not recovered, off by %g", i, d)
		}
		if d := r2.Norm(back[i].Vel.Sub(s0[i].Vel)); d > 1e-10 {
			t.Errorf("body %d velocity not recovered, off by %g", i, d)
		}
	}
}

func TestSteppersDeterministic(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			a, _ := ByName(name)
			b, _ := ByName(name)

			sa := runSteps(a, springField{}, springSystem(), 50, 0.01)
			sb := runSteps(b, springField{}, springSystem(), 50, 0.01)

			if sa != sb {
				t.Error("two identical runs differ")
			}
		})
	}
}

// A single step of any scheme over the gravitational pair force must
// conserve total linear momentum to rounding error.
func TestStepMomentumConserved(t *testing.T) {
	field := &gravity.Field{G: 1, Epsilon: 1e-3}
	s := orbit.System{
		{Mass: 1.0, Pos: r2.Vec{X: -1, Y: 0.2}, Vel: r2.Vec{X: 0.1, Y: 0.3}},
		{Mass: 2.5, Pos: r2.Vec{X: 0.8, Y: -0.5}, Vel: r2.Vec{X: -0.2, Y: 0.1}},
		{Mass: 0.7, Pos: r2.Vec{X: 0.1, Y: 1.1}, Vel: r2.Vec{X: 0.05, Y: -0.4}},
	}
	before := s.Momentum()

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			st, err := ByName(name)
			if err != nil {
				t.Fatal(err)
			}
			after := st.Step(field, s, 0, 0.01).Momentum()
			if d := r2.Norm(after.Sub(before)); d > 1e-12 {
				t.Errorf("momentum changed by %g over one step", d)
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"euler", "leapfrog", "rk4"} {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%q): %v", name, err)
		}
	}

	_, err := ByName("rk45")
	if !errors.Is(err, orbit.ErrInvalidConfig) {
		t.Errorf("ByName(unknown) error = %v, want ErrInvalidConfig", err)
	}
}

func TestNamesSortedAndComplete(t *testing.T) {
	names := Names()
	if len(names) != 3 {
		t.Fatalf("Names() = %v, want 3 entries", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Names() not sorted: %v", names)
		}
	}
}
