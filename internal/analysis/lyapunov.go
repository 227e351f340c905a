package analysis

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kvistgaard/tribody/internal/orbit"
)

// DefaultPerturbation is the initial twin-trajectory offset used by the
// CLI. Small enough to stay in the linear regime, large enough to sit
// well above float64 noise.
const DefaultPerturbation = 1e-8

// Separation returns the phase space distance between two states,
// covering both positions and velocities of all bodies.
func Separation(a, b orbit.System) float64 {
	sum := 0.0
	for i := range a {
		sum += r2.Norm2(a[i].Pos.Sub(b[i].Pos))
		sum += r2.Norm2(a[i].Vel.Sub(b[i].Vel))
	}
	return math.Sqrt(sum)
}

// Lyapunov estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
//  1. Run two trajectories a distance d0 apart
//  2. Measure their separation after every step
//  3. Rescale the twin back to distance d0 and accumulate log growth
//  4. λ ≈ Σ ln(d/d0) / (n·dt)
func Lyapunov(f orbit.Force, st orbit.Stepper, initial orbit.System, dt float64, steps int, d0 float64) float64 {
	if steps <= 0 || d0 <= 0 {
		return 0
	}

	a := initial
	b := initial
	b[0].Pos.X += d0

	sumLog := 0.0
	count := 0
	t := 0.0

	for i := 0; i < steps; i++ {
		a = st.Step(f, a, t, dt)
		b = st.Step(f, b, t, dt)
		t += dt

		sep := Separation(a, b)
		if sep <= 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}

		sumLog += math.Log(sep / d0)
		count++

		// Rescale the twin back onto a sphere of radius d0 around the
		// reference so the separation never leaves the linear regime.
		scale := d0 / sep
		for j := range b {
			b[j].Pos = a[j].Pos.Add(b[j].Pos.Sub(a[j].Pos).Scale(scale))
			b[j].Vel = a[j].Vel.Add(b[j].Vel.Sub(a[j].Vel).Scale(scale))
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}

// Divergence runs twin trajectories without rescaling and records
// their separation after every step. The result has one entry per
// completed step, starting at d0, and stops early if either orbit
// blows up.
func Divergence(f orbit.Force, st orbit.Stepper, initial orbit.System, dt float64, steps int, d0 float64) []float64 {
	seps := make([]float64, 0, steps+1)
	seps = append(seps, d0)

	a := initial
	b := initial
	b[0].Pos.X += d0

	t := 0.0
	for i := 0; i < steps; i++ {
		a = st.Step(f, a, t, dt)
		b = st.Step(f, b, t, dt)
		t += dt

		sep := Separation(a, b)
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}
		seps = append(seps, sep)
	}

	return seps
}
