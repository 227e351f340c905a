// Package orbit provides the core primitives for planar three-body
// gravitational simulation.
//
// The package defines the fundamental types shared by the force model,
// the integrators and the playback layer:
//
//   - [Body]: point mass with position and velocity
//   - [System]: instantaneous state of all three bodies
//   - [Force]: acceleration field interface
//   - [Stepper]: fixed-step numerical integrator interface
//   - [Trajectory]: immutable record of a completed run
//
// # Example
//
//	field := gravity.New(gravity.DefaultG, gravity.DefaultEpsilon)
//	sim := sim.New(field, integrators.NewRK4())
//	traj, _ := sim.Run(ctx, initial, cfg)
//
// # Thread Safety
//
// System is a value type and safe to copy across goroutines. A
// Trajectory is immutable after construction and safe for concurrent
// reads; steppers and simulators are not safe for concurrent use.
package orbit
