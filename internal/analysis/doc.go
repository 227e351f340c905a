// Package analysis provides orbit characterization tools.
//
// The package answers the questions people ask after a run finishes:
//
//   - [Lyapunov]: largest Lyapunov exponent via twin-trajectory separation
//   - [Divergence]: raw separation history between neighboring orbits
//   - [DominantPeriod]: period of the strongest spectral line
//   - [ClosestReturn]: nearest recurrence of the initial state
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.Lyapunov(field, stepper, system, dt, steps, analysis.DefaultPerturbation)
//	if lambda > 0 {
//	    // Nearby orbits diverge exponentially
//	}
package analysis
