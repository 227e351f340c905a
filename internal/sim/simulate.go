package sim

import (
	"context"

	"github.com/kvistgaard/tribody/internal/gravity"
	"github.com/kvistgaard/tribody/internal/integrators"
	"github.com/kvistgaard/tribody/internal/orbit"
)

// Simulate precomputes a trajectory in one call: steps RK4 steps of
// size dt under gravitational constant g with close-encounter floor
// epsilon. It is the plain-function face of Simulator.Run for callers
// that need no metrics, observers or cancellation.
func Simulate(initial orbit.System, steps int, dt, g, epsilon float64) (*orbit.Trajectory, error) {
	field, err := gravity.New(g, epsilon)
	if err != nil {
		return nil, err
	}
	cfg := Config{Steps: steps, Dt: dt}
	return New(field, integrators.NewRK4()).Run(context.Background(), initial, cfg)
}
