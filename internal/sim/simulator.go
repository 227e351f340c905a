package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/kvistgaard/tribody/internal/orbit"
)

// Config controls a precomputation run.
type Config struct {
	// Steps is the number of integration steps. A complete run records
	// Steps+1 frames, the initial state included.
	Steps int

	// Dt is the fixed timestep.
	Dt float64
}

func DefaultConfig() Config {
	return Config{Steps: 20000, Dt: 0.001}
}

// Simulator drives a stepper over a force field and records every
// accepted state. The whole trajectory is computed up front; playback
// afterwards is pure index arithmetic over the finished buffer.
type Simulator struct {
	field     orbit.Force
	stepper   orbit.Stepper
	metrics   []orbit.Metric
	observers []orbit.Observer
}

func New(field orbit.Force, stepper orbit.Stepper) *Simulator {
	return &Simulator{field: field, stepper: stepper}
}

func (s *Simulator) AddMetric(m orbit.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o orbit.Observer) { s.observers = append(s.observers, o) }

// Run integrates cfg.Steps steps from initial and returns the recorded
// trajectory. initial is never mutated. If a computed state goes
// non-finite the run stops and returns the valid prefix with the
// trajectory marked truncated; divergence is not an error. A canceled
// context returns the partial trajectory together with ctx.Err().
func (s *Simulator) Run(ctx context.Context, initial orbit.System, cfg Config) (*orbit.Trajectory, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if !initial.Valid() {
		return nil, fmt.Errorf("%w: initial state is non-finite", orbit.ErrInvalidConfig)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	frames := make([]orbit.Frame, 0, cfg.Steps+1)
	cur := initial
	t := 0.0
	frames = append(frames, orbit.Frame{Step: 0, Time: 0, Bodies: cur})

	truncated := false
	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return orbit.NewTrajectory(frames, truncated), ctx.Err()
		default:
		}

		s.observe(cur, t)

		next := s.stepper.Step(s.field, cur, t, cfg.Dt)
		if !next.Valid() {
			truncated = true
			break
		}

		cur = next
		t += cfg.Dt
		frames = append(frames, orbit.Frame{Step: i + 1, Time: t, Bodies: cur})
	}

	// The loop observes states before stepping away from them, so a
	// completed run still owes the final frame one observation.
	if !truncated {
		s.observe(cur, t)
	}

	return orbit.NewTrajectory(frames, truncated), nil
}

func (s *Simulator) observe(cur orbit.System, t float64) {
	for _, m := range s.metrics {
		m.Observe(cur, t)
	}
	for _, o := range s.observers {
		o.OnStep(cur, t)
	}
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt = %v (must be positive and finite)", orbit.ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps = %d (must be non-negative)", orbit.ErrInvalidConfig, cfg.Steps)
	}
	return nil
}
