package sim

import (
	"context"
	"sync"

	"github.com/kvistgaard/tribody/internal/orbit"
)

// Candidate names a stepper entered into a comparison run.
type Candidate struct {
	Name    string
	Stepper orbit.Stepper
}

// Comparison couples a candidate's name with its finished trajectory.
type Comparison struct {
	Name       string
	Trajectory *orbit.Trajectory
}

// RunAll integrates the same initial system once per candidate,
// concurrently, and returns results in candidate order. The field is
// shared across goroutines and must be read-only during the runs;
// gravity.Field is. The first run error wins.
func RunAll(ctx context.Context, field orbit.Force, cands []Candidate, initial orbit.System, cfg Config) ([]Comparison, error) {
	out := make([]Comparison, len(cands))
	errs := make([]error, len(cands))

	var wg sync.WaitGroup
	for i, c := range cands {
		wg.Add(1)
		go func(i int, c Candidate) {
			defer wg.Done()
			tr, err := New(field, c.Stepper).Run(ctx, initial, cfg)
			out[i] = Comparison{Name: c.Name, Trajectory: tr}
			errs[i] = err
		}(i, c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
