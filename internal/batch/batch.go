// Package batch executes scripted sequences of simulation runs.
//
// A script is a yaml file naming presets or inline scenarios. Every
// run is stored, so a script doubles as a reproducible experiment log:
//
//	name: nightly
//	runs:
//	  - preset: figure-eight
//	  - preset: lagrange
//	    steps: 4000
//	  - scenario:
//	      name: custom
//	      ...
package batch

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kvistgaard/tribody/internal/config"
	"github.com/kvistgaard/tribody/internal/integrators"
	"github.com/kvistgaard/tribody/internal/metrics"
	"github.com/kvistgaard/tribody/internal/orbit"
	"github.com/kvistgaard/tribody/internal/sim"
	"github.com/kvistgaard/tribody/internal/store"
)

// RunSpec selects one scenario to run: a preset name or a full inline
// scenario, with optional overrides on top.
type RunSpec struct {
	Preset     string           `yaml:"preset,omitempty"`
	Scenario   *config.Scenario `yaml:"scenario,omitempty"`
	Steps      int              `yaml:"steps,omitempty"`
	Dt         float64          `yaml:"dt,omitempty"`
	Integrator string           `yaml:"integrator,omitempty"`
}

// Script is a named sequence of runs.
type Script struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Runs        []RunSpec `yaml:"runs"`
}

// Result summarizes one completed and stored run.
type Result struct {
	RunID     string
	Scenario  string
	Frames    int
	Truncated bool
	Metrics   map[string]float64
}

// Load reads a script from a yaml file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, err
	}
	if len(script.Runs) == 0 {
		return nil, fmt.Errorf("script %q has no runs", script.Name)
	}
	return &script, nil
}

func (r RunSpec) resolve() (*config.Scenario, error) {
	var sc *config.Scenario
	switch {
	case r.Scenario != nil:
		sc = r.Scenario
	case r.Preset != "":
		sc = config.GetPreset(r.Preset)
		if sc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", r.Preset, config.ListPresets())
		}
	default:
		return nil, fmt.Errorf("run needs a preset or an inline scenario")
	}

	if r.Steps != 0 {
		sc.Steps = r.Steps
	}
	if r.Dt != 0 {
		sc.Dt = r.Dt
	}
	if r.Integrator != "" {
		sc.Integrator = r.Integrator
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Run executes every run in the script and stores each trajectory.
// It stops at the first failing run, returning the results finished so
// far.
func Run(ctx context.Context, script *Script, st *store.Store) ([]Result, error) {
	results := make([]Result, 0, len(script.Runs))

	for i, spec := range script.Runs {
		sc, err := spec.resolve()
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}

		system, err := sc.System()
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}
		field, err := sc.Field()
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}
		stepper, err := integrators.ByName(sc.Integrator)
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}

		s := sim.New(field, stepper)
		tracked := []orbit.Metric{
			metrics.NewEnergyDrift(field),
			metrics.NewMomentumDrift(),
			metrics.NewMinSeparation(),
		}
		for _, m := range tracked {
			s.AddMetric(m)
		}

		tr, err := s.Run(ctx, system, sc.SimConfig())
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, sc.Name, err)
		}

		vals := make(map[string]float64, len(tracked))
		for _, m := range tracked {
			vals[m.Name()] = m.Value()
		}

		runID, err := st.Save(sc, tr, vals)
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, sc.Name, err)
		}

		results = append(results, Result{
			RunID:     runID,
			Scenario:  sc.Name,
			Frames:    tr.Len(),
			Truncated: tr.Truncated(),
			Metrics:   vals,
		})
	}

	return results, nil
}
