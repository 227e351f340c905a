package config

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/kvistgaard/tribody/internal/gravity"
	"github.com/kvistgaard/tribody/internal/orbit"
	"github.com/kvistgaard/tribody/internal/sim"
)

const (
	DefaultSteps = 20000
	DefaultDt    = 0.001
)

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type BodyConfig struct {
	Mass float64 `yaml:"mass"`
	Pos  Vec     `yaml:"pos"`
	Vel  Vec     `yaml:"vel"`
}

// Scenario is the full configuration of one run: the three bodies,
// the force constants and the integration settings. Period, when
// known, is the scenario's reference orbital period in simulated time
// and is used only for reporting.
type Scenario struct {
	Name       string       `yaml:"name"`
	Integrator string       `yaml:"integrator"`
	Steps      int          `yaml:"steps"`
	Dt         float64      `yaml:"dt"`
	G          float64      `yaml:"g"`
	Epsilon    float64      `yaml:"epsilon"`
	Period     float64      `yaml:"period,omitempty"`
	Bodies     []BodyConfig `yaml:"bodies"`
}

// System assembles and validates the scenario's initial state.
func (s *Scenario) System() (orbit.System, error) {
	if len(s.Bodies) != 3 {
		return orbit.System{}, fmt.Errorf("%w: scenario %q has %d bodies (need exactly 3)", orbit.ErrInvalidConfig, s.Name, len(s.Bodies))
	}
	toBody := func(b BodyConfig) orbit.Body {
		return orbit.Body{
			Mass: b.Mass,
			Pos:  r2.Vec{X: b.Pos.X, Y: b.Pos.Y},
			Vel:  r2.Vec{X: b.Vel.X, Y: b.Vel.Y},
		}
	}
	return orbit.NewSystem(toBody(s.Bodies[0]), toBody(s.Bodies[1]), toBody(s.Bodies[2]))
}

// Field builds the scenario's force model.
func (s *Scenario) Field() (*gravity.Field, error) {
	return gravity.New(s.G, s.Epsilon)
}

// SimConfig returns the run settings for the driver.
func (s *Scenario) SimConfig() sim.Config {
	return sim.Config{Steps: s.Steps, Dt: s.Dt}
}

// Validate builds every derived piece once, so a bad scenario fails
// before any work is done.
func (s *Scenario) Validate() error {
	if _, err := s.System(); err != nil {
		return err
	}
	if _, err := s.Field(); err != nil {
		return err
	}
	if s.Dt <= 0 {
		return fmt.Errorf("%w: scenario %q dt = %v (must be positive)", orbit.ErrInvalidConfig, s.Name, s.Dt)
	}
	if s.Steps < 0 {
		return fmt.Errorf("%w: scenario %q steps = %d (must be non-negative)", orbit.ErrInvalidConfig, s.Name, s.Steps)
	}
	return nil
}

// Load reads a scenario from a YAML file. Missing fields keep the
// figure-eight defaults, so a file can override just the parts it
// cares about.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultScenario()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Scenario) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
