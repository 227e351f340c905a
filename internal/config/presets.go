package config

import (
	"math"
	"sort"
)

// Presets are the built-in scenarios. The figure-eight and Lagrange
// entries use scaled units (G = 1, unit masses) and known periodic
// solutions; classic runs the slow SI-gravity arrangement the project
// started from; chaotic is a perturbed figure-eight that loses the
// choreography within a few crossings.
var Presets = map[string]*Scenario{
	"classic": {
		Name:       "classic",
		Integrator: "euler",
		Steps:      100000,
		Dt:         0.5,
		G:          6.6743e-11,
		Epsilon:    1e-4,
		Bodies: []BodyConfig{
			{Mass: 1, Pos: Vec{X: 0.3089693008, Y: 0.4236727692}},
			{Mass: 1, Pos: Vec{X: -0.5}},
			{Mass: 1, Pos: Vec{X: 0.5}},
		},
	},
	"figure-eight": {
		Name:       "figure-eight",
		Integrator: "rk4",
		Steps:      12652,
		Dt:         0.001,
		G:          1,
		Epsilon:    1e-5,
		Period:     6.3259,
		Bodies: []BodyConfig{
			{Mass: 1, Pos: Vec{X: -1}, Vel: Vec{X: 0.347111, Y: 0.532728}},
			{Mass: 1, Pos: Vec{X: 1}, Vel: Vec{X: 0.347111, Y: 0.532728}},
			{Mass: 1, Vel: Vec{X: -0.694222, Y: -1.065456}},
		},
	},
	"lagrange": lagrangeScenario(),
	"chaotic": {
		Name:       "chaotic",
		Integrator: "rk4",
		Steps:      40000,
		Dt:         0.0005,
		G:          1,
		Epsilon:    1e-3,
		Bodies: []BodyConfig{
			{Mass: 1, Pos: Vec{X: -1}, Vel: Vec{X: 0.347111, Y: 0.532728}},
			{Mass: 1, Pos: Vec{X: 1}, Vel: Vec{X: 0.347111, Y: 0.532728}},
			{Mass: 1.02, Vel: Vec{X: -0.694222, Y: -1.065456}},
		},
	},
}

// lagrangeScenario is the equilateral rotating triangle: unit masses
// on a unit circle with tangential speed 3^(-1/4), period 2*pi*3^(1/4).
func lagrangeScenario() *Scenario {
	v := math.Pow(3, -0.25)
	s := &Scenario{
		Name:       "lagrange",
		Integrator: "rk4",
		Steps:      16539,
		Dt:         0.001,
		G:          1,
		Epsilon:    1e-5,
		Period:     2 * math.Pi * math.Pow(3, 0.25),
	}
	for i := 0; i < 3; i++ {
		angle := math.Pi/2 + float64(i)*2*math.Pi/3
		sin, cos := math.Sincos(angle)
		s.Bodies = append(s.Bodies, BodyConfig{
			Mass: 1,
			Pos:  Vec{X: cos, Y: sin},
			Vel:  Vec{X: -v * sin, Y: v * cos},
		})
	}
	return s
}

// DefaultScenario is the preset used when nothing else is requested.
func DefaultScenario() *Scenario {
	return GetPreset("figure-eight")
}

// GetPreset returns a copy of a named preset, or nil if the name is
// unknown. Callers may override fields freely without touching the
// shared table.
func GetPreset(name string) *Scenario {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	cp.Bodies = append([]BodyConfig(nil), p.Bodies...)
	return &cp
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
