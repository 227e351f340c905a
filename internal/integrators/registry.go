package integrators

import (
	"fmt"
	"sort"

	"github.com/kvistgaard/tribody/internal/orbit"
)

// DefaultName is the scheme used when no integrator is requested.
const DefaultName = "rk4"

var steppers = map[string]func() orbit.Stepper{
	"euler":    func() orbit.Stepper { return NewEuler() },
	"leapfrog": func() orbit.Stepper { return NewLeapfrog() },
	"rk4":      func() orbit.Stepper { return NewRK4() },
}

// ByName returns a fresh stepper for a registered scheme name.
func ByName(name string) (orbit.Stepper, error) {
	fn, ok := steppers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q", orbit.ErrInvalidConfig, name)
	}
	return fn(), nil
}

// Names lists the registered scheme names in sorted order.
func Names() []string {
	names := make([]string, 0, len(steppers))
	for name := range steppers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
