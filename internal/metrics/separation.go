package metrics

import (
	"math"

	"github.com/kvistgaard/tribody/internal/orbit"
)

// MinSeparation records the closest any two bodies came during a run.
// Values approaching the configured distance floor flag a close
// encounter, the usual prelude to truncation or visible energy error.
type MinSeparation struct {
	name    string
	min     float64
	samples int
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation", min: math.Inf(1)}
}

func (m *MinSeparation) Name() string { return m.name }

func (m *MinSeparation) Observe(s orbit.System, t float64) {
	m.samples++
	if d := s.MinSeparation(); d < m.min {
		m.min = d
	}
}

func (m *MinSeparation) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.min
}

func (m *MinSeparation) Reset() {
	m.min = math.Inf(1)
	m.samples = 0
}
