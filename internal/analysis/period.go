package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/kvistgaard/tribody/internal/orbit"
)

// PositionSeries extracts one body's coordinates across a trajectory.
func PositionSeries(tr *orbit.Trajectory, body int) (xs, ys []float64) {
	xs = make([]float64, tr.Len())
	ys = make([]float64, tr.Len())
	for i := 0; i < tr.Len(); i++ {
		p := tr.At(i).Bodies[body].Pos
		xs[i] = p.X
		ys[i] = p.Y
	}
	return xs, ys
}

// PowerSpectrum returns spectral magnitudes for the positive-frequency
// half of the signal, after mean removal. Bin k corresponds to
// frequency k/(n·dt).
func PowerSpectrum(signal []float64) []float64 {
	n := len(signal)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range signal {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod returns the period of the strongest spectral line, or
// 0 when the signal is too short or flat to resolve one.
func DominantPeriod(signal []float64, dt float64) float64 {
	ps := PowerSpectrum(signal)
	if len(ps) < 2 {
		return 0
	}

	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return 0
	}

	return float64(len(signal)) * dt / float64(peak)
}

// Period estimates the dominant period of a trajectory from the first
// body's x coordinate.
func Period(tr *orbit.Trajectory, dt float64) float64 {
	xs, _ := PositionSeries(tr, 0)
	return DominantPeriod(xs, dt)
}

// Return records the closest recurrence of a trajectory's initial
// state.
type Return struct {
	Step     int
	Time     float64
	Distance float64
}

// ClosestReturn scans a trajectory for the frame nearest its initial
// state in phase space. The first tenth of the run is skipped so the
// frames adjacent to the start do not win trivially. Returns a zero
// Return for trajectories shorter than three frames.
func ClosestReturn(tr *orbit.Trajectory) Return {
	if tr.Len() < 3 {
		return Return{}
	}

	start := tr.Len() / 10
	if start < 1 {
		start = 1
	}

	first := tr.At(0).Bodies
	best := Return{Distance: math.Inf(1)}
	for i := start; i < tr.Len(); i++ {
		f := tr.At(i)
		d := Separation(first, f.Bodies)
		if d < best.Distance {
			best = Return{Step: f.Step, Time: f.Time, Distance: d}
		}
	}
	return best
}
