package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kvistgaard/tribody/internal/gravity"
	"github.com/kvistgaard/tribody/internal/integrators"
	"github.com/kvistgaard/tribody/internal/orbit"
)

// figureEight is the equal-mass figure-eight choreography at G = 1.
func figureEight() orbit.System {
	return orbit.System{
		{Mass: 1, Pos: r2.Vec{X: -1}, Vel: r2.Vec{X: 0.347111, Y: 0.532728}},
		{Mass: 1, Pos: r2.Vec{X: 1}, Vel: r2.Vec{X: 0.347111, Y: 0.532728}},
		{Mass: 1, Vel: r2.Vec{X: -0.694222, Y: -1.065456}},
	}
}

// lagrange is the equilateral rotating triangle at G = 1: unit masses
// on a unit circle with tangential speed 3^(-1/4).
func lagrange() orbit.System {
	v := math.Pow(3, -0.25)
	var s orbit.System
	for i := 0; i < 3; i++ {
		angle := math.Pi/2 + float64(i)*2*math.Pi/3
		sin, cos := math.Sincos(angle)
		s[i] = orbit.Body{
			Mass: 1,
			Pos:  r2.Vec{X: cos, Y: sin},
			Vel:  r2.Vec{X: -v * sin, Y: v * cos},
		}
	}
	return s
}

func unitField(t *testing.T) *gravity.Field {
	t.Helper()
	f, err := gravity.New(1, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestRunFrameCount(t *testing.T) {
	sim := New(unitField(t), integrators.NewRK4())
	tr, err := sim.Run(context.Background(), figureEight(), Config{Steps: 100, Dt: 0.01})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if tr.Len() != 101 {
		t.Fatalf("Len() = %d, want 101", tr.Len())
	}
	if tr.Truncated() {
		t.Error("well-behaved run marked truncated")
	}
	for i := 0; i < tr.Len(); i += 25 {
		f := tr.At(i)
		if f.Step != i {
			t.Errorf("frame %d has Step %d", i, f.Step)
		}
		if math.Abs(f.Time-float64(i)*0.01) > 1e-9 {
			t.Errorf("frame %d has Time %v, want %v", i, f.Time, float64(i)*0.01)
		}
	}
}

func TestRunZeroSteps(t *testing.T) {
	initial := figureEight()
	sim := New(unitField(t), integrators.NewRK4())

	tr, err := sim.Run(context.Background(), initial, Config{Steps: 0, Dt: 0.01})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if tr.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tr.Len())
	}
	if tr.At(0).Bodies != initial {
		t.Error("frame 0 is not the initial state")
	}
}

func TestRunInvalidConfig(t *testing.T) {
	sim := New(unitField(t), integrators.NewRK4())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Steps: 10, Dt: 0}},
		{"negative dt", Config{Steps: 10, Dt: -0.1}},
		{"NaN dt", Config{Steps: 10, Dt: math.NaN()}},
		{"negative steps", Config{Steps: -1, Dt: 0.01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), figureEight(), tt.cfg)
			if !errors.Is(err, orbit.ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestRunDoesNotMutateInitial(t *testing.T) {
	initial := figureEight()
	want := initial

	sim := New(unitField(t), integrators.NewRK4())
	if _, err := sim.Run(context.Background(), initial, Config{Steps: 50, Dt: 0.01}); err != nil {
		t.Fatal(err)
	}
	if initial != want {
		t.Error("Run mutated the initial system")
	}
}

func TestRunTruncatesOnDivergence(t *testing.T) {
	// Two coincident bodies and no distance floor: the first force
	// evaluation yields NaN and no computed frame is acceptable.
	field := &gravity.Field{G: 1, Epsilon: 0}
	collided := orbit.System{
		{Mass: 1, Pos: r2.Vec{X: 0.5}},
		{Mass: 1, Pos: r2.Vec{X: 0.5}},
		{Mass: 1, Pos: r2.Vec{Y: 2}},
	}

	sim := New(field, integrators.NewRK4())
	tr, err := sim.Run(context.Background(), collided, Config{Steps: 100, Dt: 0.01})
	if err != nil {
		t.Fatalf("divergence must not be an error, got %v", err)
	}

	if !tr.Truncated() {
		t.Fatal("Truncated() = false, want true")
	}
	if tr.Len() >= 101 {
		t.Fatalf("Len() = %d, want < 101", tr.Len())
	}
	for i := 0; i < tr.Len(); i++ {
		if !tr.At(i).Bodies.Valid() {
			t.Fatalf("frame %d in truncated trajectory is invalid", i)
		}
	}
}

func TestRunDeterminism(t *testing.T) {
	cfg := Config{Steps: 500, Dt: 0.005}

	run := func() *orbit.Trajectory {
		field, _ := gravity.New(1, 1e-6)
		tr, err := New(field, integrators.NewRK4()).Run(context.Background(), figureEight(), cfg)
		if err != nil {
			t.Fatal(err)
		}
		return tr
	}

	a, b := run(), run()
	if a.Len() != b.Len() {
		t.Fatalf("lengths differ: %d vs %d", a.Len(), b.Len())
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			t.Fatalf("frame %d differs between identical runs", i)
		}
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := New(unitField(t), integrators.NewRK4())
	tr, err := sim.Run(ctx, figureEight(), Config{Steps: 1000, Dt: 0.01})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if tr == nil || tr.Len() < 1 {
		t.Error("canceled run must still return the partial trajectory")
	}
}

type countingMetric struct {
	n int
}

func (c *countingMetric) Name() string                  { return "count" }
func (c *countingMetric) Observe(orbit.System, float64) { c.n++ }
func (c *countingMetric) Value() float64                { return float64(c.n) }
func (c *countingMetric) Reset()                        { c.n = 0 }

func TestRunObservesEveryFrame(t *testing.T) {
	m := &countingMetric{}
	sim := New(unitField(t), integrators.NewRK4())
	sim.AddMetric(m)

	if _, err := sim.Run(context.Background(), figureEight(), Config{Steps: 10, Dt: 0.01}); err != nil {
		t.Fatal(err)
	}
	if m.n != 11 {
		t.Errorf("metric observed %d frames, want 11", m.n)
	}

	// Reset fires at the start of the next run.
	if _, err := sim.Run(context.Background(), figureEight(), Config{Steps: 5, Dt: 0.01}); err != nil {
		t.Fatal(err)
	}
	if m.n != 6 {
		t.Errorf("metric observed %d frames after second run, want 6", m.n)
	}
}

func TestRunMomentumConservedOverRun(t *testing.T) {
	sim := New(unitField(t), integrators.NewRK4())
	tr, err := sim.Run(context.Background(), figureEight(), Config{Steps: 1000, Dt: 0.001})
	if err != nil {
		t.Fatal(err)
	}

	p0 := tr.At(0).Bodies.Momentum()
	pN := tr.Last().Bodies.Momentum()
	if d := r2.Norm(pN.Sub(p0)); d > 1e-9 {
		t.Errorf("momentum drifted by %g over 1000 steps", d)
	}
}

// Energy drift must shrink by roughly 2^4 when dt halves.
func TestRunEnergyDriftOrder(t *testing.T) {
	field := unitField(t)

	drift := func(steps int, dt float64) float64 {
		tr, err := New(field, integrators.NewRK4()).Run(context.Background(), lagrange(), Config{Steps: steps, Dt: dt})
		if err != nil {
			t.Fatal(err)
		}
		e0 := field.Energy(tr.At(0).Bodies)
		eN := field.Energy(tr.Last().Bodies)
		return math.Abs(eN-e0) / math.Abs(e0)
	}

	coarse := drift(100, 0.02)
	fine := drift(200, 0.01)

	if fine == 0 {
		t.Skip("fine drift at rounding noise")
	}
	if ratio := coarse / fine; ratio < 8 {
		t.Errorf("drift ratio = %.2f, want >= 8", ratio)
	}
}

func TestSimulate(t *testing.T) {
	tr, err := Simulate(figureEight(), 5, 0.01, 1.0, 1e-6)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if tr.Len() != 6 {
		t.Errorf("Len() = %d, want 6", tr.Len())
	}

	if _, err := Simulate(figureEight(), 5, 0.01, 0, 1e-6); !errors.Is(err, orbit.ErrInvalidConfig) {
		t.Errorf("Simulate with G=0: error = %v, want ErrInvalidConfig", err)
	}
}

func TestRunAll(t *testing.T) {
	cands := []Candidate{
		{Name: "euler", Stepper: integrators.NewEuler()},
		{Name: "rk4", Stepper: integrators.NewRK4()},
	}

	results, err := RunAll(context.Background(), unitField(t), cands, lagrange(), Config{Steps: 50, Dt: 0.01})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, want := range []string{"euler", "rk4"} {
		if results[i].Name != want {
			t.Errorf("result %d name = %q, want %q", i, results[i].Name, want)
		}
		if results[i].Trajectory.Len() != 51 {
			t.Errorf("result %d Len() = %d, want 51", i, results[i].Trajectory.Len())
		}
	}
}
