package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kvistgaard/tribody/internal/analysis"
	"github.com/kvistgaard/tribody/internal/batch"
	"github.com/kvistgaard/tribody/internal/config"
	"github.com/kvistgaard/tribody/internal/gravity"
	"github.com/kvistgaard/tribody/internal/integrators"
	"github.com/kvistgaard/tribody/internal/metrics"
	"github.com/kvistgaard/tribody/internal/orbit"
	"github.com/kvistgaard/tribody/internal/sim"
	"github.com/kvistgaard/tribody/internal/store"
	"github.com/kvistgaard/tribody/internal/viz"
)

var (
	dataDir    string
	configFile string
	dt         float64
	steps      int
	integrator string
	gConst     float64
	epsilon    float64
	d0         float64
	outPath    string
	svgWidth   int
	svgHeight  int
	bodyNum    int
)

var presetInfo = map[string]string{
	"classic":      "three masses falling from rest",
	"figure-eight": "equal masses chasing one loop",
	"lagrange":     "rotating equilateral triangle",
	"chaotic":      "slightly heavier third body",
}

// main registers the command tree and executes it. Running without a
// subcommand computes the default scenario and plays it back.
func main() {
	rootCmd := &cobra.Command{
		Use:   "tribody",
		Short: "three-body gravity lab",
		RunE:  playScenario,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".tribody", "data directory")
	addSimFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation and store the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	playCmd := &cobra.Command{
		Use:   "play [preset]",
		Short: "compute a scenario and play it back",
		Args:  cobra.MaximumNArgs(1),
		RunE:  playScenario,
	}
	addSimFlags(playCmd)

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "play back a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	infoCmd := &cobra.Command{
		Use:   "info [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  infoRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored coordinates against time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and recurrence analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bodyNum, "body", 1, "body to analyze (1-3)")

	chaosCmd := &cobra.Command{
		Use:   "chaos [preset]",
		Short: "estimate sensitivity to initial conditions",
		Args:  cobra.MaximumNArgs(1),
		RunE:  chaosRun,
	}
	addSimFlags(chaosCmd)
	chaosCmd.Flags().Float64Var(&d0, "perturbation", analysis.DefaultPerturbation, "initial twin offset")

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [integrator...]",
		Short: "run several integrators on the same scenario",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareSteppers,
	}
	addSimFlags(compareCmd)

	batchCmd := &cobra.Command{
		Use:   "batch [script.yaml]",
		Short: "run a scripted sequence of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE:  listPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [preset]",
		Short: "write a preset as an editable yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  dumpScenario,
	}
	scenarioCmd.Flags().StringVar(&outPath, "out", "", "output path (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored run to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSVRun,
	}
	exportCSVCmd.Flags().StringVar(&outPath, "out", "", "output path (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSONRun,
	}
	exportJSONCmd.Flags().StringVar(&outPath, "out", "", "output path (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored run as an SVG image",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVGRun,
	}
	exportSVGCmd.Flags().StringVar(&outPath, "out", "", "output path (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 1200, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 900, "image height")

	rootCmd.AddCommand(runCmd, playCmd, replayCmd, listCmd, infoCmd, plotCmd, analyzeCmd, chaosCmd, compareCmd, batchCmd, presetsCmd, scenarioCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().StringVar(&integrator, "integrator", integrators.DefaultName, "integrator")
	cmd.Flags().Float64Var(&gConst, "g", 1.0, "gravitational constant")
	cmd.Flags().Float64Var(&epsilon, "epsilon", gravity.DefaultEpsilon, "close-encounter distance floor")
}

// loadScenario resolves the scenario for a command: a yaml file when
// --config is given, otherwise the named or default preset, with any
// explicitly set flags layered on top.
func loadScenario(cmd *cobra.Command, args []string) (*config.Scenario, error) {
	var sc *config.Scenario
	switch {
	case configFile != "":
		var err error
		sc, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	case len(args) > 0:
		sc = config.GetPreset(args[0])
		if sc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	default:
		sc = config.DefaultScenario()
	}

	if cmd.Flags().Changed("dt") {
		sc.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		sc.Steps = steps
	}
	if cmd.Flags().Changed("integrator") {
		sc.Integrator = integrator
	}
	if cmd.Flags().Changed("g") {
		sc.G = gConst
	}
	if cmd.Flags().Changed("epsilon") {
		sc.Epsilon = epsilon
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// simulate runs one scenario with the standard conservation metrics
// attached and returns their final values alongside the trajectory.
func simulate(sc *config.Scenario, obs ...orbit.Observer) (*orbit.Trajectory, map[string]float64, error) {
	system, err := sc.System()
	if err != nil {
		return nil, nil, err
	}
	field, err := sc.Field()
	if err != nil {
		return nil, nil, err
	}
	stepper, err := integrators.ByName(sc.Integrator)
	if err != nil {
		return nil, nil, err
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
	for _, o := range obs {
		s.AddObserver(o)
	}

	tr, err := s.Run(context.Background(), system, sc.SimConfig())
	if err != nil {
		return nil, nil, err
	}

	vals := make(map[string]float64, len(tracked))
	for _, m := range tracked {
		vals[m.Name()] = m.Value()
	}
	return tr, vals, nil
}

// progress prints a status line every fixed number of observed frames.
type progress struct {
	n     int
	every int
	total int
}

func (p *progress) OnStep(_ orbit.System, t float64) {
	if p.n > 0 && p.n%p.every == 0 {
		fmt.Printf("  step %d/%d (t=%.2f)\n", p.n, p.total, t)
	}
	p.n++
}

// divergenceWarning describes where a truncated run stopped. The step
// named is the one whose computed state went non-finite.
func divergenceWarning(tr *orbit.Trajectory, dt float64) string {
	last := tr.Last()
	fault := &orbit.FrameError{Step: last.Step + 1, Time: last.Time + dt, Wrapped: orbit.ErrDiverged}
	return fmt.Sprintf("warning: %v", fault)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s (%s, %d steps, dt=%g)...\n", sc.Name, sc.Integrator, sc.Steps, sc.Dt)
	var obs []orbit.Observer
	if sc.Steps >= 10000 {
		obs = append(obs, &progress{every: sc.Steps / 10, total: sc.Steps})
	}
	start := time.Now()
	tr, vals, err := simulate(sc, obs...)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(sc, tr, vals)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", tr.Len())
	if tr.Truncated() {
		fmt.Printf("%s, trajectory truncated\n", divergenceWarning(tr, sc.Dt))
	}
	fmt.Println("\nmetrics:")
	for _, name := range []string{"energy_drift", "momentum_drift", "min_separation"} {
		fmt.Printf("  %s: %.6g\n", name, vals[name])
	}
	return nil
}

func playScenario(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("computing %s (%d steps)...\n", sc.Name, sc.Steps)
	tr, _, err := simulate(sc)
	if err != nil {
		return err
	}
	if tr.Truncated() {
		fmt.Printf("%s, playing the surviving frames\n", divergenceWarning(tr, sc.Dt))
	}

	field, err := sc.Field()
	if err != nil {
		return err
	}
	return viz.Run(sc.Name, tr, field)
}

func replayRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	field, err := gravity.New(meta.G, meta.Epsilon)
	if err != nil {
		return err
	}
	return viz.Run(meta.Scenario, tr, field)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tFRAMES\tDT\tINTEG\tTRUNC")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4g\t%s\t%v\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Dt,
			run.Integrator,
			run.Truncated,
		)
	}
	return w.Flush()
}

func infoRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("frames: %d\n\n", tr.Len())

	for b := 0; b < 3; b++ {
		xs, ys := analysis.PositionSeries(tr, b)
		for _, series := range []struct {
			label string
			data  []float64
		}{
			{fmt.Sprintf("body %d x", b + 1), xs},
			{fmt.Sprintf("body %d y", b + 1), ys},
		} {
			graph := asciigraph.Plot(series.data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(series.label),
			)
			fmt.Println(graph)
			fmt.Println()
		}
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	if bodyNum < 1 || bodyNum > 3 {
		return fmt.Errorf("body must be 1-3, got %d", bodyNum)
	}

	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if tr.Len() < 16 {
		return fmt.Errorf("run too short to analyze (%d frames)", tr.Len())
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s (body %d)\n\n", meta.Scenario, bodyNum)

	xs, _ := analysis.PositionSeries(tr, bodyNum-1)
	ps := analysis.PowerSpectrum(xs)
	graph := asciigraph.Plot(ps[:len(ps)/4],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	if period := analysis.DominantPeriod(xs, meta.Dt); period > 0 {
		fmt.Printf("dominant period: %.4f s (%.4f hz)\n", period, 1/period)
	} else {
		fmt.Println("no dominant period found")
	}

	ret := analysis.ClosestReturn(tr)
	fmt.Printf("closest return: t=%.4f (frame %d), phase distance %.4g\n", ret.Time, ret.Step, ret.Distance)

	minSep := math.Inf(1)
	for i := 0; i < tr.Len(); i++ {
		if d := tr.At(i).Bodies.MinSeparation(); d < minSep {
			minSep = d
		}
	}
	fmt.Printf("minimum separation: %.4g (floor %g)\n", minSep, meta.Epsilon)
	return nil
}

func chaosRun(cmd *cobra.Command, args []string) error {
	if d0 <= 0 {
		return fmt.Errorf("perturbation must be positive, got %g", d0)
	}

	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	system, err := sc.System()
	if err != nil {
		return err
	}
	field, err := sc.Field()
	if err != nil {
		return err
	}
	stepper, err := integrators.ByName(sc.Integrator)
	if err != nil {
		return err
	}

	fmt.Printf("twin runs of %s with offset %g...\n\n", sc.Name, d0)

	seps := analysis.Divergence(field, stepper, system, sc.Dt, sc.Steps, d0)
	logs := make([]float64, len(seps))
	for i, s := range seps {
		logs[i] = math.Log10(s)
	}
	graph := asciigraph.Plot(logs,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("log10 twin separation"),
	)
	fmt.Println(graph)
	fmt.Println()

	lambda := analysis.Lyapunov(field, stepper, system, sc.Dt, sc.Steps, d0)
	fmt.Printf("lyapunov exponent: %.4f\n", lambda)
	if lambda > 0.01 {
		fmt.Printf("nearby orbits diverge exponentially, doubling every %.3f s\n", math.Ln2/lambda)
	} else {
		fmt.Println("no exponential divergence detected")
	}
	return nil
}

func compareSteppers(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args[:1])
	if err != nil {
		return err
	}

	names := args[1:]
	if len(names) == 0 {
		names = integrators.Names()
	}

	cands := make([]sim.Candidate, 0, len(names))
	for _, name := range names {
		stepper, err := integrators.ByName(name)
		if err != nil {
			return err
		}
		cands = append(cands, sim.Candidate{Name: name, Stepper: stepper})
	}

	system, err := sc.System()
	if err != nil {
		return err
	}
	field, err := sc.Field()
	if err != nil {
		return err
	}

	fmt.Printf("comparing %d integrators on %s (dt=%g, %d steps)\n\n", len(cands), sc.Name, sc.Dt, sc.Steps)
	start := time.Now()
	results, err := sim.RunAll(context.Background(), field, cands, system, sc.SimConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	e0 := field.Energy(system)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFRAMES\tFINAL_X1\tENERGY_DRIFT\tTRUNC")
	for _, res := range results {
		last := res.Trajectory.Last()
		drift := math.Abs(field.Energy(last.Bodies) - e0)
		if e0 != 0 {
			drift /= math.Abs(e0)
		}
		fmt.Fprintf(w, "%s\t%d\t%.6f\t%.3e\t%v\n",
			res.Name,
			res.Trajectory.Len(),
			last.Bodies[0].Pos.X,
			drift,
			res.Trajectory.Truncated(),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nall runs finished in %v\n", elapsed)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	script, err := batch.Load(args[0])
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("script %s: %d runs\n", script.Name, len(script.Runs))
	if script.Description != "" {
		fmt.Println(script.Description)
	}
	fmt.Println()

	start := time.Now()
	results, runErr := batch.Run(context.Background(), script, st)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tID\tFRAMES\tENERGY_DRIFT\tTRUNC")
	for i, res := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.3e\t%v\n",
			i+1, res.RunID, res.Frames, res.Metrics["energy_drift"], res.Truncated)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}
	fmt.Printf("\nfinished in %v\n", time.Since(start))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tINTEGRATOR\tSTEPS\tDT\tG\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		sc := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%g\t%s\n",
			sc.Name, sc.Integrator, sc.Steps, sc.Dt, sc.G, presetInfo[name])
	}
	return w.Flush()
}

func dumpScenario(cmd *cobra.Command, args []string) error {
	var sc *config.Scenario
	if len(args) > 0 {
		sc = config.GetPreset(args[0])
		if sc == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	} else {
		sc = config.DefaultScenario()
	}

	if outPath == "" {
		out, err := yaml.Marshal(sc)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}

	if err := config.Save(outPath, sc); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func exportCSVRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	if outPath == "" {
		return store.WriteCSV(os.Stdout, tr)
	}
	if err := store.ExportCSV(outPath, tr); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func exportJSONRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	if outPath == "" {
		return store.WriteJSON(os.Stdout, meta, tr)
	}
	if err := store.ExportJSON(outPath, meta, tr); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func exportSVGRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = args[0] + ".svg"
	}
	if err := store.ExportSVG(path, tr, svgWidth, svgHeight); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
