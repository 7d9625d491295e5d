package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/gearsim/internal/config"
	"github.com/san-kum/gearsim/internal/export"
	"github.com/san-kum/gearsim/internal/metrics"
	"github.com/san-kum/gearsim/internal/motionlink"
	"github.com/san-kum/gearsim/internal/scene"
	"github.com/san-kum/gearsim/internal/sim"
	"github.com/san-kum/gearsim/internal/storage"
	"github.com/san-kum/gearsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir       string
	verbose       bool
	dt            float64
	duration      float64
	iterations    int
	allowCycles   bool
	bidirectional bool
	showPlot      bool
	noSave        bool
	jsonOut       string
	theme         string
	preset        string
	ratios        []float64
	stableTol     float64
	svgOut        string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gearsim",
		Short: "rigid-body joints coupled by motion links",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gearsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	runCmd := &cobra.Command{
		Use:   "run [preset|scene.yaml]",
		Short: "run a scene and store the tracked joint velocities",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	addSolverFlags(runCmd)
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot tracked velocities after the run")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the run to the data directory")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also export the run as JSON to this path (- for stdout)")
	runCmd.Flags().Float64Var(&stableTol, "stable-tol", 1e-3, "link residual counted as stable")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the velocities of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "write the velocities of a stored run as an SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  svgRun,
	}
	svgCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output path (default <run_id>.svg)")

	linksCmd := &cobra.Command{
		Use:   "links [preset|scene.yaml|run_id]",
		Short: "show the motion links of a scene or a stored run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showLinks,
	}
	addSolverFlags(linksCmd)

	liveCmd := &cobra.Command{
		Use:   "live [preset|scene.yaml]",
		Short: "step a scene in real time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSolverFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.PresetInfo(name))
			}
			w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [scene.yaml]",
		Short: "write a preset as an editable scene file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := config.GetPreset(preset)
			if sc == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
			}
			if err := config.Save(args[0], sc); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "gear_pair", "preset to start from")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset|scene.yaml]",
		Short: "rerun a scene with different ratios on its first link",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepRatios,
	}
	addSolverFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&ratios, "ratios", []float64{0.25, 0.5, 1, 2}, "ratios to try")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, svgCmd, linksCmd, liveCmd, presetsCmd, initCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "solver iterations per step")
	cmd.Flags().BoolVar(&allowCycles, "allow-cycles", false, "accept links that close a cycle")
	cmd.Flags().BoolVar(&bidirectional, "bidirectional", false, "links push on their target too")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadScene resolves a preset name or a YAML path, then applies the solver
// flags the user set explicitly.
func loadScene(cmd *cobra.Command, args []string) (*config.Scene, error) {
	var sc *config.Scene
	switch {
	case len(args) == 0:
		sc = config.DefaultScene()
	case strings.HasSuffix(args[0], ".yaml") || strings.HasSuffix(args[0], ".yml"):
		loaded, err := config.Load(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load scene: %w", err)
		}
		sc = loaded
	default:
		sc = config.GetPreset(args[0])
		if sc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		sc.Solver.Dt = dt
	}
	if flags.Changed("time") {
		sc.Solver.Duration = duration
	}
	if flags.Changed("iterations") {
		sc.Solver.Iterations = iterations
	}
	if flags.Changed("allow-cycles") {
		sc.Solver.AllowCycles = allowCycles
	}
	if flags.Changed("bidirectional") {
		sc.Solver.Bidirectional = bidirectional
	}
	return sc, nil
}

func addMetrics(s *sim.Simulator) {
	s.AddMetric(metrics.NewTrackingError())
	s.AddMetric(metrics.NewKineticEnergy())
	s.AddMetric(metrics.NewMotorEffort())
	s.AddMetric(metrics.NewLinkLoad())
	s.AddMetric(metrics.NewStability(stableTol))
}

func runScene(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	sc, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	built, err := scene.Build(sc, logger)
	if err != nil {
		return err
	}

	simr := built.Simulator()
	simr.SetLogger(logger)
	addMetrics(simr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	result, err := simr.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("scene: %s\n", sc.Name)
	fmt.Println(viz.LinkTable(built.LinkRows()))
	fmt.Println(viz.Summary(result))

	if showPlot {
		series := make([][]float64, len(result.Tracks))
		for i := range result.Tracks {
			series[i] = result.Series(i)
		}
		if graph := viz.PlotVelocities(result.Tracks, series, 80, 12, "joint velocity vs step"); graph != "" {
			fmt.Println(graph)
			fmt.Println()
		}
	}

	links := built.World.Links().Snapshot()
	if jsonOut != "" {
		if err := writeExport(jsonOut, sc, result, links); err != nil {
			return err
		}
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(storage.RunMetadata{
		Scene:      sc.Name,
		Dt:         sc.Solver.Dt,
		Duration:   sc.Solver.Duration,
		Iterations: sc.Solver.Iterations,
	}, result, links)
	if err != nil {
		return err
	}
	fmt.Printf("saved run: %s\n", id)
	return nil
}

func writeExport(path string, sc *config.Scene, result *sim.Result, links []motionlink.Entry) error {
	if path == "-" {
		return storage.ExportJSON(os.Stdout, sc.Name, sc.Solver.Dt, sc.Solver.Duration, result, links)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return storage.ExportJSON(f, sc.Name, sc.Solver.Dt, sc.Solver.Duration, result, links)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tSTEPS\tLINKS\tERRORS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
			run.Links,
			len(run.Errors),
		)
	}
	return w.Flush()
}

// loadSeries reads a stored run and transposes its rows into one series per
// tracked joint.
func loadSeries(runID string) (*storage.RunMetadata, []string, [][]float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	tracks, states, _, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(states) == 0 || len(tracks) == 0 {
		return nil, nil, nil, fmt.Errorf("no data to plot")
	}
	series := make([][]float64, len(tracks))
	for i := range tracks {
		series[i] = make([]float64, len(states))
		for k, row := range states {
			series[i][k] = row[i]
		}
	}
	return meta, tracks, series, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, tracks, series, err := loadSeries(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(series[0]))

	graph := viz.PlotVelocities(tracks, series, 80, 12, "joint velocity vs step")
	if graph == "" {
		return fmt.Errorf("no finite samples to plot")
	}
	fmt.Println(graph)
	return nil
}

func svgRun(cmd *cobra.Command, args []string) error {
	_, tracks, series, err := loadSeries(args[0])
	if err != nil {
		return err
	}
	out := export.VelocitySVG(tracks, series, 800, 300)
	if out == "" {
		return fmt.Errorf("no finite samples to plot")
	}
	path := svgOut
	if path == "" {
		path = args[0] + ".svg"
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// showLinks prints a scene's link table. An argument naming a stored run
// shows the links saved with it instead, by handle.
func showLinks(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		st := storage.New(dataDir)
		if _, err := st.Load(args[0]); err == nil {
			entries, err := st.LoadLinks(args[0])
			if err != nil {
				return err
			}
			rows := make([]scene.LinkRow, len(entries))
			for i, e := range entries {
				rows[i] = scene.LinkRow{Source: e.Source.String(), Target: e.Target.String(), Ratio: e.Ratio, Reversed: e.Reversed}
			}
			fmt.Println(viz.LinkTable(rows))
			return nil
		}
	}

	sc, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	built, err := scene.Build(sc, newLogger())
	if err != nil {
		return err
	}
	fmt.Println(viz.LinkTable(built.LinkRows()))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	viz.SetTheme(theme)
	logger := newLogger()
	// Check the scene once so a bad argument fails before the alt screen.
	if _, err := loadScene(cmd, args); err != nil {
		return err
	}
	return viz.RunLive(func() (*scene.Scene, error) {
		sc, err := loadScene(cmd, args)
		if err != nil {
			return nil, err
		}
		return scene.Build(sc, logger)
	})
}

func sweepRatios(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	probe, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	if len(probe.Links) == 0 {
		return fmt.Errorf("scene %s has no motion links to sweep", probe.Name)
	}

	ens := sim.NewEnsemble(func(i int) (*sim.Simulator, error) {
		sc, err := loadScene(cmd, args)
		if err != nil {
			return nil, err
		}
		sc.Links[0].Ratio = ratios[i]
		built, err := scene.Build(sc, logger)
		if err != nil {
			return nil, fmt.Errorf("ratio %g: %w", ratios[i], err)
		}
		s := built.Simulator()
		s.AddMetric(metrics.NewTrackingError())
		return s, nil
	}, len(ratios))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	results, err := ens.Run(ctx)
	if err != nil {
		return err
	}

	link := probe.Links[0]
	fmt.Printf("scene: %s, sweeping %s -> %s\n\n", probe.Name, link.Source, link.Target)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := "RATIO"
	for _, name := range results[0].Tracks {
		header += "\t" + strings.ToUpper(name)
	}
	fmt.Fprintln(w, header+"\tTRACKING")
	for i, res := range results {
		line := fmt.Sprintf("%g", ratios[i])
		if last, ok := res.Final(); ok {
			for _, v := range last.Velocities {
				line += fmt.Sprintf("\t%+.4f", v)
			}
		}
		fmt.Fprintf(w, "%s\t%.3g\n", line, res.Metrics["tracking_error"])
	}
	return w.Flush()
}
