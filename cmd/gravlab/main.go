package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/gravlab/internal/api"
	"github.com/san-kum/gravlab/internal/body"
	"github.com/san-kum/gravlab/internal/config"
	"github.com/san-kum/gravlab/internal/engine"
	"github.com/san-kum/gravlab/internal/export"
	"github.com/san-kum/gravlab/internal/metrics"
	"github.com/san-kum/gravlab/internal/scenario"
	"github.com/san-kum/gravlab/internal/sim"
	"github.com/san-kum/gravlab/internal/storage"
	"github.com/san-kum/gravlab/internal/tui"
	"github.com/san-kum/gravlab/internal/viz"
)

var (
	dataDir      string
	configFile   string
	scenarioName string
	seed         int64
	dt           float64
	frames       int
	recordPath   string
	svgPath      string
	addr         string
	plotHeight   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gravlab",
		Short: "2d gravitational sandbox",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scenario headless and save the result",
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&scenarioName, "scenario", config.DefaultScenario, "scenario name")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "scenario seed")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "number of steps")
	runCmd.Flags().StringVar(&recordPath, "record", "", "record per-frame body states to sqlite file")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write final scene to svg file")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenarios",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range scenario.Names() {
				fmt.Println(name)
			}
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&scenarioName, "scenario", config.DefaultScenario, "scenario name")
	liveCmd.Flags().Int64Var(&seed, "seed", 0, "scenario seed")
	liveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the remote-control api",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	serveCmd.Flags().StringVar(&scenarioName, "scenario", config.DefaultScenario, "initial scenario")
	serveCmd.Flags().Int64Var(&seed, "seed", 0, "scenario seed")
	serveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "default step timestep")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run's energy and momentum",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "graph height")

	rootCmd.AddCommand(runCmd, scenariosCmd, liveCmd, serveCmd, listCmd, plotCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig merges the optional config file with command-line flags;
// flags win for anything the caller set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("scenario") || cfg.Scenario == "" {
		cfg.Scenario = scenarioName
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("frames") {
		cfg.Frames = frames
	}
	return cfg, nil
}

func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	specs, err := scenario.Build(cfg.Scenario, cfg.Seed)
	if err != nil {
		return nil, err
	}
	eng := engine.New(body.NewStore(), cfg.EngineParams())
	if err := eng.Populate(specs); err != nil {
		return nil, err
	}
	return eng, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	runner := sim.NewRunner(eng)
	trackers := &metrics.Adapter{Trackers: []metrics.Tracker{
		metrics.NewEnergyDrift(),
		metrics.NewMomentumDrift(),
		metrics.NewMergeCount(),
	}}
	runner.AddObserver(trackers)

	if recordPath != "" {
		rec, err := storage.OpenRecorder(recordPath)
		if err != nil {
			return err
		}
		defer rec.Close()
		runner.AddObserver(rec)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := runner.Run(ctx, sim.Config{Dt: cfg.Dt, Frames: cfg.Frames})
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(cfg.Scenario, cfg.Dt, cfg.Seed, trackers.Values(), result)
	if err != nil {
		return err
	}

	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.SceneToSVG(eng.Store().All(), 1200, 800)), 0644); err != nil {
			return err
		}
	}

	m := eng.Metrics()
	fmt.Printf("run %s: %d steps, %d bodies left, %d merges\n",
		runID, result.StepsTaken, m.BodyCount, m.Merges)
	fmt.Printf("energy %.6g (drift %.3g), momentum %.6g\n",
		m.TotalEnergy, result.EnergyDrift, m.TotalMomentum)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	return tui.Run(eng, cfg.Scenario, cfg.Seed, cfg.Dt)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("serving %s on %s (%d bodies)\n", cfg.Scenario, addr, eng.Store().Len())
	return api.NewServer(eng, cfg.Dt).ListenAndServe(addr)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tFRAMES\tBODIES\tDRIFT\tWHEN")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.3g\t%s\n",
			run.ID, run.Scenario, run.Frames, run.FinalBodies,
			run.EnergyDrift, run.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	_, energy, momentum, err := store.LoadHistory(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.EnergyPlot(energy, 100, plotHeight))
	fmt.Println()
	fmt.Println(viz.MomentumPlot(momentum, 100, plotHeight))
	return nil
}
