package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/delaysim/internal/config"
)

var logger = zap.NewNop()

var (
	dataDir string
	verbose bool

	// run settings; each only overrides the preset or config file when set
	dt          float64
	duration    float64
	integrator  string
	delayMode   string
	sampleEvery int
	seed        int64
	params      []string
	initState   []string
	metricSpecs []string
	noiseMean   float64
	noiseSigma  float64
	noiseStep   float64

	// sweep settings
	sweepParam    string
	sweepMin      float64
	sweepMax      float64
	sweepStride   float64
	sweepWorkers  int
	sweepObserve  string
	sweepDuration float64

	// Config file
	configFile string
	// Preset name
	preset string

	// output
	noSave    bool
	jsonOut   bool
	columns   []string
	svgDir    string
	svgFile   string
	timeScale float64
	width     int
	height    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "delaysim",
		Short:         "delay differential equation simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".delaysim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run one simulation and store its samples",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print the summary without storing the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run a parameter sweep in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first grid value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0, "grid end (exclusive)")
	sweepCmd.Flags().Float64Var(&sweepStride, "stride", 0, "grid spacing")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", config.DefaultWorkers, "parallel workers")
	sweepCmd.Flags().StringVar(&sweepObserve, "observe", "", "signal or metric spec observed at each point")
	sweepCmd.Flags().Float64Var(&sweepDuration, "sweep-time", 0, "duration of each sweep point (default: --time)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "rebuild the run catalog from the run directories",
		Args:  cobra.NoArgs,
		RunE:  reindexRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&jsonOut, "json", false, "export metadata and samples as json")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "column", nil, "signals to plot (default: all)")
	plotCmd.Flags().StringVar(&svgDir, "svg", "", "also write one svg chart per signal into this directory")
	plotCmd.Flags().Float64Var(&timeScale, "time-scale", 1, "divide sample times by this (3600 plots hours)")
	plotCmd.Flags().IntVar(&width, "width", 80, "chart width")
	plotCmd.Flags().IntVar(&height, "height", 12, "chart height")

	sensCmd := &cobra.Command{
		Use:   "sensitivity [run_id]",
		Short: "differentiate a stored sweep with respect to its parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  sensitivityRun,
	}
	sensCmd.Flags().StringVar(&svgFile, "svg", "", "write the sweep curve as an svg chart")
	sensCmd.Flags().IntVar(&width, "width", 80, "chart width")
	sensCmd.Flags().IntVar(&height, "height", 12, "chart height")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models and their parameters",
		Args:  cobra.NoArgs,
		RunE:  listModels,
	}

	rootCmd.AddCommand(runCmd, sweepCmd, listCmd, reindexCmd, showCmd, plotCmd, sensCmd, presetsCmd, modelsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, heun, rk4)")
	cmd.Flags().StringVar(&delayMode, "delay-mode", "commit", "delay buffer mode (commit, write)")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", 0, "record every n-th step (0 disables samples)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringArrayVar(&params, "set", nil, "model parameter as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&initState, "init", nil, "initial state as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&metricSpecs, "metric", nil, "metric spec kind:signal[@from] (repeatable)")
	cmd.Flags().Float64Var(&noiseMean, "noise-mean", 0, "input mean")
	cmd.Flags().Float64Var(&noiseSigma, "noise-sigma", 0, "input standard deviation")
	cmd.Flags().Float64Var(&noiseStep, "noise-interval", 0, "seconds between input draws")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		zc.Level.SetLevel(zapcore.DebugLevel)
	}
	return zc.Build()
}

// resolveConfig starts from the defaults, a preset or a config file (the file
// wins over the preset), then applies the flags set on the command line.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) == 1 {
		cfg.Model = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (have %v)", preset, cfg.Model, config.ListPresets(cfg.Model))
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		if len(args) == 1 && c.Model != args[0] {
			return nil, fmt.Errorf("config %s is for %s, not %s", configFile, c.Model, args[0])
		}
		cfg = c
	}

	f := cmd.Flags()
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("delay-mode") {
		cfg.DelayMode = delayMode
	}
	if f.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("noise-mean") {
		cfg.Noise.Mean = noiseMean
	}
	if f.Changed("noise-sigma") {
		cfg.Noise.Sigma = noiseSigma
	}
	if f.Changed("noise-interval") {
		cfg.Noise.Interval = noiseStep
	}
	if len(metricSpecs) > 0 {
		cfg.Metrics = append(cfg.Metrics, metricSpecs...)
	}

	var err error
	if cfg.Params, err = mergeAssignments(cfg.Params, params); err != nil {
		return nil, err
	}
	if cfg.InitState, err = mergeAssignments(cfg.InitState, initState); err != nil {
		return nil, err
	}

	if f.Lookup("param") != nil {
		if f.Changed("param") {
			cfg.Sweep.Param = sweepParam
		}
		if f.Changed("min") {
			cfg.Sweep.Min = sweepMin
		}
		if f.Changed("max") {
			cfg.Sweep.Max = sweepMax
		}
		if f.Changed("stride") {
			cfg.Sweep.Stride = sweepStride
		}
		if f.Changed("workers") {
			cfg.Sweep.Workers = sweepWorkers
		}
		if f.Changed("observe") {
			cfg.Sweep.Observe = sweepObserve
		}
		if f.Changed("sweep-time") {
			cfg.Sweep.Duration = sweepDuration
		}
	}
	return cfg, nil
}

// mergeAssignments parses name=value pairs into dst, allocating it if needed.
func mergeAssignments(dst map[string]float64, pairs []string) (map[string]float64, error) {
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if dst == nil {
			dst = make(map[string]float64)
		}
		dst[name] = v
	}
	return dst, nil
}
