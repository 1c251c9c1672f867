package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/delaysim/internal/config"
	"github.com/san-kum/delaysim/internal/dynamo"
	"github.com/san-kum/delaysim/internal/experiment"
	"github.com/san-kum/delaysim/internal/storage"
	"github.com/san-kum/delaysim/internal/sweep"
	"github.com/san-kum/delaysim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, nil, logger)
	if err != nil {
		return err
	}

	ro := experiment.RunOptions{}
	var (
		store *storage.Store
		run   *storage.Run
		sw    *storage.SampleWriter
	)
	if !noSave {
		store = storage.New(dataDir, logger)
		if err := store.Init(); err != nil {
			return err
		}
		defer store.Close()

		if run, err = store.Create(cfg.Model); err != nil {
			return err
		}
		if cfg.SampleEvery > 0 {
			f, err := os.Create(run.SamplesPath())
			if err != nil {
				return err
			}
			defer f.Close()
			sw = storage.NewSampleWriter(f)
			ro.Sink = sw
		}
	}

	start := time.Now()
	res, err := exp.Run(cmd.Context(), ro)
	elapsed := time.Since(start)
	if err != nil {
		if run != nil {
			_ = store.Discard(run)
		}
		return reportFailure(err)
	}

	final := make(map[string]float64, len(res.Names))
	for i, name := range res.Names {
		final[name] = res.Signals[i]
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s  %s dt=%g t=%g", cfg.Model, cfg.Integrator, cfg.Dt, res.FinalTime)))
	fmt.Println(viz.StatusOK.Render("completed") + viz.Subtle.Render(fmt.Sprintf("  %d steps in %v", res.StepsTaken, elapsed.Round(time.Millisecond))))
	fmt.Println()
	fmt.Print(viz.Section("final", viz.Values(final)))
	if len(res.Metrics) > 0 {
		fmt.Println()
		fmt.Print(viz.Section("metrics", viz.Values(res.Metrics)))
	}

	if noSave {
		return nil
	}

	meta := &storage.RunMetadata{
		Kind:       storage.KindRun,
		Model:      cfg.Model,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Steps:      res.StepsTaken,
		Integrator: cfg.Integrator,
		DelayMode:  cfg.DelayMode,
		Params:     exp.Params(),
		Final:      final,
		Metrics:    res.Metrics,
		Elapsed:    elapsed.Seconds(),
	}
	flush := func() error {
		if sw == nil {
			return nil
		}
		return sw.Flush()
	}
	if err := saveRun(store, run, cfg, meta, flush); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(viz.Subtle.Render("saved " + run.ID))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	// sweep points only report a scalar
	cfg.SampleEvery = 0

	exp, err := experiment.New(cfg, nil, logger)
	if err != nil {
		return err
	}

	store := storage.New(dataDir, logger)
	if err := store.Init(); err != nil {
		return err
	}
	defer store.Close()

	sc := cfg.Sweep
	fmt.Println(viz.Title.Render(fmt.Sprintf("%s  sweep %s over [%g, %g) step %g, observe %s", cfg.Model, sc.Param, sc.Min, sc.Max, sc.Stride, sc.Observe)))

	start := time.Now()
	res, err := exp.Sweep(cmd.Context())
	elapsed := time.Since(start)
	if err != nil {
		return reportFailure(err)
	}

	run, err := store.Create(cfg.Model)
	if err != nil {
		return err
	}

	meta := &storage.RunMetadata{
		Kind:       storage.KindSweep,
		Model:      cfg.Model,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   sweepRunDuration(cfg),
		Integrator: cfg.Integrator,
		DelayMode:  cfg.DelayMode,
		Params:     exp.Params(),
		Sweep: &storage.SweepMetadata{
			Param:   sc.Param,
			Observe: sc.Observe,
			Min:     sc.Min,
			Max:     sc.Max,
			Stride:  sc.Stride,
			Workers: sc.Workers,
			Points:  len(res.Params),
		},
		Elapsed: elapsed.Seconds(),
	}
	if err := saveRun(store, run, cfg, meta, func() error { return writeSweep(run, res) }); err != nil {
		return err
	}

	fmt.Println(viz.StatusOK.Render("completed") + viz.Subtle.Render(fmt.Sprintf("  %d points in %v", len(res.Params), elapsed.Round(time.Millisecond))))
	fmt.Println()
	fmt.Println(viz.SparklineChart(res.Values, 60))
	fmt.Println(viz.Chart(res.Values, fmt.Sprintf("%s vs %s", sc.Observe, sc.Param), 60, 10))
	fmt.Println()
	fmt.Println(viz.Subtle.Render("saved " + run.ID))
	return nil
}

// saveRun finishes the run's data files with write, stores the resolved
// config next to them and commits meta. On any failure the run directory is
// removed so no run is left without metadata.
func saveRun(store *storage.Store, run *storage.Run, cfg *config.Config, meta *storage.RunMetadata, write func() error) error {
	err := write()
	if err == nil {
		err = config.Save(run.ConfigPath(), cfg)
	}
	if err == nil {
		err = store.Commit(run, meta)
	}
	if err != nil {
		if derr := store.Discard(run); derr != nil {
			logger.Warn("could not remove run directory", zap.String("dir", run.Dir), zap.Error(derr))
		}
		return err
	}
	return nil
}

func writeSweep(run *storage.Run, res *sweep.Result) error {
	f, err := os.Create(run.SweepPath())
	if err != nil {
		return err
	}
	if err := storage.WriteSweep(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sweepRunDuration(cfg *config.Config) float64 {
	if cfg.Sweep.Duration > 0 {
		return cfg.Sweep.Duration
	}
	return cfg.Duration
}

// reportFailure prints where a simulation broke down before returning err.
func reportFailure(err error) error {
	var se *dynamo.SimulationError
	if errors.As(err, &se) {
		fmt.Println(viz.StatusFailed.Render("failed") +
			viz.Subtle.Render(fmt.Sprintf("  at step %d, t=%g", se.Step, se.Time)))
	}
	return err
}
