package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/delaysim/internal/analysis"
	"github.com/san-kum/delaysim/internal/config"
	"github.com/san-kum/delaysim/internal/experiment"
	"github.com/san-kum/delaysim/internal/export"
	"github.com/san-kum/delaysim/internal/storage"
	"github.com/san-kum/delaysim/internal/viz"
)

func openStore() (*storage.Store, error) {
	store := storage.New(dataDir, logger)
	if err := store.Init(); err != nil {
		return nil, err
	}
	return store, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tMODEL\tTIMESTAMP\tINTEGRATOR\tDT\tDURATION\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%g\t%g\t%.2fs\n",
			run.ID, run.Kind, run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Integrator, run.Dt, run.Duration, run.Elapsed)
	}
	return w.Flush()
}

func reindexRuns(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Reindex()
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d runs\n", n)
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if jsonOut {
		return store.ExportJSON(os.Stdout, args[0])
	}

	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(meta.ID))
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("%s %s, %s dt=%g over %g, delay mode %s, seed %d",
		meta.Kind, meta.Model, meta.Integrator, meta.Dt, meta.Duration, meta.DelayMode, meta.Seed)))
	fmt.Println()

	if meta.Sweep != nil {
		s := meta.Sweep
		fmt.Print(viz.Section("sweep", fmt.Sprintf("  %s over [%g, %g) step %g, %d points on %d workers, observe %s\n",
			s.Param, s.Min, s.Max, s.Stride, s.Points, s.Workers, s.Observe)))
		fmt.Println()
	}
	if len(meta.Final) > 0 {
		fmt.Print(viz.Section("final", viz.Values(meta.Final)))
		fmt.Println()
	}
	if len(meta.Metrics) > 0 {
		fmt.Print(viz.Section("metrics", viz.Values(meta.Metrics)))
		fmt.Println()
	}
	if len(meta.Params) > 0 {
		fmt.Print(viz.Section("params", viz.Values(meta.Params)))
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	if meta.Kind == storage.KindSweep {
		res, err := store.LoadSweep(args[0])
		if err != nil {
			return err
		}
		fmt.Println(viz.Chart(res.Values, fmt.Sprintf("%s vs %s", res.Observe, res.Param), width, height))
		if svgDir == "" {
			return nil
		}
		return writeSVG(filepath.Join(svgDir, res.Observe+".svg"), export.Chart{
			Title:  fmt.Sprintf("%s %s vs %s", meta.Model, res.Observe, res.Param),
			XLabel: res.Param,
			YLabel: res.Observe,
			X:      res.Params,
			Y:      res.Values,
		})
	}

	series, err := store.LoadSamples(args[0])
	if err != nil {
		return err
	}
	names := columns
	if len(names) == 0 {
		names = series.Names
	}
	if !(timeScale > 0) {
		return fmt.Errorf("time-scale must be positive, got %g", timeScale)
	}

	times := make([]float64, len(series.Times))
	for i, t := range series.Times {
		times[i] = t / timeScale
	}
	spacing := 0.0
	if len(times) > 1 {
		spacing = times[1] - times[0]
	}

	for _, name := range names {
		values, err := series.Column(name)
		if err != nil {
			return err
		}
		caption := name
		if p := analysis.DominantPeriod(values, spacing); p > 0 {
			caption = fmt.Sprintf("%s  (period %.4g)", name, p)
		}
		fmt.Println(viz.Chart(values, caption, width, height))
		fmt.Println()

		if svgDir != "" {
			err := writeSVG(filepath.Join(svgDir, name+".svg"), export.Chart{
				Title:  fmt.Sprintf("%s %s", meta.Model, name),
				XLabel: timeLabel(timeScale),
				YLabel: name,
				X:      times,
				Y:      values,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func timeLabel(scale float64) string {
	switch scale {
	case 1:
		return "t"
	case 60:
		return "t (min)"
	case 3600:
		return "t (h)"
	case 86400:
		return "t (d)"
	}
	return fmt.Sprintf("t / %g", scale)
}

func writeSVG(path string, c export.Chart) error {
	svg := export.SeriesToSVG(c)
	if svg == "" {
		return fmt.Errorf("%s: need at least two points to chart", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Println(viz.Subtle.Render("wrote " + path))
	return nil
}

func sensitivityRun(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := store.LoadSweep(args[0])
	if err != nil {
		return err
	}
	points, err := analysis.Sensitivity(res.Params, res.Values)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s sensitivity to %s", res.Observe, res.Param)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tSLOPE\tRELATIVE\n", strings.ToUpper(res.Param), strings.ToUpper(res.Observe))
	slopes := make([]float64, len(points))
	for i, p := range points {
		slopes[i] = p.Slope
		rel := "-"
		if !math.IsNaN(p.Relative) {
			rel = fmt.Sprintf("%.4g", p.Relative)
		}
		fmt.Fprintf(w, "%g\t%.6g\t%.6g\t%s\n", p.Param, res.Values[i], p.Slope, rel)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(viz.Chart(slopes, fmt.Sprintf("d%s/d%s", res.Observe, res.Param), width, height))

	if svgFile == "" {
		return nil
	}
	return writeSVG(svgFile, export.Chart{
		Title:  fmt.Sprintf("%s sensitivity to changes in %s", res.Observe, res.Param),
		XLabel: res.Param,
		YLabel: res.Observe,
		X:      res.Params,
		Y:      res.Values,
	})
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := config.PresetModels()
	if len(args) == 1 {
		if config.ListPresets(args[0]) == nil {
			return fmt.Errorf("no presets for %q (have %v)", args[0], models)
		}
		models = args[:1]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tPRESET\tINTEGRATOR\tDT\tDURATION\tSWEEP")
	for _, model := range models {
		for _, name := range config.ListPresets(model) {
			p := config.GetPreset(model, name)
			sweep := "-"
			if p.Sweep.Param != "" {
				sweep = fmt.Sprintf("%s [%g, %g) -> %s", p.Sweep.Param, p.Sweep.Min, p.Sweep.Max, p.Sweep.Observe)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%s\n", model, name, p.Integrator, p.Dt, p.Duration, sweep)
		}
	}
	return w.Flush()
}

func listModels(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	for _, name := range reg.ListModels() {
		m, err := reg.GetModel(name)
		if err != nil {
			return err
		}
		fmt.Println(viz.Title.Render(name) + "  " + viz.Subtle.Render(reg.Describe(name)))
		fmt.Println(viz.MetricLabel.Render("  signals: " + strings.Join(m.SignalNames(), " ")))

		ps := m.GetParams()
		names := make([]string, 0, len(ps))
		for p := range ps {
			names = append(names, p)
		}
		sort.Strings(names)
		pairs := make([]string, len(names))
		for i, p := range names {
			pairs[i] = fmt.Sprintf("%s=%g", p, ps[p])
		}
		fmt.Println(viz.MetricLabel.Render("  params:  " + strings.Join(pairs, " ")))
		fmt.Println()
	}
	fmt.Println(viz.Separator(60))
	return nil
}
