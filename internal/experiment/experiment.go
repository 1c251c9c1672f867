package experiment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/san-kum/delaysim/internal/config"
	"github.com/san-kum/delaysim/internal/dynamo"
	"github.com/san-kum/delaysim/internal/metrics"
	"github.com/san-kum/delaysim/internal/noise"
	"github.com/san-kum/delaysim/internal/sim"
)

// Experiment turns a config into ready-to-run simulations. Every Run builds
// a fresh model, integrator, input and metric set.
type Experiment struct {
	cfg *config.Config
	reg *Registry
	log *zap.Logger
}

func New(cfg *config.Config, reg *Registry, log *zap.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = NewRegistry()
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Experiment{cfg: cfg, reg: reg, log: log}

	// fail on names before the first run rather than inside a worker
	if _, _, err := e.build(nil); err != nil {
		return nil, err
	}
	if _, err := e.reg.GetIntegrator(cfg.Integrator); err != nil {
		return nil, err
	}
	for _, spec := range cfg.Metrics {
		if _, err := metrics.Parse(spec); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// SignalNames is the column set of every sampled record.
func (e *Experiment) SignalNames() []string {
	m, _ := e.reg.GetModel(e.cfg.Model)
	return m.SignalNames()
}

// Override is a parameter substituted for one run.
type Override struct {
	Param string
	Value float64
}

// RunOptions tune a single run.
type RunOptions struct {
	Override *Override
	Sink     dynamo.Sink
	// Observe is added to the configured metrics when it is a metric spec.
	Observe string
	// SeedOffset shifts the input seed, so sweep points draw independent noise.
	SeedOffset int64
	Duration   float64
}

func (e *Experiment) Run(ctx context.Context, ro RunOptions) (*dynamo.Result, error) {
	model, x0, err := e.build(ro.Override)
	if err != nil {
		return nil, err
	}
	integ, err := e.reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return nil, err
	}

	opts := []sim.Option{sim.WithLogger(e.log)}
	if ro.Sink != nil {
		opts = append(opts, sim.WithSink(ro.Sink))
	}
	if n := e.cfg.Noise; n.Enabled() {
		opts = append(opts, sim.WithInput(noise.New(e.cfg.Seed+ro.SeedOffset, n.Mean, n.Sigma, n.Interval)))
	}

	specs := e.cfg.Metrics
	if IsMetricSpec(ro.Observe) {
		specs = append(append([]string(nil), specs...), ro.Observe)
	}
	for _, spec := range specs {
		m, err := metrics.Parse(spec)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sim.WithMetric(m))
	}

	dc, err := e.cfg.Dynamo()
	if err != nil {
		return nil, err
	}
	if ro.Duration > 0 {
		dc.Duration = ro.Duration
	}
	if ro.Sink == nil {
		dc.SampleEvery = 0
	}

	return sim.New(model, integ, opts...).Run(ctx, x0, dc)
}

// ObservedName maps a sweep observable to the key to read from a result:
// a metric spec resolves to the metric's name, anything else is a signal.
func ObservedName(observe string) (string, error) {
	if !IsMetricSpec(observe) {
		return observe, nil
	}
	m, err := metrics.Parse(observe)
	if err != nil {
		return "", err
	}
	return m.Name(), nil
}

func IsMetricSpec(s string) bool { return strings.Contains(s, ":") }

// build returns a configured model and its initial state.
func (e *Experiment) build(ov *Override) (Model, dynamo.State, error) {
	model, err := e.reg.GetModel(e.cfg.Model)
	if err != nil {
		return nil, nil, err
	}
	for _, params := range []map[string]float64{e.cfg.Params, e.cfg.Delays} {
		for name, v := range params {
			if err := model.SetParam(name, v); err != nil {
				return nil, nil, fmt.Errorf("%w: %w", dynamo.ErrConfig, err)
			}
		}
	}
	if ov != nil {
		if err := model.SetParam(ov.Param, ov.Value); err != nil {
			return nil, nil, fmt.Errorf("%w: sweep: %w", dynamo.ErrConfig, err)
		}
	}

	x0 := model.DefaultState()
	names := model.StateNames()
	for name, v := range e.cfg.InitState {
		idx := indexOf(names, name)
		if idx < 0 {
			return nil, nil, fmt.Errorf("%w: init_state: %s has no state %q (have %v)", dynamo.ErrConfig, e.cfg.Model, name, names)
		}
		x0[idx] = v
	}
	return model, x0, nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// Params returns every model parameter after the config is applied.
func (e *Experiment) Params() map[string]float64 {
	m, _, err := e.build(nil)
	if err != nil {
		return nil
	}
	return m.GetParams()
}
