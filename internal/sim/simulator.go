package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/delaysim/internal/delay"
	"github.com/san-kum/delaysim/internal/dynamo"
)

// Simulator drives one system with one integrator over a fixed-step grid.
// A Simulator holds per-run scratch state and must not be shared between
// goroutines.
type Simulator struct {
	sys     dynamo.System
	integ   dynamo.Integrator
	log     *zap.Logger
	sink    dynamo.Sink
	metrics []dynamo.Metric
	input   dynamo.Input
	mode    delay.Mode
	modeSet bool
}

func New(sys dynamo.System, integ dynamo.Integrator, opts ...Option) *Simulator {
	s := &Simulator{
		sys:   sys,
		integ: integ,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignalNames returns the column names of the record a system produces.
func SignalNames(sys dynamo.System) []string {
	if sg, ok := sys.(dynamo.Signaler); ok {
		return sg.SignalNames()
	}
	if d, ok := sys.(dynamo.Defaulter); ok {
		return d.StateNames()
	}
	names := make([]string, sys.StateDim())
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i)
	}
	return names
}

// Run integrates from x0 at t=0 for ceil(Duration/Dt) steps. The context is
// checked once before the first step.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, fmt.Errorf("%w: initial state has %d components, system has %d",
			dynamo.ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf, err := s.newBuffer(x0, cfg)
	if err != nil {
		return nil, err
	}
	env := &dynamo.Env{Delay: buf, Input: s.input}

	names := SignalNames(s.sys)
	rec := make([]float64, len(names))
	observed, err := s.resolveMetrics(names)
	if err != nil {
		return nil, err
	}

	sampling := cfg.SampleEvery > 0 && s.sink != nil
	if sampling {
		if err := s.sink.Header(names); err != nil {
			return nil, fmt.Errorf("sim: sink header: %w", err)
		}
	}

	steps := cfg.Steps()
	s.log.Debug("run starting",
		zap.String("system", fmt.Sprintf("%T", s.sys)),
		zap.Int("steps", steps),
		zap.Float64("dt", cfg.Dt),
		zap.Stringer("delay_mode", buf.Mode()),
		zap.Strings("lines", buf.Names()))

	x := x0.Clone()
	t := 0.0
	for i := 0; i < steps; i++ {
		t = float64(i) * cfg.Dt
		s.record(x, t, rec)

		if sampling && i%cfg.SampleEvery == 0 {
			if err := s.sink.Record(t, rec); err != nil {
				return nil, fmt.Errorf("sim: sink record at step %d: %w", i, err)
			}
		}
		observe(observed, t, rec)

		next, err := s.integ.Step(s.sys, env, x, t, cfg.Dt)
		if err != nil {
			s.log.Warn("run failed", zap.Int("step", i), zap.Float64("t", t), zap.Error(err))
			return nil, &dynamo.SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
		}
		buf.Commit(t)
		t = next
	}

	s.record(x, t, rec)
	if sampling {
		if err := s.sink.Record(t, rec); err != nil {
			return nil, fmt.Errorf("sim: sink record at end: %w", err)
		}
	}
	observe(observed, t, rec)

	result := &dynamo.Result{
		Final:      x,
		FinalTime:  t,
		StepsTaken: steps,
		Names:      names,
		Signals:    append([]float64(nil), rec...),
		Metrics:    make(map[string]float64, len(s.metrics)),
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Debug("run finished", zap.Int("steps", steps), zap.Float64("t", t))
	return result, nil
}

func (s *Simulator) newBuffer(x0 dynamo.State, cfg dynamo.Config) (*delay.Buffer, error) {
	mode := cfg.DelayMode
	if s.modeSet {
		mode = s.mode
	}
	var specs []delay.LineSpec
	if d, ok := s.sys.(dynamo.Delayed); ok {
		specs = d.Delays(x0)
	}
	buf, err := delay.NewBuffer(cfg.Dt, mode, s.integ.DistinctTimes(), specs...)
	if err != nil {
		return nil, fmt.Errorf("sim: delay buffer: %w", err)
	}
	return buf, nil
}

type observedMetric struct {
	metric dynamo.Metric
	index  int
}

func (s *Simulator) resolveMetrics(names []string) ([]observedMetric, error) {
	out := make([]observedMetric, 0, len(s.metrics))
	for _, m := range s.metrics {
		idx := -1
		for i, n := range names {
			if n == m.Signal() {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: metric %s reads %q (have %v)", dynamo.ErrUnknownSignal, m.Name(), m.Signal(), names)
		}
		m.Reset()
		out = append(out, observedMetric{metric: m, index: idx})
	}
	return out, nil
}

func observe(ms []observedMetric, t float64, rec []float64) {
	for _, om := range ms {
		om.metric.Observe(t, rec[om.index])
	}
}

func (s *Simulator) record(x dynamo.State, t float64, rec []float64) {
	if sg, ok := s.sys.(dynamo.Signaler); ok {
		sg.Signals(x, t, rec)
		return
	}
	copy(rec, x)
}
