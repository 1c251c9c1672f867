package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/delaysim/internal/dynamo"
	"github.com/san-kum/delaysim/internal/sweep"
)

// Sweep runs the config's sweep section: one independent simulation per
// grid value of Sweep.Param, observing Sweep.Observe at the end of each.
func (e *Experiment) Sweep(ctx context.Context) (*sweep.Result, error) {
	if err := e.cfg.ValidateSweep(); err != nil {
		return nil, err
	}
	sc := e.cfg.Sweep
	if _, _, err := e.build(&Override{Param: sc.Param}); err != nil {
		return nil, err
	}
	key, err := ObservedName(sc.Observe)
	if err != nil {
		return nil, err
	}
	if !IsMetricSpec(sc.Observe) && indexOf(e.SignalNames(), key) < 0 {
		return nil, fmt.Errorf("%w: sweep observes %q, %s has %v", dynamo.ErrUnknownSignal, key, e.cfg.Model, e.SignalNames())
	}

	run := func(ctx context.Context, i int, v float64) (float64, error) {
		res, err := e.Run(ctx, RunOptions{
			Override:   &Override{Param: sc.Param, Value: v},
			Observe:    sc.Observe,
			SeedOffset: int64(i),
			Duration:   sc.Duration,
		})
		if err != nil {
			return 0, err
		}
		return res.Scalar(key)
	}

	spec := sweep.Spec{
		Param:   sc.Param,
		Min:     sc.Min,
		Max:     sc.Max,
		Stride:  sc.Stride,
		Workers: sc.Workers,
		Observe: sc.Observe,
	}
	return sweep.New(run, sweep.WithLogger(e.log)).Run(ctx, spec)
}
