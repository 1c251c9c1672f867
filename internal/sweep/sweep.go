// Package sweep runs one simulation per value of a parameter grid across a
// fixed set of worker goroutines.
package sweep

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/delaysim/internal/dynamo"
)

// Spec describes the grid Min, Min+Stride, ... below Max.
type Spec struct {
	Param   string
	Min     float64
	Max     float64
	Stride  float64
	Workers int
	Observe string
}

func (s Spec) Validate() error {
	switch {
	case !(s.Stride > 0) || math.IsInf(s.Stride, 0):
		return fmt.Errorf("%w: stride must be positive, got %g", dynamo.ErrConfig, s.Stride)
	case !(s.Max > s.Min):
		return fmt.Errorf("%w: range [%g, %g) is empty", dynamo.ErrConfig, s.Min, s.Max)
	case math.IsInf(s.Max-s.Min, 0):
		return fmt.Errorf("%w: range [%g, %g) is unbounded", dynamo.ErrConfig, s.Min, s.Max)
	case s.Workers < 1:
		return fmt.Errorf("%w: need at least one worker, got %d", dynamo.ErrConfig, s.Workers)
	}
	return nil
}

// Count is ceil((Max-Min)/Stride), ignoring an overshoot that is only
// rounding. A non-empty range always has at least one point.
func (s Spec) Count() int {
	r := (s.Max - s.Min) / s.Stride
	n := math.Round(r)
	if n >= 1 && math.Abs(r-n) <= 1e-9*n {
		return int(n)
	}
	return int(math.Ceil(r))
}

// Value is the parameter value of grid point i.
func (s Spec) Value(i int) float64 { return s.Min + float64(i)*s.Stride }

// Partition returns the indices worker id owns: id, id+workers, ... below n.
func Partition(id, workers, n int) []int {
	if workers < 1 || id < 0 || id >= workers || id >= n {
		return nil
	}
	out := make([]int, 0, (n-id+workers-1)/workers)
	for i := id; i < n; i += workers {
		out = append(out, i)
	}
	return out
}

// Result holds the grid and one observed scalar per point. Both slices are
// sized before the workers start.
type Result struct {
	Param   string
	Observe string
	Params  []float64
	Values  []float64
}

// RunFunc simulates grid point index at parameter value and returns the
// observed scalar.
type RunFunc func(ctx context.Context, index int, value float64) (float64, error)

type Option func(*Orchestrator)

func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

type Orchestrator struct {
	run RunFunc
	log *zap.Logger
}

func New(run RunFunc, opts ...Option) *Orchestrator {
	o := &Orchestrator{run: run, log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run evaluates every grid point and blocks until all workers return.
// min(Workers, N) goroutines each own a fixed stride of indices and write
// only to those. On the first failure no partial result is returned;
// remaining workers stop before their next point.
func (o *Orchestrator) Run(ctx context.Context, spec Spec) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	n := spec.Count()
	res := &Result{
		Param:   spec.Param,
		Observe: spec.Observe,
		Params:  make([]float64, n),
		Values:  make([]float64, n),
	}
	for i := range res.Params {
		res.Params[i] = spec.Value(i)
	}

	workers := min(spec.Workers, n)
	o.log.Info("sweep starting",
		zap.String("param", spec.Param),
		zap.Int("points", n),
		zap.Int("workers", workers))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for id := 0; id < workers; id++ {
		indices := Partition(id, workers, n)
		g.Go(func() error {
			for _, i := range indices {
				if err := gctx.Err(); err != nil {
					return err
				}
				v, err := o.run(gctx, i, res.Params[i])
				if err != nil {
					return fmt.Errorf("sweep %s=%g: %w", spec.Param, res.Params[i], err)
				}
				res.Values[i] = v
			}
			o.log.Debug("worker done", zap.Int("worker", id), zap.Int("points", len(indices)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.log.Warn("sweep failed", zap.Error(err))
		return nil, err
	}

	o.log.Info("sweep finished", zap.Int("points", n), zap.Duration("elapsed", time.Since(start)))
	return res, nil
}
