package models

import (
	"fmt"

	"github.com/san-kum/delaysim/internal/dynamo"
)

// Decay is x' = -k*x, an undelayed reference with a closed-form solution.
type Decay struct {
	K float64

	dx dynamo.State
}

func NewDecay() *Decay { return &Decay{K: 1, dx: make(dynamo.State, 1)} }

func (d *Decay) StateDim() int              { return 1 }
func (d *Decay) StateNames() []string       { return []string{"x"} }
func (d *Decay) SignalNames() []string      { return []string{"x"} }
func (d *Decay) DefaultState() dynamo.State { return dynamo.State{1} }

func (d *Decay) Signals(x dynamo.State, _ float64, out []float64) { out[0] = x[0] }

func (d *Decay) Derive(_ *dynamo.Env, x dynamo.State, _ float64) dynamo.State {
	d.dx[0] = -d.K * x[0]
	return d.dx
}

func (d *Decay) GetParams() map[string]float64 { return map[string]float64{"k": d.K} }

func (d *Decay) SetParam(name string, v float64) error {
	if name != "k" {
		return fmt.Errorf("%w: decay has no %q (have [k])", dynamo.ErrUnknownParam, name)
	}
	d.K = v
	return nil
}
