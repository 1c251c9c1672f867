package models

import (
	"fmt"

	"github.com/san-kum/delaysim/internal/delay"
	"github.com/san-kum/delaysim/internal/dynamo"
)

const LineNTau = "N_tau"

// Hutchinson is the delayed logistic equation N' = r*N*(1 - N(t-tau)/K).
// The equilibrium N=K loses stability once r*tau exceeds pi/2.
type Hutchinson struct {
	R, K, Tau float64

	rec []float64
	dx  dynamo.State
}

func NewHutchinson() *Hutchinson {
	return &Hutchinson{R: 1, K: 1, Tau: 2, rec: make([]float64, 1), dx: make(dynamo.State, 1)}
}

func (h *Hutchinson) StateDim() int              { return 1 }
func (h *Hutchinson) StateNames() []string       { return []string{"N"} }
func (h *Hutchinson) SignalNames() []string      { return []string{"N"} }
func (h *Hutchinson) DefaultState() dynamo.State { return dynamo.State{0.5} }

func (h *Hutchinson) Signals(x dynamo.State, _ float64, out []float64) { out[0] = x[0] }

func (h *Hutchinson) Delays(x0 dynamo.State) []delay.LineSpec {
	return []delay.LineSpec{{Name: LineNTau, Signal: "N", Lag: h.Tau, Initial: x0[0]}}
}

func (h *Hutchinson) Derive(env *dynamo.Env, x dynamo.State, t float64) dynamo.State {
	h.rec[0] = x[0]
	env.Delay.PutAll(t, h.SignalNames(), h.rec)

	h.dx[0] = h.R * x[0] * (1 - env.Delay.MustGet(LineNTau)/h.K)
	return h.dx
}

func (h *Hutchinson) GetParams() map[string]float64 {
	return map[string]float64{"r": h.R, "K": h.K, "tau": h.Tau}
}

func (h *Hutchinson) SetParam(name string, v float64) error {
	switch name {
	case "r":
		h.R = v
	case "K":
		h.K = v
	case "tau":
		h.Tau = v
	default:
		return fmt.Errorf("%w: hutchinson has no %q (have %v)", dynamo.ErrUnknownParam, name, paramNames(h))
	}
	return nil
}
