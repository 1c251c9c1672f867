package models

import (
	"fmt"
	"math"

	"github.com/san-kum/delaysim/internal/delay"
	"github.com/san-kum/delaysim/internal/dynamo"
)

const LineXTau = "x_tau"

// MackeyGlass is the blood-production equation
//
//	x' = beta*x(t-tau)/(1+x(t-tau)^n) - gamma*x
//
// chaotic for tau above about 16.8 with the default coefficients.
type MackeyGlass struct {
	Beta, Gamma, N, Tau float64

	rec []float64
	dx  dynamo.State
}

func NewMackeyGlass() *MackeyGlass {
	return &MackeyGlass{Beta: 0.2, Gamma: 0.1, N: 10, Tau: 17,
		rec: make([]float64, 1), dx: make(dynamo.State, 1)}
}

func (m *MackeyGlass) StateDim() int              { return 1 }
func (m *MackeyGlass) StateNames() []string       { return []string{"x"} }
func (m *MackeyGlass) SignalNames() []string      { return []string{"x"} }
func (m *MackeyGlass) DefaultState() dynamo.State { return dynamo.State{1.2} }

func (m *MackeyGlass) Signals(x dynamo.State, _ float64, out []float64) { out[0] = x[0] }

func (m *MackeyGlass) Delays(x0 dynamo.State) []delay.LineSpec {
	return []delay.LineSpec{{Name: LineXTau, Signal: "x", Lag: m.Tau, Initial: x0[0]}}
}

func (m *MackeyGlass) Derive(env *dynamo.Env, x dynamo.State, t float64) dynamo.State {
	m.rec[0] = x[0]
	env.Delay.PutAll(t, m.SignalNames(), m.rec)

	lagged := env.Delay.MustGet(LineXTau)
	m.dx[0] = m.Beta*lagged/(1+math.Pow(lagged, m.N)) - m.Gamma*x[0]
	return m.dx
}

func (m *MackeyGlass) GetParams() map[string]float64 {
	return map[string]float64{"beta": m.Beta, "gamma": m.Gamma, "n": m.N, "tau": m.Tau}
}

func (m *MackeyGlass) SetParam(name string, v float64) error {
	switch name {
	case "beta":
		m.Beta = v
	case "gamma":
		m.Gamma = v
	case "n":
		m.N = v
	case "tau":
		m.Tau = v
	default:
		return fmt.Errorf("%w: mackey_glass has no %q (have %v)", dynamo.ErrUnknownParam, name, paramNames(m))
	}
	return nil
}
