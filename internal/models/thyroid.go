package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/delaysim/internal/delay"
	"github.com/san-kum/delaysim/internal/dynamo"
)

// Line names of the thyroid model's lagged reads.
const (
	LineTSHT0T   = "TSH_T0T"
	LineFT4T03Z  = "FT4_T03Z"
	LineTSHzT0S  = "TSHz_T0S"
	LineTSHzT0S2 = "TSHz_T0S2"
	LineT3RT0S   = "T3R_T0S"
	LineT3RT0S2  = "T3R_T0S2"
)

var (
	thyroidState   = []string{"T4", "T3P", "T3c", "TSH", "TSHz"}
	thyroidSignals = []string{"T4", "T3P", "T3c", "TSH", "TSHz", "T4th", "FT3", "FT4", "T3N", "T3R"}
)

// Thyroid models the hypothalamus-pituitary-thyroid axis: TSH drives T4
// secretion after a transport lag, free T4 feeds central T3 after a slow
// lag, and pituitary TSH release is inhibited by lagged TSHz and T3R.
//
// State: T4, T3P (peripheral T3), T3c (central T3), TSH, TSHz (intra-
// pituitary TSH). Time is in seconds.
type Thyroid struct {
	// secretion and clearance
	AT, AS, AS2, A31, A32 float64
	BT, BS, BS2, B31, B32 float64

	// gland and deiodinase capacities
	GT, GH, GD1, GD2, GT3, GR float64

	KM1, KM2 float64

	// binding constants
	K30, K41, K42, K31 float64
	K                  float64

	// EC50 values
	DH, DS, DT, DR float64

	SS, LS float64

	// TRH, binding protein and receptor concentrations
	TRH, TBG, TBPA, IBS float64

	// lags
	T0T, T03Z, T0S, T0S2 float64

	rec []float64
	dx  dynamo.State
}

func NewThyroid() *Thyroid {
	return &Thyroid{
		AT: 0.1, AS: 0.4, AS2: 2.6e-5, A31: 2.6e-2, A32: 1.3e-5,
		BT: 1.1e-6, BS: 2.3e-4, BS2: 140.0, B31: 8.0e-6, B32: 8.3e-4,
		GT: 3.4, GH: 817.0, GD1: 22.0, GD2: 4.3, GT3: 394.0, GR: 1.0,
		KM1: 500.0, KM2: 1.0,
		K30: 2e9, K41: 2e10, K42: 2e8, K31: 2e9,
		K:  1.0,
		DH: 47.0, DS: 50.0, DT: 2.75, DR: 100.0,
		SS: 100.0, LS: 1.68,
		TRH: 6.9, TBG: 300.0, TBPA: 4.5, IBS: 8.0,
		T0T: 300.0, T03Z: 3600.0, T0S: 120.0, T0S2: 3240.0,
		rec: make([]float64, len(thyroidSignals)),
		dx:  make(dynamo.State, len(thyroidState)),
	}
}

func (th *Thyroid) StateDim() int         { return len(thyroidState) }
func (th *Thyroid) StateNames() []string  { return thyroidState }
func (th *Thyroid) SignalNames() []string { return thyroidSignals }

func (th *Thyroid) DefaultState() dynamo.State {
	return dynamo.State{3.0909e+05, 1.3026e+06, 3.4689e-09, 1.8189e+05, 0.0619}
}

// Delays returns the six lagged views, each seeded with its signal at x0.
// TSH_T0T lags TSH, the quantity its rate term consumes. Outputs produced by
// lagging T4 on this line will show different T4 trajectories.
func (th *Thyroid) Delays(x0 dynamo.State) []delay.LineSpec {
	rec := make([]float64, len(thyroidSignals))
	th.Signals(x0, 0, rec)
	tsh, tshz, ft4, t3r := rec[3], rec[4], rec[7], rec[9]

	return []delay.LineSpec{
		{Name: LineTSHT0T, Signal: "TSH", Lag: th.T0T, Initial: tsh},
		{Name: LineFT4T03Z, Signal: "FT4", Lag: th.T03Z, Initial: ft4},
		{Name: LineTSHzT0S, Signal: "TSHz", Lag: th.T0S, Initial: tshz},
		{Name: LineTSHzT0S2, Signal: "TSHz", Lag: th.T0S2, Initial: tshz},
		{Name: LineT3RT0S, Signal: "T3R", Lag: th.T0S, Initial: t3r},
		{Name: LineT3RT0S2, Signal: "T3R", Lag: th.T0S2, Initial: t3r},
	}
}

// Signals writes the state followed by T4th, FT3, FT4, T3N and T3R.
func (th *Thyroid) Signals(x dynamo.State, _ float64, out []float64) {
	t4, t3p, t3c, tsh := x[0], x[1], x[2], x[3]
	copy(out, x[:len(thyroidState)])

	t3n := t3c / (1 + th.K31*th.IBS)
	out[5] = th.GT * tsh / (tsh + th.DT)
	out[6] = t3p / (1 + th.K30*th.TBG)
	out[7] = t4 / (1 + th.K41*th.TBG + th.K42*th.TBPA)
	out[8] = t3n
	out[9] = th.GR * t3n / (t3n + th.DR)
}

// Derive evaluates the five rate equations. TRH comes from env.Input when
// one is set.
func (th *Thyroid) Derive(env *dynamo.Env, x dynamo.State, t float64) dynamo.State {
	th.Signals(x, t, th.rec)
	env.Delay.PutAll(t, thyroidSignals, th.rec)

	t4, t3p, t3c, tsh, tshz := x[0], x[1], x[2], x[3], x[4]
	t4th, ft4 := th.rec[5], th.rec[7]

	tshT0T := env.Delay.MustGet(LineTSHT0T)
	ft4T03Z := env.Delay.MustGet(LineFT4T03Z)
	tshzT0S := env.Delay.MustGet(LineTSHzT0S)
	tshzT0S2 := env.Delay.MustGet(LineTSHzT0S2)
	t3rT0S := env.Delay.MustGet(LineT3RT0S)
	t3rT0S2 := env.Delay.MustGet(LineT3RT0S2)

	trh := env.InputAt(t, th.TRH)
	hypo := th.GH * trh / (trh + th.DH)

	// TSH-weighted intracellular T4 seen by the deiodinases
	u := t4th * tsh / (tsh + th.K)

	th.dx[0] = th.AT*th.GT*tshT0T/(tshT0T+th.DT) - th.BT*t4

	th.dx[1] = th.A31*(th.GD1*ft4/(ft4+th.KM1)+
		th.GD2*ft4/(ft4+th.KM2)+
		th.GT3*tsh/(tsh+th.DT)+
		th.GD1*u/(th.KM1+u)+
		th.GD2*u/(th.KM2+u)) -
		th.B31*t3p

	th.dx[2] = th.A32*th.GD2*ft4T03Z/(ft4T03Z+th.KM2) - th.B32*t3c

	th.dx[3] = th.AS*hypo/((1+th.SS*tshzT0S/(tshzT0S+th.DS))*(1+th.LS*t3rT0S)) - th.BS*tsh

	th.dx[4] = th.AS2*hypo/((1+th.SS*tshzT0S2/(tshzT0S2+th.DS))*(1+th.LS*t3rT0S2)) - th.BS2*tshz

	return th.dx
}

func (th *Thyroid) params() map[string]*float64 {
	return map[string]*float64{
		"aT": &th.AT, "aS": &th.AS, "aS2": &th.AS2, "a31": &th.A31, "a32": &th.A32,
		"BT": &th.BT, "BS": &th.BS, "BS2": &th.BS2, "B31": &th.B31, "B32": &th.B32,
		"GT": &th.GT, "GH": &th.GH, "GD1": &th.GD1, "GD2": &th.GD2, "GT3": &th.GT3, "GR": &th.GR,
		"KM1": &th.KM1, "KM2": &th.KM2,
		"K30": &th.K30, "K41": &th.K41, "K42": &th.K42, "K31": &th.K31,
		"k":  &th.K,
		"DH": &th.DH, "DS": &th.DS, "DT": &th.DT, "DR": &th.DR,
		"SS": &th.SS, "LS": &th.LS,
		"TRH": &th.TRH, "TBG": &th.TBG, "TBPA": &th.TBPA, "IBS": &th.IBS,
		"T0T": &th.T0T, "T03Z": &th.T03Z, "T0S": &th.T0S, "T0S2": &th.T0S2,
	}
}

func (th *Thyroid) GetParams() map[string]float64 {
	out := make(map[string]float64)
	for name, p := range th.params() {
		out[name] = *p
	}
	return out
}

func (th *Thyroid) SetParam(name string, value float64) error {
	p, ok := th.params()[name]
	if !ok {
		return fmt.Errorf("%w: thyroid has no %q (have %v)", dynamo.ErrUnknownParam, name, paramNames(th))
	}
	*p = value
	return nil
}

func paramNames(c dynamo.Configurable) []string {
	params := c.GetParams()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
