package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/delaysim/internal/delay"
	"github.com/san-kum/delaysim/internal/dynamo"
)

type model interface {
	dynamo.System
	dynamo.Configurable
	dynamo.Defaulter
	dynamo.Signaler
}

func envFor(t *testing.T, sys dynamo.System, x0 dynamo.State, dt float64) *dynamo.Env {
	t.Helper()
	var specs []delay.LineSpec
	if d, ok := sys.(dynamo.Delayed); ok {
		specs = d.Delays(x0)
	}
	buf, err := delay.NewBuffer(dt, delay.AdvanceOnCommit, 3, specs...)
	require.NoError(t, err)
	return &dynamo.Env{Delay: buf}
}

func TestModels_Contract(t *testing.T) {
	tests := []struct {
		name  string
		model model
	}{
		{"thyroid", NewThyroid()},
		{"mackey_glass", NewMackeyGlass()},
		{"hutchinson", NewHutchinson()},
		{"decay", NewDecay()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.model
			x0 := m.DefaultState()
			require.Len(t, x0, m.StateDim())
			require.Len(t, m.StateNames(), m.StateDim())
			assert.Equal(t, m.StateNames(), m.SignalNames()[:m.StateDim()])

			rec := make([]float64, len(m.SignalNames()))
			m.Signals(x0, 0, rec)
			for i := range x0 {
				assert.Equal(t, x0[i], rec[i])
			}

			env := envFor(t, m, x0, 0.1)
			dx := m.Derive(env, x0, 0)
			require.Len(t, dx, m.StateDim())
			assert.True(t, dx.IsValid())

			err := m.SetParam("no_such_param", 1)
			assert.ErrorIs(t, err, dynamo.ErrUnknownParam)

			for name, v := range m.GetParams() {
				require.NoError(t, m.SetParam(name, v*2))
				assert.Equal(t, v*2, m.GetParams()[name], name)
			}
		})
	}
}

func TestMackeyGlass_DeriveAtHistory(t *testing.T) {
	m := NewMackeyGlass()
	x0 := m.DefaultState()
	env := envFor(t, m, x0, 0.1)

	want := 0.2*1.2/(1+math.Pow(1.2, 10)) - 0.1*1.2
	assert.InDelta(t, want, m.Derive(env, x0, 0)[0], 1e-12)

	// the lagged read ignores the current state until the lag elapses
	got := m.Derive(env, dynamo.State{5}, 0)[0]
	assert.InDelta(t, 0.2*1.2/(1+math.Pow(1.2, 10))-0.5, got, 1e-12)
}

func TestHutchinson_EquilibriumAtCapacity(t *testing.T) {
	h := NewHutchinson()
	require.NoError(t, h.SetParam("K", 3))
	x0 := dynamo.State{3}
	env := envFor(t, h, x0, 0.01)

	assert.Equal(t, 0.0, h.Derive(env, x0, 0)[0])

	specs := h.Delays(x0)
	require.Len(t, specs, 1)
	assert.Equal(t, LineNTau, specs[0].Name)
	assert.Equal(t, 2.0, specs[0].Lag)
	assert.Equal(t, 3.0, specs[0].Initial)
}

func TestDecay_NoDelays(t *testing.T) {
	d := NewDecay()
	require.NoError(t, d.SetParam("k", 0.5))
	assert.Equal(t, -1.0, d.Derive(nil, dynamo.State{2}, 0)[0])
}

func TestThyroid_Delays(t *testing.T) {
	th := NewThyroid()
	x0 := th.DefaultState()
	specs := th.Delays(x0)

	lags := map[string]float64{}
	signals := map[string]string{}
	for _, s := range specs {
		lags[s.Name] = s.Lag
		signals[s.Name] = s.Signal
	}
	assert.Equal(t, map[string]float64{
		LineTSHT0T:   300,
		LineFT4T03Z:  3600,
		LineTSHzT0S:  120,
		LineTSHzT0S2: 3240,
		LineT3RT0S:   120,
		LineT3RT0S2:  3240,
	}, lags)
	assert.Equal(t, map[string]string{
		LineTSHT0T:   "TSH",
		LineFT4T03Z:  "FT4",
		LineTSHzT0S:  "TSHz",
		LineTSHzT0S2: "TSHz",
		LineT3RT0S:   "T3R",
		LineT3RT0S2:  "T3R",
	}, signals)

	rec := make([]float64, len(th.SignalNames()))
	th.Signals(x0, 0, rec)
	assert.Equal(t, x0[3], specs[0].Initial, "TSH line seeded from TSH")
	assert.Equal(t, rec[7], specs[1].Initial, "FT4 line seeded from FT4")

	require.NoError(t, th.SetParam("T0S2", 100))
	for _, s := range th.Delays(x0) {
		if s.Name == LineTSHzT0S2 || s.Name == LineT3RT0S2 {
			assert.Equal(t, 100.0, s.Lag, s.Name)
		}
	}
}

type constTRH float64

func (c constTRH) Value(float64) float64 { return float64(c) }

func TestThyroid_TRHInput(t *testing.T) {
	th := NewThyroid()
	x0 := th.DefaultState()
	env := envFor(t, th, x0, 1)

	base := th.Derive(env, x0, 0).Clone()

	env.Input = constTRH(th.TRH)
	same := th.Derive(env, x0, 0).Clone()
	assert.InDeltaSlice(t, base, same, 1e-15)

	env.Input = constTRH(4 * th.TRH)
	boosted := th.Derive(env, x0, 0).Clone()
	assert.Greater(t, boosted[3], base[3], "more TRH raises TSH secretion")
	assert.Greater(t, boosted[4], base[4])
	assert.Equal(t, base[0], boosted[0], "T4 responds to TSH only after the lag")
}
