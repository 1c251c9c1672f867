package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/delaysim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decay struct{ k float64 }

func (d *decay) Derive(_ *dynamo.Env, x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{-d.k * x[0]}
}
func (d *decay) StateDim() int { return 1 }

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(_ *dynamo.Env, x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}
func (s *simpleDynamics) StateDim() int { return 2 }

// recorder notes every time argument it is evaluated at.
type recorder struct{ times []float64 }

func (r *recorder) Derive(_ *dynamo.Env, x dynamo.State, t float64) dynamo.State {
	r.times = append(r.times, t)
	return make(dynamo.State, len(x))
}
func (r *recorder) StateDim() int { return 1 }

type blowup struct{}

func (b *blowup) Derive(_ *dynamo.Env, x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{math.Inf(1)}
}
func (b *blowup) StateDim() int { return 1 }

func integrate(t *testing.T, integ dynamo.Integrator, dyn dynamo.System, x dynamo.State, dt float64, steps int) dynamo.State {
	t.Helper()
	env := &dynamo.Env{}
	now := 0.0
	for i := 0; i < steps; i++ {
		next, err := integ.Step(dyn, env, x, now, dt)
		require.NoError(t, err)
		require.InDelta(t, now+dt, next, 1e-12)
		now = next
	}
	return x
}

func TestEuler_MatchesClosedForm(t *testing.T) {
	const (
		k  = 0.5
		dt = 0.1
		x0 = 2.0
	)

	for _, n := range []int{1, 10, 50, 200} {
		x := integrate(t, NewEuler(), &decay{k: k}, dynamo.State{x0}, dt, n)
		want := x0 * math.Pow(1-k*dt, float64(n))
		assert.InDelta(t, want, x[0], 1e-12*math.Abs(want)+1e-300, "n=%d", n)
	}
}

func decayError(t *testing.T, integ dynamo.Integrator, dt float64) float64 {
	steps := int(math.Round(1.0 / dt))
	x := integrate(t, integ, &decay{k: 1}, dynamo.State{1}, dt, steps)
	return math.Abs(x[0] - math.Exp(-1))
}

func TestRK4_FourthOrderConvergence(t *testing.T) {
	dts := []float64{0.1, 0.05, 0.025}
	errs := make([]float64, len(dts))
	for i, dt := range dts {
		errs[i] = decayError(t, NewRK4(), dt)
	}

	for i := 1; i < len(errs); i++ {
		ratio := errs[i-1] / errs[i]
		t.Logf("dt %.3f -> %.3f: error ratio %.2f", dts[i-1], dts[i], ratio)
		assert.InDelta(t, 16.0, ratio, 2.0)
	}
}

func TestHeun_SecondOrderConvergence(t *testing.T) {
	e1 := decayError(t, NewHeun(), 0.02)
	e2 := decayError(t, NewHeun(), 0.01)
	assert.InDelta(t, 4.0, e1/e2, 0.5)
}

func TestRK4Accuracy(t *testing.T) {
	dt := 0.01
	steps := 100

	x := integrate(t, NewRK4(), &simpleDynamics{}, dynamo.State{1.0, 0.0}, dt, steps)

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestIntegrators_EvaluationSchedule(t *testing.T) {
	tests := []struct {
		name  string
		times []float64
	}{
		{"euler", []float64{1}},
		{"heun", []float64{1, 1.5}},
		{"rk4", []float64{1, 1.25, 1.25, 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			integ, err := New(tt.name)
			require.NoError(t, err)

			rec := &recorder{}
			_, err = integ.Step(rec, &dynamo.Env{}, dynamo.State{0}, 1, 0.5)
			require.NoError(t, err)

			assert.Equal(t, tt.times, rec.times)
			assert.Equal(t, len(rec.times), integ.Stages())

			distinct := map[float64]bool{}
			for _, tm := range rec.times {
				distinct[tm] = true
			}
			assert.Equal(t, len(distinct), integ.DistinctTimes())
		})
	}
}

func TestIntegrators_NonFinite(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			integ, err := New(name)
			require.NoError(t, err)

			now, err := integ.Step(&decay{k: 1}, &dynamo.Env{}, dynamo.State{math.NaN()}, 2, 0.1)
			assert.ErrorIs(t, err, dynamo.ErrNonFinite)
			assert.Equal(t, 2.0, now)

			_, err = integ.Step(&blowup{}, &dynamo.Env{}, dynamo.State{1}, 0, 0.1)
			assert.ErrorIs(t, err, dynamo.ErrNonFinite)
		})
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("rk45")
	assert.ErrorIs(t, err, dynamo.ErrUnknownIntegrator)
	assert.Equal(t, []string{"euler", "heun", "rk4"}, Names())
}
