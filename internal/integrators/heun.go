package integrators

import "github.com/san-kum/delaysim/internal/dynamo"

// Heun is the explicit trapezoidal method: a predictor at t+dt and the
// average of both slopes.
type Heun struct {
	k1      dynamo.State
	scratch dynamo.State
}

func NewHeun() *Heun {
	return &Heun{}
}

func (h *Heun) Stages() int        { return 2 }
func (h *Heun) DistinctTimes() int { return 2 }

func (h *Heun) ensureScratch(n int) {
	if len(h.scratch) != n {
		h.k1 = make(dynamo.State, n)
		h.scratch = make(dynamo.State, n)
	}
}

func (h *Heun) Step(dyn dynamo.System, env *dynamo.Env, x dynamo.State, t, dt float64) (float64, error) {
	if !x.IsValid() {
		return t, dynamo.ErrNonFinite
	}
	n := len(x)
	h.ensureScratch(n)

	copy(h.k1, dyn.Derive(env, x, t))
	for i := 0; i < n; i++ {
		h.scratch[i] = x[i] + dt*h.k1[i]
	}
	k2 := dyn.Derive(env, h.scratch, t+dt)

	halfDt := 0.5 * dt
	for i := 0; i < n; i++ {
		x[i] += halfDt * (h.k1[i] + k2[i])
	}
	if !x.IsValid() {
		return t, dynamo.ErrNonFinite
	}
	return t + dt, nil
}
