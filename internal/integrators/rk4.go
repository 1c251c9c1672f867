package integrators

import "github.com/san-kum/delaysim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta method. It evaluates the
// derivative at t, twice at t+dt/2 and at t+dt, so a delay buffer must run
// in commit mode underneath it.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Stages() int        { return 4 }
func (r *RK4) DistinctTimes() int { return 3 }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, env *dynamo.Env, x dynamo.State, t, dt float64) (float64, error) {
	if !x.IsValid() {
		return t, dynamo.ErrNonFinite
	}
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, dyn.Derive(env, x, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, dyn.Derive(env, r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, dyn.Derive(env, r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, dyn.Derive(env, r.scratch, t+dt))

	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		x[i] += dt6 * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
	}
	if !x.IsValid() {
		return t, dynamo.ErrNonFinite
	}
	return t + dt, nil
}
