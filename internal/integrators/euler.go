package integrators

import "github.com/san-kum/delaysim/internal/dynamo"

// Euler is the explicit first-order method: one evaluation at t per step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Stages() int        { return 1 }
func (e *Euler) DistinctTimes() int { return 1 }

func (e *Euler) Step(dyn dynamo.System, env *dynamo.Env, x dynamo.State, t, dt float64) (float64, error) {
	if !x.IsValid() {
		return t, dynamo.ErrNonFinite
	}
	dx := dyn.Derive(env, x, t)
	for i := range x {
		x[i] += dt * dx[i]
	}
	if !x.IsValid() {
		return t, dynamo.ErrNonFinite
	}
	return t + dt, nil
}
