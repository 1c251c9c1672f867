// Package noise provides seeded stochastic inputs for simulations.
package noise

import (
	"math"
	"math/rand"
)

// Generator produces a piecewise-constant Gaussian signal. The underlying
// sequence advances once per new sampling interval, so repeated queries
// inside one interval (for example the stages of one integrator step) see
// the same value, and the output depends only on the seed and on time.
//
// Queries must not go back in time; an earlier t returns the current value.
type Generator struct {
	rng      *rand.Rand
	mean     float64
	sigma    float64
	interval float64
	index    int64
	value    float64
}

func New(seed int64, mean, sigma, interval float64) *Generator {
	return &Generator{
		rng:      rand.New(rand.NewSource(seed)),
		mean:     mean,
		sigma:    sigma,
		interval: interval,
		index:    -1,
		value:    mean,
	}
}

func (g *Generator) Value(t float64) float64 {
	if g.sigma == 0 || !(g.interval > 0) {
		return g.mean
	}
	idx := int64(math.Floor(t / g.interval))
	for g.index < idx {
		g.index++
		g.value = g.mean + g.sigma*g.rng.NormFloat64()
	}
	return g.value
}
