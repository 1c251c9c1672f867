// Package dynamo provides core simulation primitives for delay differential
// equations.
//
// The package defines the fundamental interfaces and types shared by the
// integrators, the simulator and the sweep orchestrator:
//
//   - [State]: vector representing system state
//   - [System]: interface for DDE systems (dX/dt = f(X, X(t-τ)..., t))
//   - [Env]: per-run evaluation context holding the delay buffer and inputs
//   - [Integrator]: fixed-step numerical integrator interface
//   - [Metric] and [Sink]: observers of the sampled signal record
//
// # Derivative Side Effects
//
// A System's Derive reads lagged values from, and stages its current signal
// record into, env.Delay. The buffer decides whether a staged value becomes
// a new time point (see package delay); the simulator commits once per step.
//
// # Thread Safety
//
// Systems, integrators and Env values are NOT thread-safe. Parallel sweeps
// build an independent set per run.
package dynamo
