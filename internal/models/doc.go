// Package models provides delay differential equation systems for
// simulation.
//
// Each model implements the [dynamo.System] interface, defining the
// differential equations governing the system's evolution:
//
//   - [Thyroid]: hypothalamus-pituitary-thyroid feedback loop with four lags
//   - [MackeyGlass]: blood cell production with a single delayed feedback
//   - [Hutchinson]: delayed logistic population growth
//   - [Decay]: linear first-order decay without delays
//
// Models with lags implement [dynamo.Delayed] and read their past through
// env.Delay by line name; every model implements [dynamo.Configurable] so a
// sweep can substitute one parameter at a time, and [dynamo.Signaler] for
// the sampled record.
//
// # Derivative Contract
//
// Derive stages the full signal record into env.Delay before reading any
// lagged value:
//
//	m.Signals(x, t, m.rec)
//	env.Delay.PutAll(t, m.SignalNames(), m.rec)
//	lagged := env.Delay.MustGet("x_tau")
package models
