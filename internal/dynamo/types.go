package dynamo

import (
	"fmt"
	"math"

	"github.com/san-kum/delaysim/internal/delay"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Input is an external, time-dependent forcing term.
type Input interface {
	Value(t float64) float64
}

// Env is the evaluation context handed to every derivative call.
type Env struct {
	Delay *delay.Buffer
	Input Input
}

// InputAt returns the input value at t, or fallback when no input is set.
func (e *Env) InputAt(t, fallback float64) float64 {
	if e == nil || e.Input == nil {
		return fallback
	}
	return e.Input.Value(t)
}

type System interface {
	Derive(env *Env, x State, t float64) State
	StateDim() int
}

// Delayed is implemented by systems that read lagged signals. Initial values
// of the lines are taken from the initial state x0.
type Delayed interface {
	Delays(x0 State) []delay.LineSpec
}

// Signaler exposes the named record a system produces at each sample:
// state components followed by derived quantities.
type Signaler interface {
	SignalNames() []string
	Signals(x State, t float64, out []float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Defaulter supplies a default initial state and per-component names.
type Defaulter interface {
	DefaultState() State
	StateNames() []string
}

type Integrator interface {
	// Step advances x in place from t to t+dt and returns the new time.
	Step(sys System, env *Env, x State, t, dt float64) (float64, error)
	// Stages is the number of derivative evaluations per step.
	Stages() int
	// DistinctTimes is the number of distinct time arguments per step.
	DistinctTimes() int
}

type Metric interface {
	Name() string
	Signal() string
	Observe(t, v float64)
	Value() float64
	Reset()
}

// Sink receives the sampled record.
type Sink interface {
	Header(names []string) error
	Record(t float64, values []float64) error
}

type Config struct {
	Dt          float64
	Duration    float64
	SampleEvery int
	DelayMode   delay.Mode
}

func DefaultConfig() Config {
	return Config{
		Dt:          0.01,
		Duration:    10.0,
		SampleEvery: 0,
		DelayMode:   delay.AdvanceOnCommit,
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrConfig, c.Dt)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrConfig, c.Duration)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample interval must not be negative, got %d", ErrConfig, c.SampleEvery)
	}
	return nil
}

// Steps is ceil(Duration/Dt), ignoring a ratio that overshoots an integer
// only by rounding. A positive duration always takes at least one step.
func (c Config) Steps() int {
	r := c.Duration / c.Dt
	n := math.Round(r)
	if n >= 1 && math.Abs(r-n) <= 1e-9*n {
		return int(n)
	}
	return int(math.Ceil(r))
}

type Result struct {
	Final      State
	FinalTime  float64
	StepsTaken int
	Names      []string
	Signals    []float64
	Metrics    map[string]float64
}

// Scalar looks a value up by name: metrics first, then the final signal
// record.
func (r *Result) Scalar(name string) (float64, error) {
	if v, ok := r.Metrics[name]; ok {
		return v, nil
	}
	for i, n := range r.Names {
		if n == name {
			return r.Signals[i], nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
}
