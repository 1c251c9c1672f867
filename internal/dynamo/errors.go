package dynamo

import (
	"errors"
	"fmt"

	"github.com/san-kum/delaysim/internal/delay"
)

// Domain errors for simulation operations.
var (
	// ErrNonFinite indicates a state component became NaN or Inf.
	ErrNonFinite = errors.New("dynamo: non-finite state (NaN or Inf detected)")

	// ErrCapacity indicates a delay line too small for the integrator's
	// cursor advances per step.
	ErrCapacity = delay.ErrCapacity

	// ErrConfig indicates an invalid step size, duration, range or worker count.
	ErrConfig = errors.New("dynamo: invalid configuration")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrUnknownParam indicates a parameter name the system does not expose.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrUnknownSignal indicates a signal or metric missing from a result.
	ErrUnknownSignal = errors.New("dynamo: unknown signal")

	// ErrUnknownModel and ErrUnknownIntegrator indicate failed registry lookups.
	ErrUnknownModel      = errors.New("dynamo: unknown model")
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
