package delay

import "errors"

var (
	// ErrCapacity indicates a line too small for its lag and the number of
	// cursor advances per integration step.
	ErrCapacity = errors.New("delay: capacity too small for lag and step cadence")

	// ErrInvalidLine indicates a bad dt, lag or name in a line definition.
	ErrInvalidLine = errors.New("delay: invalid line configuration")

	// ErrUnknownSignal indicates a read or write of a name the buffer does not hold.
	ErrUnknownSignal = errors.New("delay: unknown signal")
)
