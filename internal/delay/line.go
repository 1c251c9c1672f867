package delay

import (
	"fmt"
	"math"
)

// lagTolerance absorbs the last-bit rounding of t = i*dt when comparing
// against a lag, relative to the larger of dt and the lag.
const lagTolerance = 1e-9

// Line is a ring buffer holding recent samples of one scalar signal.
//
// Slot 0 is seeded with the initial value and stands for all history before
// the first write. The write cursor moves once per new time point; the read
// cursor starts moving once the lag has elapsed, so it settles
// round(lag/dt) slots behind the write cursor.
type Line struct {
	name  string
	lag   float64
	dt    float64
	buf   []float64
	write int
	read  int
	last  float64
}

// Offset returns the number of steps of size dt spanned by lag.
func Offset(dt, lag float64) int {
	return int(math.Round(lag / dt))
}

// RequiredCapacity returns the smallest ring size that holds a lag of the
// given length when the cursors advance advancesPerStep times per step.
func RequiredCapacity(dt, lag float64, advancesPerStep int) int {
	return Offset(dt, lag) + advancesPerStep + 1
}

// NewLine allocates a line sized for one cursor advance per step.
func NewLine(name string, dt, lag, initial float64) (*Line, error) {
	if err := checkLine(name, dt, lag); err != nil {
		return nil, err
	}
	return newLine(name, dt, lag, initial, RequiredCapacity(dt, lag, 1)), nil
}

func checkLine(name string, dt, lag float64) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidLine)
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: %s: dt must be positive, got %g", ErrInvalidLine, name, dt)
	}
	if !(lag >= 0) || math.IsInf(lag, 0) {
		return fmt.Errorf("%w: %s: lag must be non-negative, got %g", ErrInvalidLine, name, lag)
	}
	return nil
}

func newLine(name string, dt, lag, initial float64, capacity int) *Line {
	l := &Line{
		name: name,
		lag:  lag,
		dt:   dt,
		buf:  make([]float64, capacity),
		last: math.Inf(-1),
	}
	l.buf[0] = initial
	return l
}

func (l *Line) Name() string      { return l.name }
func (l *Line) Lag() float64      { return l.lag }
func (l *Line) Capacity() int     { return len(l.buf) }
func (l *Line) LastTime() float64 { return l.last }

// Cursor reports the write and read slot indices.
func (l *Line) Cursor() (write, read int) { return l.write, l.read }

// Write stores v for time t. A strictly later t starts a new slot; an equal
// or earlier t overwrites the current one without moving any cursor.
func (l *Line) Write(t, v float64) {
	if t > l.last {
		l.advance(t, t)
	}
	l.buf[l.write] = v
}

// Read returns the lagged value. Before the lag has elapsed this is the
// seeded initial value.
func (l *Line) Read() float64 {
	return l.buf[l.read]
}

// advance opens the slot for time point t. The read cursor follows once the
// time at which the next read happens (horizon) has reached the lag.
func (l *Line) advance(t, horizon float64) {
	prev := l.buf[l.write]
	l.write = (l.write + 1) % len(l.buf)
	l.buf[l.write] = prev
	l.last = t
	if horizon >= l.lag-lagTolerance*math.Max(l.dt, l.lag) {
		l.read = (l.read + 1) % len(l.buf)
	}
}
