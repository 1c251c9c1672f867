package delay

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects what moves a Buffer's cursors.
type Mode int

const (
	// AdvanceOnCommit stages writes and advances only on Commit.
	AdvanceOnCommit Mode = iota
	// AdvanceOnWrite advances on the first write at each new time point.
	AdvanceOnWrite
)

func (m Mode) String() string {
	switch m {
	case AdvanceOnCommit:
		return "commit"
	case AdvanceOnWrite:
		return "write"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "commit" and "write"; the empty string means commit.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "commit":
		return AdvanceOnCommit, nil
	case "write":
		return AdvanceOnWrite, nil
	default:
		return 0, fmt.Errorf("%w: unknown delay mode %q", ErrInvalidLine, s)
	}
}

// LineSpec declares one lagged view of a signal.
type LineSpec struct {
	// Name identifies the line for reads. It must be unique in a Buffer.
	Name string
	// Signal is the recorded quantity; empty means Name.
	Signal  string
	Lag     float64
	Initial float64
	// Capacity overrides the computed ring size. Zero sizes it automatically.
	Capacity int
}

func (s LineSpec) signal() string {
	if s.Signal == "" {
		return s.Name
	}
	return s.Signal
}

// Buffer is a registry of named delay lines sharing one notion of "current
// time point".
type Buffer struct {
	mode  Mode
	dt    float64
	last  float64
	lines []*Line
	names map[string]int
	// signal name -> indices of the lines recording it
	signals map[string][]int

	staged   []float64
	isStaged []bool
}

// NewBuffer builds a buffer for an integrator that evaluates the derivative
// at stepTimes distinct time arguments per step.
//
// In AdvanceOnWrite mode each distinct time moves the cursors, so any
// stepTimes above one would shorten every lag and is rejected with
// ErrCapacity, as is an explicit LineSpec.Capacity below RequiredCapacity.
func NewBuffer(dt float64, mode Mode, stepTimes int, specs ...LineSpec) (*Buffer, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidLine, dt)
	}
	if stepTimes < 1 {
		return nil, fmt.Errorf("%w: integrator must evaluate at least once per step", ErrInvalidLine)
	}

	advances := 1
	if mode == AdvanceOnWrite {
		if stepTimes > 1 && len(specs) > 0 {
			return nil, fmt.Errorf("%w: write mode advances %d times per step; use commit mode or a single-stage integrator",
				ErrCapacity, stepTimes)
		}
		advances = stepTimes
	}

	b := &Buffer{
		mode:     mode,
		dt:       dt,
		last:     math.Inf(-1),
		lines:    make([]*Line, 0, len(specs)),
		names:    make(map[string]int, len(specs)),
		signals:  make(map[string][]int),
		staged:   make([]float64, len(specs)),
		isStaged: make([]bool, len(specs)),
	}

	for _, spec := range specs {
		if err := checkLine(spec.Name, dt, spec.Lag); err != nil {
			return nil, err
		}
		if _, dup := b.names[spec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate line %q", ErrInvalidLine, spec.Name)
		}

		need := RequiredCapacity(dt, spec.Lag, advances)
		capacity := spec.Capacity
		if capacity == 0 {
			capacity = need
		} else if capacity < need {
			return nil, fmt.Errorf("%w: line %q holds %d slots, lag %g at dt %g needs %d",
				ErrCapacity, spec.Name, capacity, spec.Lag, dt, need)
		}

		idx := len(b.lines)
		b.lines = append(b.lines, newLine(spec.Name, dt, spec.Lag, spec.Initial, capacity))
		b.names[spec.Name] = idx
		sig := spec.signal()
		b.signals[sig] = append(b.signals[sig], idx)
	}

	return b, nil
}

func (b *Buffer) Mode() Mode        { return b.mode }
func (b *Buffer) LastTime() float64 { return b.last }
func (b *Buffer) Len() int          { return len(b.lines) }
func (b *Buffer) Line(i int) *Line  { return b.lines[i] }

// Names returns the line names in declaration order.
func (b *Buffer) Names() []string {
	names := make([]string, len(b.lines))
	for i, l := range b.lines {
		names[i] = l.name
	}
	return names
}

// Tracks reports whether any line records the signal.
func (b *Buffer) Tracks(signal string) bool {
	_, ok := b.signals[signal]
	return ok
}

// Put records the value of one signal at time t into every line that
// tracks it.
func (b *Buffer) Put(t float64, signal string, v float64) error {
	idx, ok := b.signals[signal]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSignal, signal)
	}
	if b.mode == AdvanceOnWrite {
		b.touch(t)
	}
	for _, i := range idx {
		b.store(i, v)
	}
	return nil
}

// PutAll records a full sample. Signals without a line are skipped, so a
// derivative function can hand over its whole record.
func (b *Buffer) PutAll(t float64, names []string, values []float64) {
	if len(b.lines) == 0 {
		return
	}
	if b.mode == AdvanceOnWrite {
		b.touch(t)
	}
	for k, name := range names {
		for _, i := range b.signals[name] {
			b.store(i, values[k])
		}
	}
}

// Get returns the lagged value of the named line.
func (b *Buffer) Get(name string) (float64, error) {
	i, ok := b.names[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
	}
	return b.lines[i].Read(), nil
}

// MustGet is Get for derivative functions whose line names were fixed when
// the buffer was built. It panics on an unknown name.
func (b *Buffer) MustGet(name string) float64 {
	v, err := b.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Commit closes the step that started at time t: lines advance once and
// take the first value staged since the previous commit. Lagged reads until
// the next commit are treated as happening one step after t. Commit is a
// no-op in AdvanceOnWrite mode.
func (b *Buffer) Commit(t float64) {
	if b.mode != AdvanceOnCommit {
		return
	}
	if t > b.last {
		b.last = t
		for _, l := range b.lines {
			l.advance(t, t+b.dt)
		}
	}
	for i, l := range b.lines {
		if b.isStaged[i] {
			l.buf[l.write] = b.staged[i]
			b.isStaged[i] = false
		}
	}
}

// touch opens a new time point for every line when t is strictly later
// than the last one seen.
func (b *Buffer) touch(t float64) {
	if t > b.last {
		b.last = t
		for _, l := range b.lines {
			l.advance(t, t)
		}
	}
}

func (b *Buffer) store(i int, v float64) {
	if b.mode == AdvanceOnWrite {
		l := b.lines[i]
		l.buf[l.write] = v
		return
	}
	// Explicit integrators open every step with an evaluation at the
	// accepted state, so the first staged value is the step's sample.
	if !b.isStaged[i] {
		b.staged[i] = v
		b.isStaged[i] = true
	}
}
