package metrics

import "math"

// Drift is the largest relative deviation of a signal from its first
// observed value. A steady state reports a value near zero.
type Drift struct {
	name     string
	signal   string
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift(signal string) *Drift {
	return &Drift{name: "drift_" + signal, signal: signal}
}

func (d *Drift) Name() string   { return d.name }
func (d *Drift) Signal() string { return d.signal }

func (d *Drift) Observe(_ float64, v float64) {
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(v-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *Drift) Value() float64 {
	return d.maxDrift
}

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}

// Amplitude is the peak-to-peak range of a signal over observations at or
// after From, used to tell a settled equilibrium from a limit cycle.
type Amplitude struct {
	name     string
	signal   string
	from     float64
	min, max float64
	samples  int
}

func NewAmplitude(signal string, from float64) *Amplitude {
	return &Amplitude{name: "amplitude_" + signal, signal: signal, from: from}
}

func (a *Amplitude) Name() string   { return a.name }
func (a *Amplitude) Signal() string { return a.signal }

func (a *Amplitude) Observe(t, v float64) {
	if t < a.from {
		return
	}
	if a.samples == 0 {
		a.min, a.max = v, v
	}
	a.min = math.Min(a.min, v)
	a.max = math.Max(a.max, v)
	a.samples++
}

func (a *Amplitude) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.max - a.min
}

func (a *Amplitude) Reset() {
	a.min, a.max = 0, 0
	a.samples = 0
}
