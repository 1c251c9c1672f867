package metrics

// Final keeps the last observed value of a signal.
type Final struct {
	name   string
	signal string
	value  float64
}

func NewFinal(signal string) *Final {
	return &Final{name: "final_" + signal, signal: signal}
}

func (f *Final) Name() string   { return f.name }
func (f *Final) Signal() string { return f.signal }

func (f *Final) Observe(_ float64, v float64) {
	f.value = v
}

func (f *Final) Value() float64 {
	return f.value
}

func (f *Final) Reset() {
	f.value = 0
}

// WindowMean averages a signal over observations at or after From.
type WindowMean struct {
	name    string
	signal  string
	from    float64
	sum     float64
	samples int
}

func NewWindowMean(signal string, from float64) *WindowMean {
	return &WindowMean{name: "mean_" + signal, signal: signal, from: from}
}

func (m *WindowMean) Name() string   { return m.name }
func (m *WindowMean) Signal() string { return m.signal }

func (m *WindowMean) Observe(t, v float64) {
	if t < m.from {
		return
	}
	m.sum += v
	m.samples++
}

func (m *WindowMean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *WindowMean) Reset() {
	m.sum = 0
	m.samples = 0
}
