package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensitivity(t *testing.T) {
	params := []float64{0, 1, 2, 3}
	values := []float64{1, 3, 7, 7}

	pts, err := Sensitivity(params, values)
	require.NoError(t, err)
	require.Len(t, pts, 3)

	assert.Equal(t, []float64{2, 4, 0}, []float64{pts[0].Slope, pts[1].Slope, pts[2].Slope})
	assert.Equal(t, []float64{0, 1, 2}, []float64{pts[0].Param, pts[1].Param, pts[2].Param})
	assert.InDelta(t, 0, pts[0].Relative, 1e-12)
	assert.InDelta(t, 4.0/3, pts[1].Relative, 1e-12)
}

func TestSensitivity_Linear(t *testing.T) {
	params := make([]float64, 50)
	values := make([]float64, 50)
	for i := range params {
		params[i] = 0.1 * float64(i)
		values[i] = 3*params[i] + 2
	}

	pts, err := Sensitivity(params, values)
	require.NoError(t, err)
	for _, p := range pts {
		assert.InDelta(t, 3, p.Slope, 1e-9)
	}
}

func TestSensitivity_Errors(t *testing.T) {
	_, err := Sensitivity([]float64{1}, []float64{1})
	assert.ErrorIs(t, err, ErrTooShort)

	_, err = Sensitivity([]float64{1, 2}, []float64{1})
	assert.Error(t, err)

	_, err = Sensitivity([]float64{1, 1}, []float64{1, 2})
	assert.Error(t, err)

	pts, err := Sensitivity([]float64{1, 2}, []float64{0, 2})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(pts[0].Relative))
}

func TestDominantPeriod(t *testing.T) {
	const dt = 0.1
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = 5 + math.Sin(2*math.Pi*float64(i)*dt/6.4)
	}
	// 512 samples span 51.2 time units, eight periods of 6.4
	assert.InDelta(t, 6.4, DominantPeriod(samples, dt), 1e-9)

	flat := make([]float64, 64)
	assert.Equal(t, 0.0, DominantPeriod(flat, dt))
	assert.Equal(t, 0.0, DominantPeriod([]float64{1, 2, 3}, dt))
}

func TestFFT_PowerOfTwo(t *testing.T) {
	out := FFT([]float64{1, 1, 1, 1})
	assert.InDelta(t, 4, real(out[0]), 1e-12)
	assert.InDelta(t, 0, cmplxAbs(out[1]), 1e-12)
	assert.Panics(t, func() { FFT([]float64{1, 2, 3}) })
}

func cmplxAbs(c complex128) float64 { return math.Hypot(real(c), imag(c)) }
