package delay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLine_TracksRampAfterLag(t *testing.T) {
	tests := []struct {
		name string
		lag  float64
		dt   float64
	}{
		{"short", 1.0, 0.1},
		{"fine", 3.0, 0.01},
		{"half", 0.5, 0.05},
		{"zero", 0.0, 0.1},
		{"off grid", 0.73, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const seed = -1.0
			l, err := NewLine("ramp", tt.dt, tt.lag, seed)
			require.NoError(t, err)

			now := 0.0
			end := tt.lag + 5.0
			for now < end {
				l.Write(now, now)
				got := l.Read()

				switch {
				case now < tt.lag-tt.dt/2:
					assert.Equal(t, seed, got, "t=%.4f", now)
				case now >= tt.lag+tt.dt/2:
					assert.InDelta(t, now-tt.lag, got, tt.dt+1e-9, "t=%.4f", now)
				}
				now += tt.dt
			}
		})
	}
}

func TestLine_ReadsSeedBeforeLag(t *testing.T) {
	l, err := NewLine("x", 0.01, 2.0, 42.0)
	require.NoError(t, err)

	for i := 0; i < 199; i++ {
		now := float64(i) * 0.01
		l.Write(now, float64(i)+1000)
		l.Write(now, float64(i)+2000)
		require.Equal(t, 42.0, l.Read(), "t=%.2f", now)
	}
}

func TestLine_SameTimeWritesDoNotAdvance(t *testing.T) {
	once, err := NewLine("once", 0.1, 0.5, 0)
	require.NoError(t, err)
	many, err := NewLine("many", 0.1, 0.5, 0)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		now := float64(i) * 0.1
		once.Write(now, now)
		for k := 0; k < 4; k++ {
			many.Write(now, now+float64(k))
		}
		many.Write(now, now)

		ow, or := once.Cursor()
		mw, mr := many.Cursor()
		require.Equal(t, ow, mw, "write cursor at t=%.1f", now)
		require.Equal(t, or, mr, "read cursor at t=%.1f", now)
		require.Equal(t, once.Read(), many.Read())
	}
}

func TestLine_EarlierTimeOverwrites(t *testing.T) {
	l, err := NewLine("x", 1, 0, 0)
	require.NoError(t, err)

	l.Write(5, 1)
	w, r := l.Cursor()
	l.Write(4, 2)
	w2, r2 := l.Cursor()

	assert.Equal(t, w, w2)
	assert.Equal(t, r, r2)
	assert.Equal(t, 2.0, l.Read())
	assert.Equal(t, 5.0, l.LastTime())
}

func TestLine_StepInputLongLag(t *testing.T) {
	const (
		dt  = 0.01
		lag = 300.0
	)
	l, err := NewLine("step", dt, lag, 0)
	require.NoError(t, err)

	switchAt := -1
	for i := 0; i < 40000; i++ {
		now := float64(i) * dt
		v := 0.0
		if i >= 5000 {
			v = 1.0
		}
		l.Write(now, v)

		got := l.Read()
		if switchAt < 0 && got == 1.0 {
			switchAt = i
		}
		if switchAt >= 0 {
			require.Equal(t, 1.0, got, "value fell back at t=%.2f", now)
		}
	}

	require.GreaterOrEqual(t, switchAt, 0, "lagged step never arrived")
	assert.InDelta(t, 35000, switchAt, 1, "lagged step arrived at t=%.2f", float64(switchAt)*dt)
}

func TestLine_LagBoundaryRounding(t *testing.T) {
	tests := []struct {
		name     string
		at       float64
		advances bool
	}{
		{"exact", 300, true},
		{"last bit low", math.Nextafter(300, 0), true},
		{"within tolerance", 300 - 1e-8, true},
		{"a fraction of dt early", 300 - 1e-4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLine("x", 0.01, 300, 0)
			require.NoError(t, err)

			l.Write(tt.at, 1)
			_, read := l.Cursor()
			assert.Equal(t, tt.advances, read == 1)
		})
	}
}

func TestLine_MemoryBoundedByLag(t *testing.T) {
	l, err := NewLine("x", 0.01, 300, 0)
	require.NoError(t, err)
	assert.Equal(t, 30002, l.Capacity())

	for i := 0; i < 3*l.Capacity(); i++ {
		l.Write(float64(i)*0.01, 1)
		w, r := l.Cursor()
		require.Less(t, w, l.Capacity())
		require.Less(t, r, l.Capacity())
	}
}

func TestNewLine_Invalid(t *testing.T) {
	tests := []struct {
		name string
		line string
		dt   float64
		lag  float64
	}{
		{"empty name", "", 0.1, 1},
		{"zero dt", "x", 0, 1},
		{"negative dt", "x", -0.1, 1},
		{"nan dt", "x", math.NaN(), 1},
		{"negative lag", "x", 0.1, -1},
		{"inf lag", "x", 0.1, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLine(tt.line, tt.dt, tt.lag, 0)
			assert.ErrorIs(t, err, ErrInvalidLine)
		})
	}
}

func TestRequiredCapacity(t *testing.T) {
	assert.Equal(t, 2, RequiredCapacity(0.1, 0, 1))
	assert.Equal(t, 12, RequiredCapacity(0.1, 1, 1))
	assert.Equal(t, 14, RequiredCapacity(0.1, 1, 3))
	assert.Equal(t, 30000, Offset(0.01, 300))
}
