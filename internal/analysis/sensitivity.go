package analysis

import (
	"errors"
	"fmt"
	"math"
)

var ErrTooShort = errors.New("analysis: need at least two points")

// SensitivityPoint is the slope between grid point Param and the next one.
type SensitivityPoint struct {
	Param float64
	Slope float64
	// Relative is Slope*Param/Value, or NaN where Value is zero.
	Relative float64
}

// Sensitivity differentiates values with respect to params by forward
// differences. The result has one point fewer than the input.
func Sensitivity(params, values []float64) ([]SensitivityPoint, error) {
	if len(params) != len(values) {
		return nil, fmt.Errorf("analysis: %d params but %d values", len(params), len(values))
	}
	if len(params) < 2 {
		return nil, ErrTooShort
	}

	out := make([]SensitivityPoint, len(params)-1)
	for i := range out {
		dp := params[i+1] - params[i]
		if dp == 0 {
			return nil, fmt.Errorf("analysis: repeated parameter value %g at index %d", params[i], i)
		}
		slope := (values[i+1] - values[i]) / dp

		rel := math.NaN()
		if values[i] != 0 {
			rel = slope * params[i] / values[i]
		}
		out[i] = SensitivityPoint{Param: params[i], Slope: slope, Relative: rel}
	}
	return out, nil
}
