// Package analysis post-processes stored runs and sweep tables.
//
//   - [Sensitivity]: forward-difference derivative of a sweep curve
//   - [DominantPeriod]: strongest oscillation period of a sampled signal
//
// # Sensitivity
//
// The absolute sensitivity of the observed value to the swept parameter:
//
//	pts, err := analysis.Sensitivity(res.Params, res.Values)
//	for _, p := range pts {
//	    fmt.Println(p.Param, p.Slope)
//	}
package analysis
