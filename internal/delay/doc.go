// Package delay provides bounded-memory lagged signal storage for delay
// differential equations.
//
// A [Line] is a ring buffer over one scalar signal that answers "the value
// approximately lag time-units ago" using memory proportional to lag/dt, not
// to the simulated duration. A [Buffer] groups named lines and is the single
// point through which a derivative function records samples and reads lagged
// values:
//
//	buf, _ := delay.NewBuffer(0.01, delay.AdvanceOnCommit, 1,
//	    delay.LineSpec{Name: "TSH_T0T", Signal: "TSH", Lag: 300, Initial: tsh0},
//	)
//	buf.PutAll(t, names, values) // inside Derive: stage the current sample
//	lagged := buf.MustGet("TSH_T0T")
//	buf.Commit(t)                // once per completed step
//
// # Advance Modes
//
// In [AdvanceOnWrite] mode every write with a strictly larger time argument
// is a new time point and moves the cursors. That is only correct when the
// integrator evaluates the derivative at a single time per step, so
// [NewBuffer] rejects it for multi-time integrators with [ErrCapacity].
//
// In [AdvanceOnCommit] mode writes only stage a value and the cursors move
// when the driver calls [Buffer.Commit] once per completed step. Any explicit
// integrator is safe in this mode.
package delay
