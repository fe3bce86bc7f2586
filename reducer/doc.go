// Package reducer folds lifecycle actions into the job state.
//
// [Apply] is the pure transition function: given a state, an action and
// the current time it returns the next state, or the unchanged state plus a
// *report.Violation when the action cannot be applied. [Reducer] wraps it
// with a clock and a report.Reporter, which is what a state container calls.
//
// Transition table:
//
//	CREATE   absent  → CREATED            present → violation code 0
//	START    absent  → PENDING (new job)  present → PENDING, name kept
//	SUCCEED  present → SUCCESS            absent  → violation code 1
//	FAIL     present → FAILURE, error set absent  → violation code 1
//	CANCEL   present → CANCELLED          absent  → violation code 2
//	REMOVE   present → deleted            absent  → violation code 2
//
// States are immutable. A transition copies the job mapping and the
// affected job, so states handed out earlier never change.
package reducer
