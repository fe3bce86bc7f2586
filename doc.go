// Package asyncjobs tracks the lifecycle of asynchronous operations ("jobs")
// inside a unidirectional state container.
//
// A job is identified by a unique ID and grouped under a non-unique name
// (for example "FETCH_PROFILE"). Its lifecycle is driven entirely by
// actions folded into a keyed job mapping by a pure reducer:
//
//	CREATE  → CREATED
//	START   → PENDING   (creates the job when it does not exist yet)
//	SUCCEED → SUCCESS
//	FAIL    → FAILURE
//	CANCEL  → CANCELLED (a label only, in-flight work is not aborted)
//	REMOVE  → job deleted
//
// Every transition records an epoch-millisecond timestamp for the status it
// entered. Invalid transitions (creating an existing job, finishing an
// unknown one) are reported and leave the state untouched.
//
// # Quick Start
//
//	t, err := tracker.New(tracker.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer t.Close(ctx)
//
//	fetch := t.NewSet("FETCH_PROFILE")
//	start := fetch.Start()
//	_ = t.Dispatch(ctx, start)
//	// ... do the work ...
//	_ = t.Dispatch(ctx, fetch.Succeed(start.ID))
//
//	latest, ok := t.Latest(selector.Options{Name: "FETCH_PROFILE"})
//
// # Architecture
//
// The packages are layered leaf-first: job (records), action (creators),
// report (invalid transition reporting), reducer (state machine), selector
// (queries), and tracker, which hosts the reducer behind Dispatch together
// with middleware, subscribers and extension hooks.
package asyncjobs
