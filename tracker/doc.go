// Package tracker hosts the job reducer behind a Redux-style store.
//
// A [Tracker] owns the current [reducer.State]. Every action passes through
// the middleware chain, is folded into the state by the reducer, and is then
// announced to subscribers and extension hooks:
//
//	middleware (recover → tracing → metrics → logging → user)
//	    → reducer.Apply
//	    → report violation
//	    → subscribers
//	    → extension hooks
//
// Dispatches are serialized: only one action is reduced at a time, so every
// subscriber observes a consistent sequence of states. Subscribers and hooks
// run outside the state lock and may read the tracker or dispatch again.
//
// Actions the reducer refuses are handed to the configured reporter and
// returned from Dispatch as a *report.Violation wrapping one of the
// asyncjobs sentinel errors.
package tracker
