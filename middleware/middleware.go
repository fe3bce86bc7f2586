package middleware

import (
	"context"

	"github.com/xraph/asyncjobs/action"
)

// Handler is the terminal function that applies the action.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic.
// It receives the current context, the action being dispatched, and the
// next handler to call.
type Middleware func(ctx context.Context, a action.Action, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover, tracing) executes as:
//
//	logging → recover → tracing → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, a action.Action, next Handler) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, a, prev)
			}
		}
		return h(ctx)
	}
}

// Filter returns middleware that only lets lifecycle actions for the given
// job names through. Other lifecycle actions are dropped without error and
// reported as dropped to outer Logging and Metrics; foreign actions always
// pass.
func Filter(names ...string) Middleware {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[n] = struct{}{}
	}
	return func(ctx context.Context, a action.Action, next Handler) error {
		if _, _, ok := action.ParseType(a.Type); ok {
			if _, ok := allowed[a.Name]; !ok {
				markDropped(ctx)
				return nil
			}
		}
		return next(ctx)
	}
}

// ── Dispatch outcome ──

type outcomeKey struct{}

// outcome is shared by the middleware of a single dispatch.
type outcome struct {
	dropped bool
}

// withOutcome returns ctx carrying an outcome, reusing one set by an outer
// middleware.
func withOutcome(ctx context.Context) (context.Context, *outcome) {
	if o, ok := ctx.Value(outcomeKey{}).(*outcome); ok {
		return ctx, o
	}
	o := &outcome{}
	return context.WithValue(ctx, outcomeKey{}, o), o
}

func markDropped(ctx context.Context) {
	if o, ok := ctx.Value(outcomeKey{}).(*outcome); ok {
		o.dropped = true
	}
}
