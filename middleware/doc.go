// Package middleware provides composable middleware around action dispatch.
//
// A [Middleware] wraps the step that hands an action to the reducer. The
// tracker composes middleware into a chain using [Chain]; the first
// middleware in the slice is the outermost wrapper.
//
//	// logging → recover → reducer
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// A middleware may short-circuit by returning without calling next, in
// which case the action never reaches the reducer.
//
// # Built-in Middleware
//
//   - [Logging]: logs each action and whether it was applied
//   - [Recover]: catches panics and converts them to errors
//   - [Tracing]: wraps each dispatch in an OpenTelemetry span
//   - [Metrics]: records dispatch counts and durations
//   - [Filter]: drops actions whose job name is not allowed
//
// # Writing Custom Middleware
//
//	func Audit(w io.Writer) middleware.Middleware {
//	    return func(ctx context.Context, a action.Action, next middleware.Handler) error {
//	        fmt.Fprintln(w, a.Type, a.ID)
//	        return next(ctx)
//	    }
//	}
package middleware
