package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/xraph/asyncjobs/action"
)

// Recover returns middleware that recovers from panics further down the
// chain, including panics raised by reporters, subscribers and hooks.
// Panics are converted to errors and logged with a stack trace.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, a action.Action, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("dispatch panicked",
					slog.String("action_type", a.Type),
					slog.String("job_id", a.ID),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic dispatching %s: %v", a.Type, r)
			}
		}()
		return next(ctx)
	}
}
