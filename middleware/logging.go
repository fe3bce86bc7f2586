package middleware

import (
	"context"
	"log/slog"

	"github.com/xraph/asyncjobs/action"
)

// Logging returns middleware that logs every dispatched action. Applied
// and dropped actions log at debug level, rejected ones at info level; the
// reporter owns the warn and error lines.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, a action.Action, next Handler) error {
		ctx, out := withOutcome(ctx)
		err := next(ctx)
		if err != nil {
			logger.InfoContext(ctx, "action rejected",
				slog.String("action_type", a.Type),
				slog.String("job_id", a.ID),
				slog.String("error", err.Error()),
			)
			return err
		}
		if out.dropped {
			logger.DebugContext(ctx, "action dropped",
				slog.String("action_type", a.Type),
				slog.String("job_id", a.ID),
			)
			return nil
		}
		logger.DebugContext(ctx, "action applied",
			slog.String("action_type", a.Type),
			slog.String("job_id", a.ID),
		)
		return nil
	}
}
