package report

import (
	"context"
	"log/slog"
)

// SlogReporter logs violations to a structured logger.
type SlogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter returns a reporter logging to logger, or to slog.Default
// when logger is nil.
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogReporter{logger: logger}
}

// Report implements Reporter.
func (r *SlogReporter) Report(v *Violation) {
	level := slog.LevelError
	if v.Level() == LevelWarn {
		level = slog.LevelWarn
	}
	r.logger.LogAttrs(context.Background(), level, v.Message(),
		slog.Int("code", int(v.Code)),
		slog.String("action_type", v.Action.Type),
		slog.String("job_id", v.Action.ID),
		slog.String("job_name", v.Action.Name),
	)
}
