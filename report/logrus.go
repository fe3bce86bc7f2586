package report

import "github.com/sirupsen/logrus"

// LogrusReporter logs violations through logrus.
type LogrusReporter struct {
	logger logrus.FieldLogger
}

// NewLogrusReporter returns a reporter logging to logger, or to the logrus
// standard logger when logger is nil.
func NewLogrusReporter(logger logrus.FieldLogger) *LogrusReporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusReporter{logger: logger}
}

// Report implements Reporter.
func (r *LogrusReporter) Report(v *Violation) {
	entry := r.logger.WithFields(logrus.Fields{
		"code":        int(v.Code),
		"action_type": v.Action.Type,
		"job_id":      v.Action.ID,
		"job_name":    v.Action.Name,
	})
	if v.Level() == LevelWarn {
		entry.Warn(v.Message())
		return
	}
	entry.Error(v.Message())
}
