package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xraph/asyncjobs/ext"
	"github.com/xraph/asyncjobs/job"
	"github.com/xraph/asyncjobs/report"
)

// Compile-time interface checks.
var (
	_ ext.Extension          = (*Extension)(nil)
	_ ext.JobCreated         = (*Extension)(nil)
	_ ext.JobStarted         = (*Extension)(nil)
	_ ext.JobSucceeded       = (*Extension)(nil)
	_ ext.JobFailed          = (*Extension)(nil)
	_ ext.JobCancelled       = (*Extension)(nil)
	_ ext.JobRemoved         = (*Extension)(nil)
	_ ext.TransitionRejected = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one entry of the audit trail.
type AuditEvent struct {
	// What happened
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Category string `json:"category"`

	// Details
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Extension bridges tracker lifecycle events to an audit trail backend.
// Each lifecycle hook emits a structured audit event through the [Recorder].
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// ── Job lifecycle hooks ─────────────────────────────

// OnJobCreated implements ext.JobCreated.
func (e *Extension) OnJobCreated(ctx context.Context, j *job.Job) error {
	return e.record(ctx, ActionJobCreated, SeverityInfo, OutcomeSuccess,
		j.ID, CategoryJob, nil,
		"job_name", j.Name,
		"at", stamp(j, job.StatusCreated),
	)
}

// OnJobStarted implements ext.JobStarted.
func (e *Extension) OnJobStarted(ctx context.Context, j *job.Job) error {
	return e.record(ctx, ActionJobStarted, SeverityInfo, OutcomeSuccess,
		j.ID, CategoryJob, nil,
		"job_name", j.Name,
		"at", stamp(j, job.StatusPending),
	)
}

// OnJobSucceeded implements ext.JobSucceeded.
func (e *Extension) OnJobSucceeded(ctx context.Context, j *job.Job, elapsed time.Duration) error {
	return e.record(ctx, ActionJobSucceeded, SeverityInfo, OutcomeSuccess,
		j.ID, CategoryJob, nil,
		"job_name", j.Name,
		"at", stamp(j, job.StatusSuccess),
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// OnJobFailed implements ext.JobFailed.
func (e *Extension) OnJobFailed(ctx context.Context, j *job.Job, jobErr error) error {
	return e.record(ctx, ActionJobFailed, SeverityCritical, OutcomeFailure,
		j.ID, CategoryJob, jobErr,
		"job_name", j.Name,
		"at", stamp(j, job.StatusFailure),
		"elapsed_ms", ext.Elapsed(j, job.StatusFailure).Milliseconds(),
	)
}

// OnJobCancelled implements ext.JobCancelled.
func (e *Extension) OnJobCancelled(ctx context.Context, j *job.Job) error {
	return e.record(ctx, ActionJobCancelled, SeverityWarning, OutcomeFailure,
		j.ID, CategoryJob, nil,
		"job_name", j.Name,
		"at", stamp(j, job.StatusCancelled),
	)
}

// OnJobRemoved implements ext.JobRemoved.
func (e *Extension) OnJobRemoved(ctx context.Context, j *job.Job) error {
	return e.record(ctx, ActionJobRemoved, SeverityInfo, OutcomeSuccess,
		j.ID, CategoryJob, nil,
		"job_name", j.Name,
		"last_status", string(j.Status),
	)
}

// ── Rejections ──────────────────────────────────────

// OnTransitionRejected implements ext.TransitionRejected.
func (e *Extension) OnTransitionRejected(ctx context.Context, v *report.Violation) error {
	severity := SeverityCritical
	if v.Level() == report.LevelWarn {
		severity = SeverityWarning
	}
	return e.record(ctx, ActionTransitionRejected, severity, OutcomeFailure,
		v.Action.ID, CategoryTransition, v,
		"job_name", v.Action.Name,
		"action_type", v.Action.Type,
		"code", strconv.Itoa(int(v.Code)),
	)
}

// ── Internal helpers ────────────────────────────────

// stamp returns the epoch-millisecond time j entered s, or nil.
func stamp(j *job.Job, s job.Status) any {
	if ts, ok := j.Timestamp(s); ok {
		return ts
	}
	return nil
}

// record builds and sends an audit event if the action is enabled.
// The kvPairs argument is a list of key-value pairs added to Metadata;
// pairs with a nil value are skipped.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		if kvPairs[i+1] == nil {
			continue
		}
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   ResourceJob,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			slog.String("action", action),
			slog.String("resource_id", resourceID),
			slog.String("error", recErr.Error()),
		)
	}
	return nil
}
