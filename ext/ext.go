package ext

import (
	"context"
	"time"

	"github.com/xraph/asyncjobs/job"
	"github.com/xraph/asyncjobs/report"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Job lifecycle hooks
// ──────────────────────────────────────────────────

// JobCreated is called after a CREATE action registers a job.
type JobCreated interface {
	OnJobCreated(ctx context.Context, j *job.Job) error
}

// JobStarted is called after a START action moves a job to PENDING.
type JobStarted interface {
	OnJobStarted(ctx context.Context, j *job.Job) error
}

// JobSucceeded is called after a job moves to SUCCESS. elapsed is measured
// from the PENDING timestamp and is zero when the job never started.
type JobSucceeded interface {
	OnJobSucceeded(ctx context.Context, j *job.Job, elapsed time.Duration) error
}

// JobFailed is called after a job moves to FAILURE.
type JobFailed interface {
	OnJobFailed(ctx context.Context, j *job.Job, err error) error
}

// JobCancelled is called after a job is marked CANCELLED.
type JobCancelled interface {
	OnJobCancelled(ctx context.Context, j *job.Job) error
}

// JobRemoved is called after a job is deleted. j is its last record.
type JobRemoved interface {
	OnJobRemoved(ctx context.Context, j *job.Job) error
}

// ──────────────────────────────────────────────────
// Other hooks
// ──────────────────────────────────────────────────

// TransitionRejected is called when an action could not be applied.
type TransitionRejected interface {
	OnTransitionRejected(ctx context.Context, v *report.Violation) error
}

// Shutdown is called when the tracker is closed.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
