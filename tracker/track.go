package tracker

import (
	"context"
	"errors"

	"github.com/xraph/asyncjobs/action"
)

// Track runs fn as job name and records its lifecycle: CREATE and START
// before fn runs, then SUCCEED when it returns nil, CANCEL when it fails
// because ctx was cancelled, and FAIL with the error otherwise.
//
// It returns the generated job ID and fn's error. Retries are left to the
// caller.
func (t *Tracker) Track(ctx context.Context, name string, fn func(ctx context.Context) error) (string, error) {
	set := t.NewSet(name)

	created := set.Create()
	if err := t.Dispatch(ctx, created); err != nil {
		return "", err
	}
	jobID := created.ID
	if err := t.Dispatch(ctx, set.Start(action.WithID(jobID))); err != nil {
		return jobID, err
	}

	runErr := fn(ctx)

	var settle action.Action
	switch {
	case runErr == nil:
		settle = set.Succeed(jobID)
	case ctx.Err() != nil && errors.Is(runErr, ctx.Err()):
		settle = set.Cancel(jobID)
	default:
		settle = set.Fail(jobID, action.WithError(runErr))
	}

	// The job may have been removed while fn ran; the violation is reported
	// and fn's outcome still wins.
	if err := t.Dispatch(context.WithoutCancel(ctx), settle); err != nil && runErr == nil {
		return jobID, err
	}
	return jobID, runErr
}
