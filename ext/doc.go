// Package ext defines the extension system for asyncjobs.
//
// Extensions are notified after the tracker applies a lifecycle action and
// can react to it: recording metrics, writing audit logs, and so on.
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
//
// # Implementing an Extension
//
//	type SlowJobs struct{}
//
//	func (e *SlowJobs) Name() string { return "slow-jobs" }
//
//	func (e *SlowJobs) OnJobSucceeded(ctx context.Context, j *job.Job, elapsed time.Duration) error {
//	    if elapsed > time.Second {
//	        log.Printf("job %s took %s", j.ID, elapsed)
//	    }
//	    return nil
//	}
//
// # Job Lifecycle Hooks
//
//   - [JobCreated]: job was registered ahead of its work
//   - [JobStarted]: job moved to PENDING
//   - [JobSucceeded]: job moved to SUCCESS
//   - [JobFailed]: job moved to FAILURE
//   - [JobCancelled]: job was moved to CANCELLED
//   - [JobRemoved]: job was deleted from the state
//
// # Other Hooks
//
//   - [TransitionRejected]: an action could not be applied
//   - [Shutdown]: the tracker is closing
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface.
package ext
