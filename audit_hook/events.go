package audithook

// Audit event actions. Each constant corresponds to one ext lifecycle hook
// and becomes the Action field of the audit event.
const (
	ActionJobCreated         = "job.created"
	ActionJobStarted         = "job.started"
	ActionJobSucceeded       = "job.succeeded"
	ActionJobFailed          = "job.failed"
	ActionJobCancelled       = "job.cancelled"
	ActionJobRemoved         = "job.removed"
	ActionTransitionRejected = "transition.rejected"
)

// Audit event categories group related actions.
const (
	CategoryJob        = "asyncjobs.job"
	CategoryTransition = "asyncjobs.transition"
)

// ResourceJob is the Resource field of every audit event.
const ResourceJob = "job"

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionJobCreated,
		ActionJobStarted,
		ActionJobSucceeded,
		ActionJobFailed,
		ActionJobCancelled,
		ActionJobRemoved,
		ActionTransitionRejected,
	}
}
