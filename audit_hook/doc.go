// Package audithook is a tracker extension that turns job lifecycle events
// into audit trail entries.
//
// Every lifecycle hook emits a structured [AuditEvent] through the
// [Recorder] interface. Severity follows the outcome: info for normal
// transitions, warning for cancellations and rejected warnings, critical
// for failures and rejected errors.
//
// # Usage
//
//	enc := json.NewEncoder(w)
//	tr, _ := tracker.New(tracker.WithExtension(
//	    audithook.New(audithook.RecorderFunc(func(_ context.Context, evt *audithook.AuditEvent) error {
//	        return enc.Encode(evt)
//	    })),
//	))
//
// # Selective filtering
//
//	audithook.New(recorder,
//	    audithook.WithActions(
//	        audithook.ActionJobFailed,
//	        audithook.ActionTransitionRejected,
//	    ),
//	)
package audithook
