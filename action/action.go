package action

import (
	"fmt"
	"strings"
	"time"

	"github.com/xraph/asyncjobs"
	"github.com/xraph/asyncjobs/id"
)

// Prefix is the namespace shared by every lifecycle action type.
const Prefix = "@AJ"

// Kind is the lifecycle operation an action performs.
type Kind string

const (
	// KindCreate registers a job ahead of starting it.
	KindCreate Kind = "CREATE"
	// KindStart starts a job, creating it when it does not exist.
	KindStart Kind = "START"
	// KindSucceed marks a job successful.
	KindSucceed Kind = "SUCCEED"
	// KindFail marks a job failed. The payload is the failure.
	KindFail Kind = "FAIL"
	// KindCancel marks a job cancelled.
	KindCancel Kind = "CANCEL"
	// KindRemove deletes a job from the state.
	KindRemove Kind = "REMOVE"
)

// Kinds lists every action kind.
var Kinds = []Kind{KindCreate, KindStart, KindSucceed, KindFail, KindCancel, KindRemove}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCreate, KindStart, KindSucceed, KindFail, KindCancel, KindRemove:
		return true
	}
	return false
}

// Action is a single lifecycle event for one job.
type Action struct {
	Type    string
	ID      string
	Name    string
	Payload any
	// At is when the action happened, in epoch milliseconds. Zero means
	// the time it is applied.
	At int64
}

// Kind returns the lifecycle kind encoded in the action type.
func (a Action) Kind() (Kind, bool) {
	k, _, ok := ParseType(a.Type)
	return k, ok
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return fmt.Sprintf("%s id=%s", a.Type, a.ID)
}

// TypeOf builds the action type for kind and job name.
func TypeOf(kind Kind, name string) string {
	return Prefix + "/" + string(kind) + "/" + name
}

// ParseType splits an action type into its kind and job name. It reports
// false for foreign actions and unknown kinds.
func ParseType(t string) (Kind, string, bool) {
	rest, ok := strings.CutPrefix(t, Prefix+"/")
	if !ok {
		return "", "", false
	}
	k, name, _ := strings.Cut(rest, "/")
	kind := Kind(k)
	if !kind.Valid() {
		return "", "", false
	}
	return kind, name, true
}

// Is reports whether a is a lifecycle action of the given kind, for any job name.
func Is(a Action, kind Kind) bool {
	k, ok := a.Kind()
	return ok && k == kind
}

// IsSpecific reports whether a is exactly the action of kind for job name.
func IsSpecific(a Action, kind Kind, name string) bool {
	return a.Type == TypeOf(kind, name)
}

// Validate checks that a lifecycle action is well formed.
func Validate(a Action) error {
	if _, _, ok := ParseType(a.Type); !ok {
		return fmt.Errorf("%w: type %q", asyncjobs.ErrInvalidAction, a.Type)
	}
	if !id.Valid(a.ID) {
		return fmt.Errorf("%w: %s", asyncjobs.ErrMissingID, a.Type)
	}
	if a.Name == "" {
		return fmt.Errorf("%w: %s", asyncjobs.ErrMissingName, a.Type)
	}
	return nil
}

// Option configures an action built by a creator.
type Option func(*Action)

// WithID sets the job ID. Create and Start generate one when it is omitted.
func WithID(jobID string) Option {
	return func(a *Action) { a.ID = jobID }
}

// WithPayload attaches an arbitrary payload to the action.
func WithPayload(v any) Option {
	return func(a *Action) { a.Payload = v }
}

// WithTime records when the action happened. Replayed logs keep the
// original timestamps this way.
func WithTime(t time.Time) Option {
	return func(a *Action) { a.At = t.UnixMilli() }
}

// WithError attaches a failure as the payload. Intended for Fail.
func WithError(err error) Option {
	return func(a *Action) { a.Payload = err }
}

func build(kind Kind, name, jobID string, opts []Option) Action {
	a := Action{ID: jobID, Name: name}
	for _, opt := range opts {
		opt(&a)
	}
	a.Type = TypeOf(kind, name)
	return a
}

func buildWithGenerated(kind Kind, name string, gen func() string, opts []Option) Action {
	a := build(kind, name, "", opts)
	if a.ID == "" {
		a.ID = gen()
	}
	return a
}

// Create builds a CREATE action. Use it to register a job some time before
// the work begins, then Start it with the same ID.
func Create(name string, opts ...Option) Action {
	return buildWithGenerated(KindCreate, name, id.NewJobID, opts)
}

// Start builds a START action. If a job with the ID was created earlier it
// moves to PENDING, otherwise a new PENDING job is created.
func Start(name string, opts ...Option) Action {
	return buildWithGenerated(KindStart, name, id.NewJobID, opts)
}

// Succeed builds a SUCCEED action for an existing job.
func Succeed(name, jobID string, opts ...Option) Action {
	return build(KindSucceed, name, jobID, opts)
}

// Fail builds a FAIL action for an existing job. The payload becomes the
// job's error.
func Fail(name, jobID string, opts ...Option) Action {
	return build(KindFail, name, jobID, opts)
}

// Cancel builds a CANCEL action for an existing job.
func Cancel(name, jobID string, opts ...Option) Action {
	return build(KindCancel, name, jobID, opts)
}

// Remove builds a REMOVE action for an existing job.
func Remove(name, jobID string, opts ...Option) Action {
	return build(KindRemove, name, jobID, opts)
}
