package action

import "github.com/xraph/asyncjobs/id"

// Set is the family of creators bound to one job name.
type Set struct {
	name  string
	newID func() string
}

// NewSet returns the creators for jobs named name.
func NewSet(name string) *Set {
	return &Set{name: name, newID: id.NewJobID}
}

// WithIDGenerator returns a copy of s that generates IDs with gen.
func (s *Set) WithIDGenerator(gen func() string) *Set {
	cp := *s
	if gen != nil {
		cp.newID = gen
	}
	return &cp
}

// Name returns the job name the set is bound to.
func (s *Set) Name() string { return s.name }

// Type returns the action type the set produces for kind.
func (s *Set) Type(kind Kind) string { return TypeOf(kind, s.name) }

// Create builds a CREATE action for the set's job name.
func (s *Set) Create(opts ...Option) Action {
	return buildWithGenerated(KindCreate, s.name, s.newID, opts)
}

// Start builds a START action for the set's job name.
func (s *Set) Start(opts ...Option) Action {
	return buildWithGenerated(KindStart, s.name, s.newID, opts)
}

// Succeed builds a SUCCEED action for the set's job name.
func (s *Set) Succeed(jobID string, opts ...Option) Action {
	return build(KindSucceed, s.name, jobID, opts)
}

// Fail builds a FAIL action for the set's job name.
func (s *Set) Fail(jobID string, opts ...Option) Action {
	return build(KindFail, s.name, jobID, opts)
}

// Cancel builds a CANCEL action for the set's job name.
func (s *Set) Cancel(jobID string, opts ...Option) Action {
	return build(KindCancel, s.name, jobID, opts)
}

// Remove builds a REMOVE action for the set's job name.
func (s *Set) Remove(jobID string, opts ...Option) Action {
	return build(KindRemove, s.name, jobID, opts)
}
