package reducer

import (
	"encoding/json"
	"slices"

	"github.com/xraph/asyncjobs/job"
)

// State is an immutable mapping of job ID to job record. The zero value is
// the empty state. Jobs iterate in the order they were first inserted.
type State struct {
	jobs  map[string]*job.Job
	order []string
}

// FromJobs builds a state holding copies of jobs, in the given order.
// A later job replaces an earlier one with the same ID.
func FromJobs(jobs ...*job.Job) State {
	var s State
	for _, j := range jobs {
		if s.Has(j.ID) {
			s = s.replace(j.Clone())
			continue
		}
		s = s.insert(j.Clone())
	}
	return s
}

// Len returns the number of tracked jobs.
func (s State) Len() int { return len(s.jobs) }

// Has reports whether a job with the ID is tracked.
func (s State) Has(jobID string) bool {
	_, ok := s.jobs[jobID]
	return ok
}

// Get returns a copy of the job with the ID.
func (s State) Get(jobID string) (*job.Job, bool) {
	j, ok := s.jobs[jobID]
	if !ok {
		return nil, false
	}
	return j.Clone(), true
}

// Jobs returns copies of all jobs in insertion order.
func (s State) Jobs() []*job.Job {
	out := make([]*job.Job, 0, len(s.order))
	for _, jobID := range s.order {
		out = append(out, s.jobs[jobID].Clone())
	}
	return out
}

// IDs returns the tracked job IDs in insertion order.
func (s State) IDs() []string {
	return slices.Clone(s.order)
}

// Range calls fn for each job in insertion order until fn returns false.
// The job passed to fn is shared with the state and must not be modified.
func (s State) Range(fn func(j *job.Job) bool) {
	for _, jobID := range s.order {
		if !fn(s.jobs[jobID]) {
			return
		}
	}
}

// MarshalJSON encodes the state as an object keyed by job ID.
func (s State) MarshalJSON() ([]byte, error) {
	m := s.jobs
	if m == nil {
		m = map[string]*job.Job{}
	}
	return json.Marshal(m)
}

func (s State) insert(j *job.Job) State {
	jobs := make(map[string]*job.Job, len(s.jobs)+1)
	for k, v := range s.jobs {
		jobs[k] = v
	}
	jobs[j.ID] = j
	return State{jobs: jobs, order: append(slices.Clip(s.order), j.ID)}
}

func (s State) replace(j *job.Job) State {
	jobs := make(map[string]*job.Job, len(s.jobs))
	for k, v := range s.jobs {
		jobs[k] = v
	}
	jobs[j.ID] = j
	return State{jobs: jobs, order: s.order}
}

func (s State) remove(jobID string) State {
	jobs := make(map[string]*job.Job, len(s.jobs))
	for k, v := range s.jobs {
		if k != jobID {
			jobs[k] = v
		}
	}
	order := make([]string, 0, len(s.order))
	for _, k := range s.order {
		if k != jobID {
			order = append(order, k)
		}
	}
	return State{jobs: jobs, order: order}
}
