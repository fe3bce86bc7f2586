package job

import (
	"fmt"
	"maps"
	"strings"
)

// Status represents the lifecycle status of a job.
type Status string

const (
	// StatusCreated means the job has been made but the work has not started.
	StatusCreated Status = "CREATED"
	// StatusPending means the work has started and is awaiting its result.
	StatusPending Status = "PENDING"
	// StatusSuccess means the work finished successfully.
	StatusSuccess Status = "SUCCESS"
	// StatusFailure means the work failed.
	StatusFailure Status = "FAILURE"
	// StatusCancelled means the job was marked cancelled.
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusCreated, StatusPending, StatusSuccess, StatusFailure, StatusCancelled}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusPending, StatusSuccess, StatusFailure, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s ends the lifecycle of a run.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailure || s == StatusCancelled
}

// ParseStatus parses a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("job: unknown status %q", s)
	}
	return st, nil
}

// Timestamps records the epoch-millisecond time at which each status was entered.
type Timestamps map[Status]int64

// Job is the metadata tracked for one asynchronous operation.
type Job struct {
	ID     string `json:"id" msgpack:"id"`
	Name   string `json:"name" msgpack:"name"`
	Status Status `json:"status" msgpack:"status"`

	// Error holds the failure message set by a FAIL action.
	Error string `json:"error,omitempty" msgpack:"error,omitempty"`
	// Err is the failure value as dispatched, when it was a Go error.
	Err error `json:"-" msgpack:"-"`

	Timestamps Timestamps `json:"timestamp" msgpack:"timestamp"`
}

// Timestamp returns the time at which the job entered status s.
func (j *Job) Timestamp(s Status) (int64, bool) {
	ts, ok := j.Timestamps[s]
	return ts, ok
}

// IsTerminal reports whether the job's current status is terminal.
func (j *Job) IsTerminal() bool { return j.Status.IsTerminal() }

// Clone returns a deep copy of j.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	cp.Timestamps = maps.Clone(j.Timestamps)
	if cp.Timestamps == nil {
		cp.Timestamps = Timestamps{}
	}
	return &cp
}
