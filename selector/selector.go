// Package selector provides read-only queries over a reducer.State.
package selector

import (
	"github.com/xraph/asyncjobs/job"
	"github.com/xraph/asyncjobs/reducer"
)

// Options selects among jobs sharing a name.
type Options struct {
	// Name is the job name to match.
	Name string

	// CompareStatus is the status whose timestamp is compared.
	// Defaults to job.StatusPending, the time the work started.
	CompareStatus job.Status

	// AnyStatus also considers jobs whose current status differs from
	// CompareStatus, as long as they entered it at some point. By default
	// only jobs currently in CompareStatus are candidates.
	AnyStatus bool
}

func (o Options) compareStatus() job.Status {
	if o.CompareStatus == "" {
		return job.StatusPending
	}
	return o.CompareStatus
}

// ByID returns a copy of the job with the given ID.
func ByID(s reducer.State, jobID string) (*job.Job, bool) {
	return s.Get(jobID)
}

// Latest returns the job named opts.Name that entered opts.CompareStatus
// most recently. Among equal timestamps the job inserted last wins.
func Latest(s reducer.State, opts Options) (*job.Job, bool) {
	return pick(s, opts, func(candidate, best int64) bool { return candidate >= best })
}

// Earliest returns the job named opts.Name that entered opts.CompareStatus
// first. Among equal timestamps the job inserted last wins.
func Earliest(s reducer.State, opts Options) (*job.Job, bool) {
	return pick(s, opts, func(candidate, best int64) bool { return candidate <= best })
}

func pick(s reducer.State, opts Options, better func(candidate, best int64) bool) (*job.Job, bool) {
	status := opts.compareStatus()

	var (
		best   *job.Job
		bestTS int64
	)
	s.Range(func(j *job.Job) bool {
		if j.Name != opts.Name {
			return true
		}
		if !opts.AnyStatus && j.Status != status {
			return true
		}
		ts, ok := j.Timestamp(status)
		if !ok {
			return true
		}
		if best == nil || better(ts, bestTS) {
			best, bestTS = j, ts
		}
		return true
	})

	if best == nil {
		return nil, false
	}
	return best.Clone(), true
}

// ByName returns copies of every job with the given name, in insertion order.
func ByName(s reducer.State, name string) []*job.Job {
	var out []*job.Job
	s.Range(func(j *job.Job) bool {
		if j.Name == name {
			out = append(out, j.Clone())
		}
		return true
	})
	return out
}

// CountByStatus counts jobs per current status. A non-empty name restricts
// the count to jobs with that name.
func CountByStatus(s reducer.State, name string) map[job.Status]int {
	counts := make(map[job.Status]int, len(job.Statuses))
	s.Range(func(j *job.Job) bool {
		if name == "" || j.Name == name {
			counts[j.Status]++
		}
		return true
	})
	return counts
}
