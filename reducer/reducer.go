package reducer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/asyncjobs/action"
	"github.com/xraph/asyncjobs/job"
	"github.com/xraph/asyncjobs/report"
)

// Apply folds a into s at time now (epoch milliseconds). An action that
// carries its own time (a.At) is applied at that time instead.
//
// Foreign actions return s unchanged and a nil error. Lifecycle actions
// that cannot be applied return s unchanged and a *report.Violation.
func Apply(s State, a action.Action, now int64) (State, error) {
	kind, _, ok := action.ParseType(a.Type)
	if !ok {
		return s, nil
	}
	if err := action.Validate(a); err != nil {
		return s, report.Malformed(a, err)
	}

	if a.At != 0 {
		now = a.At
	}
	current, exists := s.jobs[a.ID]

	switch kind {
	case action.KindCreate:
		if exists {
			return s, report.New(report.CodeJobExistsOnCreate, a)
		}
		return s.insert(&job.Job{
			ID:         a.ID,
			Name:       a.Name,
			Status:     job.StatusCreated,
			Timestamps: job.Timestamps{job.StatusCreated: now},
		}), nil

	case action.KindStart:
		if !exists {
			return s.insert(&job.Job{
				ID:         a.ID,
				Name:       a.Name,
				Status:     job.StatusPending,
				Timestamps: job.Timestamps{job.StatusPending: now},
			}), nil
		}
		return s.replace(transition(current, job.StatusPending, now)), nil

	case action.KindSucceed:
		if !exists {
			return s, report.New(report.CodeJobDoesNotExistError, a)
		}
		return s.replace(transition(current, job.StatusSuccess, now)), nil

	case action.KindFail:
		if !exists {
			return s, report.New(report.CodeJobDoesNotExistError, a)
		}
		next := transition(current, job.StatusFailure, now)
		next.Error, next.Err = failure(a.Payload)
		return s.replace(next), nil

	case action.KindCancel:
		if !exists {
			return s, report.New(report.CodeJobDoesNotExistWarning, a)
		}
		return s.replace(transition(current, job.StatusCancelled, now)), nil

	case action.KindRemove:
		if !exists {
			return s, report.New(report.CodeJobDoesNotExistWarning, a)
		}
		return s.remove(a.ID), nil
	}

	return s, nil
}

func transition(current *job.Job, status job.Status, now int64) *job.Job {
	next := current.Clone()
	next.Status = status
	next.Timestamps[status] = now
	return next
}

// failure derives the job error from a FAIL payload.
func failure(payload any) (string, error) {
	switch p := payload.(type) {
	case nil:
		return "", nil
	case error:
		// fmt recovers from nil-receiver panics in Error and String.
		return fmt.Sprint(p), p
	case string:
		return p, nil
	case json.RawMessage:
		var msg string
		if err := json.Unmarshal(p, &msg); err == nil {
			return msg, nil
		}
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(p, &obj); err == nil && obj.Message != "" {
			return obj.Message, nil
		}
		return string(p), nil
	default:
		return fmt.Sprint(p), nil
	}
}

// Reducer applies actions using a clock and reports violations.
type Reducer struct {
	clock    func() time.Time
	reporter report.Reporter
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithClock sets the time source used for transition timestamps.
func WithClock(clock func() time.Time) Option {
	return func(r *Reducer) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithReporter sets the reporter that receives violations.
func WithReporter(rep report.Reporter) Option {
	return func(r *Reducer) {
		if rep != nil {
			r.reporter = rep
		}
	}
}

// New returns a Reducer. By default it uses time.Now and reports to
// slog.Default.
func New(opts ...Option) *Reducer {
	r := &Reducer{
		clock:    time.Now,
		reporter: report.NewSlogReporter(slog.Default()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reduce returns the state after a. Violations are reported, never returned.
func (r *Reducer) Reduce(s State, a action.Action) State {
	next, _ := r.Step(s, a)
	return next
}

// Step is Reduce that also returns the violation, if any.
func (r *Reducer) Step(s State, a action.Action) (State, error) {
	next, err := Apply(s, a, r.clock().UnixMilli())
	if v, ok := report.As(err); ok {
		r.reporter.Report(v)
	}
	return next, err
}

// Fold reduces every action in order starting from s.
func (r *Reducer) Fold(s State, actions ...action.Action) State {
	for _, a := range actions {
		s = r.Reduce(s, a)
	}
	return s
}
