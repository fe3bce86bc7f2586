// Package report describes and delivers invalid lifecycle transitions.
//
// The reducer never fails: an action that cannot be applied (creating a job
// that exists, finishing one that does not) leaves the state untouched and
// is handed to a [Reporter] as a [Violation].
package report

import (
	"errors"
	"fmt"

	"github.com/xraph/asyncjobs"
	"github.com/xraph/asyncjobs/action"
)

// Code identifies the kind of invalid transition.
type Code int

const (
	// CodeJobExistsOnCreate: CREATE for an ID that is already tracked.
	CodeJobExistsOnCreate Code = 0
	// CodeJobDoesNotExistError: SUCCEED or FAIL for an unknown ID.
	CodeJobDoesNotExistError Code = 1
	// CodeJobDoesNotExistWarning: CANCEL or REMOVE for an unknown ID.
	CodeJobDoesNotExistWarning Code = 2
	// CodeMalformedAction: a lifecycle action without an ID or name.
	CodeMalformedAction Code = 3
)

// Level is the severity a violation is reported at.
type Level string

const (
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Level returns the severity for the code.
func (c Code) Level() Level {
	if c == CodeJobDoesNotExistWarning {
		return LevelWarn
	}
	return LevelError
}

// Violation is an action the reducer refused to apply.
type Violation struct {
	Code   Code
	Action action.Action
	Err    error
}

// Error implements error.
func (v *Violation) Error() string {
	return v.Message()
}

// Unwrap exposes the sentinel error.
func (v *Violation) Unwrap() error { return v.Err }

// Level returns the severity of the violation.
func (v *Violation) Level() Level { return v.Code.Level() }

// Message renders the human-readable description of the violation.
func (v *Violation) Message() string {
	switch v.Code {
	case CodeJobExistsOnCreate:
		return fmt.Sprintf("%s will not have any effect: job with id %s has already been created", v.Action.Type, v.Action.ID)
	case CodeJobDoesNotExistError, CodeJobDoesNotExistWarning:
		return fmt.Sprintf("%s will not have any effect because job with id %s does not exist", v.Action.Type, v.Action.ID)
	default:
		return fmt.Sprintf("%s will not have any effect: %v", v.Action.Type, v.Err)
	}
}

// New builds the violation for code and action.
func New(code Code, a action.Action) *Violation {
	var err error
	switch code {
	case CodeJobExistsOnCreate:
		err = asyncjobs.ErrJobExists
	case CodeJobDoesNotExistError, CodeJobDoesNotExistWarning:
		err = asyncjobs.ErrJobNotFound
	default:
		err = asyncjobs.ErrInvalidAction
	}
	return &Violation{Code: code, Action: a, Err: err}
}

// Malformed wraps a validation error for a lifecycle action.
func Malformed(a action.Action, err error) *Violation {
	return &Violation{Code: CodeMalformedAction, Action: a, Err: err}
}

// As extracts a Violation from err.
func As(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Reporter receives violations.
type Reporter interface {
	Report(v *Violation)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(v *Violation)

// Report implements Reporter.
func (f ReporterFunc) Report(v *Violation) { f(v) }

// Nop discards every violation.
var Nop Reporter = ReporterFunc(func(*Violation) {})

// Multi fans a violation out to several reporters in order.
func Multi(reporters ...Reporter) Reporter {
	return ReporterFunc(func(v *Violation) {
		for _, r := range reporters {
			r.Report(v)
		}
	})
}
