package asyncjobs

import "errors"

var (
	// Transition errors.
	ErrJobExists   = errors.New("asyncjobs: job already exists")
	ErrJobNotFound = errors.New("asyncjobs: job not found")

	// Action errors.
	ErrInvalidAction = errors.New("asyncjobs: invalid action")
	ErrMissingID     = errors.New("asyncjobs: action requires a job id")
	ErrMissingName   = errors.New("asyncjobs: action requires a job name")

	// Tracker errors.
	ErrClosed        = errors.New("asyncjobs: tracker closed")
	ErrInvalidPrefix = errors.New("asyncjobs: invalid id prefix")

	// Codec errors.
	ErrUnknownCodec = errors.New("asyncjobs: unknown codec")
)
