package domain

import "errors"

var (
	// ErrJobNotFound is returned when a job cannot be found in the database
	ErrJobNotFound = errors.New("job not found")

	// ErrQueryNotFound is returned when a search query cannot be found
	ErrQueryNotFound = errors.New("search query not found")

	// ErrExportNotFound is returned when a job has no export record yet
	ErrExportNotFound = errors.New("export not found")

	// ErrInvalidPayload is returned when a queue message is malformed
	ErrInvalidPayload = errors.New("invalid task payload")

	// ErrUnknownTask is returned when a queue message names an unknown task
	ErrUnknownTask = errors.New("unknown task")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
