package delivery

import (
	"fmt"
)

// QueueError defines the interface for delivery-queue-specific errors
type QueueError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// queueError implements the QueueError interface
type queueError struct {
	code      string
	message   string
	temporary bool
}

func (e *queueError) Error() string {
	return fmt.Sprintf("delivery error [%s]: %s", e.code, e.message)
}

func (e *queueError) Code() string {
	return e.code
}

func (e *queueError) Message() string {
	return e.message
}

func (e *queueError) Temporary() bool {
	return e.temporary
}

// Error constants
const (
	ErrQueueNotRunning     = "queue_not_running"
	ErrQueueAlreadyRunning = "queue_already_running"
	ErrInvalidConfig       = "invalid_configuration"
	ErrRepositoryFailure   = "repository_failure"
	ErrExecutionFailed     = "execution_failed"
)

// RepositoryError wraps persistence failures
type RepositoryError struct {
	queueError
	Operation string
	Cause     error
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// ExecutionError wraps a failed send attempt for a specific job
type ExecutionError struct {
	queueError
	JobID string
	Cause error
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Constructor functions
func NewQueueError(code, message string) error {
	return &queueError{
		code:      code,
		message:   message,
		temporary: false,
	}
}

func NewConfigurationError(field string, value interface{}, message string) error {
	return &queueError{
		code:      ErrInvalidConfig,
		message:   fmt.Sprintf("invalid configuration for field %s (value: %v): %s", field, value, message),
		temporary: false,
	}
}

func WrapRepositoryError(err error, operation string) error {
	return &RepositoryError{
		queueError: queueError{
			code:      ErrRepositoryFailure,
			message:   fmt.Sprintf("repository failure during %s: %v", operation, err),
			temporary: true,
		},
		Operation: operation,
		Cause:     err,
	}
}

func NewExecutionError(jobID string, err error) error {
	return &ExecutionError{
		queueError: queueError{
			code:      ErrExecutionFailed,
			message:   fmt.Sprintf("failed to execute delivery job %s: %v", jobID, err),
			temporary: true,
		},
		JobID: jobID,
		Cause: err,
	}
}
