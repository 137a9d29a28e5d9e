package carousel

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to callers
var (
	// ErrConfigNotFound is returned when no config matches the lookup
	ErrConfigNotFound = errors.New("carousel config not found")
	// ErrTimerNotFound is returned when no timer matches the lookup
	ErrTimerNotFound = errors.New("carousel timer not found")
	// ErrPageOutOfRange is returned by a jump whose target page falls
	// outside the freshly computed [1, total_pages]
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrFetcherNotRegistered is returned when a config's data fetcher key
	// resolves to nothing
	ErrFetcherNotRegistered = errors.New("data fetcher not registered")
)

// CarouselError defines the interface for carousel-specific errors
type CarouselError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// carouselError implements the CarouselError interface
type carouselError struct {
	code      string
	message   string
	temporary bool
}

func (e *carouselError) Error() string {
	return fmt.Sprintf("carousel error [%s]: %s", e.code, e.message)
}

func (e *carouselError) Code() string {
	return e.code
}

func (e *carouselError) Message() string {
	return e.message
}

func (e *carouselError) Temporary() bool {
	return e.temporary
}

// Error constants
const (
	ErrSchedulerNotRunning     = "scheduler_not_running"
	ErrSchedulerAlreadyRunning = "scheduler_already_running"
	ErrShutdownTimeout         = "shutdown_timeout"
	ErrInvalidConfiguration    = "invalid_configuration"
	ErrInvalidCallback         = "invalid_callback"
	ErrSendFailed              = "send_failed"
	ErrPersistenceFailed       = "persistence_failed"
)

// ConfigValidationError reports an invalid administrator-supplied field
type ConfigValidationError struct {
	carouselError
	Field string
	Value interface{}
}

// CallbackFormatError reports unparseable callback wire data
type CallbackFormatError struct {
	carouselError
	Data string
}

// SendError wraps a failed send step inside a fire
type SendError struct {
	carouselError
	ConfigID uint
	Cause    error
}

func (e *SendError) Unwrap() error {
	return e.Cause
}

// PersistenceError wraps a config or timer write failure. These propagate:
// silently dropping a reschedule would stop all future sends for a config.
type PersistenceError struct {
	carouselError
	Operation string
	Cause     error
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// Constructor functions
func NewSchedulerError(code, message string) error {
	return &carouselError{
		code:      code,
		message:   message,
		temporary: false,
	}
}

func NewConfigValidationError(field string, value interface{}, message string) error {
	return &ConfigValidationError{
		carouselError: carouselError{
			code:      ErrInvalidConfiguration,
			message:   fmt.Sprintf("invalid value for field %s (value: %v): %s", field, value, message),
			temporary: false,
		},
		Field: field,
		Value: value,
	}
}

func NewCallbackFormatError(data, reason string) error {
	return &CallbackFormatError{
		carouselError: carouselError{
			code:      ErrInvalidCallback,
			message:   fmt.Sprintf("malformed callback data %q: %s", data, reason),
			temporary: false,
		},
		Data: data,
	}
}

func NewSendError(configID uint, err error) error {
	return &SendError{
		carouselError: carouselError{
			code:      ErrSendFailed,
			message:   fmt.Sprintf("failed to send carousel for config %d: %v", configID, err),
			temporary: true,
		},
		ConfigID: configID,
		Cause:    err,
	}
}

func WrapPersistenceError(err error, operation string) error {
	return &PersistenceError{
		carouselError: carouselError{
			code:      ErrPersistenceFailed,
			message:   fmt.Sprintf("persistence failure during %s: %v", operation, err),
			temporary: true,
		},
		Operation: operation,
		Cause:     err,
	}
}

// NewConfigurationError reports an invalid scheduler setting
func NewConfigurationError(field string, value interface{}, message string) error {
	return &ConfigValidationError{
		carouselError: carouselError{
			code:      ErrInvalidConfiguration,
			message:   fmt.Sprintf("invalid configuration for field %s (value: %v): %s", field, value, message),
			temporary: false,
		},
		Field: field,
		Value: value,
	}
}
