package common

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID represents a unique identifier
type ID string

// NewID generates a new unique identifier
func NewID() ID {
	return ID(uuid.New().String())
}

// IsValid checks if the ID is a valid UUID
func (id ID) IsValid() bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}

// String returns the string representation of the ID
func (id ID) String() string {
	return string(id)
}

// MarshalJSON implements json.Marshaler
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

// JobID identifies a queued delivery job
type JobID ID

// NewJobID generates a new delivery job identifier
func NewJobID() JobID {
	return JobID(NewID())
}

// DeliveryStatus represents the lifecycle state of a delivery job
type DeliveryStatus string

const (
	DeliveryStatusQueued  DeliveryStatus = "queued"
	DeliveryStatusSending DeliveryStatus = "sending"
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusFailed  DeliveryStatus = "failed"
)

// String returns the string representation of DeliveryStatus
func (ds DeliveryStatus) String() string {
	return string(ds)
}

// IsValid checks if the DeliveryStatus is valid
func (ds DeliveryStatus) IsValid() bool {
	switch ds {
	case DeliveryStatusQueued, DeliveryStatusSending, DeliveryStatusSent, DeliveryStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status admits no further transitions
func (ds DeliveryStatus) IsTerminal() bool {
	return ds == DeliveryStatusSent || ds == DeliveryStatusFailed
}

// Common error types
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}

type InternalError struct {
	Message string
	Cause   error
}

func (e InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e InternalError) Unwrap() error {
	return e.Cause
}
