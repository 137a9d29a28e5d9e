package events

import (
	"time"

	"github.com/google/uuid"
)

// Event represents the base event structure with common fields
type Event struct {
	CorrelationID string    `json:"correlation_id" validate:"required"`
	Timestamp     time.Time `json:"timestamp" validate:"required"`
}

// NewEvent creates a new base event with generated correlation ID
func NewEvent() Event {
	return Event{
		CorrelationID: uuid.New().String(),
		Timestamp:     time.Now(),
	}
}

// CarouselSent represents an event when a scheduled carousel fire succeeded
type CarouselSent struct {
	Event
	ConfigID     uint   `json:"config_id" validate:"required"`
	FunctionName string `json:"function_name" validate:"required"`
	ChatID       int64  `json:"chat_id" validate:"required"`
	MessageID    int    `json:"message_id" validate:"required"`
	TotalSent    int    `json:"total_sent" validate:"required"`
}

// CarouselSendFailed represents an event when a scheduled carousel fire failed
// and was rescheduled with backoff
type CarouselSendFailed struct {
	Event
	ConfigID     uint      `json:"config_id" validate:"required"`
	FunctionName string    `json:"function_name" validate:"required"`
	ChatID       int64     `json:"chat_id" validate:"required"`
	Error        string    `json:"error" validate:"required"`
	RetryAt      time.Time `json:"retry_at" validate:"required"`
}

// MessageDelivered represents an event when a queued delivery job completed
type MessageDelivered struct {
	Event
	JobID     string `json:"job_id" validate:"required"`
	ChatID    int64  `json:"chat_id" validate:"required"`
	MessageID int    `json:"message_id" validate:"required"`
	Attempts  int    `json:"attempts" validate:"required"`
}

// MessageDeliveryFailed represents an event when a queued delivery job
// exhausted its attempts
type MessageDeliveryFailed struct {
	Event
	JobID    string `json:"job_id" validate:"required"`
	ChatID   int64  `json:"chat_id" validate:"required"`
	Error    string `json:"error" validate:"required"`
	Attempts int    `json:"attempts" validate:"required"`
}

// PageJumped represents an event when a user navigated a carousel message
type PageJumped struct {
	Event
	FunctionName string `json:"function_name" validate:"required"`
	ChatID       int64  `json:"chat_id" validate:"required"`
	MessageID    int    `json:"message_id" validate:"required"`
	Page         int    `json:"page" validate:"required"`
}

// Event topics constants
const (
	TopicCarouselSent          = "carousel.sent"
	TopicCarouselSendFailed    = "carousel.send_failed"
	TopicMessageDelivered      = "message.delivered"
	TopicMessageDeliveryFailed = "message.delivery_failed"
	TopicPageJumped            = "carousel.page_jumped"
)
