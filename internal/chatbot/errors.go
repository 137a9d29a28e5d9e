package chatbot

import (
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatbotError defines the interface for chatbot-specific errors
type ChatbotError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// TelegramAPIError represents errors from the Telegram Bot API
type TelegramAPIError struct {
	Operation   string
	StatusCode  int
	Description string
	RetryAfter  int
	Cause       error
}

func (e TelegramAPIError) Error() string {
	return fmt.Sprintf("telegram API error during %s: %s (status: %d)", e.Operation, e.Description, e.StatusCode)
}

func (e TelegramAPIError) Code() string {
	return "TELEGRAM_API_ERROR"
}

func (e TelegramAPIError) Message() string {
	return e.Description
}

func (e TelegramAPIError) Temporary() bool {
	// Rate limiting and server errors are temporary
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError ||
		e.RetryAfter > 0
}

func (e TelegramAPIError) Unwrap() error {
	return e.Cause
}

// WrapTelegramError converts a telegram-bot-api error into a TelegramAPIError,
// preserving the API status code and retry-after hint when present
func WrapTelegramError(err error, operation string) error {
	if err == nil {
		return nil
	}

	apiErr := TelegramAPIError{
		Operation:   operation,
		Description: err.Error(),
		Cause:       err,
	}

	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		apiErr.StatusCode = tgErr.Code
		apiErr.Description = tgErr.Message
		apiErr.RetryAfter = tgErr.RetryAfter
	}

	return apiErr
}

// WebhookParsingError represents errors when parsing webhook data
type WebhookParsingError struct {
	UpdateType string
	Details    string
	Cause      error
}

func (e WebhookParsingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("webhook parsing error for %s: %s (caused by: %v)", e.UpdateType, e.Details, e.Cause)
	}
	return fmt.Sprintf("webhook parsing error for %s: %s", e.UpdateType, e.Details)
}

func (e WebhookParsingError) Code() string {
	return "WEBHOOK_PARSING_ERROR"
}

func (e WebhookParsingError) Message() string {
	return e.Details
}

func (e WebhookParsingError) Temporary() bool {
	return false
}

func (e WebhookParsingError) Unwrap() error {
	return e.Cause
}

// WrapParsingError creates a WebhookParsingError for the given update type
func WrapParsingError(err error, updateType string) error {
	return WebhookParsingError{
		UpdateType: updateType,
		Details:    "failed to parse update",
		Cause:      err,
	}
}
