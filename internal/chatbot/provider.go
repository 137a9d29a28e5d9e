package chatbot

import (
	"context"
)

// SendOptions carries the formatting flags of an outgoing message
type SendOptions struct {
	ParseMode         string
	DisableWebPreview bool
}

// TelegramProvider defines the contract for Telegram API operations.
// All calls are bounded by the supplied context; a hung network call must
// not occupy a caller indefinitely.
type TelegramProvider interface {
	// SendMessage sends a text message and returns the new message id
	SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) (int, error)

	// SendMessageWithKeyboard sends a message with an inline keyboard and
	// returns the new message id
	SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard InlineKeyboard, opts SendOptions) (int, error)

	// DeleteMessage deletes a previously sent message
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// PinMessage pins a message in the chat
	PinMessage(ctx context.Context, chatID int64, messageID int) error

	// EditMessageWithKeyboard replaces the text and keyboard of an existing message
	EditMessageWithKeyboard(ctx context.Context, chatID int64, messageID int, text string, keyboard InlineKeyboard, opts SendOptions) error

	// AnswerCallback responds to a callback query with a transient notice.
	// When alert is true the notice is shown as a dialog instead of a toast.
	AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error

	// SetWebhook configures the webhook URL for receiving updates
	SetWebhook(webhookURL string) error
}
