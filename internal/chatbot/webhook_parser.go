package chatbot

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookParser provides utilities for parsing Telegram webhook updates
type WebhookParser struct{}

// NewWebhookParser creates a new WebhookParser instance
func NewWebhookParser() *WebhookParser {
	return &WebhookParser{}
}

// ParseUpdate unmarshals webhook data into a Telegram Update struct
func (p *WebhookParser) ParseUpdate(updateData []byte) (*tgbotapi.Update, error) {
	if len(updateData) == 0 {
		return nil, fmt.Errorf("empty update data")
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(updateData, &update); err != nil {
		return nil, fmt.Errorf("failed to unmarshal update data: %w", err)
	}

	if update.UpdateID == 0 {
		return nil, fmt.Errorf("invalid update: missing update ID")
	}

	return &update, nil
}

// ExtractCallbackQuery converts a Telegram callback query to the domain struct.
// Returns nil when the update carries no callback query.
func (p *WebhookParser) ExtractCallbackQuery(update *tgbotapi.Update) (*CallbackQuery, error) {
	if update == nil {
		return nil, fmt.Errorf("update is nil")
	}

	cq := update.CallbackQuery
	if cq == nil {
		return nil, nil
	}

	if cq.Message == nil || cq.Message.Chat == nil {
		return nil, WebhookParsingError{
			UpdateType: "callback_query",
			Details:    "callback query has no originating message",
		}
	}

	query := &CallbackQuery{
		ID:        cq.ID,
		ChatID:    cq.Message.Chat.ID,
		MessageID: cq.Message.MessageID,
		Data:      cq.Data,
	}
	if cq.From != nil {
		query.UserID = cq.From.ID
	}

	return query, nil
}
