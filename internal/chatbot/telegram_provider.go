package chatbot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"carouselbot-api/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// telegramProvider implements the TelegramProvider interface using the telegram-bot-api library
type telegramProvider struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
	config config.ChatbotConfig
}

// NewTelegramProvider creates a new TelegramProvider instance
func NewTelegramProvider(cfg config.ChatbotConfig, logger *zap.Logger) (TelegramProvider, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	// The library does not take a context per call, so the HTTP client
	// timeout is what bounds each network operation.
	client := &http.Client{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	// Validate bot by getting bot info
	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("failed to validate bot token: %w", err)
	}

	logger.Info("Telegram bot initialized successfully", zap.String("username", bot.Self.UserName))

	return &telegramProvider{
		bot:    bot,
		logger: logger,
		config: cfg,
	}, nil
}

// SendMessage sends a plain text message to the specified chat
func (p *telegramProvider) SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.logger.Debug("Sending message",
		zap.Int64("chat_id", chatID),
		zap.Int("text_length", len(text)))

	msg := tgbotapi.NewMessage(chatID, text)
	applySendOptions(&msg, opts)

	sent, err := p.bot.Send(msg)
	if err != nil {
		p.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return 0, WrapTelegramError(err, "send_message")
	}

	p.logger.Debug("Message sent successfully",
		zap.Int64("chat_id", chatID),
		zap.Int("message_id", sent.MessageID))

	return sent.MessageID, nil
}

// SendMessageWithKeyboard sends a message with an inline keyboard
func (p *telegramProvider) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard InlineKeyboard, opts SendOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.logger.Debug("Sending message with keyboard",
		zap.Int64("chat_id", chatID),
		zap.Int("text_length", len(text)),
		zap.Int("keyboard_rows", len(keyboard.Buttons)))

	msg := tgbotapi.NewMessage(chatID, text)
	applySendOptions(&msg, opts)
	msg.ReplyMarkup = toMarkup(keyboard)

	sent, err := p.bot.Send(msg)
	if err != nil {
		p.logger.Error("Failed to send message with keyboard",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return 0, WrapTelegramError(err, "send_message_with_keyboard")
	}

	p.logger.Debug("Message with keyboard sent successfully",
		zap.Int64("chat_id", chatID),
		zap.Int("message_id", sent.MessageID))

	return sent.MessageID, nil
}

// DeleteMessage deletes a previously sent message
func (p *telegramProvider) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.logger.Debug("Deleting message",
		zap.Int64("chat_id", chatID),
		zap.Int("message_id", messageID))

	if _, err := p.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return WrapTelegramError(err, "delete_message")
	}

	return nil
}

// PinMessage pins a message in the chat
func (p *telegramProvider) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.logger.Debug("Pinning message",
		zap.Int64("chat_id", chatID),
		zap.Int("message_id", messageID))

	pin := tgbotapi.PinChatMessageConfig{
		ChatID:              chatID,
		MessageID:           messageID,
		DisableNotification: true,
	}

	if _, err := p.bot.Request(pin); err != nil {
		return WrapTelegramError(err, "pin_message")
	}

	return nil
}

// EditMessageWithKeyboard replaces the text and keyboard of an existing message
func (p *telegramProvider) EditMessageWithKeyboard(ctx context.Context, chatID int64, messageID int, text string, keyboard InlineKeyboard, opts SendOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.logger.Debug("Editing message",
		zap.Int64("chat_id", chatID),
		zap.Int("message_id", messageID))

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, toMarkup(keyboard))
	edit.ParseMode = opts.ParseMode
	edit.DisableWebPagePreview = opts.DisableWebPreview

	if _, err := p.bot.Request(edit); err != nil {
		p.logger.Error("Failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
		return WrapTelegramError(err, "edit_message")
	}

	return nil
}

// AnswerCallback responds to a callback query with a transient notice
func (p *telegramProvider) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	answer := tgbotapi.NewCallback(callbackID, text)
	answer.ShowAlert = alert

	if _, err := p.bot.Request(answer); err != nil {
		return WrapTelegramError(err, "answer_callback")
	}

	return nil
}

// SetWebhook configures the webhook URL for receiving updates
func (p *telegramProvider) SetWebhook(webhookURL string) error {
	p.logger.Info("Setting webhook", zap.String("webhook_url", webhookURL))

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("failed to create webhook config: %w", err)
	}

	if _, err := p.bot.Request(webhookConfig); err != nil {
		p.logger.Error("Failed to set webhook",
			zap.String("webhook_url", webhookURL),
			zap.Error(err))
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	p.logger.Info("Webhook set successfully", zap.String("webhook_url", webhookURL))
	return nil
}

// applySendOptions copies formatting flags onto an outgoing message config
func applySendOptions(msg *tgbotapi.MessageConfig, opts SendOptions) {
	if opts.ParseMode != "" {
		msg.ParseMode = opts.ParseMode
	}
	msg.DisableWebPagePreview = opts.DisableWebPreview
}

// toMarkup converts the domain keyboard to the telegram-bot-api format
func toMarkup(keyboard InlineKeyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard.Buttons))

	for _, buttonRow := range keyboard.Buttons {
		var tgRow []tgbotapi.InlineKeyboardButton
		for _, button := range buttonRow {
			if button.URL != "" {
				tgRow = append(tgRow, tgbotapi.NewInlineKeyboardButtonURL(button.Text, button.URL))
			} else {
				tgRow = append(tgRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
			}
		}
		rows = append(rows, tgRow)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
