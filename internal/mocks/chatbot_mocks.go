package mocks

import (
	"context"
	"sync"
	"time"

	"carouselbot-api/internal/chatbot"
)

// MockTelegramProvider implements the TelegramProvider interface for testing
type MockTelegramProvider struct {
	mutex              sync.RWMutex
	sentMessages       []MockMessage
	editedMessages     []MockEdit
	deletedMessages    []MockDeletion
	pinnedMessages     []MockPin
	answeredCallbacks  []MockCallbackAnswer
	webhookURL         string
	nextMessageID      int
	sendMessageError   error
	editMessageError   error
	deleteMessageError error
	pinMessageError    error
	answerError        error
	setWebhookError    error
	callCounts         map[string]int
}

// MockMessage represents a sent message for testing verification
type MockMessage struct {
	ChatID    int64
	Text      string
	Keyboard  chatbot.InlineKeyboard
	Opts      chatbot.SendOptions
	MessageID int
	Timestamp time.Time
}

// MockEdit represents an edited message
type MockEdit struct {
	ChatID    int64
	MessageID int
	Text      string
	Keyboard  chatbot.InlineKeyboard
	Opts      chatbot.SendOptions
}

// MockDeletion represents a deleted message
type MockDeletion struct {
	ChatID    int64
	MessageID int
}

// MockPin represents a pinned message
type MockPin struct {
	ChatID    int64
	MessageID int
}

// MockCallbackAnswer represents an answered callback query
type MockCallbackAnswer struct {
	CallbackID string
	Text       string
	Alert      bool
}

// NewMockTelegramProvider creates a new mock Telegram provider
func NewMockTelegramProvider() *MockTelegramProvider {
	return &MockTelegramProvider{
		nextMessageID: 1,
		callCounts:    make(map[string]int),
	}
}

// SendMessage implements the TelegramProvider interface
func (m *MockTelegramProvider) SendMessage(ctx context.Context, chatID int64, text string, opts chatbot.SendOptions) (int, error) {
	return m.send(chatID, text, chatbot.InlineKeyboard{}, opts, "SendMessage")
}

// SendMessageWithKeyboard implements the TelegramProvider interface
func (m *MockTelegramProvider) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard chatbot.InlineKeyboard, opts chatbot.SendOptions) (int, error) {
	return m.send(chatID, text, keyboard, opts, "SendMessageWithKeyboard")
}

func (m *MockTelegramProvider) send(chatID int64, text string, keyboard chatbot.InlineKeyboard, opts chatbot.SendOptions, method string) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts[method]++

	if m.sendMessageError != nil {
		return 0, m.sendMessageError
	}

	messageID := m.nextMessageID
	m.nextMessageID++

	m.sentMessages = append(m.sentMessages, MockMessage{
		ChatID:    chatID,
		Text:      text,
		Keyboard:  keyboard,
		Opts:      opts,
		MessageID: messageID,
		Timestamp: time.Now(),
	})
	return messageID, nil
}

// DeleteMessage implements the TelegramProvider interface
func (m *MockTelegramProvider) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts["DeleteMessage"]++

	if m.deleteMessageError != nil {
		return m.deleteMessageError
	}

	m.deletedMessages = append(m.deletedMessages, MockDeletion{ChatID: chatID, MessageID: messageID})
	return nil
}

// PinMessage implements the TelegramProvider interface
func (m *MockTelegramProvider) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts["PinMessage"]++

	if m.pinMessageError != nil {
		return m.pinMessageError
	}

	m.pinnedMessages = append(m.pinnedMessages, MockPin{ChatID: chatID, MessageID: messageID})
	return nil
}

// EditMessageWithKeyboard implements the TelegramProvider interface
func (m *MockTelegramProvider) EditMessageWithKeyboard(ctx context.Context, chatID int64, messageID int, text string, keyboard chatbot.InlineKeyboard, opts chatbot.SendOptions) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts["EditMessageWithKeyboard"]++

	if m.editMessageError != nil {
		return m.editMessageError
	}

	m.editedMessages = append(m.editedMessages, MockEdit{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		Keyboard:  keyboard,
		Opts:      opts,
	})
	return nil
}

// AnswerCallback implements the TelegramProvider interface
func (m *MockTelegramProvider) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts["AnswerCallback"]++

	if m.answerError != nil {
		return m.answerError
	}

	m.answeredCallbacks = append(m.answeredCallbacks, MockCallbackAnswer{
		CallbackID: callbackID,
		Text:       text,
		Alert:      alert,
	})
	return nil
}

// SetWebhook implements the TelegramProvider interface
func (m *MockTelegramProvider) SetWebhook(webhookURL string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts["SetWebhook"]++

	if m.setWebhookError != nil {
		return m.setWebhookError
	}

	m.webhookURL = webhookURL
	return nil
}

// Test helper methods

// SetSendMessageError configures the mock to return an error on sends
func (m *MockTelegramProvider) SetSendMessageError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sendMessageError = err
}

// SetEditMessageError configures the mock to return an error on edits
func (m *MockTelegramProvider) SetEditMessageError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.editMessageError = err
}

// SetDeleteMessageError configures the mock to return an error on deletions
func (m *MockTelegramProvider) SetDeleteMessageError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.deleteMessageError = err
}

// SetPinMessageError configures the mock to return an error on pins
func (m *MockTelegramProvider) SetPinMessageError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.pinMessageError = err
}

// GetSentMessages returns a copy of all sent messages
func (m *MockTelegramProvider) GetSentMessages() []MockMessage {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	messages := make([]MockMessage, len(m.sentMessages))
	copy(messages, m.sentMessages)
	return messages
}

// GetEditedMessages returns a copy of all edited messages
func (m *MockTelegramProvider) GetEditedMessages() []MockEdit {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	edits := make([]MockEdit, len(m.editedMessages))
	copy(edits, m.editedMessages)
	return edits
}

// GetDeletedMessages returns a copy of all deleted messages
func (m *MockTelegramProvider) GetDeletedMessages() []MockDeletion {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	deletions := make([]MockDeletion, len(m.deletedMessages))
	copy(deletions, m.deletedMessages)
	return deletions
}

// GetPinnedMessages returns a copy of all pinned messages
func (m *MockTelegramProvider) GetPinnedMessages() []MockPin {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	pins := make([]MockPin, len(m.pinnedMessages))
	copy(pins, m.pinnedMessages)
	return pins
}

// GetAnsweredCallbacks returns a copy of all answered callback queries
func (m *MockTelegramProvider) GetAnsweredCallbacks() []MockCallbackAnswer {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	answers := make([]MockCallbackAnswer, len(m.answeredCallbacks))
	copy(answers, m.answeredCallbacks)
	return answers
}

// GetCallCount returns the number of calls to the given method
func (m *MockTelegramProvider) GetCallCount(method string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.callCounts[method]
}

// GetWebhookURL returns the configured webhook URL
func (m *MockTelegramProvider) GetWebhookURL() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.webhookURL
}
