package carousel

import (
	"context"
	"errors"
	"fmt"

	"carouselbot-api/internal/chatbot"
	"carouselbot-api/internal/events"

	"go.uber.org/zap"
)

// Pager resolves pagination button presses into message edits. It is
// read-only with respect to the config's runtime state: paging through a
// broadcast never advances the schedule or the counters.
type Pager interface {
	HandleCallback(ctx context.Context, query *chatbot.CallbackQuery) error
}

// pager implements the Pager interface
type pager struct {
	configs  ConfigRepository
	renderer *Renderer
	provider chatbot.TelegramProvider
	eventBus events.EventBus
	logger   *zap.Logger
}

// NewPager creates a new callback pager
func NewPager(configs ConfigRepository, renderer *Renderer, provider chatbot.TelegramProvider, eventBus events.EventBus, logger *zap.Logger) Pager {
	return &pager{
		configs:  configs,
		renderer: renderer,
		provider: provider,
		eventBus: eventBus,
		logger:   logger,
	}
}

// HandleCallback processes one pagination button press. Every outcome,
// including the failed ones, answers the callback so the user's client stops
// showing a spinner. The indicator button only reports the current page.
// A jump outside the freshly computed page range leaves the message as is.
func (p *pager) HandleCallback(ctx context.Context, query *chatbot.CallbackQuery) error {
	data, err := ParseCallbackData(query.Data)
	if err != nil {
		p.logger.Warn("Malformed callback data",
			zap.String("data", query.Data),
			zap.Error(err))
		p.answer(ctx, query.ID, "This button is no longer valid.", false)
		return err
	}

	callLogger := p.logger.With(
		zap.String("function_name", data.FunctionName),
		zap.Int64("chat_id", query.ChatID),
		zap.Int("message_id", query.MessageID))

	if data.Action == ActionIndicator {
		p.answer(ctx, query.ID, fmt.Sprintf("You are on page %d", data.Page), false)
		return nil
	}

	config, err := p.configs.GetActiveByFunctionName(data.FunctionName)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			callLogger.Warn("Callback for missing or inactive config")
			p.answer(ctx, query.ID, "This carousel is no longer available.", false)
			return nil
		}
		p.answer(ctx, query.ID, "Something went wrong, please try again.", false)
		return err
	}

	targetPage := data.Page
	switch data.Action {
	case ActionPrev:
		targetPage--
		if targetPage < 1 {
			targetPage = 1
		}
	case ActionNext:
		targetPage++
	}

	result, err := p.renderer.Render(config, targetPage)
	if err != nil {
		callLogger.Warn("Failed to render carousel page",
			zap.Int("page", targetPage),
			zap.Error(err))
		p.answer(ctx, query.ID, "Something went wrong, please try again.", false)
		return err
	}

	// The page count is recomputed on every press, so a target that was
	// valid when the message was sent may be out of range by now.
	if targetPage < 1 || targetPage > result.TotalPages {
		if data.Action == ActionNext {
			p.answer(ctx, query.ID, "You are already on the last page.", false)
		} else {
			p.answer(ctx, query.ID, "You are already on the first page.", false)
		}
		return fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, targetPage, result.TotalPages)
	}

	opts := chatbot.SendOptions{
		ParseMode:         "Markdown",
		DisableWebPreview: true,
	}
	if err := p.provider.EditMessageWithKeyboard(ctx, query.ChatID, query.MessageID, result.Text, result.Keyboard, opts); err != nil {
		callLogger.Warn("Failed to edit carousel message",
			zap.Int("page", targetPage),
			zap.Error(err))
		p.answer(ctx, query.ID, "Something went wrong, please try again.", false)
		return err
	}

	p.answer(ctx, query.ID, "", false)

	callLogger.Debug("Carousel page jumped", zap.Int("page", targetPage))
	p.publishPageJumped(config, query.MessageID, targetPage)
	return nil
}

// answer acknowledges the callback. Failure is swallowed: the edit already
// happened (or already failed) and the spinner times out on its own.
func (p *pager) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := p.provider.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		p.logger.Warn("Failed to answer callback query",
			zap.String("callback_id", callbackID),
			zap.Error(err))
	}
}

func (p *pager) publishPageJumped(config *Config, messageID, page int) {
	event := events.PageJumped{
		Event:        events.NewEvent(),
		FunctionName: config.FunctionName,
		ChatID:       config.ChatID,
		MessageID:    messageID,
		Page:         page,
	}
	if err := p.eventBus.Publish(events.TopicPageJumped, event); err != nil {
		p.logger.Warn("Failed to publish page jumped event", zap.Error(err))
	}
}
