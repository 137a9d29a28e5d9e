package carousel

import (
	"fmt"

	"carouselbot-api/internal/chatbot"
)

// EmptyPageText is shown when a data source reports no content
const EmptyPageText = "No items to display."

// RenderResult is the ephemeral outcome of rendering one page. It is never
// persisted; both the scheduler and the pager recompute it on every call.
type RenderResult struct {
	Text       string
	TotalPages int
	Keyboard   chatbot.InlineKeyboard
}

// Renderer turns (config, page) into displayable content. It is free of
// side effects: all state lives in the data sources behind the registry.
type Renderer struct {
	registry *Registry
}

// NewRenderer creates a renderer backed by the given fetcher registry
func NewRenderer(registry *Registry) *Renderer {
	return &Renderer{registry: registry}
}

// Render fetches one page of content for the config and builds the
// navigation keyboard. A data source reporting no pages still yields a
// valid single-page result. Fetcher lookup failures are configuration
// errors; fetch failures are transient and surface to the caller.
func (r *Renderer) Render(config *Config, page int) (*RenderResult, error) {
	fetcher, err := r.registry.Resolve(config.DataFetcher)
	if err != nil {
		return nil, err
	}

	text, totalPages, err := fetcher(page, config.PageSize, config)
	if err != nil {
		return nil, NewSendError(config.ID, fmt.Errorf("data fetcher %q: %w", config.DataFetcher, err))
	}

	if totalPages < 1 {
		totalPages = 1
	}
	if text == "" {
		text = EmptyPageText
	}

	keyboard := BuildKeyboard(config.FunctionName, totalPages, page)

	// Static button rows configured on the carousel sit below the
	// navigation row on every page
	extra, err := config.ExtraKeyboard()
	if err != nil {
		return nil, NewConfigValidationError("buttons_json", config.ButtonsJSON, "must be a valid inline keyboard")
	}
	keyboard.Buttons = append(keyboard.Buttons, extra.Buttons...)

	return &RenderResult{
		Text:       text,
		TotalPages: totalPages,
		Keyboard:   keyboard,
	}, nil
}

// BuildKeyboard builds the single-row navigation keyboard: a prev button
// when not on the first page, a non-interactive page indicator always, and
// a next button when not on the last page. The callback data encodes the
// config's function name and the current page so a press can be resolved
// without server-side session state.
func BuildKeyboard(functionName string, totalPages, currentPage int) chatbot.InlineKeyboard {
	var row []chatbot.InlineKeyboardButton

	if currentPage > 1 {
		row = append(row, chatbot.InlineKeyboardButton{
			Text:         "⬅️ Prev",
			CallbackData: EncodeCallbackData(functionName, ActionPrev, currentPage),
		})
	}

	row = append(row, chatbot.InlineKeyboardButton{
		Text:         fmt.Sprintf("%d/%d", currentPage, totalPages),
		CallbackData: EncodeCallbackData(functionName, ActionIndicator, currentPage),
	})

	if currentPage < totalPages {
		row = append(row, chatbot.InlineKeyboardButton{
			Text:         "Next ➡️",
			CallbackData: EncodeCallbackData(functionName, ActionNext, currentPage),
		})
	}

	return chatbot.NewRow(row...)
}
