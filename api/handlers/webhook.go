package handlers

import (
	"io"
	"net/http"

	"carouselbot-api/internal/carousel"
	"carouselbot-api/internal/chatbot"
	"carouselbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WebhookHandler handles Telegram webhook requests
type WebhookHandler struct {
	parser *chatbot.WebhookParser
	pager  carousel.Pager
	logger *logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler instance
func NewWebhookHandler(parser *chatbot.WebhookParser, pager carousel.Pager, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		parser: parser,
		pager:  pager,
		logger: logger,
	}
}

// HandleTelegramWebhook processes incoming Telegram webhook updates. The
// only updates this service acts on are pagination callback queries;
// everything else is acknowledged and ignored. Telegram retries anything
// that is not a 200, so every path answers 200.
func (h *WebhookHandler) HandleTelegramWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if len(body) == 0 {
		h.logger.Warn("Received empty webhook body")
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	update, err := h.parser.ParseUpdate(body)
	if err != nil {
		h.logger.Warn("Failed to parse webhook update",
			"error", err,
			"body_size", len(body))
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	query, err := h.parser.ExtractCallbackQuery(update)
	if err != nil {
		h.logger.Warn("Failed to extract callback query",
			"update_id", update.UpdateID,
			"error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if query == nil {
		h.logger.Debug("Ignoring webhook update without callback query",
			"update_id", update.UpdateID)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := h.pager.HandleCallback(c.Request.Context(), query); err != nil {
		h.logger.Warn("Callback handling failed",
			"update_id", update.UpdateID,
			"callback_data", query.Data,
			"error", err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
