package handlers

import (
	"net/http"

	"carouselbot-api/internal/delivery"
	"carouselbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// MessageHandler accepts ad-hoc outgoing messages and hands them to the
// asynchronous delivery queue. The response carries the job id; the actual
// send happens out of band.
type MessageHandler struct {
	queue  delivery.Queue
	logger *logger.Logger
}

// NewMessageHandler creates a new MessageHandler instance
func NewMessageHandler(queue delivery.Queue, logger *logger.Logger) *MessageHandler {
	return &MessageHandler{
		queue:  queue,
		logger: logger,
	}
}

type messageRequest struct {
	ChatID            int64  `json:"chat_id" binding:"required"`
	Text              string `json:"text" binding:"required"`
	ParseMode         string `json:"parse_mode"`
	DisableWebPreview bool   `json:"disable_web_preview"`
	PinMessage        bool   `json:"pin_message"`
}

// Enqueue handles POST /messages
func (h *MessageHandler) Enqueue(c *gin.Context) {
	var request messageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	jobID, err := h.queue.Enqueue(delivery.SendRequest{
		ChatID:            request.ChatID,
		Text:              request.Text,
		ParseMode:         request.ParseMode,
		DisableWebPreview: request.DisableWebPreview,
		PinMessage:        request.PinMessage,
	})
	if err != nil {
		h.logger.Error("Failed to enqueue message", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue message"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": string(jobID)})
}
