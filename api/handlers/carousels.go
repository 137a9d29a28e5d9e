package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"carouselbot-api/internal/carousel"
	"carouselbot-api/internal/chatbot"
	"carouselbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CarouselHandler exposes the administrative CRUD surface for carousel
// configs. Saves and deletes go through the lifecycle service, so a
// successful response means the timer is already consistent with the config.
type CarouselHandler struct {
	service carousel.Service
	logger  *logger.Logger
}

// NewCarouselHandler creates a new CarouselHandler instance
func NewCarouselHandler(service carousel.Service, logger *logger.Logger) *CarouselHandler {
	return &CarouselHandler{
		service: service,
		logger:  logger,
	}
}

// carouselRequest is the admin-supplied portion of a config. Runtime fields
// are never accepted from the API.
type carouselRequest struct {
	Name           string `json:"name" binding:"required"`
	ChatID         int64  `json:"chat_id" binding:"required"`
	MessageText    string `json:"message_text"`
	Interval       int    `json:"interval" binding:"required"`
	PageSize       int    `json:"page_size" binding:"required"`
	DeletePrevious bool   `json:"delete_previous"`
	IsActive       *bool  `json:"is_active"`
	IsPinned       bool   `json:"is_pinned"`
	FunctionName   string `json:"function_name" binding:"required"`
	DataFetcher    string `json:"data_fetcher" binding:"required"`

	// Buttons are optional static keyboard rows shown below the
	// pagination row on every page
	Buttons [][]chatbot.InlineKeyboardButton `json:"buttons"`
}

func (r *carouselRequest) toConfig() *carousel.Config {
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	config := &carousel.Config{
		Name:           r.Name,
		ChatID:         r.ChatID,
		MessageText:    r.MessageText,
		Interval:       r.Interval,
		PageSize:       r.PageSize,
		DeletePrevious: r.DeletePrevious,
		IsActive:       isActive,
		IsPinned:       r.IsPinned,
		FunctionName:   r.FunctionName,
		DataFetcher:    r.DataFetcher,
	}

	if len(r.Buttons) > 0 {
		// Marshaling plain text/url buttons cannot fail
		raw, _ := json.Marshal(chatbot.InlineKeyboard{Buttons: r.Buttons})
		config.ButtonsJSON = string(raw)
	}

	return config
}

// Create handles POST /carousels
func (h *CarouselHandler) Create(c *gin.Context) {
	var request carouselRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	config := request.toConfig()
	if err := h.service.CreateConfig(config); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, config)
}

// List handles GET /carousels
func (h *CarouselHandler) List(c *gin.Context) {
	configs, err := h.service.ListConfigs()
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"carousels": configs})
}

// Get handles GET /carousels/:id
func (h *CarouselHandler) Get(c *gin.Context) {
	configID, ok := h.parseID(c)
	if !ok {
		return
	}

	config, err := h.service.GetConfig(configID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, config)
}

// Update handles PUT /carousels/:id
func (h *CarouselHandler) Update(c *gin.Context) {
	configID, ok := h.parseID(c)
	if !ok {
		return
	}

	var request carouselRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	config := request.toConfig()
	config.ID = configID
	if err := h.service.UpdateConfig(config); err != nil {
		h.respondError(c, err)
		return
	}

	stored, err := h.service.GetConfig(configID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stored)
}

// Delete handles DELETE /carousels/:id
func (h *CarouselHandler) Delete(c *gin.Context) {
	configID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteConfig(configID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *CarouselHandler) parseID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid carousel id", "details": raw})
		return 0, false
	}
	return uint(id), true
}

func (h *CarouselHandler) respondError(c *gin.Context, err error) {
	var validationErr *carousel.ConfigValidationError
	switch {
	case errors.Is(err, carousel.ErrConfigNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "carousel not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message()})
	default:
		h.logger.Error("Carousel request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
