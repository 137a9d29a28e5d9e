package handlers

import (
	"net/http"
	"time"

	"carouselbot-api/internal/database"
	"carouselbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewHealthHandler(db *gorm.DB, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"
	statusCode := http.StatusOK

	// Check database connection
	if err := database.HealthCheck(h.db); err != nil {
		h.logger.Error("Database health check failed", "error", err)
		status = "error"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "carouselbot-api",
	})
}
