package routes

import (
	"carouselbot-api/api/handlers"
	"carouselbot-api/api/middleware"
	"carouselbot-api/internal/carousel"
	"carouselbot-api/internal/chatbot"
	"carouselbot-api/internal/delivery"
	"carouselbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, logger *logger.Logger, pager carousel.Pager, service carousel.Service, queue delivery.Queue) {
	// Add middleware
	router.Use(middleware.RequestLogging(logger))
	router.Use(gin.Recovery())

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, logger)
	webhookHandler := handlers.NewWebhookHandler(chatbot.NewWebhookParser(), pager, logger)
	carouselHandler := handlers.NewCarouselHandler(service, logger)
	messageHandler := handlers.NewMessageHandler(queue, logger)

	// Setup routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Check)

		// Telegram webhook endpoint
		v1.POST("/telegram/webhook", webhookHandler.HandleTelegramWebhook)

		// Carousel admin CRUD
		v1.POST("/carousels", carouselHandler.Create)
		v1.GET("/carousels", carouselHandler.List)
		v1.GET("/carousels/:id", carouselHandler.Get)
		v1.PUT("/carousels/:id", carouselHandler.Update)
		v1.DELETE("/carousels/:id", carouselHandler.Delete)

		// Ad-hoc outgoing messages via the delivery queue
		v1.POST("/messages", messageHandler.Enqueue)
	}

	// Root health check
	router.GET("/health", healthHandler.Check)
}
