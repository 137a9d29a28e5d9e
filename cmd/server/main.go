package main

import (
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically

	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carouselbot-api/api/routes"
	"carouselbot-api/internal/carousel"
	"carouselbot-api/internal/chatbot"
	"carouselbot-api/internal/config"
	"carouselbot-api/internal/database"
	"carouselbot-api/internal/delivery"
	"carouselbot-api/internal/events"
	"carouselbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger
	logger := logger.New()
	defer logger.Sync()

	// Get the underlying zap logger for services
	zapLogger := logger.SugaredLogger.Desugar()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Run migrations
	if err := carousel.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run carousel migrations", "error", err)
	}
	if err := delivery.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run delivery migrations", "error", err)
	}

	// Initialize event bus
	eventBus := events.NewEventBus(zapLogger)

	// Initialize Telegram provider
	provider, err := chatbot.NewTelegramProvider(cfg.Chatbot, zapLogger)
	if err != nil {
		logger.Fatal("Failed to initialize Telegram provider", "error", err)
	}

	// Register data fetchers. Configs reference these by key; a config
	// pointing at an unregistered key is rejected at save time.
	registry := carousel.NewRegistry()
	if err := registry.Register(carousel.StaticMessageFetcherKey, carousel.StaticMessageFetcher); err != nil {
		logger.Fatal("Failed to register data fetcher", "error", err)
	}
	logger.Info("Data fetchers registered", "keys", registry.Keys())

	// Initialize carousel components
	carouselRepository := carousel.NewGormRepository(db, zapLogger)
	renderer := carousel.NewRenderer(registry)
	carouselService := carousel.NewService(carouselRepository, registry, zapLogger, nil)
	pager := carousel.NewPager(carouselRepository, renderer, provider, eventBus, zapLogger)

	// Initialize delivery queue
	jobRepository := delivery.NewGormJobRepository(db, zapLogger)
	deliveryQueue, err := delivery.NewQueue(cfg.Delivery, jobRepository, provider, eventBus, zapLogger, nil)
	if err != nil {
		logger.Fatal("Failed to create delivery queue", "error", err)
	}
	if err := deliveryQueue.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start delivery queue", "error", err)
	}

	// Initialize carousel scheduler
	var carouselScheduler carousel.Scheduler
	if cfg.Carousel.Enabled {
		carouselScheduler, err = carousel.NewScheduler(cfg.Carousel, carouselRepository, renderer, provider, eventBus, zapLogger, nil)
		if err != nil {
			logger.Fatal("Failed to create carousel scheduler", "error", err)
		}
		if err := carouselScheduler.Start(context.Background()); err != nil {
			logger.Fatal("Failed to start carousel scheduler", "error", err)
		}

		logger.Info("Carousel scheduler started",
			"poll_interval", cfg.Carousel.PollInterval,
			"worker_count", cfg.Carousel.WorkerCount)
	} else {
		logger.Info("Carousel scheduler disabled")
	}

	// Register the webhook with Telegram when configured
	if cfg.Chatbot.WebhookURL != "" && cfg.Chatbot.Token != "" {
		if err := provider.SetWebhook(cfg.Chatbot.WebhookURL); err != nil {
			logger.Warn("Failed to set Telegram webhook", "error", err)
		}
	}

	// Setup Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	routes.SetupRoutes(router, db, logger, pager, carouselService, deliveryQueue)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop background workers first so in-flight sends finish cleanly
	if carouselScheduler != nil && carouselScheduler.IsRunning() {
		if err := carouselScheduler.Stop(); err != nil {
			logger.Error("Failed to stop carousel scheduler gracefully", "error", err)
		}
	}
	if deliveryQueue.IsRunning() {
		if err := deliveryQueue.Stop(); err != nil {
			logger.Error("Failed to stop delivery queue gracefully", "error", err)
		}
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("Failed to close event bus", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
