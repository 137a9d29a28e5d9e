package handlers

import (
	"errors"
	"net/http"
	"testing"

	"carouselbot-api/internal/config"
	"carouselbot-api/internal/delivery"
	"carouselbot-api/internal/events"
	"carouselbot-api/internal/mocks"
	"carouselbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newMessageTestRouter(t *testing.T) (*gin.Engine, *delivery.MockJobRepository) {
	gin.SetMode(gin.TestMode)

	cfg := config.DeliveryConfig{
		PollInterval:    1,
		WorkerCount:     1,
		MaxAttempts:     3,
		RetryDelay:      1,
		StaleAfter:      300,
		ShutdownTimeout: 5,
	}

	repo := delivery.NewMockJobRepository()
	queue, err := delivery.NewQueue(cfg, repo, mocks.NewMockTelegramProvider(), events.NewMockEventBus(), zaptest.NewLogger(t), nil)
	require.NoError(t, err)

	handler := NewMessageHandler(queue, logger.New())
	router := gin.New()
	router.POST("/messages", handler.Enqueue)
	return router, repo
}

func TestMessageHandler_Enqueue(t *testing.T) {
	router, repo := newMessageTestRouter(t)

	w := doJSON(router, http.MethodPost, "/messages", map[string]interface{}{
		"chat_id": -1001234,
		"text":    "announcement",
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "job_id")
	assert.Equal(t, 1, repo.JobCount())
}

func TestMessageHandler_Enqueue_MissingFields(t *testing.T) {
	router, repo := newMessageTestRouter(t)

	w := doJSON(router, http.MethodPost, "/messages", map[string]interface{}{"text": "no chat"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, repo.JobCount())
}

func TestMessageHandler_Enqueue_RepositoryFailure(t *testing.T) {
	router, repo := newMessageTestRouter(t)
	repo.SetEnqueueError(errors.New("db down"))

	w := doJSON(router, http.MethodPost, "/messages", map[string]interface{}{
		"chat_id": -1001234,
		"text":    "announcement",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
