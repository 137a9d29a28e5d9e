package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"carouselbot-api/internal/carousel"
	"carouselbot-api/internal/chatbot"
	"carouselbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Mock pager recording received callback queries
type mockPager struct {
	received []*chatbot.CallbackQuery
	err      error
}

func (m *mockPager) HandleCallback(ctx context.Context, query *chatbot.CallbackQuery) error {
	m.received = append(m.received, query)
	return m.err
}

var _ carousel.Pager = (*mockPager)(nil)

func newWebhookTestRouter(pager carousel.Pager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewWebhookHandler(chatbot.NewWebhookParser(), pager, logger.New())
	router := gin.New()
	router.POST("/webhook", handler.HandleTelegramWebhook)
	return router
}

func postWebhook(router *gin.Engine, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandleTelegramWebhook_CallbackDispatched(t *testing.T) {
	pager := &mockPager{}
	router := newWebhookTestRouter(pager)

	body := []byte(`{
		"update_id": 1001,
		"callback_query": {
			"id": "cb-1",
			"from": {"id": 777},
			"message": {"message_id": 42, "chat": {"id": -1001234}},
			"data": "news_digest_next_1"
		}
	}`)

	w := postWebhook(router, body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, pager.received, 1)
	assert.Equal(t, "news_digest_next_1", pager.received[0].Data)
}

func TestHandleTelegramWebhook_NonCallbackIgnored(t *testing.T) {
	pager := &mockPager{}
	router := newWebhookTestRouter(pager)

	body := []byte(`{
		"update_id": 1002,
		"message": {"message_id": 1, "chat": {"id": 555}, "text": "hi"}
	}`)

	w := postWebhook(router, body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, pager.received)
}

func TestHandleTelegramWebhook_AlwaysReturns200(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"empty body", nil},
		{"invalid json", []byte("{broken")},
		{"missing update id", []byte(`{"message": {}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newWebhookTestRouter(&mockPager{})
			w := postWebhook(router, tt.body)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestHandleTelegramWebhook_PagerErrorStillReturns200(t *testing.T) {
	pager := &mockPager{err: errors.New("config missing")}
	router := newWebhookTestRouter(pager)

	body := []byte(`{
		"update_id": 1003,
		"callback_query": {
			"id": "cb-2",
			"from": {"id": 777},
			"message": {"message_id": 42, "chat": {"id": -1001234}},
			"data": "news_digest_prev_2"
		}
	}`)

	w := postWebhook(router, body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, pager.received, 1)
}
