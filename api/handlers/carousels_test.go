package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carouselbot-api/internal/carousel"
	"carouselbot-api/internal/common"
	"carouselbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testTime() time.Time {
	return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
}

func newCarouselTestRouter(t *testing.T) (*gin.Engine, *carousel.MockRepository) {
	gin.SetMode(gin.TestMode)

	repo := carousel.NewMockRepository()
	registry := carousel.NewRegistry()
	require.NoError(t, registry.Register(carousel.StaticMessageFetcherKey, carousel.StaticMessageFetcher))

	clock := common.NewMockClock(testTime())
	service := carousel.NewService(repo, registry, zaptest.NewLogger(t), clock)
	handler := NewCarouselHandler(service, logger.New())

	router := gin.New()
	router.POST("/carousels", handler.Create)
	router.GET("/carousels", handler.List)
	router.GET("/carousels/:id", handler.Get)
	router.PUT("/carousels/:id", handler.Update)
	router.DELETE("/carousels/:id", handler.Delete)
	return router, repo
}

func carouselBody() map[string]interface{} {
	return map[string]interface{}{
		"name":          "News digest",
		"chat_id":       -1001234,
		"message_text":  "*Header*\n\nfirst\n\nsecond",
		"interval":      30,
		"page_size":     5,
		"function_name": "news_digest",
		"data_fetcher":  carousel.StaticMessageFetcherKey,
	}
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCarouselHandler_Create(t *testing.T) {
	router, repo := newCarouselTestRouter(t)

	w := doJSON(router, http.MethodPost, "/carousels", carouselBody())

	assert.Equal(t, http.StatusCreated, w.Code)

	var created carousel.Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)

	// The save installed the timer
	assert.Equal(t, 1, repo.TimerCount())
}

func TestCarouselHandler_Create_WithStaticButtons(t *testing.T) {
	router, _ := newCarouselTestRouter(t)

	body := carouselBody()
	body["buttons"] = [][]map[string]string{
		{{"text": "Open site", "url": "https://example.com"}},
	}

	w := doJSON(router, http.MethodPost, "/carousels", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created carousel.Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	extra, err := created.ExtraKeyboard()
	require.NoError(t, err)
	require.Len(t, extra.Buttons, 1)
	assert.Equal(t, "Open site", extra.Buttons[0][0].Text)
}

func TestCarouselHandler_Create_InvalidInterval(t *testing.T) {
	router, repo := newCarouselTestRouter(t)

	body := carouselBody()
	body["interval"] = 2

	w := doJSON(router, http.MethodPost, "/carousels", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, repo.TimerCount())
}

func TestCarouselHandler_Create_MissingFields(t *testing.T) {
	router, _ := newCarouselTestRouter(t)

	w := doJSON(router, http.MethodPost, "/carousels", map[string]interface{}{"name": "x"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCarouselHandler_GetAndList(t *testing.T) {
	router, _ := newCarouselTestRouter(t)

	w := doJSON(router, http.MethodPost, "/carousels", carouselBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/carousels/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/carousels", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "news_digest")
}

func TestCarouselHandler_Get_NotFound(t *testing.T) {
	router, _ := newCarouselTestRouter(t)

	w := doJSON(router, http.MethodGet, "/carousels/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCarouselHandler_Get_InvalidID(t *testing.T) {
	router, _ := newCarouselTestRouter(t)

	w := doJSON(router, http.MethodGet, "/carousels/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCarouselHandler_Update(t *testing.T) {
	router, _ := newCarouselTestRouter(t)

	w := doJSON(router, http.MethodPost, "/carousels", carouselBody())
	require.Equal(t, http.StatusCreated, w.Code)

	body := carouselBody()
	body["name"] = "Renamed digest"
	w = doJSON(router, http.MethodPut, "/carousels/1", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Renamed digest")
}

func TestCarouselHandler_Update_DeactivateRemovesTimer(t *testing.T) {
	router, repo := newCarouselTestRouter(t)

	w := doJSON(router, http.MethodPost, "/carousels", carouselBody())
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, 1, repo.TimerCount())

	body := carouselBody()
	body["is_active"] = false
	w = doJSON(router, http.MethodPut, "/carousels/1", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, repo.TimerCount())
}

func TestCarouselHandler_Delete(t *testing.T) {
	router, repo := newCarouselTestRouter(t)

	w := doJSON(router, http.MethodPost, "/carousels", carouselBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodDelete, "/carousels/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, repo.TimerCount())

	w = doJSON(router, http.MethodGet, "/carousels/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCarouselHandler_Delete_NotFound(t *testing.T) {
	router, _ := newCarouselTestRouter(t)

	w := doJSON(router, http.MethodDelete, "/carousels/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
