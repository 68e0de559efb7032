package controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myshop/affinity/internal/capture"
	"github.com/myshop/affinity/internal/events"
	"github.com/myshop/affinity/internal/publisher"
	"github.com/myshop/affinity/internal/repositories/outbox"
)

func setupCaptureRouter(t *testing.T) (*gin.Engine, *publisher.MemoryPublisher) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	channel := publisher.NewMemoryPublisher()
	SetCaptureControllerForTesting(capture.NewService(outbox.NewMemoryLog(), channel, 1000))
	router := gin.New()
	router.POST("/events", NewCaptureController().CaptureEvent)
	router.POST("/events/batch", NewCaptureController().CaptureBatch)
	return router, channel
}

func TestCaptureEventAccepted(t *testing.T) {
	router, channel := setupCaptureRouter(t)

	body := `{"userId":"user-1","eventType":"product_view","productId":42}`
	request := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, request)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "messageId")
	require.Len(t, channel.Published, 1)
	assert.Equal(t, events.EventTypeProductView, channel.Published[0].EventType)
}

func TestCaptureEventUnknownType(t *testing.T) {
	router, _ := setupCaptureRouter(t)

	body := `{"userId":"user-1","eventType":"page_scroll","productId":42}`
	request := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, request)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid event type")
}

func TestCaptureEventInvalidPayload(t *testing.T) {
	router, channel := setupCaptureRouter(t)

	// A search with a product id is contradictory.
	body := `{"userId":"user-1","eventType":"search","searchPhrase":"shoes","productId":42}`
	request := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, request)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, channel.Published)
}

func TestCaptureBatchPartialAcceptance(t *testing.T) {
	router, channel := setupCaptureRouter(t)

	occurredAt := time.Now().UTC().Format(time.RFC3339)
	body := `[
		{"userId":"user-1","eventType":"product_view","productId":42,"occurredAt":"` + occurredAt + `"},
		{"userId":"","eventType":"product_view","productId":43,"occurredAt":"` + occurredAt + `"},
		{"userId":"user-2","eventType":"search","searchPhrase":"shoes","occurredAt":"` + occurredAt + `"}
	]`
	request := httptest.NewRequest(http.MethodPost, "/events/batch", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, request)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Len(t, channel.Published, 2)
	assert.Contains(t, w.Body.String(), `"index":1`)
}

func TestCaptureBatchEmpty(t *testing.T) {
	router, _ := setupCaptureRouter(t)

	request := httptest.NewRequest(http.MethodPost, "/events/batch", strings.NewReader(`[]`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, request)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
