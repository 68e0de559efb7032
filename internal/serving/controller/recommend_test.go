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

	"github.com/myshop/affinity/internal/engine"
	"github.com/myshop/affinity/internal/repositories/embeddingstore"
	"github.com/myshop/affinity/internal/repositories/vector"
	"github.com/myshop/affinity/internal/serving/handlers/recommend"
	httpHelper "github.com/myshop/affinity/pkg/api/http"
)

func setupRecommendRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := embeddingstore.NewMemoryStore()
	index := vector.NewMemory()
	now := time.Now()
	for _, seed := range []struct {
		space    string
		entityId string
		vec      []float32
	}{
		{vector.UserSpace, embeddingstore.UserEntityId("user-1"), []float32{1, 0, 0, 0}},
		{vector.ProductSpace, embeddingstore.ProductEntityId(1), []float32{1, 0, 0, 0}},
		{vector.ProductSpace, embeddingstore.ProductEntityId(2), []float32{0, 1, 0, 0}},
	} {
		embedding := &engine.EntityEmbedding{
			EntityId:      seed.entityId,
			Vector:        seed.vec,
			EventCount:    1,
			LastUpdatedAt: now,
		}
		saved, err := store.Save(embedding)
		require.NoError(t, err)
		require.True(t, saved)
		require.NoError(t, index.Upsert(seed.space, embedding))
	}
	SetRecommendControllerForTesting(recommend.SetMockRecommendHandler(store, index, nil, 10, 4))

	router := gin.New()
	router.GET("/recommendations/me", NewRecommendController().MyRecommendations)
	router.GET("/recommendations/:userId", NewRecommendController().Recommendations)
	router.POST("/similar", NewRecommendController().FindSimilar)
	return router
}

func TestMyRecommendationsUsesUserIdHeader(t *testing.T) {
	router := setupRecommendRouter(t)

	request := httptest.NewRequest(http.MethodGet, "/recommendations/me?limit=2", nil)
	request.Header.Set(httpHelper.HeaderUserId, "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, request)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"1"`)
}

func TestMyRecommendationsMissingHeader(t *testing.T) {
	router := setupRecommendRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recommendations/me", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendationsEndpoint(t *testing.T) {
	router := setupRecommendRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recommendations/user-1?limit=2", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"1"`)
	// Scores only, raw vectors never leave the service.
	assert.NotContains(t, w.Body.String(), "vector")
}

func TestRecommendationsUnknownUser(t *testing.T) {
	router := setupRecommendRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recommendations/nobody", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"results":[]`)
}

func TestRecommendationsBadLimit(t *testing.T) {
	router := setupRecommendRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recommendations/user-1?limit=abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFindSimilarEndpoint(t *testing.T) {
	router := setupRecommendRouter(t)

	body := `{"space":"product_embeddings","vector":[1,0,0,0],"limit":1}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/similar", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"1"`)
}

func TestFindSimilarRejectsWrongDimension(t *testing.T) {
	router := setupRecommendRouter(t)

	body := `{"space":"product_embeddings","vector":[1,0],"limit":1}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/similar", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
