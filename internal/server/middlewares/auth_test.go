package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	httpHelper "github.com/myshop/affinity/pkg/api/http"
)

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	SetAuthTokensForTesting("token-a,token-b")
	router := gin.New()
	router.GET("/guarded", AuthInterceptor(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return router
}

func TestAuthInterceptorMissingHeader(t *testing.T) {
	router := setupAuthRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "header is missing")
}

func TestAuthInterceptorInvalidToken(t *testing.T) {
	router := setupAuthRouter(t)

	request := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	request.Header.Set(httpHelper.HeaderAuthToken, "wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, request)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid auth token")
}

func TestAuthInterceptorValidToken(t *testing.T) {
	router := setupAuthRouter(t)

	request := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	request.Header.Set(httpHelper.HeaderAuthToken, "token-b")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, request)

	assert.Equal(t, http.StatusOK, w.Code)
}
