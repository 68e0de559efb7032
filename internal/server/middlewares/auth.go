package middlewares

import (
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/internal/config/structs"
	httpHelper "github.com/myshop/affinity/pkg/api/http"
	"github.com/myshop/affinity/pkg/metric"
)

var (
	authTokens string
	initOnce   sync.Once
)

func Init() {
	initOnce.Do(func() {
		authTokens = structs.GetAppConfig().Configs.AuthTokens
	})
}

// AuthInterceptor rejects requests without a permitted auth token. Tokens
// are a comma-separated static list from config.
func AuthInterceptor() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		token := c.GetHeader(httpHelper.HeaderAuthToken)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": httpHelper.HeaderAuthToken + " header is missing"})
			return
		}
		if !isAuthorized(token) {
			metric.Incr("auth_rejected_count", nil)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid auth token"})
			return
		}
		c.Next()
		trackGenericMetrics(startTime, c)
	}
}

func isAuthorized(token string) bool {
	if len(authTokens) == 0 {
		log.Panic().Msgf("AuthTokens not set")
	}
	tokens := strings.Split(authTokens, ",")
	return slices.Contains(tokens, token)
}

func trackGenericMetrics(startTime time.Time, c *gin.Context) {
	tags := []string{
		"method:" + c.Request.Method,
		"caller_id:" + c.GetHeader(httpHelper.HeaderClientId),
	}
	metric.Incr("authorized_request", tags)
	metric.Timing("authorized_request_latency", time.Since(startTime), tags)
}

// SetAuthTokensForTesting overrides the permitted token list.
func SetAuthTokensForTesting(tokens string) {
	initOnce.Do(func() {})
	authTokens = tokens
}
