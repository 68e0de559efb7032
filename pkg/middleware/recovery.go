package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/pkg/metric"
)

// HTTPRecovery recovers from panics in handlers and returns a 500
func HTTPRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				route := c.FullPath()
				if route == "" {
					route = "unknown"
				}
				log.Error().Msgf("Panic recovered in handler %s, error: %v, stacktrace: %s", route, r, string(debug.Stack()))
				metric.Incr("api_panic_count", metric.BuildTag(metric.NewTag(metric.TagPath, route)))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
