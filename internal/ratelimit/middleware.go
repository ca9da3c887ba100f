package ratelimit

import (
	"net/http"
	"time"

	"rabaislocal/internal/auth"

	"github.com/gin-gonic/gin"
)

// PerUser gates a route per authenticated user. Limiter failures fail open:
// rate limiting is policy, and a redis outage must not take down claims.
func PerUser(l *Limiter, action string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := auth.UserID(c.Request.Context())
		if err != nil || uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
			return
		}

		ok, err := l.Allow(c.Request.Context(), uid, action, limit, window)
		if err != nil {
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
