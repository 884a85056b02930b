package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Limiter counts attempts per key in a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string, max int, window time.Duration) (bool, time.Duration, error)
}

// LoginRateLimit limits login attempts per client IP. When the limiter
// itself fails the request is let through.
func LoginRateLimit(limiter Limiter, maxRequests int, window time.Duration, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || maxRequests <= 0 {
			c.Next()
			return
		}

		key := "login:" + c.ClientIP()
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), key, maxRequests, window)
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Window", window.String())

		if !allowed {
			if retryAfter <= 0 {
				retryAfter = window
			}
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Too many login attempts. Retry after %v", retryAfter.Round(time.Second)),
			})
			return
		}

		c.Next()
	}
}
