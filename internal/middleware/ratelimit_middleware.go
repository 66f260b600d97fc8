package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planner-backend-go/internal/ratelimit"
)

const (
	APILimitMessage  = "Too many requests from this IP, please try again later."
	AuthLimitMessage = "Too many authentication attempts, please try again later."
)

// RateLimit rejects clients that exceed limiter's budget with 429. The
// budget is keyed by client IP. If the limiter itself fails the request is
// let through.
func RateLimit(limiter ratelimit.Limiter, message string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		reset := int(time.Until(d.Reset).Round(time.Second) / time.Second)
		if reset < 0 {
			reset = 0
		}
		c.Header("RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(reset))

		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(reset))
			abortWithError(c, http.StatusTooManyRequests, message)
			return
		}
		c.Next()
	}
}
