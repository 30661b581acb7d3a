package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytmp3/internal/models"
	"github.com/denisAlshanov/ytmp3/internal/services/ratelimit"
	"github.com/denisAlshanov/ytmp3/internal/utils"
)

// RateLimitMiddleware rejects requests the limiter refuses with
// RATE_LIMIT_EXCEEDED. Requests are keyed by client IP. A limiter error lets
// the request through.
func RateLimitMiddleware(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := c.ClientIP()

		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			utils.LogError(ctx, "Rate limiter failed", err, utils.Fields{"key": key})
			c.Next()
			return
		}

		if !allowed {
			utils.LogWarn(ctx, "Rate limit exceeded", utils.Fields{"key": key})
			appErr := utils.NewRateLimitError()
			c.AbortWithStatusJSON(appErr.StatusCode, models.ErrorResponse{
				Error:     appErr.Message,
				Code:      string(appErr.Code),
				RequestID: c.GetString("request_id"),
				Timestamp: time.Now().Format(time.RFC3339),
			})
			return
		}

		c.Next()
	}
}
