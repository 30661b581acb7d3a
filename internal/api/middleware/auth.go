package middleware

import (
	"crypto/subtle"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytmp3/internal/config"
	"github.com/denisAlshanov/ytmp3/internal/models"
	"github.com/denisAlshanov/ytmp3/internal/utils"
)

// APIKeyMiddleware requires a matching X-API-Key header. With no key
// configured every request passes.
func APIKeyMiddleware(cfg *config.APIConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APIKey == "" {
			c.Next()
			return
		}

		apiKey := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.APIKey)) == 1 {
			c.Next()
			return
		}

		utils.LogWarn(c.Request.Context(), "Rejected request without valid API key", utils.Fields{
			"path": c.Request.URL.Path,
		})
		appErr := utils.NewUnauthorizedError()
		c.AbortWithStatusJSON(appErr.StatusCode, models.ErrorResponse{
			Error:     appErr.Message,
			Code:      string(appErr.Code),
			RequestID: c.GetString("request_id"),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}
