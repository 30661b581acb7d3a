package middleware

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytmp3/internal/utils"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"
	RequestIDHeader     = "X-Request-ID"
)

var healthPaths = map[string]bool{"/health": true, "/ready": true, "/live": true}

// Inbound correlation ids end up in every log line and response header.
var correlationIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		correlationID := c.GetHeader(CorrelationIDHeader)
		if !correlationIDPattern.MatchString(correlationID) {
			correlationID = utils.GenerateCorrelationID()
		}
		requestID := utils.GenerateRequestID()

		c.Set("correlation_id", correlationID)
		c.Set("request_id", requestID)

		c.Header(CorrelationIDHeader, correlationID)
		c.Header(RequestIDHeader, requestID)

		ctx := c.Request.Context()
		ctx = utils.WithCorrelationID(ctx, correlationID)
		ctx = utils.WithRequestID(ctx, requestID)
		c.Request = c.Request.WithContext(ctx)

		// Health checks from the orchestrator would drown the download logs.
		log := utils.LogInfo
		if healthPaths[c.Request.URL.Path] {
			log = utils.LogDebug
		}

		log(ctx, "Incoming request", utils.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		})

		c.Next()

		log(ctx, "Request completed", utils.Fields{
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"bytes":       c.Writer.Size(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}
