package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytmp3/internal/services/storage"
	"github.com/denisAlshanov/ytmp3/internal/utils"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"

	healthCheckTimeout = 5 * time.Second
	healthCheckKey     = "health-check-test"
)

type EncoderChecker interface {
	Available() bool
}

type Pinger interface {
	Ping(ctx context.Context) error
	Name() string
}

type HealthHandler struct {
	encoder EncoderChecker
	history Pinger
	storage storage.StorageInterface
}

type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Version   string                   `json:"version"`
	Services  map[string]ServiceHealth `json:"services"`
}

type ServiceHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// NewHealthHandler reports on the encoder and the optional backends; history
// and storage may be nil when disabled.
func NewHealthHandler(encoder EncoderChecker, history Pinger, storage storage.StorageInterface) *HealthHandler {
	return &HealthHandler{
		encoder: encoder,
		history: history,
		storage: storage,
	}
}

// Health godoc
// @Summary Health check endpoint
// @Description Check the health of the service and its dependencies
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Success 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	response := HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   "1.0.0",
		Services: map[string]ServiceHealth{
			"ffmpeg":  h.checkEncoder(ctx),
			"history": h.checkHistory(ctx),
			"s3":      h.checkS3(ctx),
		},
	}

	for _, service := range response.Services {
		if service.Status == statusUnhealthy {
			response.Status = statusUnhealthy
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
	}

	c.JSON(http.StatusOK, response)
}

// Readiness godoc
// @Summary Readiness check endpoint
// @Description Check if the service is ready to accept conversions
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Success 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ready := h.encoder.Available()
	checks := map[string]interface{}{
		"ffmpeg": map[string]interface{}{
			"ready": ready,
		},
	}

	response := map[string]interface{}{
		"ready":     ready,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	if ready {
		c.JSON(http.StatusOK, response)
	} else {
		c.JSON(http.StatusServiceUnavailable, response)
	}
}

// Liveness godoc
// @Summary Liveness check endpoint
// @Description Check if the service is alive
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /live [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) checkEncoder(ctx context.Context) ServiceHealth {
	if !h.encoder.Available() {
		utils.LogWarn(ctx, "ffmpeg binary not found")
		return ServiceHealth{
			Status: statusUnhealthy,
			Error:  "ffmpeg binary not found",
		}
	}
	return ServiceHealth{Status: statusHealthy}
}

func (h *HealthHandler) checkHistory(ctx context.Context) ServiceHealth {
	if h.history == nil {
		return ServiceHealth{Status: statusDisabled}
	}

	return timedCheck(ctx, h.history.Name()+" health check failed", func(ctx context.Context) error {
		return h.history.Ping(ctx)
	})
}

func (h *HealthHandler) checkS3(ctx context.Context) ServiceHealth {
	if h.storage == nil {
		return ServiceHealth{Status: statusDisabled}
	}

	return timedCheck(ctx, "S3 health check failed", func(ctx context.Context) error {
		_, err := h.storage.Exists(ctx, healthCheckKey)
		return err
	})
}

func timedCheck(ctx context.Context, failure string, check func(ctx context.Context) error) ServiceHealth {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	err := check(checkCtx)
	responseTime := time.Since(start).String()

	if err != nil {
		utils.LogError(ctx, failure, err)
		return ServiceHealth{
			Status:       statusUnhealthy,
			ResponseTime: responseTime,
			Error:        err.Error(),
		}
	}

	return ServiceHealth{
		Status:       statusHealthy,
		ResponseTime: responseTime,
	}
}
