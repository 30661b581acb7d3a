package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/denisAlshanov/ytmp3/internal/api/handlers"
	"github.com/denisAlshanov/ytmp3/internal/api/middleware"
	"github.com/denisAlshanov/ytmp3/internal/config"
	"github.com/denisAlshanov/ytmp3/internal/services/ratelimit"
)

type Router struct {
	engine *gin.Engine
	config *config.Config
}

// NewRouter registers every route. limiter may be nil, in which case the
// download endpoints are not rate limited.
func NewRouter(cfg *config.Config, downloadHandler *handlers.DownloadHandler, historyHandler *handlers.HistoryHandler, healthHandler *handlers.HealthHandler, limiter ratelimit.Limiter) *Router {
	// Set Gin mode
	if cfg.Server.Host == "0.0.0.0" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Add middleware
	engine.Use(gin.Recovery())
	engine.Use(middleware.CorrelationIDMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))

	// Health endpoints
	health := engine.Group("/")
	{
		health.GET("/health", healthHandler.Health)
		health.GET("/ready", healthHandler.Readiness)
		health.GET("/live", healthHandler.Liveness)
	}

	// Swagger documentation
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	downloadMiddleware := []gin.HandlerFunc{}
	if limiter != nil {
		downloadMiddleware = append(downloadMiddleware, middleware.RateLimitMiddleware(limiter))
	}

	// Download endpoints, served both at the root and under /api
	for _, prefix := range []string{"/", "/api"} {
		download := engine.Group(prefix, downloadMiddleware...)
		{
			download.POST("/download", downloadHandler.Download)
			download.GET("/download", downloadHandler.Info)
		}
	}

	api := engine.Group("/api/v1")
	api.Use(middleware.APIKeyMiddleware(&cfg.API))
	{
		api.GET("/history", historyHandler.GetList) // /api/v1/history
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
			"code":  "NOT_FOUND",
		})
	})

	return &Router{
		engine: engine,
		config: cfg,
	}
}

func (r *Router) Addr() string {
	return r.config.Server.Host + ":" + r.config.Server.Port
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
