// Package main provides the entry point for the YouTube to MP3 service.
// @title YouTube to MP3 API
// @version 1.0
// @description A Go service that converts the audio track of YouTube videos to MP3.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key authentication

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/denisAlshanov/ytmp3/docs" // Import for swagger docs
	"github.com/denisAlshanov/ytmp3/internal/api/handlers"
	"github.com/denisAlshanov/ytmp3/internal/api/router"
	"github.com/denisAlshanov/ytmp3/internal/config"
	"github.com/denisAlshanov/ytmp3/internal/database"
	"github.com/denisAlshanov/ytmp3/internal/services/converter"
	"github.com/denisAlshanov/ytmp3/internal/services/ratelimit"
	"github.com/denisAlshanov/ytmp3/internal/services/storage"
	"github.com/denisAlshanov/ytmp3/internal/services/transcoder"
	"github.com/denisAlshanov/ytmp3/internal/services/youtube"
	"github.com/denisAlshanov/ytmp3/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.SetLogLevel(cfg.Server.LogLevel)
	logger := utils.GetLogger()
	logger.Info("Starting YouTube to MP3 service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize encoder
	tr := transcoder.NewTranscoder(&cfg.Transcode)
	if !tr.Available() {
		logger.Warnf("ffmpeg not found at %q - downloads will fail until it is installed", cfg.Transcode.FFmpegPath)
	}

	// Initialize history store
	history, err := database.NewHistoryStore(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize history store: %v", err)
	}
	if history != nil {
		logger.Infof("Conversion history enabled (%s)", history.Name())
	}

	// Initialize S3 archive
	var archive storage.StorageInterface
	if cfg.S3.Enabled {
		archive, err = storage.NewStorage(&cfg.S3)
		if err != nil {
			logger.Fatalf("Failed to initialize storage: %v", err)
		}
	}

	// Initialize rate limiter
	limiter, redisClient := newLimiter(ctx, cfg)

	// Initialize conversion pipeline
	fetcher := youtube.NewFetcher(youtube.NewClient(cfg.YouTube.AudioQuality), cfg.YouTube.FetchTimeout)
	var recorder converter.HistoryRecorder
	var lister handlers.HistoryLister
	var pinger handlers.Pinger
	if history != nil {
		recorder, lister, pinger = history, history, history
	}
	converterService := converter.NewService(fetcher, tr, recorder, archive, converter.Options{
		MaxVideoDuration: cfg.Transcode.MaxVideoDuration,
		ArchivePrefix:    cfg.S3.Prefix,
		ArchiveTimeout:   cfg.Transcode.ArchiveTimeout,
	})

	// Initialize handlers
	downloadHandler := handlers.NewDownloadHandler(converterService)
	historyHandler := handlers.NewHistoryHandler(lister)
	healthHandler := handlers.NewHealthHandler(tr, pinger, archive)

	// Initialize router
	r := router.NewRouter(cfg, downloadHandler, historyHandler, healthHandler, limiter)

	srv := &http.Server{
		Addr:              r.Addr(),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	// Create a deadline for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	// Close history store
	if history != nil {
		if err := history.Close(shutdownCtx); err != nil {
			logger.Errorf("Failed to close history store: %v", err)
		}
	}

	// Close redis client
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Failed to close redis client: %v", err)
		}
	}

	logger.Info("Server shutdown complete")
}

// newLimiter builds the download rate limiter from config. It returns a nil
// limiter when rate limiting is disabled, and the redis client to close on
// shutdown when the redis backend is in use.
func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, *redis.Client) {
	logger := utils.GetLogger()

	var chain ratelimit.Chain
	if cfg.RateLimit.GlobalRPS > 0 {
		chain = append(chain, ratelimit.NewGlobalLimiter(cfg.RateLimit.GlobalRPS, cfg.RateLimit.GlobalBurst))
	}

	if !cfg.RateLimit.Enabled {
		if len(chain) == 0 {
			return nil, nil
		}
		return chain, nil
	}

	var redisClient *redis.Client
	switch cfg.RateLimit.Backend {
	case config.RateLimitBackendRedis:
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warnf("Redis not reachable at %s, rate limiting falls back to in-memory counters: %v", cfg.Redis.Addr, err)
		}
		cancel()

		chain = append(chain, ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	default:
		memory := ratelimit.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		go memory.RunCleanup(ctx)
		chain = append(chain, memory)
	}

	logger.Infof("Rate limiting enabled (%s, %d requests per %s)", cfg.RateLimit.Backend, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	return chain, redisClient
}
