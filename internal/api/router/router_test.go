package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytmp3/internal/api/handlers"
	"github.com/denisAlshanov/ytmp3/internal/config"
	"github.com/denisAlshanov/ytmp3/internal/models"
	"github.com/denisAlshanov/ytmp3/internal/services/converter"
	"github.com/denisAlshanov/ytmp3/internal/services/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubConverter struct{}

func (stubConverter) Convert(ctx context.Context, url string) (*converter.Conversion, error) {
	return &converter.Conversion{Filename: "a.mp3", Audio: []byte("ID3")}, nil
}

func (stubConverter) Preview(ctx context.Context, url string) (*models.VideoMetadata, error) {
	return &models.VideoMetadata{Title: "a", VideoID: "abc"}, nil
}

type stubEncoder struct{}

func (stubEncoder) Available() bool { return true }

func newTestRouter(cfg *config.Config, limiter ratelimit.Limiter) *gin.Engine {
	r := NewRouter(cfg,
		handlers.NewDownloadHandler(stubConverter{}),
		handlers.NewHistoryHandler(nil),
		handlers.NewHealthHandler(stubEncoder{}, nil, nil),
		limiter,
	)
	return r.Engine()
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "8080"
	return cfg
}

func TestRoutes(t *testing.T) {
	engine := newTestRouter(testConfig(), nil)

	testCases := []struct {
		method   string
		path     string
		body     string
		expected int
	}{
		{http.MethodPost, "/download", `{"url":"https://youtu.be/abc"}`, http.StatusOK},
		{http.MethodPost, "/api/download", `{"url":"https://youtu.be/abc"}`, http.StatusOK},
		{http.MethodGet, "/download?url=https://youtu.be/abc", "", http.StatusOK},
		{http.MethodGet, "/api/download?url=https://youtu.be/abc", "", http.StatusOK},
		{http.MethodGet, "/api/v1/history", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/live", "", http.StatusOK},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			engine.ServeHTTP(w, req)
			if w.Code != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, w.Code)
			}
		})
	}
}

func TestHistoryRequiresAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.API.APIKey = "secret"
	engine := newTestRouter(cfg, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", w.Code)
	}
}

func TestDownloadRateLimited(t *testing.T) {
	engine := newTestRouter(testConfig(), ratelimit.NewMemoryLimiter(1, time.Minute))

	codes := []int{}
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/download?url=https://youtu.be/abc", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("Expected [200 429], got %v", codes)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected health to bypass the limiter, got %d", w.Code)
	}
}
