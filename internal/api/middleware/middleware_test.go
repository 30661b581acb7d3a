package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytmp3/internal/config"
	"github.com/denisAlshanov/ytmp3/internal/models"
	"github.com/denisAlshanov/ytmp3/internal/services/ratelimit"
	"github.com/denisAlshanov/ytmp3/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type erroringLimiter struct{}

func (erroringLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CorrelationIDMiddleware())
	r.Use(RateLimitMiddleware(ratelimit.NewMemoryLimiter(2, time.Minute)))
	r.GET("/", okHandler)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected request %d to pass, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", w.Code)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if resp.Code != "RATE_LIMIT_EXCEEDED" || resp.Error != "Too many requests. Please wait a moment" {
		t.Errorf("Unexpected error body %+v", resp)
	}
	if resp.RequestID == "" {
		t.Error("Expected request id in the error body")
	}
}

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(erroringLimiter{}))
	r.GET("/", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected limiter errors to let requests through, got %d", w.Code)
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	testCases := []struct {
		name       string
		configured string
		header     string
		expected   int
	}{
		{"no key configured", "", "", http.StatusOK},
		{"valid key", "secret", "secret", http.StatusOK},
		{"missing key", "secret", "", http.StatusUnauthorized},
		{"wrong key", "secret", "guess", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(APIKeyMiddleware(&config.APIConfig{APIKey: tc.configured}))
			r.GET("/", okHandler)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("X-API-Key", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, w.Code)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	cfg := &config.CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"https://app.example.com"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	}

	r := gin.New()
	r.Use(CORSMiddleware(cfg))
	r.GET("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Expected origin to be echoed, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("Expected max age 600, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected unlisted origin to get no CORS headers, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected preflight to answer 204, got %d", w.Code)
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	testCases := []struct {
		name      string
		inbound   string
		propagate bool
	}{
		{"missing header generates one", "", false},
		{"well-formed id propagated", "corr-123", true},
		{"upstream trace id propagated", "00-4bf92f3577b34da6.a3ce929d0e0e4736:01", true},
		{"header injection replaced", "corr\r\nX-Admin: 1", false},
		{"oversized id replaced", strings.Repeat("a", 129), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CorrelationIDMiddleware())

			var seenCorrelation, seenRequest string
			r.GET("/api/v1/download", func(c *gin.Context) {
				seenCorrelation = utils.GetCorrelationID(c.Request.Context())
				seenRequest = utils.GetRequestID(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/download", nil)
			if tc.inbound != "" {
				req.Header[CorrelationIDHeader] = []string{tc.inbound}
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(CorrelationIDHeader)
			if tc.propagate && got != tc.inbound {
				t.Errorf("Expected correlation id %q to be propagated, got %q", tc.inbound, got)
			}
			if !tc.propagate && (got == "" || got == tc.inbound) {
				t.Errorf("Expected a freshly generated correlation id, got %q", got)
			}
			if got != seenCorrelation {
				t.Errorf("Expected handler context to carry %q, got %q", got, seenCorrelation)
			}

			requestID := w.Header().Get(RequestIDHeader)
			if !strings.HasPrefix(requestID, "req_") || requestID != seenRequest {
				t.Errorf("Expected generated request id in header and context, got %q / %q", requestID, seenRequest)
			}
		})
	}
}
