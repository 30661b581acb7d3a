package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAX_VIDEO_DURATION", "")
	t.Setenv("AUDIO_BITRATE", "")
	t.Setenv("HISTORY_BACKEND", "")
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("ARCHIVE_ENABLED", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Transcode.MaxVideoDuration != 1800 {
		t.Errorf("Expected MaxVideoDuration 1800, got %d", cfg.Transcode.MaxVideoDuration)
	}
	if cfg.Transcode.AudioBitrate != 128 {
		t.Errorf("Expected AudioBitrate 128, got %d", cfg.Transcode.AudioBitrate)
	}
	if cfg.History.Backend != HistoryBackendNone {
		t.Errorf("Expected history backend 'none', got '%s'", cfg.History.Backend)
	}
	if cfg.RateLimit.Enabled {
		t.Error("Expected rate limiting to be disabled by default")
	}
	if cfg.RateLimit.Requests != 10 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("Expected 10 requests per minute, got %d per %s", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	if cfg.YouTube.FetchTimeout != 30*time.Second {
		t.Errorf("Expected fetch timeout 30s, got %s", cfg.YouTube.FetchTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_VIDEO_DURATION", "600")
	t.Setenv("AUDIO_BITRATE", "192")
	t.Setenv("TRANSCODE_TIMEOUT", "2m")
	t.Setenv("AUDIO_QUALITY", "lowestaudio")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Transcode.MaxVideoDuration != 600 {
		t.Errorf("Expected MaxVideoDuration 600, got %d", cfg.Transcode.MaxVideoDuration)
	}
	if cfg.Transcode.AudioBitrate != 192 {
		t.Errorf("Expected AudioBitrate 192, got %d", cfg.Transcode.AudioBitrate)
	}
	if cfg.Transcode.Timeout != 2*time.Minute {
		t.Errorf("Expected transcode timeout 2m, got %s", cfg.Transcode.Timeout)
	}
	if cfg.YouTube.AudioQuality != "lowestaudio" {
		t.Errorf("Expected audio quality 'lowestaudio', got '%s'", cfg.YouTube.AudioQuality)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected allowed origins: %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"Bad duration", "TRANSCODE_TIMEOUT", "forever"},
		{"Bad history backend", "HISTORY_BACKEND", "sqlite"},
		{"Bad rate limit backend", "RATE_LIMIT_BACKEND", "memcached"},
		{"Bad audio quality", "AUDIO_QUALITY", "best"},
		{"Postgres without user", "HISTORY_BACKEND", "postgres"},
		{"Archive without bucket", "ARCHIVE_ENABLED", "true"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("POSTGRES_USER", "")
			t.Setenv("S3_BUCKET_NAME", "")
			t.Setenv(tc.key, tc.value)

			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}
