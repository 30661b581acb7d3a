package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	HistoryBackendNone     = "none"
	HistoryBackendPostgres = "postgres"
	HistoryBackendMongoDB  = "mongodb"

	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

type Config struct {
	Server    ServerConfig
	YouTube   YouTubeConfig
	Transcode TranscodeConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	History   HistoryConfig
	Postgres  PostgresConfig
	MongoDB   MongoDBConfig
	S3        S3Config
	API       APIConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port     string
	Host     string
	LogLevel string
}

type YouTubeConfig struct {
	FetchTimeout time.Duration
	// AudioQuality orders the audio-only formats before selection:
	// "highestaudio" puts the highest bitrate first, "lowestaudio" the lowest.
	AudioQuality string
}

type TranscodeConfig struct {
	FFmpegPath       string
	AudioBitrate     int // kbps
	MaxVideoDuration int // seconds
	Timeout          time.Duration
	MaxConcurrent    int
	ArchiveTimeout   time.Duration
}

type RateLimitConfig struct {
	Enabled     bool
	Backend     string
	Requests    int
	Window      time.Duration
	GlobalRPS   float64
	GlobalBurst int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type HistoryConfig struct {
	Backend string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Timeout  time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type S3Config struct {
	Enabled         bool
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	EndpointURL     string
	Prefix          string
}

type APIConfig struct {
	APIKey string
}

type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
	Profile          string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{}
	var err error

	// Server configuration
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// YouTube configuration
	if cfg.YouTube.FetchTimeout, err = getEnvDuration("YOUTUBE_FETCH_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	cfg.YouTube.AudioQuality = getEnv("AUDIO_QUALITY", "highestaudio")

	// Transcode configuration
	cfg.Transcode.FFmpegPath = getEnv("FFMPEG_PATH", "ffmpeg")
	cfg.Transcode.AudioBitrate = getEnvInt("AUDIO_BITRATE", 128)
	cfg.Transcode.MaxVideoDuration = getEnvInt("MAX_VIDEO_DURATION", 1800)
	if cfg.Transcode.Timeout, err = getEnvDuration("TRANSCODE_TIMEOUT", "10m"); err != nil {
		return nil, err
	}
	cfg.Transcode.MaxConcurrent = getEnvInt("MAX_CONCURRENT_CONVERSIONS", 4)
	if cfg.Transcode.ArchiveTimeout, err = getEnvDuration("ARCHIVE_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	// Rate limiting configuration
	cfg.RateLimit.Enabled = getEnvBool("RATE_LIMIT_ENABLED", false)
	cfg.RateLimit.Backend = getEnv("RATE_LIMIT_BACKEND", RateLimitBackendMemory)
	cfg.RateLimit.Requests = getEnvInt("RATE_LIMIT_REQUESTS", 10)
	if cfg.RateLimit.Window, err = getEnvDuration("RATE_LIMIT_WINDOW", "1m"); err != nil {
		return nil, err
	}
	cfg.RateLimit.GlobalRPS = getEnvFloat("RATE_LIMIT_GLOBAL_RPS", 0)
	cfg.RateLimit.GlobalBurst = getEnvInt("RATE_LIMIT_GLOBAL_BURST", 20)

	// Redis configuration
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// History configuration
	cfg.History.Backend = strings.ToLower(getEnv("HISTORY_BACKEND", HistoryBackendNone))

	// PostgreSQL configuration
	cfg.Postgres.Host = getEnv("POSTGRES_HOST", "localhost")
	cfg.Postgres.Port = getEnvInt("POSTGRES_PORT", 5432)
	cfg.Postgres.User = getEnv("POSTGRES_USER", "")
	cfg.Postgres.Password = getEnv("POSTGRES_PASSWORD", "")
	cfg.Postgres.Database = getEnv("POSTGRES_DATABASE", "ytmp3")
	cfg.Postgres.SSLMode = getEnv("POSTGRES_SSLMODE", "disable")
	if cfg.Postgres.Timeout, err = getEnvDuration("POSTGRES_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	// MongoDB configuration
	cfg.MongoDB.URI = getEnv("MONGODB_URI", "mongodb://localhost:27017")
	cfg.MongoDB.Database = getEnv("MONGODB_DATABASE", "ytmp3")
	if cfg.MongoDB.Timeout, err = getEnvDuration("MONGODB_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	// S3 archive configuration
	cfg.S3.Enabled = getEnvBool("ARCHIVE_ENABLED", false)
	cfg.S3.Region = getEnv("AWS_REGION", "us-east-1")
	cfg.S3.BucketName = getEnv("S3_BUCKET_NAME", "")
	cfg.S3.EndpointURL = getEnv("AWS_ENDPOINT_URL", "") // Optional for LocalStack
	cfg.S3.AccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.S3.SecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.S3.Prefix = getEnv("S3_PREFIX", "mp3")

	// API configuration
	cfg.API.APIKey = getEnv("API_KEY", "")

	// CORS configuration
	cfg.CORS = loadCORSConfig()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Transcode.AudioBitrate <= 0 {
		return fmt.Errorf("invalid AUDIO_BITRATE: %d", c.Transcode.AudioBitrate)
	}
	if c.Transcode.MaxVideoDuration <= 0 {
		return fmt.Errorf("invalid MAX_VIDEO_DURATION: %d", c.Transcode.MaxVideoDuration)
	}
	if c.Transcode.MaxConcurrent <= 0 {
		return fmt.Errorf("invalid MAX_CONCURRENT_CONVERSIONS: %d", c.Transcode.MaxConcurrent)
	}

	switch c.YouTube.AudioQuality {
	case "highestaudio", "lowestaudio":
	default:
		return fmt.Errorf("invalid AUDIO_QUALITY: %s", c.YouTube.AudioQuality)
	}

	switch c.RateLimit.Backend {
	case RateLimitBackendMemory, RateLimitBackendRedis:
	default:
		return fmt.Errorf("invalid RATE_LIMIT_BACKEND: %s", c.RateLimit.Backend)
	}
	if c.RateLimit.Enabled && c.RateLimit.Requests <= 0 {
		return fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %d", c.RateLimit.Requests)
	}

	switch c.History.Backend {
	case HistoryBackendNone:
	case HistoryBackendPostgres:
		if c.Postgres.User == "" {
			return fmt.Errorf("required environment variable POSTGRES_USER is not set")
		}
	case HistoryBackendMongoDB:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("required environment variable MONGODB_URI is not set")
		}
	default:
		return fmt.Errorf("invalid HISTORY_BACKEND: %s", c.History.Backend)
	}

	if c.S3.Enabled && c.S3.BucketName == "" {
		return fmt.Errorf("required environment variable S3_BUCKET_NAME is not set")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(strings.TrimSpace(value), ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// loadCORSConfig loads CORS configuration based on profile or custom settings
func loadCORSConfig() CORSConfig {
	profile := getEnv("CORS_PROFILE", "custom")

	switch profile {
	case "development":
		return getDevelopmentCORSConfig()
	case "production":
		return getProductionCORSConfig()
	default:
		return getCustomCORSConfig()
	}
}

func getDevelopmentCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled: getEnvBool("CORS_ENABLED", true),
		AllowedOrigins: getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:8080",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:8080",
		}),
		AllowedMethods: getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders: getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{
			"Origin", "Content-Type", "Accept", "X-Requested-With", "X-API-Key",
		}),
		ExposedHeaders: getEnvStringSlice("CORS_EXPOSED_HEADERS", []string{
			"Content-Disposition", "Content-Length", "X-Request-ID",
		}),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
		MaxAge:           getEnvInt("CORS_MAX_AGE", 86400),
		Profile:          "development",
	}
}

func getProductionCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:        getEnvBool("CORS_ENABLED", true),
		AllowedOrigins: getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{}),
		AllowedMethods: getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders: getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{
			"Origin", "Content-Type", "Accept",
		}),
		ExposedHeaders: getEnvStringSlice("CORS_EXPOSED_HEADERS", []string{
			"Content-Disposition", "Content-Length",
		}),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
		MaxAge:           getEnvInt("CORS_MAX_AGE", 3600),
		Profile:          "production",
	}
}

// getCustomCORSConfig returns CORS settings from individual environment variables
func getCustomCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled: getEnvBool("CORS_ENABLED", true),
		AllowedOrigins: getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
		}),
		AllowedMethods: getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders: getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{
			"Origin", "Content-Type", "Accept",
		}),
		ExposedHeaders:   getEnvStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Disposition"}),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
		MaxAge:           getEnvInt("CORS_MAX_AGE", 3600),
		Profile:          "custom",
	}
}
