package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderStub   = "stub"
)

type Config struct {
	Port    string
	GinMode string

	Provider      string
	GeminiModel   string
	GeminiBaseURL string

	FetchTimeout    time.Duration
	MaxMediaBytes   int64
	PlatformDomains []string

	RedisURL   string
	RateLimit  int
	RateWindow time.Duration

	AllowedOrigins []string

	LogLevel         string
	LogStreamEnabled bool
}

func Load() (*Config, error) {
	godotenv.Load()

	return &Config{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),

		Provider:      strings.ToLower(getEnvOrDefault("PROVIDER", ProviderGemini)),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-3-flash-preview"),
		GeminiBaseURL: getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		FetchTimeout:    getDurationEnv("FETCH_TIMEOUT", 30*time.Second),
		MaxMediaBytes:   int64(getIntEnv("MAX_MEDIA_BYTES", 20<<20)),
		PlatformDomains: getListEnv("PLATFORM_DOMAINS"),

		RedisURL:   os.Getenv("REDIS_URL"),
		RateLimit:  getIntEnv("RATE_LIMIT", 10),
		RateWindow: getDurationEnv("RATE_WINDOW", time.Minute),

		AllowedOrigins: getListEnv("ALLOWED_ORIGINS"),

		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		LogStreamEnabled: os.Getenv("LOG_STREAM_ENABLED") == "true",
	}, nil
}

// APIKey reads the provider credential at call time. A missing key is not an
// error here; the provider rejects the request instead.
func APIKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("API_KEY")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, strings.ToLower(item))
		}
	}
	return out
}
