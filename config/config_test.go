package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "PROVIDER", "GEMINI_MODEL", "FETCH_TIMEOUT", "MAX_MEDIA_BYTES", "PLATFORM_DOMAINS", "RATE_LIMIT", "RATE_WINDOW", "LOG_STREAM_ENABLED", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-3-flash-preview", cfg.GeminiModel)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, int64(20<<20), cfg.MaxMediaBytes)
	assert.Empty(t, cfg.PlatformDomains)
	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.LogStreamEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PROVIDER", "STUB")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("MAX_MEDIA_BYTES", "1024")
	t.Setenv("PLATFORM_DOMAINS", " TikTok.com, ,instagram.com")
	t.Setenv("RATE_WINDOW", "not-a-duration")
	t.Setenv("LOG_STREAM_ENABLED", "true")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000,https://factcheck.example.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderStub, cfg.Provider)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, int64(1024), cfg.MaxMediaBytes)
	assert.Equal(t, []string{"tiktok.com", "instagram.com"}, cfg.PlatformDomains)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Equal(t, []string{"http://localhost:3000", "https://factcheck.example.org"}, cfg.AllowedOrigins)
	assert.True(t, cfg.LogStreamEnabled)
}

func TestAPIKeyReadAtCallTime(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	assert.Empty(t, APIKey())

	t.Setenv("API_KEY", "legacy")
	assert.Equal(t, "legacy", APIKey())

	t.Setenv("GEMINI_API_KEY", "primary")
	assert.Equal(t, "primary", APIKey())
}
