package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddress)
	assert.Equal(t, 10*time.Second, cfg.SearchTimeout)
	assert.True(t, cfg.FeaturedFallback)
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.TrackingEnabled())
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Shutdown)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("API_URL", "http://api.test/properties")
	t.Setenv("SEARCH_TIMEOUT", "3s")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("FEATURED_FALLBACK", "false")
	t.Setenv("READ_HEADER_TIMEOUT", "2s")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://api.test/properties", cfg.ApiUrl)
	assert.Equal(t, 3*time.Second, cfg.SearchTimeout)
	assert.False(t, cfg.FeaturedFallback)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 2*time.Second, cfg.Timeouts.ReadHeader)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("SEARCH_TIMEOUT", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("loud")
	assert.Error(t, err)
}
