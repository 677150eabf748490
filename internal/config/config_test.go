package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.ServerReadTimeout)
	assert.Equal(t, 200, cfg.MaxTranscript)
	assert.Equal(t, 60, cfg.RateLimitRequests)
	assert.Equal(t, 30, cfg.WebhookRateLimit)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TracingEnabled)
	assert.Empty(t, cfg.NATSURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CARRIER_ACCOUNT_SID", "AC999")
	t.Setenv("MAX_TRANSCRIPT", "50")
	t.Setenv("CARRIER_TIMEOUT", "5s")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "AC999", cfg.CarrierAccountSID)
	assert.Equal(t, 50, cfg.MaxTranscript)
	assert.Equal(t, 5*time.Second, cfg.CarrierTimeout)
	assert.True(t, cfg.TracingEnabled)
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_TRANSCRIPT", "not-a-number")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")

	cfg := Load()

	assert.Equal(t, 200, cfg.MaxTranscript)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
}
