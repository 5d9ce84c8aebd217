package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"WS_PORT", "HTTP_PORT", "RPC_PORT", "API_KEY", "DATABASE_URL", "WS_PING_INTERVAL_MS", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, 8090, cfg.WSPort)
	assert.Equal(t, 8091, cfg.HTTPPort)
	assert.Equal(t, 8092, cfg.RPCPort)
	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, 30*time.Second, cfg.PingInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WS_PORT", "9000")
	t.Setenv("RPC_PORT", "0")
	t.Setenv("API_KEY", "secret")
	t.Setenv("DATABASE_URL", ":memory:")
	t.Setenv("WS_READ_TIMEOUT_MS", "1500")
	t.Setenv("HTTP_PORT", "not-a-number")

	cfg := Load()
	assert.Equal(t, 9000, cfg.WSPort)
	assert.Equal(t, 0, cfg.RPCPort)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, ":memory:", cfg.DatabaseURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.ReadTimeout)
	assert.Equal(t, 8091, cfg.HTTPPort, "invalid values fall back to the default")
}
