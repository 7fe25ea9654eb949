package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("BACKEND_ADDR", "backend:3000")

	cfg, err := New()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.EnableTracing)
	assert.False(t, cfg.EnableProfiler)
	assert.Equal(t, "backend:3000", cfg.Backend.Addr)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 2, cfg.Session.ProfileRetries)
}

func TestNew_ReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("ENABLE_TRACING", "true")
	t.Setenv("BACKEND_ADDR", "backend:3000")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("SESSION_PROFILE_RETRIES", "5")
	t.Setenv("CHAT_ENDPOINT", "ws://chat:4000/ws")

	cfg, err := New()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.EnableTracing)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 5, cfg.Session.ProfileRetries)
	assert.Equal(t, "ws://chat:4000/ws", cfg.Chat.Endpoint)
}

func TestNew_BackendAddrRequired(t *testing.T) {
	_, err := New()

	require.Error(t, err)
}
