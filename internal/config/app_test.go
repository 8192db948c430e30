package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppDefaults(t *testing.T) {
	cfg, err := NewApp()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, 50, cfg.MaxSize)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.WSWriteWait)
	assert.Equal(t, int64(4096), cfg.WSReadLimit)
	assert.True(t, cfg.AllowsOrigin("https://anywhere.example"))
}

func TestNewAppFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DEVELOPMENT", "1")
	t.Setenv("GAME_MAX_SIZE", "20")
	t.Setenv("SESSION_TTL", "90s")

	cfg, err := NewApp()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Port)
	assert.True(t, cfg.Development)
	assert.Equal(t, 20, cfg.MaxSize)
	assert.Equal(t, 90*time.Second, cfg.SessionTTL)
}

func TestAllowedOriginsFromEnv(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example https://b.example")

	cfg, err := NewApp()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.AllowsOrigin("https://b.example"))
	assert.True(t, cfg.AllowsOrigin("HTTPS://A.EXAMPLE"))
	assert.False(t, cfg.AllowsOrigin("https://c.example"))
}

func TestNewWebSocketFallsBackToDefaults(t *testing.T) {
	ws, err := NewWebSocket(&App{})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, ws.WriteWait)
	assert.Equal(t, int64(4096), ws.ReadLimit)
}

func TestNewAppRejectsBadValues(t *testing.T) {
	t.Setenv("GAME_MAX_SIZE", "0")
	_, err := NewApp()
	assert.Error(t, err)

	t.Setenv("GAME_MAX_SIZE", "10")
	t.Setenv("WS_READ_LIMIT", "0")
	_, err = NewApp()
	assert.Error(t, err)
}
