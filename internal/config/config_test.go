package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, "defaultEncryptionKey123", cfg.EncryptionKey)
	assert.False(t, cfg.SeedDemoData)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_EXPIRY", "15m")
	t.Setenv("SEED_DEMO_DATA", "true")
	t.Setenv("JWT_SECRET", "override")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.TokenExpiry)
	assert.True(t, cfg.SeedDemoData)
	assert.Equal(t, "override", cfg.JWTSecret)
}

func TestNewConfigRejectsBadValues(t *testing.T) {
	t.Setenv("TOKEN_EXPIRY", "not-a-duration")
	_, err := NewConfig()
	assert.Error(t, err)
}
