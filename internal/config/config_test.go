package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr())
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "sid", cfg.Session.CookieName)
	assert.False(t, cfg.MCP.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgresql://localhost/notepad_db")
	t.Setenv("JWT_EXPIRATION", "1h")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("MCP_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.True(t, cfg.MCP.Enabled)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad duration", env: map[string]string{"JWT_EXPIRATION": "soon"}},
		{name: "zero sweep interval", env: map[string]string{"SESSION_SWEEP_INTERVAL": "0s"}},
		{name: "negative session ttl", env: map[string]string{"SESSION_TTL": "-1h"}},
		{name: "negative jwt expiration", env: map[string]string{"JWT_EXPIRATION": "-5m"}},
		{name: "zero read timeout", env: map[string]string{"SERVER_READ_TIMEOUT": "0"}},
		{name: "bad session backend", env: map[string]string{"SESSION_BACKEND": "memcached"}},
		{name: "default secret in production", env: map[string]string{"ENV": "production"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
