package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "SERVER_HOST", "ALLOWED_ORIGINS", "DEFAULT_CONTENT",
		"SEND_BUFFER_SIZE", "LOCK_SWEEP_INTERVAL", "PERMISSIVE_CONTENT_UPDATES",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("JAEGER_ENDPOINT", "")
	require.NoError(t, os.Unsetenv("JAEGER_ENDPOINT"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "", cfg.DefaultContent)
	assert.Equal(t, 256, cfg.SendBufferSize)
	assert.Equal(t, time.Duration(0), cfg.LockSweepInterval)
	assert.False(t, cfg.PermissiveContentUpdates)
	assert.Equal(t, "http://localhost:14268/api/traces", cfg.JaegerEndpoint)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Setenv("DEFAULT_CONTENT", "<mxGraphModel/>")
	t.Setenv("SEND_BUFFER_SIZE", "32")
	t.Setenv("LOCK_SWEEP_INTERVAL", "30s")
	t.Setenv("PERMISSIVE_CONTENT_UPDATES", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "<mxGraphModel/>", cfg.DefaultContent)
	assert.Equal(t, 32, cfg.SendBufferSize)
	assert.Equal(t, 30*time.Second, cfg.LockSweepInterval)
	assert.True(t, cfg.PermissiveContentUpdates)
}

func TestLoadEmptyJaegerEndpointDisablesTracing(t *testing.T) {
	t.Setenv("JAEGER_ENDPOINT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.JaegerEndpoint)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"SEND_BUFFER_SIZE":           "lots",
		"LOCK_SWEEP_INTERVAL":        "soon",
		"PERMISSIVE_CONTENT_UPDATES": "maybe",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}

	t.Run("non-positive buffer", func(t *testing.T) {
		t.Setenv("SEND_BUFFER_SIZE", "0")
		_, err := Load()
		assert.Error(t, err)
	})
}
