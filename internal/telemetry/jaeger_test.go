package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJaegerDisabled(t *testing.T) {
	shutdown, err := InitJaeger("drawsync", "test", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitJaegerWithEndpoint(t *testing.T) {
	// The exporter does not connect until spans are flushed
	shutdown, err := InitJaeger("drawsync", "test", "http://127.0.0.1:1/api/traces")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
