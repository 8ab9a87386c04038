//go:build integration

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestShippedConfigFile_Integration loads the config.yaml checked in at the
// repository root and verifies it parses with the defaults the binaries
// expect on a fresh checkout.
func TestShippedConfigFile_Integration(t *testing.T) {
	configPath, err := filepath.Abs(filepath.Join("..", "..", "config.yaml"))
	require.NoError(t, err)

	t.Setenv("REPORTDESK_CONFIG_FILE", configPath)

	cfg, err := NewConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Contains(t, cfg.Server.CORSOrigins, "http://localhost:5173")
	assert.Equal(t, int64(16*1024*1024), cfg.Server.MaxUploadBytes)

	assert.Equal(t, "reports.db", cfg.Database.Path)
	assert.Equal(t, 1, cfg.Database.MaxOpenConns)
	assert.Equal(t, 1, cfg.Database.MaxIdleConns)

	assert.Equal(t, "uploads", cfg.Storage.UploadsDir)
	assert.True(t, cfg.Export.PDFEnabled)

	assert.Equal(t, "reportdesk", cfg.OpenTelemetry.ServiceName)
	assert.Equal(t, "grpc", cfg.OpenTelemetry.Protocol)
	assert.Equal(t, 1.0, cfg.OpenTelemetry.SamplingRate)
}
