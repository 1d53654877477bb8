package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "thresholds.yaml", cfg.Thresholds.Path)
	assert.Equal(t, ":memory:", cfg.Store.DSN)
	assert.Equal(t, int64(16<<20), cfg.Limits.UploadMaxBytes)
	assert.Equal(t, 5.0, cfg.Limits.RequestsPerSec)
	assert.Equal(t, 10, cfg.Limits.Burst)

	// CCA has no sensible default; calculators that need it reject zero.
	assert.Equal(t, 0.0, cfg.Scheme.CCA)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("IPASTAT_SERVER_PORT", "8080")
	t.Setenv("IPASTAT_LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	assert.Error(t, err)
}
