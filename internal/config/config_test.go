package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestDirs(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LOTPILOT_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("LOTPILOT_LOG_DIR", filepath.Join(dir, "logs"))
}

func TestLoad_Defaults(t *testing.T) {
	setTestDirs(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, "Premium Auto Sales", cfg.DealerName)
	assert.Equal(t, 0.05, cfg.MinProfitMargin)
	assert.Equal(t, 0.15, cfg.MaxPriceAdjustment)
	assert.Equal(t, 60, cfg.RunIntervalMinutes)
	assert.True(t, cfg.DryRun, "dry-run must be the default")
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Empty(t, cfg.BedrockModelID)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setTestDirs(t)
	t.Setenv("GO_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEALER_NAME", "Lakeside Motors")
	t.Setenv("MIN_PROFIT_MARGIN", "0.08")
	t.Setenv("AGENT_RUN_INTERVAL_MINUTES", "15")
	t.Setenv("AGENT_DRY_RUN", "false")
	t.Setenv("BEDROCK_MODEL_ID", "anthropic.claude-3-sonnet")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "Lakeside Motors", cfg.DealerName)
	assert.Equal(t, 0.08, cfg.MinProfitMargin)
	assert.Equal(t, 15, cfg.RunIntervalMinutes)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, "anthropic.claude-3-sonnet", cfg.BedrockModelID)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	setTestDirs(t)
	t.Setenv("GO_PORT", "not-a-number")
	t.Setenv("AGENT_DRY_RUN", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.Port)
	assert.True(t, cfg.DryRun)
}

func TestLoad_CreatesDirectories(t *testing.T) {
	setTestDirs(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.DirExists(t, cfg.DataDir)
	assert.DirExists(t, cfg.LogDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.RunIntervalMinutes = 0 },
			wantErr: true,
		},
		{
			name:    "negative margin",
			mutate:  func(c *Config) { c.MinProfitMargin = -0.1 },
			wantErr: true,
		},
		{
			name:    "margin of one",
			mutate:  func(c *Config) { c.MinProfitMargin = 1.0 },
			wantErr: true,
		},
		{
			name:    "zero max adjustment",
			mutate:  func(c *Config) { c.MaxPriceAdjustment = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				RunIntervalMinutes: 60,
				MinProfitMargin:    0.05,
				MaxPriceAdjustment: 0.15,
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
