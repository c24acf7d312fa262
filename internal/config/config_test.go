package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4.0, cfg.Layout.Caption.Offset)
	assert.Equal(t, "mm", cfg.Layout.Caption.OffsetUnit)
	assert.Equal(t, 50.0, cfg.OCR.Caption.Offset)
	assert.Equal(t, "px", cfg.OCR.Caption.OffsetUnit)
	assert.Equal(t, 250.0, cfg.OCR.Resolution)
	assert.True(t, cfg.OCR.FallbackOnParseError)
	assert.Contains(t, cfg.Layout.Caption.Keywords, "figuur")
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
		{"bad direction", func(c *Config) { c.Layout.Caption.Direction = "sideways" }},
		{"bad offset unit", func(c *Config) { c.OCR.Caption.OffsetUnit = "em" }},
		{"negative offset", func(c *Config) { c.Layout.Caption.Offset = -1 }},
		{"zero resolution", func(c *Config) { c.OCR.Resolution = 0 }},
		{"inverted aspect bounds", func(c *Config) { c.OCR.TallAspect = 30 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoaderDefaults(t *testing.T) {
	loader := NewLoaderWith(viper.New())

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoaderWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visextract.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
ocr:
  resolution: 300
  caption:
    offset: 80
`), 0o644))

	cfg, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 300.0, cfg.OCR.Resolution)
	assert.Equal(t, 80.0, cfg.OCR.Caption.Offset)
	// Defaults still fill unset keys.
	assert.Equal(t, "px", cfg.OCR.Caption.OffsetUnit)
	assert.Equal(t, 120.0, cfg.Layout.MinImageWidth)
}

func TestLoaderWithMissingFile(t *testing.T) {
	_, err := NewLoaderWith(viper.New()).LoadWithFile("/nonexistent/visextract.yaml")
	assert.Error(t, err)
}

func TestLoaderRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visextract.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: trace\n"), 0o644))

	_, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	assert.ErrorContains(t, err, "invalid log level")
}
