package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "visextract"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "VISEXTRACT"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader backed by the global viper instance, so flag
// bindings made by the commands take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWith creates a loader backed by the given viper instance. Used in
// tests to avoid global state.
func NewLoaderWith(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load loads configuration from files, environment variables and defaults,
// then validates it. A missing configuration file is not an error.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.unmarshalAndValidate()
}

// LoadWithFile loads configuration from a specific file path instead of the
// search paths. An empty path falls back to Load.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	return l.unmarshalAndValidate()
}

func (l *Loader) unmarshalAndValidate() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// GetViper exposes the underlying viper instance for flag binding.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths registers the search locations for configuration files:
// working directory first, then the user's config directory.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "visextract"))
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

// setDefaults seeds viper with DefaultConfig so partial files and
// environments still produce a complete configuration.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("resolver.base_url", defaults.Resolver.BaseURL)

	l.v.SetDefault("layout.caption.offset", defaults.Layout.Caption.Offset)
	l.v.SetDefault("layout.caption.offset_unit", defaults.Layout.Caption.OffsetUnit)
	l.v.SetDefault("layout.caption.direction", defaults.Layout.Caption.Direction)
	l.v.SetDefault("layout.caption.keywords", defaults.Layout.Caption.Keywords)
	l.v.SetDefault("layout.min_image_width", defaults.Layout.MinImageWidth)
	l.v.SetDefault("layout.min_image_height", defaults.Layout.MinImageHeight)

	l.v.SetDefault("ocr.caption.offset", defaults.OCR.Caption.Offset)
	l.v.SetDefault("ocr.caption.offset_unit", defaults.OCR.Caption.OffsetUnit)
	l.v.SetDefault("ocr.caption.direction", defaults.OCR.Caption.Direction)
	l.v.SetDefault("ocr.caption.keywords", defaults.OCR.Caption.Keywords)
	l.v.SetDefault("ocr.min_image_width", defaults.OCR.MinImageWidth)
	l.v.SetDefault("ocr.min_image_height", defaults.OCR.MinImageHeight)
	l.v.SetDefault("ocr.resolution", defaults.OCR.Resolution)
	l.v.SetDefault("ocr.resize_limit", defaults.OCR.ResizeLimit)
	l.v.SetDefault("ocr.min_crop_size", defaults.OCR.MinCropSize)
	l.v.SetDefault("ocr.wide_aspect", defaults.OCR.WideAspect)
	l.v.SetDefault("ocr.tall_aspect", defaults.OCR.TallAspect)
	l.v.SetDefault("ocr.languages", defaults.OCR.Languages)
	l.v.SetDefault("ocr.fallback_on_parse_error", defaults.OCR.FallbackOnParseError)
}
