// Package config defines the runtime configuration for visextract and loads
// it from files, environment variables and flags.
package config

import (
	"fmt"
	"strings"

	"github.com/visarchlab/visextract/internal/geometry"
)

// Config represents the complete configuration for the visextract
// application. It covers both extraction passes and can be loaded from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Resolver configuration for repository web URLs
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver" json:"resolver"`

	// Layout analysis settings
	Layout LayoutConfig `mapstructure:"layout" yaml:"layout" json:"layout"`

	// OCR fallback settings
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`
}

// ResolverConfig configures how entry UUIDs map to public web URLs.
type ResolverConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
}

// CaptionConfig controls caption matching for one extraction pass.
type CaptionConfig struct {
	Offset     float64  `mapstructure:"offset" yaml:"offset" json:"offset"`
	OffsetUnit string   `mapstructure:"offset_unit" yaml:"offset_unit" json:"offset_unit"`
	Direction  string   `mapstructure:"direction" yaml:"direction" json:"direction"`
	Keywords   []string `mapstructure:"keywords" yaml:"keywords" json:"keywords"`
}

// LayoutConfig contains settings for the layout analysis pass.
type LayoutConfig struct {
	Caption CaptionConfig `mapstructure:"caption" yaml:"caption" json:"caption"`

	// Minimum placed size, in points, for an embedded image to be kept.
	MinImageWidth  float64 `mapstructure:"min_image_width" yaml:"min_image_width" json:"min_image_width"`
	MinImageHeight float64 `mapstructure:"min_image_height" yaml:"min_image_height" json:"min_image_height"`
}

// OCRConfig contains settings for the OCR fallback pass.
type OCRConfig struct {
	Caption CaptionConfig `mapstructure:"caption" yaml:"caption" json:"caption"`

	// Minimum size, in pixels, for a detected region to count as a figure.
	MinImageWidth  float64 `mapstructure:"min_image_width" yaml:"min_image_width" json:"min_image_width"`
	MinImageHeight float64 `mapstructure:"min_image_height" yaml:"min_image_height" json:"min_image_height"`

	// Resolution, in DPI, at which candidate pages are rasterized.
	Resolution float64 `mapstructure:"resolution" yaml:"resolution" json:"resolution"`

	// ResizeLimit caps the raster's width and height, in pixels, before it
	// is handed to Tesseract.
	ResizeLimit int `mapstructure:"resize_limit" yaml:"resize_limit" json:"resize_limit"`

	// MinCropSize is the smallest side, in pixels, a detected region may
	// have and still be exported.
	MinCropSize float64 `mapstructure:"min_crop_size" yaml:"min_crop_size" json:"min_crop_size"`

	// WideAspect and TallAspect bound the aspect ratios of regions kept as
	// figure candidates: wider than WideAspect or narrower than TallAspect
	// is discarded.
	WideAspect float64 `mapstructure:"wide_aspect" yaml:"wide_aspect" json:"wide_aspect"`
	TallAspect float64 `mapstructure:"tall_aspect" yaml:"tall_aspect" json:"tall_aspect"`

	// Languages passed to Tesseract.
	Languages []string `mapstructure:"languages" yaml:"languages" json:"languages"`

	// FallbackOnParseError promotes every page of an unparseable PDF to an
	// OCR candidate instead of skipping the document.
	FallbackOnParseError bool `mapstructure:"fallback_on_parse_error" yaml:"fallback_on_parse_error" json:"fallback_on_parse_error"`
}

// DefaultConfig returns a configuration with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Resolver: ResolverConfig{
			BaseURL: "http://resolver.tudelft.nl/",
		},
		Layout: LayoutConfig{
			Caption: CaptionConfig{
				Offset:     4,
				OffsetUnit: "mm",
				Direction:  "down",
				Keywords:   []string{"figure", "caption", "figuur"},
			},
			MinImageWidth:  120,
			MinImageHeight: 120,
		},
		OCR: OCRConfig{
			Caption: CaptionConfig{
				Offset:     50,
				OffsetUnit: "px",
				Direction:  "down",
				Keywords:   []string{"figure", "caption", "figuur"},
			},
			MinImageWidth:        120,
			MinImageHeight:       120,
			Resolution:           250,
			ResizeLimit:          30000,
			MinCropSize:          50,
			WideAspect:           20,
			TallAspect:           1.0 / 20.0,
			Languages:            []string{"eng"},
			FallbackOnParseError: true,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if err := c.Layout.Caption.validate(); err != nil {
		return fmt.Errorf("layout caption: %w", err)
	}
	if err := c.OCR.Caption.validate(); err != nil {
		return fmt.Errorf("ocr caption: %w", err)
	}

	if c.Layout.MinImageWidth < 0 || c.Layout.MinImageHeight < 0 {
		return fmt.Errorf("layout minimum image size must not be negative")
	}
	if c.OCR.MinImageWidth < 0 || c.OCR.MinImageHeight < 0 {
		return fmt.Errorf("ocr minimum image size must not be negative")
	}
	if c.OCR.Resolution <= 0 {
		return fmt.Errorf("ocr resolution must be positive, got %v", c.OCR.Resolution)
	}
	if c.OCR.ResizeLimit < 0 {
		return fmt.Errorf("ocr resize limit must not be negative")
	}
	if c.OCR.WideAspect <= 0 || c.OCR.TallAspect <= 0 {
		return fmt.Errorf("ocr aspect bounds must be positive")
	}
	if c.OCR.TallAspect >= c.OCR.WideAspect {
		return fmt.Errorf("ocr tall aspect bound %v must be below wide bound %v",
			c.OCR.TallAspect, c.OCR.WideAspect)
	}
	return nil
}

func (c *CaptionConfig) validate() error {
	if c.Offset < 0 {
		return fmt.Errorf("offset must not be negative, got %v", c.Offset)
	}
	switch geometry.Unit(c.OffsetUnit) {
	case geometry.UnitPoints, geometry.UnitPixels, geometry.UnitMillimeters:
	default:
		return fmt.Errorf("invalid offset unit: %s", c.OffsetUnit)
	}
	if _, err := geometry.ParseDirection(c.Direction); err != nil {
		return err
	}
	return nil
}
