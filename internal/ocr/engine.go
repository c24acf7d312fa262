// Package ocr recognizes regions on rasterized PDF pages with Tesseract and
// turns its hOCR output into image and text regions.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// EngineConfig selects the Tesseract model and page segmentation behavior.
type EngineConfig struct {
	// Languages passed to Tesseract, e.g. "eng" or "eng+nld".
	Languages []string
	// PageSegMode is the Tesseract segmentation mode. Zero keeps the
	// gosseract default (fully automatic segmentation).
	PageSegMode gosseract.PageSegMode
}

// Engine wraps a Tesseract client. It is not safe for concurrent use;
// callers own Close.
type Engine struct {
	client *gosseract.Client
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	client := gosseract.NewClient()
	if len(cfg.Languages) > 0 {
		if err := client.SetLanguage(cfg.Languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("set language: %w", err)
		}
	}
	if cfg.PageSegMode != 0 {
		if err := client.SetPageSegMode(cfg.PageSegMode); err != nil {
			client.Close()
			return nil, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	return &Engine{client: client}, nil
}

// AnalyzePage runs recognition on a rasterized page and returns its regions.
func (e *Engine) AnalyzePage(img image.Image) (*PageRegions, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set page image: %w", err)
	}
	hocr, err := e.client.HOCRText()
	if err != nil {
		return nil, fmt.Errorf("recognize page: %w", err)
	}
	return ParseHOCR(hocr)
}

func (e *Engine) Close() error { return e.client.Close() }
