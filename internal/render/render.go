// Package render rasterizes PDF pages for the OCR pass.
package render

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Renderer rasterizes pages of a single open PDF. It is not safe for
// concurrent use; callers own Close.
type Renderer struct {
	path string
	doc  *fitz.Document
}

// Open opens the PDF at path for rasterization.
func Open(path string) (*Renderer, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Renderer{path: path, doc: doc}, nil
}

// NumPages returns the page count of the open document.
func (r *Renderer) NumPages() int { return r.doc.NumPage() }

// PageImage rasterizes the given 1-based page at the requested resolution.
func (r *Renderer) PageImage(number int, dpi float64) (image.Image, error) {
	img, err := r.doc.ImageDPI(number-1, dpi)
	if err != nil {
		return nil, fmt.Errorf("render %s page %d: %w", r.path, number, err)
	}
	return img, nil
}

func (r *Renderer) Close() error { return r.doc.Close() }
