// Package visual holds the data model for extracted figures: regions grouped
// per page, the Visual records exported per figure, and the per-entry
// aggregate that associates them with a bibliographic record.
package visual

import (
	"errors"
	"image"
	"path/filepath"

	"github.com/visarchlab/visextract/internal/geometry"
)

var (
	// ErrCaptionAlreadySet reports an attempt to attach a second caption.
	ErrCaptionAlreadySet = errors.New("caption already set")
	// ErrLocationAlreadySet reports an attempt to overwrite a saved-file location.
	ErrLocationAlreadySet = errors.New("location already set")
)

// FilePath is a file location split into a root directory and a path
// relative to it, so exported metadata stays relocatable.
type FilePath struct {
	Root string `json:"root"`
	Path string `json:"path"`
}

// Full returns the joined absolute-or-relative path.
func (p FilePath) Full() string { return filepath.Join(p.Root, p.Path) }

// Document identifies one source PDF within an entry.
type Document struct {
	Location FilePath `json:"location"`
}

// TextRegion is a detected block of text with its geometry. Text is the
// extracted content concatenated in reading order; ID carries the OCR region
// identifier when the region came from the OCR pass.
type TextRegion struct {
	ID   string
	Box  geometry.BoundingBox
	Text string
}

// ImageRegion is a detected image with its geometry and, once matched, at
// most one caption. Attaching a second caption is a conflict, not an
// overwrite.
type ImageRegion struct {
	ID    string
	Box   geometry.BoundingBox
	Image image.Image // decoded embedded image when layout-derived, nil for OCR regions

	// DecodeErr records a failed image-stream decode. The region still takes
	// part in caption matching, but exporting it is skipped with a warning.
	DecodeErr error

	caption    string
	hasCaption bool
}

// AttachCaption sets the region's caption. It fails with
// ErrCaptionAlreadySet when one is already attached, leaving it unchanged.
func (r *ImageRegion) AttachCaption(caption string) error {
	if r.hasCaption {
		return ErrCaptionAlreadySet
	}
	r.caption = caption
	r.hasCaption = true
	return nil
}

// Caption returns the attached caption, if any.
func (r *ImageRegion) Caption() (string, bool) { return r.caption, r.hasCaption }

// Page groups the regions detected on one page. The page owns its regions
// until visuals are extracted from them.
type Page struct {
	Number int
	Images []*ImageRegion
	Texts  []TextRegion
}

// NeedsOCR reports whether the layout pass found no images on this page,
// making it a candidate for the OCR fallback.
func (p *Page) NeedsOCR() bool { return len(p.Images) == 0 }

// Visual is the externally visible unit of output: one extracted figure with
// its source document, page, geometry and optional caption. The saved-file
// location is set once after a successful export; everything else is fixed
// at construction.
type Visual struct {
	doc  *Document
	page int
	box  geometry.BoundingBox

	caption    string
	hasCaption bool

	location    FilePath
	hasLocation bool
}

// NewVisual creates a Visual for a region on the given document page.
func NewVisual(doc *Document, page int, box geometry.BoundingBox) *Visual {
	return &Visual{doc: doc, page: page, box: box}
}

// Document returns the source document.
func (v *Visual) Document() *Document { return v.doc }

// Page returns the 1-based source page number.
func (v *Visual) Page() int { return v.page }

// Box returns the visual's bounding box in its declared unit.
func (v *Visual) Box() geometry.BoundingBox { return v.box }

// SetCaption attaches the caption. A second attempt fails with
// ErrCaptionAlreadySet and leaves the original caption intact.
func (v *Visual) SetCaption(caption string) error {
	if v.hasCaption {
		return ErrCaptionAlreadySet
	}
	v.caption = caption
	v.hasCaption = true
	return nil
}

// Caption returns the caption, if one was resolved.
func (v *Visual) Caption() (string, bool) { return v.caption, v.hasCaption }

// SetLocation records where the exported image file was written.
func (v *Visual) SetLocation(loc FilePath) error {
	if v.hasLocation {
		return ErrLocationAlreadySet
	}
	v.location = loc
	v.hasLocation = true
	return nil
}

// Location returns the exported file location, if the export succeeded.
func (v *Visual) Location() (FilePath, bool) { return v.location, v.hasLocation }
