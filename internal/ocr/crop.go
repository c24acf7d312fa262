package ocr

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/visarchlab/visextract/internal/geometry"
)

// FitWithin downscales img so neither dimension exceeds max pixels,
// preserving aspect ratio. Tesseract rejects inputs past its internal size
// limit, so oversized rasters are shrunk before recognition.
func FitWithin(img image.Image, max int) image.Image {
	if max <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= max && b.Dy() <= max {
		return img
	}
	return imaging.Fit(img, max, max, imaging.Lanczos)
}

// CropRegion cuts the given pixel-space box out of a rasterized page. The
// crop is clamped to the page bounds.
func CropRegion(page image.Image, box geometry.BoundingBox) image.Image {
	r := image.Rect(int(box.X0), int(box.Y0), int(box.X1), int(box.Y1))
	return imaging.Crop(page, r.Intersect(page.Bounds()))
}

// MinCropSize is the smallest width or height, in pixels, a region may have
// and still be worth saving as a standalone image.
const MinCropSize = 50

// CroppableRegions returns the ids of boxes large enough to export, i.e.
// whose smaller side is at least minSize pixels.
func CroppableRegions(boxes map[string]geometry.BoundingBox, minSize float64) []string {
	var ids []string
	for id, box := range boxes {
		if min(box.Width(), box.Height()) >= minSize {
			ids = append(ids, id)
		}
	}
	return ids
}
