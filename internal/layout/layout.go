// Package layout extracts positioned image and text regions from born-digital
// PDF pages. All geometry leaves this package normalized to a top-left origin
// in points, so downstream caption matching can treat "down" as increasing y
// regardless of the PDF coordinate system.
package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/visarchlab/visextract/internal/geometry"
	"github.com/visarchlab/visextract/internal/visual"
)

// ParseError marks a document-level parse failure. The document yields no
// regions at all; callers decide whether its pages fall through to OCR.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Settings controls which detected images survive the layout pass. Sizes are
// in points; zero disables the corresponding check.
type Settings struct {
	MinImageWidth  float64
	MinImageHeight float64
}

// Analyzer walks a PDF page by page and produces visual.Pages with image and
// text regions in normalized coordinates.
type Analyzer struct {
	settings Settings
}

func NewAnalyzer(settings Settings) *Analyzer {
	return &Analyzer{settings: settings}
}

// ExtractPages parses the PDF at path and returns one Page per document page,
// in order. Any reader or extractor failure is returned as a *ParseError and
// no partial result is produced.
func (a *Analyzer) ExtractPages(path string) ([]*visual.Page, error) {
	reader, f, err := model.NewPdfReaderFromFile(path, nil)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	pages := make([]*visual.Page, 0, numPages)
	for n := 1; n <= numPages; n++ {
		page, err := a.extractPage(reader, n)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (a *Analyzer) extractPage(reader *model.PdfReader, number int) (*visual.Page, error) {
	page, err := reader.GetPage(number)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", number, err)
	}
	mediaBox, err := page.GetMediaBox()
	if err != nil {
		return nil, fmt.Errorf("page %d media box: %w", number, err)
	}
	pageHeight := mediaBox.Ury - mediaBox.Lly

	ex, err := extractor.New(page)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", number, err)
	}

	images, err := a.extractImages(ex, pageHeight)
	if err != nil {
		return nil, fmt.Errorf("page %d images: %w", number, err)
	}
	texts, err := extractTexts(ex, pageHeight)
	if err != nil {
		return nil, fmt.Errorf("page %d text: %w", number, err)
	}

	return &visual.Page{Number: number, Images: images, Texts: texts}, nil
}

func (a *Analyzer) extractImages(ex *extractor.Extractor, pageHeight float64) ([]*visual.ImageRegion, error) {
	pageImages, err := ex.ExtractPageImages(nil)
	if err != nil {
		return nil, err
	}

	regions := make(map[string]*visual.ImageRegion, len(pageImages.Images))
	boxes := make(map[string]geometry.BoundingBox, len(pageImages.Images))
	for i, mark := range pageImages.Images {
		// ImageMark positions are the lower-left corner in PDF coordinates.
		box, err := geometry.FromCorners(
			mark.X, pageHeight-(mark.Y+mark.Height),
			mark.X+mark.Width, pageHeight-mark.Y,
			geometry.UnitPoints,
		)
		if err != nil {
			continue // degenerate placement, nothing to extract
		}
		region := &visual.ImageRegion{ID: fmt.Sprintf("im%d", i+1), Box: box}
		region.Image, region.DecodeErr = mark.Image.ToGoImage()
		regions[region.ID] = region
		boxes[region.ID] = box
	}

	kept := geometry.FilterBySize(boxes, geometry.SizeFilter{
		MinWidth:  a.settings.MinImageWidth,
		MinHeight: a.settings.MinImageHeight,
	})

	out := make([]*visual.ImageRegion, 0, len(kept))
	for id := range kept {
		out = append(out, regions[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func extractTexts(ex *extractor.Extractor, pageHeight float64) ([]visual.TextRegion, error) {
	pageText, _, _, err := ex.ExtractPageText()
	if err != nil {
		return nil, err
	}

	glyphs := make([]extractor.TextMark, 0, pageText.Marks().Len())
	for _, mark := range pageText.Marks().Elements() {
		if mark.Meta || strings.TrimSpace(mark.Text) == "" {
			continue
		}
		glyphs = append(glyphs, mark)
	}
	if len(glyphs) == 0 {
		return nil, nil
	}

	lines := groupLines(glyphs)
	blocks := groupBlocks(lines)

	regions := make([]visual.TextRegion, 0, len(blocks))
	for i, blk := range blocks {
		box, err := geometry.FromCorners(
			blk.llx, pageHeight-blk.ury,
			blk.urx, pageHeight-blk.lly,
			geometry.UnitPoints,
		)
		if err != nil {
			continue
		}
		regions = append(regions, visual.TextRegion{
			ID:   fmt.Sprintf("t%d", i+1),
			Box:  box,
			Text: blk.text,
		})
	}
	return regions, nil
}

type textLine struct {
	llx, lly, urx, ury float64
	marks              []extractor.TextMark
}

type textBlock struct {
	llx, lly, urx, ury float64
	text               string
}

// groupLines clusters glyph marks into lines by vertical overlap. Two marks
// share a line when their vertical extents overlap by at least half of the
// smaller extent.
func groupLines(glyphs []extractor.TextMark) []*textLine {
	sort.SliceStable(glyphs, func(i, j int) bool {
		return glyphs[i].BBox.Lly > glyphs[j].BBox.Lly
	})

	var lines []*textLine
	for _, g := range glyphs {
		var host *textLine
		for _, ln := range lines {
			if verticalOverlap(ln.lly, ln.ury, g.BBox.Lly, g.BBox.Ury) {
				host = ln
				break
			}
		}
		if host == nil {
			host = &textLine{llx: g.BBox.Llx, lly: g.BBox.Lly, urx: g.BBox.Urx, ury: g.BBox.Ury}
			lines = append(lines, host)
		} else {
			host.llx = min(host.llx, g.BBox.Llx)
			host.lly = min(host.lly, g.BBox.Lly)
			host.urx = max(host.urx, g.BBox.Urx)
			host.ury = max(host.ury, g.BBox.Ury)
		}
		host.marks = append(host.marks, g)
	}

	// Top of page first.
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].ury > lines[j].ury })
	return lines
}

func verticalOverlap(aLo, aHi, bLo, bHi float64) bool {
	overlap := min(aHi, bHi) - max(aLo, bLo)
	if overlap <= 0 {
		return false
	}
	smaller := min(aHi-aLo, bHi-bLo)
	return overlap >= 0.5*smaller
}

// groupBlocks joins consecutive lines into paragraph-like blocks. A block
// breaks when the vertical gap to the next line exceeds 1.8x that line's
// height, which separates captions and body paragraphs without merging them.
func groupBlocks(lines []*textLine) []textBlock {
	var blocks []textBlock
	var cur *textBlock
	var curLines []string
	var prev *textLine

	flush := func() {
		if cur == nil {
			return
		}
		cur.text = strings.Join(curLines, "\n")
		blocks = append(blocks, *cur)
		cur = nil
		curLines = nil
	}

	for _, ln := range lines {
		height := ln.ury - ln.lly
		if cur != nil && prev != nil {
			gap := prev.lly - ln.ury
			if gap > 1.8*height {
				flush()
			}
		}
		text := lineText(ln)
		if cur == nil {
			cur = &textBlock{llx: ln.llx, lly: ln.lly, urx: ln.urx, ury: ln.ury}
		} else {
			cur.llx = min(cur.llx, ln.llx)
			cur.lly = min(cur.lly, ln.lly)
			cur.urx = max(cur.urx, ln.urx)
			cur.ury = max(cur.ury, ln.ury)
		}
		curLines = append(curLines, text)
		prev = ln
	}
	flush()
	return blocks
}

// lineText joins a line's glyphs left to right, inserting a space where the
// horizontal gap between neighbors is wide enough to read as a word break.
func lineText(ln *textLine) string {
	sort.SliceStable(ln.marks, func(i, j int) bool {
		return ln.marks[i].BBox.Llx < ln.marks[j].BBox.Llx
	})

	var sb strings.Builder
	var prevUrx float64
	for i, m := range ln.marks {
		if i > 0 {
			gap := m.BBox.Llx - prevUrx
			threshold := 0.3 * m.FontSize
			if threshold <= 0 {
				threshold = 1
			}
			if gap > threshold {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(m.Text)
		prevUrx = m.BBox.Urx
	}
	return sb.String()
}
