package ocr

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/visarchlab/visextract/internal/geometry"
	"github.com/visarchlab/visextract/internal/visual"
)

// PageRegions holds the regions recognized on one rasterized page, split into
// image-like regions (paragraphs whose words carry no text) and text regions.
// All geometry is in pixels with a top-left origin, as produced by Tesseract.
type PageRegions struct {
	Images map[string]geometry.BoundingBox
	Texts  []visual.TextRegion
}

// ParseHOCR extracts paragraph regions from a Tesseract hOCR document. A
// paragraph whose recognized words are all empty is treated as an image-like
// region; anything else becomes a text region with its recognized content.
func ParseHOCR(data string) (*PageRegions, error) {
	root, err := html.Parse(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse hocr: %w", err)
	}

	regions := &PageRegions{Images: make(map[string]geometry.BoundingBox)}
	walkHTML(root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "p" || !hasClass(n, "ocr_par") {
			return
		}
		box, err := parseTitleBBox(attr(n, "title"))
		if err != nil {
			return // malformed paragraph, nothing usable
		}
		id := attr(n, "id")
		text := paragraphText(n)
		if strings.TrimSpace(text) == "" {
			regions.Images[id] = box
		} else {
			regions.Texts = append(regions.Texts, visual.TextRegion{ID: id, Box: box, Text: text})
		}
	})
	return regions, nil
}

// parseTitleBBox reads the bounding box from an hOCR title attribute of the
// form "bbox x0 y0 x1 y1; ...".
func parseTitleBBox(title string) (geometry.BoundingBox, error) {
	for _, part := range strings.Split(title, ";") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) != 5 || fields[0] != "bbox" {
			continue
		}
		coords := make([]float64, 4)
		for i, f := range fields[1:] {
			v, err := strconv.Atoi(f)
			if err != nil {
				return geometry.BoundingBox{}, fmt.Errorf("bbox coordinate %q: %w", f, err)
			}
			coords[i] = float64(v)
		}
		return geometry.FromCorners(coords[0], coords[1], coords[2], coords[3], geometry.UnitPixels)
	}
	return geometry.BoundingBox{}, fmt.Errorf("no bbox in title %q", title)
}

// paragraphText joins the paragraph's recognized words, one line per
// ocr_line, words separated by single spaces.
func paragraphText(p *html.Node) string {
	var lines []string
	walkHTML(p, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "span" || !hasClass(n, "ocr_line") {
			return
		}
		var words []string
		walkHTML(n, func(w *html.Node) {
			if w.Type != html.ElementNode || w.Data != "span" || !hasClass(w, "ocrx_word") {
				return
			}
			if t := strings.TrimSpace(nodeText(w)); t != "" {
				words = append(words, t)
			}
		})
		if len(words) > 0 {
			lines = append(lines, strings.Join(words, " "))
		}
	})
	return strings.Join(lines, "\n")
}

func walkHTML(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, fn)
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	walkHTML(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}
