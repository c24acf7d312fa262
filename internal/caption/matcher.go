// Package caption implements the caption-association heuristics: deciding
// which detected text region, if any, captions a detected image region.
// Candidates are gathered by spatial proximity in a configured direction and
// disambiguated by keyword scoring.
package caption

import (
	"strings"

	"github.com/visarchlab/visextract/internal/geometry"
	"github.com/visarchlab/visextract/internal/visual"
)

// Match is one text region that qualified as a caption candidate, together
// with its measured edge gap from the image.
type Match struct {
	Region   visual.TextRegion
	Distance float64
}

// Config controls caption resolution for one analysis pass.
type Config struct {
	Offset    geometry.Offset
	Direction geometry.Direction
	Keywords  []string
	// DPI converts the offset when its unit differs from the box unit.
	DPI float64
}

// FindByDistance reports whether text qualifies as a caption for image:
// it must lie in the configured direction and its nearest edge must be
// within the offset window. The offset is converted to the image box's unit
// before comparison. Text on the wrong side, overlapping the image on the
// directional axis, or beyond the window yields no match.
func FindByDistance(image, text geometry.BoundingBox, offset geometry.Offset,
	dir geometry.Direction, dpi float64,
) (float64, bool) {
	gap, ok := image.DistanceInDirection(text, dir)
	if !ok {
		return 0, false
	}
	limit, err := offset.In(image.Unit, dpi)
	if err != nil {
		return 0, false
	}
	if gap > limit {
		return 0, false
	}
	return gap, true
}

// FindByText returns the first candidate whose text contains any of the
// keywords, compared case-insensitively.
func FindByText(candidates []Match, keywords []string) (Match, bool) {
	for _, c := range candidates {
		text := strings.ToLower(c.Region.Text)
		for _, kw := range keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(text, strings.ToLower(kw)) {
				return c, true
			}
		}
	}
	return Match{}, false
}

// CollectMatches gathers every text region on the page that passes the
// distance test against the image box, preserving input order.
func CollectMatches(image geometry.BoundingBox, texts []visual.TextRegion, cfg Config) []Match {
	var matches []Match
	for _, text := range texts {
		if gap, ok := FindByDistance(image, text.Box, cfg.Offset, cfg.Direction, cfg.DPI); ok {
			matches = append(matches, Match{Region: text, Distance: gap})
		}
	}
	return matches
}

// Resolve applies the combined captioning policy for one image region:
// zero distance matches leaves the image uncaptioned; exactly one match
// yields that match's text; multiple matches are disambiguated by keywords,
// and the keyword winner's own text becomes the caption. With multiple
// matches and no keyword hit, the image stays uncaptioned.
func Resolve(image geometry.BoundingBox, texts []visual.TextRegion, cfg Config) (string, bool) {
	matches := CollectMatches(image, texts, cfg)
	switch len(matches) {
	case 0:
		return "", false
	case 1:
		return NormalizeText(matches[0].Region.Text), true
	default:
		winner, ok := FindByText(matches, cfg.Keywords)
		if !ok {
			return "", false
		}
		return NormalizeText(winner.Region.Text), true
	}
}

// NormalizeText concatenates the lines of a caption in reading order with
// each line's surrounding whitespace trimmed.
func NormalizeText(text string) string {
	lines := strings.Split(text, "\n")
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(strings.TrimSpace(line))
	}
	return sb.String()
}
