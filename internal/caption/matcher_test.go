package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visarchlab/visextract/internal/geometry"
	"github.com/visarchlab/visextract/internal/visual"
)

func box(t *testing.T, x0, y0, x1, y1 float64, unit geometry.Unit) geometry.BoundingBox {
	t.Helper()
	b, err := geometry.FromCorners(x0, y0, x1, y1, unit)
	require.NoError(t, err)
	return b
}

func TestFindByDistanceWithinWindow(t *testing.T) {
	img := box(t, 100, 100, 200, 200, geometry.UnitPoints)
	text := box(t, 100, 205, 200, 220, geometry.UnitPoints)

	gap, ok := FindByDistance(img, text, geometry.Offset{Magnitude: 10, Unit: geometry.UnitPoints},
		geometry.DirectionDown, 0)
	require.True(t, ok)
	assert.InDelta(t, 5.0, gap, 1e-9)
}

func TestFindByDistanceBeyondWindow(t *testing.T) {
	img := box(t, 100, 100, 200, 200, geometry.UnitPoints)
	text := box(t, 100, 250, 200, 260, geometry.UnitPoints)

	_, ok := FindByDistance(img, text, geometry.Offset{Magnitude: 10, Unit: geometry.UnitPoints},
		geometry.DirectionDown, 0)
	assert.False(t, ok, "gap of 50pt exceeds the 10pt offset")
}

func TestFindByDistanceWrongSide(t *testing.T) {
	img := box(t, 100, 100, 200, 200, geometry.UnitPoints)
	above := box(t, 100, 80, 200, 95, geometry.UnitPoints)

	_, ok := FindByDistance(img, above, geometry.Offset{Magnitude: 100, Unit: geometry.UnitPoints},
		geometry.DirectionDown, 0)
	assert.False(t, ok, "text opposite the requested direction never matches")
}

func TestFindByDistanceConvertsOffsetUnits(t *testing.T) {
	// 4 mm is ~11.34 pt: a 10 pt gap passes, a 12 pt gap does not.
	img := box(t, 100, 100, 200, 200, geometry.UnitPoints)
	near := box(t, 100, 210, 200, 220, geometry.UnitPoints)
	far := box(t, 100, 212, 200, 230, geometry.UnitPoints)
	off := geometry.Offset{Magnitude: 4, Unit: geometry.UnitMillimeters}

	_, ok := FindByDistance(img, near, off, geometry.DirectionDown, 0)
	assert.True(t, ok)
	_, ok = FindByDistance(img, far, off, geometry.DirectionDown, 0)
	assert.False(t, ok)
}

func TestFindByText(t *testing.T) {
	matches := []Match{
		{Region: visual.TextRegion{ID: "t1", Text: "some body text"}},
		{Region: visual.TextRegion{ID: "t2", Text: "FIGURE 4: elevation"}},
		{Region: visual.TextRegion{ID: "t3", Text: "figuur 5"}},
	}
	keywords := []string{"figure", "caption", "figuur"}

	got, ok := FindByText(matches, keywords)
	require.True(t, ok)
	assert.Equal(t, "t2", got.Region.ID, "first keyword hit wins")

	_, ok = FindByText(matches[:1], keywords)
	assert.False(t, ok)

	_, ok = FindByText(nil, keywords)
	assert.False(t, ok)
}

func defaultConfig() Config {
	return Config{
		Offset:    geometry.Offset{Magnitude: 10, Unit: geometry.UnitPoints},
		Direction: geometry.DirectionDown,
		Keywords:  []string{"figure", "caption", "figuur"},
	}
}

func TestResolveNoMatches(t *testing.T) {
	img := box(t, 100, 100, 200, 200, geometry.UnitPoints)
	texts := []visual.TextRegion{
		{Text: "far away", Box: box(t, 100, 400, 200, 420, geometry.UnitPoints)},
	}
	_, ok := Resolve(img, texts, defaultConfig())
	assert.False(t, ok, "zero matches is a silent no-op, not an error")
}

func TestResolveSingleMatchVerbatim(t *testing.T) {
	img := box(t, 100, 100, 200, 200, geometry.UnitPoints)
	texts := []visual.TextRegion{
		{Text: "  Ground floor plan \n of the museum  ", Box: box(t, 100, 205, 200, 220, geometry.UnitPoints)},
	}
	got, ok := Resolve(img, texts, defaultConfig())
	require.True(t, ok)
	assert.Equal(t, "Ground floor planof the museum", got)
}

func TestResolveMultipleMatchesKeywordWinnerText(t *testing.T) {
	img := box(t, 100, 100, 200, 200, geometry.UnitPoints)
	texts := []visual.TextRegion{
		{ID: "plain", Text: "continued from page 3", Box: box(t, 100, 202, 200, 210, geometry.UnitPoints)},
		{ID: "fig", Text: "Figure 7: section A-A", Box: box(t, 100, 205, 200, 215, geometry.UnitPoints)},
	}
	got, ok := Resolve(img, texts, defaultConfig())
	require.True(t, ok)
	// The keyword winner's own text is used, not the first distance match.
	assert.Equal(t, "Figure 7: section A-A", got)
}

func TestResolveMultipleMatchesNoKeyword(t *testing.T) {
	img := box(t, 100, 100, 200, 200, geometry.UnitPoints)
	texts := []visual.TextRegion{
		{Text: "left column text", Box: box(t, 100, 202, 200, 210, geometry.UnitPoints)},
		{Text: "right column text", Box: box(t, 100, 205, 200, 215, geometry.UnitPoints)},
	}
	_, ok := Resolve(img, texts, defaultConfig())
	assert.False(t, ok, "ambiguous matches without a keyword leave the image uncaptioned")
}

func TestResolvePixelSpace(t *testing.T) {
	img := box(t, 500, 500, 1500, 1200, geometry.UnitPixels)
	texts := []visual.TextRegion{
		{ID: "cap", Text: "caption under scan", Box: box(t, 500, 1230, 1500, 1300, geometry.UnitPixels)},
	}
	cfg := Config{
		Offset:    geometry.Offset{Magnitude: 50, Unit: geometry.UnitPixels},
		Direction: geometry.DirectionDown,
		Keywords:  []string{"figure"},
		DPI:       250,
	}
	got, ok := Resolve(img, texts, cfg)
	require.True(t, ok)
	assert.Equal(t, "caption under scan", got)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "Figure 1.Site plan", NormalizeText("Figure 1.\n  Site plan \n"))
	assert.Equal(t, "", NormalizeText("  \n \n"))
}
