package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCornersNormalizesOrdering(t *testing.T) {
	b, err := FromCorners(200, 220, 100, 110, UnitPoints)
	require.NoError(t, err)
	assert.Equal(t, 100.0, b.X0)
	assert.Equal(t, 110.0, b.Y0)
	assert.Equal(t, 200.0, b.X1)
	assert.Equal(t, 220.0, b.Y1)
}

func TestFromCornersRejectsNonFinite(t *testing.T) {
	cases := []float64{math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, v := range cases {
		_, err := FromCorners(0, 0, v, 10, UnitPixels)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	}
}

func TestFromCornersRejectsUnknownUnit(t *testing.T) {
	_, err := FromCorners(0, 0, 10, 10, Unit("in"))
	assert.ErrorIs(t, err, ErrUnitMismatch)
}

func TestDerivedAccessors(t *testing.T) {
	b, err := FromCorners(10, 20, 110, 70, UnitPixels)
	require.NoError(t, err)
	assert.Equal(t, 100.0, b.Width())
	assert.Equal(t, 50.0, b.Height())
	assert.Equal(t, 5000.0, b.Area())
	assert.Equal(t, 2.0, b.AspectRatio())
}

func TestContains(t *testing.T) {
	outer, _ := FromCorners(0, 0, 50, 50, UnitPixels)
	inner, _ := FromCorners(10, 10, 30, 30, UnitPixels)
	edge, _ := FromCorners(0, 0, 50, 50, UnitPixels)
	outside, _ := FromCorners(10, 10, 60, 30, UnitPixels)
	points, _ := FromCorners(10, 10, 30, 30, UnitPoints)

	assert.True(t, outer.Contains(inner))
	assert.False(t, inner.Contains(outer))
	assert.True(t, outer.Contains(edge), "containment is boundary inclusive")
	assert.False(t, outer.Contains(outside))
	assert.False(t, outer.Contains(points), "units must match")
}

func TestUnitConversionRoundTrip(t *testing.T) {
	for _, dpi := range []float64{72, 150, 250, 300.5} {
		b, err := FromCorners(100, 100, 200, 200, UnitPoints)
		require.NoError(t, err)

		px, err := b.ToPixels(dpi)
		require.NoError(t, err)
		assert.Equal(t, UnitPixels, px.Unit)

		back, err := px.ToPoints(dpi)
		require.NoError(t, err)
		assert.InDelta(t, b.X0, back.X0, 1e-9)
		assert.InDelta(t, b.Y0, back.Y0, 1e-9)
		assert.InDelta(t, b.X1, back.X1, 1e-9)
		assert.InDelta(t, b.Y1, back.Y1, 1e-9)
	}
}

func TestConversionIdentityAndErrors(t *testing.T) {
	px, _ := FromCorners(0, 0, 100, 100, UnitPixels)

	same, err := px.ToPixels(250)
	require.NoError(t, err)
	assert.Equal(t, px, same, "same-unit conversion is the identity")

	_, err = px.ToPoints(0)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
	_, err = px.ToPoints(-72)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestDistanceInDirection(t *testing.T) {
	img, _ := FromCorners(100, 100, 200, 200, UnitPoints)

	tests := []struct {
		name    string
		other   [4]float64
		dir     Direction
		want    float64
		matched bool
	}{
		{"below within gap", [4]float64{100, 205, 200, 220}, DirectionDown, 5, true},
		{"below far", [4]float64{100, 250, 200, 260}, DirectionDown, 50, true},
		{"touching below", [4]float64{100, 200, 200, 210}, DirectionDown, 0, true},
		{"above not down", [4]float64{100, 50, 200, 90}, DirectionDown, 0, false},
		{"above is up", [4]float64{100, 50, 200, 90}, DirectionUp, 10, true},
		{"overlapping axis", [4]float64{100, 150, 200, 250}, DirectionDown, 0, false},
		{"right of image", [4]float64{230, 100, 260, 200}, DirectionRight, 30, true},
		{"right asked left", [4]float64{230, 100, 260, 200}, DirectionLeft, 0, false},
		{"left of image", [4]float64{40, 100, 90, 200}, DirectionLeft, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other, err := FromCorners(tt.other[0], tt.other[1], tt.other[2], tt.other[3], UnitPoints)
			require.NoError(t, err)
			got, ok := img.DistanceInDirection(other, tt.dir)
			assert.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestDistanceInDirectionUnitMismatch(t *testing.T) {
	pt, _ := FromCorners(0, 0, 10, 10, UnitPoints)
	px, _ := FromCorners(0, 20, 10, 30, UnitPixels)
	_, ok := pt.DistanceInDirection(px, DirectionDown)
	assert.False(t, ok)
}

func TestOffsetConversions(t *testing.T) {
	mm := Offset{Magnitude: 4, Unit: UnitMillimeters}
	pts, err := mm.In(UnitPoints, 0)
	require.NoError(t, err)
	assert.InDelta(t, 11.3385826772, pts, 1e-6)

	px := Offset{Magnitude: 50, Unit: UnitPixels}
	same, err := px.In(UnitPixels, 0)
	require.NoError(t, err)
	assert.Equal(t, 50.0, same)

	asPoints, err := px.In(UnitPoints, 250)
	require.NoError(t, err)
	assert.InDelta(t, 50*72.0/250, asPoints, 1e-9)

	pt := Offset{Magnitude: 10, Unit: UnitPoints}
	asPixels, err := pt.In(UnitPixels, 144)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, asPixels, 1e-9)

	_, err = pt.In(UnitPixels, 0)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("down")
	require.NoError(t, err)
	assert.Equal(t, DirectionDown, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}
