// Package geometry provides unit-aware bounding boxes and the spatial
// predicates used for caption matching and region filtering.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Unit identifies the coordinate space a quantity is expressed in.
type Unit string

const (
	// UnitPoints is the PDF native unit (1/72 inch), used for layout-derived geometry.
	UnitPoints Unit = "pt"
	// UnitPixels is the raster unit used for OCR-derived geometry.
	UnitPixels Unit = "px"
	// UnitMillimeters is accepted for offsets only.
	UnitMillimeters Unit = "mm"
)

// PointsPerInch is the number of PDF points in one inch.
const PointsPerInch = 72.0

const pointsPerMillimeter = PointsPerInch / 25.4

// Direction names the side of a box a caption search looks toward.
// All normalized geometry uses a top-left origin, so "down" is increasing y.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

var (
	// ErrInvalidGeometry reports non-finite coordinates or an invalid DPI.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrUnitMismatch reports a conversion between incompatible units.
	ErrUnitMismatch = errors.New("unit mismatch")
)

// BoundingBox is an axis-aligned rectangle with a declared unit.
// Coordinates are normalized on construction (X0 <= X1, Y0 <= Y1) and the
// value is immutable afterwards.
type BoundingBox struct {
	X0, Y0, X1, Y1 float64
	Unit           Unit
}

// FromCorners builds a normalized BoundingBox from two opposite corners.
// Coordinates may arrive unordered; non-finite values are rejected.
func FromCorners(x0, y0, x1, y1 float64, unit Unit) (BoundingBox, error) {
	for _, v := range [4]float64{x0, y0, x1, y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return BoundingBox{}, fmt.Errorf("%w: non-finite coordinate %v", ErrInvalidGeometry, v)
		}
	}
	if unit != UnitPoints && unit != UnitPixels {
		return BoundingBox{}, fmt.Errorf("%w: unsupported box unit %q", ErrUnitMismatch, unit)
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1, Unit: unit}, nil
}

// Width returns the box width.
func (b BoundingBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the box height.
func (b BoundingBox) Height() float64 { return b.Y1 - b.Y0 }

// Area returns the box area.
func (b BoundingBox) Area() float64 { return b.Width() * b.Height() }

// AspectRatio returns width/height. A zero-height box yields +Inf.
func (b BoundingBox) AspectRatio() float64 {
	if b.Height() == 0 {
		return math.Inf(1)
	}
	return b.Width() / b.Height()
}

// Contains reports whether other lies entirely within b, boundary inclusive.
// Boxes in different units never contain each other.
func (b BoundingBox) Contains(other BoundingBox) bool {
	if b.Unit != other.Unit {
		return false
	}
	return b.X0 <= other.X0 && b.Y0 <= other.Y0 && b.X1 >= other.X1 && b.Y1 >= other.Y1
}

// SameExtent reports whether two boxes cover exactly the same rectangle.
func (b BoundingBox) SameExtent(other BoundingBox) bool {
	return b.Unit == other.Unit &&
		b.X0 == other.X0 && b.Y0 == other.Y0 && b.X1 == other.X1 && b.Y1 == other.Y1
}

// ToPixels converts a point-unit box to pixels at the given DPI.
// A box already in pixels is returned unchanged.
func (b BoundingBox) ToPixels(dpi float64) (BoundingBox, error) {
	if b.Unit == UnitPixels {
		return b, nil
	}
	if b.Unit != UnitPoints {
		return BoundingBox{}, fmt.Errorf("%w: cannot convert %q to px", ErrUnitMismatch, b.Unit)
	}
	if dpi <= 0 {
		return BoundingBox{}, fmt.Errorf("%w: dpi must be positive, got %v", ErrInvalidGeometry, dpi)
	}
	s := dpi / PointsPerInch
	return BoundingBox{X0: b.X0 * s, Y0: b.Y0 * s, X1: b.X1 * s, Y1: b.Y1 * s, Unit: UnitPixels}, nil
}

// ToPoints converts a pixel-unit box to points at the given DPI.
// A box already in points is returned unchanged.
func (b BoundingBox) ToPoints(dpi float64) (BoundingBox, error) {
	if b.Unit == UnitPoints {
		return b, nil
	}
	if b.Unit != UnitPixels {
		return BoundingBox{}, fmt.Errorf("%w: cannot convert %q to pt", ErrUnitMismatch, b.Unit)
	}
	if dpi <= 0 {
		return BoundingBox{}, fmt.Errorf("%w: dpi must be positive, got %v", ErrInvalidGeometry, dpi)
	}
	s := PointsPerInch / dpi
	return BoundingBox{X0: b.X0 * s, Y0: b.Y0 * s, X1: b.X1 * s, Y1: b.Y1 * s, Unit: UnitPoints}, nil
}

// DistanceInDirection returns the gap between the nearest edges of b and
// other along the axis of dir, measured from b toward other. The second
// return value is false when other is not positioned in that direction,
// when the boxes overlap on that axis, or when the units differ.
// A touching edge yields a zero gap.
func (b BoundingBox) DistanceInDirection(other BoundingBox, dir Direction) (float64, bool) {
	if b.Unit != other.Unit {
		return 0, false
	}
	var gap float64
	switch dir {
	case DirectionDown:
		gap = other.Y0 - b.Y1
	case DirectionUp:
		gap = b.Y0 - other.Y1
	case DirectionRight:
		gap = other.X0 - b.X1
	case DirectionLeft:
		gap = b.X0 - other.X1
	default:
		return 0, false
	}
	if gap < 0 {
		return 0, false
	}
	return gap, true
}

// Offset is a directed distance threshold bounding a caption search window.
type Offset struct {
	Magnitude float64
	Unit      Unit
}

// In converts the offset magnitude to the requested unit. Millimeter offsets
// convert through points; pixel conversions require a positive DPI.
func (o Offset) In(unit Unit, dpi float64) (float64, error) {
	if o.Unit == unit {
		return o.Magnitude, nil
	}
	pts := o.Magnitude
	switch o.Unit {
	case UnitPoints:
	case UnitMillimeters:
		pts = o.Magnitude * pointsPerMillimeter
	case UnitPixels:
		if dpi <= 0 {
			return 0, fmt.Errorf("%w: dpi must be positive, got %v", ErrInvalidGeometry, dpi)
		}
		pts = o.Magnitude * PointsPerInch / dpi
	default:
		return 0, fmt.Errorf("%w: unsupported offset unit %q", ErrUnitMismatch, o.Unit)
	}
	switch unit {
	case UnitPoints:
		return pts, nil
	case UnitPixels:
		if dpi <= 0 {
			return 0, fmt.Errorf("%w: dpi must be positive, got %v", ErrInvalidGeometry, dpi)
		}
		return pts * dpi / PointsPerInch, nil
	default:
		return 0, fmt.Errorf("%w: unsupported target unit %q", ErrUnitMismatch, unit)
	}
}

// ParseDirection validates a direction string from configuration.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("invalid direction %q (want up, down, left or right)", s)
	}
}
