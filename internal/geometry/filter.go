package geometry

import "sort"

// Comparison selects which side of an aspect-ratio threshold a size filter
// removes.
type Comparison string

const (
	// CompareGreater removes boxes whose width/height exceeds the threshold
	// (wide slivers).
	CompareGreater Comparison = ">"
	// CompareLess removes boxes whose width/height falls below the threshold
	// (tall slivers).
	CompareLess Comparison = "<"
)

// SizeFilter describes one pass of noise removal over candidate boxes.
// Zero-valued fields are inactive. The aspect-ratio comparison is strict:
// a box sitting exactly on the threshold is retained.
type SizeFilter struct {
	MinWidth         float64
	MinHeight        float64
	AspectRatio      float64
	AspectComparison Comparison
}

// FilterBySize removes boxes smaller than the configured minimum extent and
// boxes whose aspect ratio matches the configured comparison. The input map
// is not modified; filters compose by feeding one result into the next.
func FilterBySize(boxes map[string]BoundingBox, f SizeFilter) map[string]BoundingBox {
	kept := make(map[string]BoundingBox, len(boxes))
	for id, box := range boxes {
		if f.MinWidth > 0 && box.Width() < f.MinWidth {
			continue
		}
		if f.MinHeight > 0 && box.Height() < f.MinHeight {
			continue
		}
		if f.AspectRatio > 0 {
			ratio := box.AspectRatio()
			if f.AspectComparison == CompareGreater && ratio > f.AspectRatio {
				continue
			}
			if f.AspectComparison == CompareLess && ratio < f.AspectRatio {
				continue
			}
		}
		kept[id] = box
	}
	return kept
}

// FilterContained removes every box that lies entirely within a different box
// of the same set. OCR output frequently nests duplicate detections around
// one region; only the outermost survives. When two boxes share an identical
// extent, the one with the lexicographically smaller id is retained so the
// result is deterministic.
func FilterContained(boxes map[string]BoundingBox) map[string]BoundingBox {
	if len(boxes) <= 1 {
		out := make(map[string]BoundingBox, len(boxes))
		for id, box := range boxes {
			out[id] = box
		}
		return out
	}

	ids := make([]string, 0, len(boxes))
	for id := range boxes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	kept := make(map[string]BoundingBox, len(boxes))
	for _, id := range ids {
		box := boxes[id]
		contained := false
		for _, otherID := range ids {
			if otherID == id {
				continue
			}
			other := boxes[otherID]
			if !other.Contains(box) {
				continue
			}
			if other.SameExtent(box) {
				// Identical extent: only the smallest id survives.
				if otherID < id {
					contained = true
					break
				}
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept[id] = box
		}
	}
	return kept
}
