package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBox(t *testing.T, x0, y0, x1, y1 float64) BoundingBox {
	t.Helper()
	b, err := FromCorners(x0, y0, x1, y1, UnitPixels)
	require.NoError(t, err)
	return b
}

func TestFilterBySizeMinimumExtent(t *testing.T) {
	boxes := map[string]BoundingBox{
		"big":    mustBox(t, 0, 0, 200, 200),
		"narrow": mustBox(t, 0, 0, 50, 200),
		"short":  mustBox(t, 0, 0, 200, 50),
	}
	kept := FilterBySize(boxes, SizeFilter{MinWidth: 120, MinHeight: 120})
	assert.Len(t, kept, 1)
	assert.Contains(t, kept, "big")
}

func TestFilterBySizeAspectRatio(t *testing.T) {
	boxes := map[string]BoundingBox{
		"sliver": mustBox(t, 0, 0, 100, 5),  // 20:1
		"square": mustBox(t, 0, 0, 50, 50),  // 1:1
		"wider":  mustBox(t, 0, 0, 105, 5),  // 21:1
		"tall":   mustBox(t, 0, 0, 5, 105),  // 1:21
	}

	// Wide-sliver pass: strictly greater than 20 removed, exactly 20 retained.
	kept := FilterBySize(boxes, SizeFilter{AspectRatio: 20, AspectComparison: CompareGreater})
	assert.Contains(t, kept, "sliver")
	assert.Contains(t, kept, "square")
	assert.Contains(t, kept, "tall")
	assert.NotContains(t, kept, "wider")

	// Tall-sliver pass on the survivors.
	kept = FilterBySize(kept, SizeFilter{AspectRatio: 1.0 / 20.0, AspectComparison: CompareLess})
	assert.Contains(t, kept, "square")
	assert.Contains(t, kept, "sliver")
	assert.NotContains(t, kept, "tall")
}

func TestFilterBySizeZeroHeight(t *testing.T) {
	boxes := map[string]BoundingBox{
		"flat": mustBox(t, 0, 0, 100, 0),
		"ok":   mustBox(t, 0, 0, 50, 50),
	}
	kept := FilterBySize(boxes, SizeFilter{AspectRatio: 20, AspectComparison: CompareGreater})
	assert.NotContains(t, kept, "flat")
	assert.Contains(t, kept, "ok")
}

func TestFilterBySizeNoCriteria(t *testing.T) {
	boxes := map[string]BoundingBox{"a": mustBox(t, 0, 0, 10, 10)}
	kept := FilterBySize(boxes, SizeFilter{})
	assert.Len(t, kept, 1)
}

func TestFilterContainedRemovesNested(t *testing.T) {
	boxes := map[string]BoundingBox{
		"outer": mustBox(t, 0, 0, 50, 50),
		"inner": mustBox(t, 10, 10, 30, 30),
		"apart": mustBox(t, 100, 100, 150, 150),
	}
	kept := FilterContained(boxes)
	assert.Len(t, kept, 2)
	assert.Contains(t, kept, "outer")
	assert.Contains(t, kept, "apart")
	assert.NotContains(t, kept, "inner")
}

func TestFilterContainedIdenticalExtentTieBreak(t *testing.T) {
	boxes := map[string]BoundingBox{
		"b": mustBox(t, 0, 0, 40, 40),
		"a": mustBox(t, 0, 0, 40, 40),
		"c": mustBox(t, 0, 0, 40, 40),
	}
	kept := FilterContained(boxes)
	assert.Len(t, kept, 1)
	assert.Contains(t, kept, "a", "lexicographically smallest id survives")
}

func TestFilterContainedNestedChain(t *testing.T) {
	boxes := map[string]BoundingBox{
		"l0": mustBox(t, 0, 0, 100, 100),
		"l1": mustBox(t, 5, 5, 95, 95),
		"l2": mustBox(t, 10, 10, 90, 90),
	}
	kept := FilterContained(boxes)
	assert.Len(t, kept, 1)
	assert.Contains(t, kept, "l0")
}

func TestFilterContainedSmallSets(t *testing.T) {
	assert.Empty(t, FilterContained(map[string]BoundingBox{}))

	single := map[string]BoundingBox{"only": mustBox(t, 0, 0, 10, 10)}
	kept := FilterContained(single)
	assert.Len(t, kept, 1)
}

func TestFilterPipelineOrder(t *testing.T) {
	// The pipeline applies size, wide aspect, tall aspect, containment in
	// that fixed order; later filters only see earlier survivors.
	boxes := map[string]BoundingBox{
		"A": mustBox(t, 0, 0, 100, 5), // aspect exactly 20:1 but below min size
		"B": mustBox(t, 0, 0, 50, 50), // below min size
		"C": mustBox(t, 0, 0, 300, 280),
		"D": mustBox(t, 10, 10, 290, 270), // contained in C
	}
	kept := FilterBySize(boxes, SizeFilter{MinWidth: 120, MinHeight: 120})
	kept = FilterBySize(kept, SizeFilter{AspectRatio: 20, AspectComparison: CompareGreater})
	kept = FilterBySize(kept, SizeFilter{AspectRatio: 1.0 / 20.0, AspectComparison: CompareLess})
	kept = FilterContained(kept)

	assert.Len(t, kept, 1)
	assert.Contains(t, kept, "C")
}
