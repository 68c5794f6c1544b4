// Package geometry provides the small spatial and temporal value objects the
// catalog is built from: bounding boxes, UTC intervals, and the running
// extent accumulator that summarizes a collection. Union operations are pure
// functions so extent accumulation is testable independently of the
// pipeline that feeds it.
package geometry

import "math"

// BBox is a WGS 84 bounding box in [min-x, min-y, max-x, max-y] order.
type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// NewBBox constructs a bounding box from min/max coordinates.
func NewBBox(minX, minY, maxX, maxY float64) BBox {
	return BBox{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// FromSlice builds a bounding box from a 4-element [minx, miny, maxx, maxy]
// slice, as found in document bbox fields. Returns nil for anything else.
func FromSlice(values []float64) *BBox {
	if len(values) != 4 {
		return nil
	}
	b := NewBBox(values[0], values[1], values[2], values[3])
	return &b
}

// Slice returns the box as [minx, miny, maxx, maxy].
func (b BBox) Slice() []float64 {
	return []float64{b.MinX, b.MinY, b.MaxX, b.MaxY}
}

// Union returns the smallest box containing both a and b.
// A nil operand is treated as the identity.
func Union(a, b *BBox) *BBox {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	u := BBox{
		MinX: math.Min(a.MinX, b.MinX),
		MinY: math.Min(a.MinY, b.MinY),
		MaxX: math.Max(a.MaxX, b.MaxX),
		MaxY: math.Max(a.MaxY, b.MaxY),
	}
	return &u
}

// Polygon returns the GeoJSON polygon coordinates covering the box,
// closed counter-clockwise ring starting at the south-west corner.
func (b BBox) Polygon() [][][]float64 {
	return [][][]float64{
		{
			{b.MinX, b.MinY},
			{b.MaxX, b.MinY},
			{b.MaxX, b.MaxY},
			{b.MinX, b.MaxY},
			{b.MinX, b.MinY},
		},
	}
}
