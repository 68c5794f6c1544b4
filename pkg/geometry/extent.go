package geometry

import "github.com/agentstation/utc"

// Interval is an optional UTC time interval. Either bound may be nil when
// the source data could not provide it.
type Interval struct {
	Start *utc.Time
	End   *utc.Time
}

// UnionInterval widens interval a to include interval b. Nil bounds never
// narrow the result.
func UnionInterval(a, b Interval) Interval {
	out := a
	if b.Start != nil && (out.Start == nil || b.Start.Time.Before(out.Start.Time)) {
		out.Start = b.Start
	}
	if b.End != nil && (out.End == nil || b.End.Time.After(out.End.Time)) {
		out.End = b.End
	}
	return out
}

// Extent is the running union of item bounding boxes and time intervals that
// summarizes a collection. Adding an item can only grow the box and widen
// the interval; items without a box or interval contribute nothing.
type Extent struct {
	bbox     *BBox
	interval Interval
}

// Add folds one item's bounding box and interval into the accumulator.
func (e *Extent) Add(bbox *BBox, interval Interval) {
	e.bbox = Union(e.bbox, bbox)
	e.interval = UnionInterval(e.interval, interval)
}

// BBox returns the accumulated bounding box, or nil when no item carried one.
func (e *Extent) BBox() *BBox {
	return e.bbox
}

// Interval returns the accumulated time interval.
func (e *Extent) Interval() Interval {
	return e.interval
}
