package geometry

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnion(t *testing.T) {
	t.Run("nil operands", func(t *testing.T) {
		b := NewBBox(0, 0, 1, 1)
		assert.Nil(t, Union(nil, nil))
		assert.Equal(t, &b, Union(&b, nil))
		assert.Equal(t, &b, Union(nil, &b))
	})

	t.Run("disjoint boxes", func(t *testing.T) {
		a := NewBBox(0, 0, 1, 1)
		b := NewBBox(1, 1, 2, 2)
		got := Union(&a, &b)
		require.NotNil(t, got)
		assert.Equal(t, []float64{0, 0, 2, 2}, got.Slice())
	})

	t.Run("contained box", func(t *testing.T) {
		a := NewBBox(-10, -10, 10, 10)
		b := NewBBox(0, 0, 1, 1)
		got := Union(&a, &b)
		assert.Equal(t, a.Slice(), got.Slice())
	})
}

func TestFromSlice(t *testing.T) {
	assert.Nil(t, FromSlice(nil))
	assert.Nil(t, FromSlice([]float64{1, 2, 3}))

	b := FromSlice([]float64{-8.9, 41.8, -6.7, 43.8})
	require.NotNil(t, b)
	assert.Equal(t, -8.9, b.MinX)
	assert.Equal(t, 43.8, b.MaxY)
}

func TestPolygon(t *testing.T) {
	b := NewBBox(0, 0, 2, 1)
	ring := b.Polygon()[0]
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4], "ring must be closed")
	assert.Equal(t, []float64{0, 0}, ring[0])
	assert.Equal(t, []float64{2, 1}, ring[2])
}

func utcTime(s string) *utc.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	u := utc.New(t)
	return &u
}

func TestUnionInterval(t *testing.T) {
	a := Interval{Start: utcTime("2025-01-01T00:00:00Z"), End: utcTime("2025-01-01T01:00:00Z")}
	b := Interval{Start: utcTime("2025-01-02T00:00:00Z"), End: utcTime("2025-01-02T01:00:00Z")}

	got := UnionInterval(a, b)
	assert.Equal(t, a.Start, got.Start)
	assert.Equal(t, b.End, got.End)

	// Nil bounds never narrow the result.
	got = UnionInterval(got, Interval{})
	assert.Equal(t, a.Start, got.Start)
	assert.Equal(t, b.End, got.End)
}

func TestExtentAccumulator(t *testing.T) {
	t.Run("min max over non-nil boxes", func(t *testing.T) {
		var e Extent
		boxes := []*BBox{
			{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1},
			nil,
			{MinX: -3, MinY: 2, MaxX: 0.5, MaxY: 5},
		}
		for _, b := range boxes {
			e.Add(b, Interval{})
		}
		require.NotNil(t, e.BBox())
		assert.Equal(t, []float64{-3, 0, 1, 5}, e.BBox().Slice())
	})

	t.Run("adding only grows", func(t *testing.T) {
		var e Extent
		first := NewBBox(0, 0, 1, 1)
		e.Add(&first, Interval{Start: utcTime("2025-01-01T00:00:00Z"), End: utcTime("2025-01-01T01:00:00Z")})

		before := e.BBox().Slice()
		contained := NewBBox(0.2, 0.2, 0.8, 0.8)
		e.Add(&contained, Interval{Start: utcTime("2025-01-01T00:30:00Z"), End: utcTime("2025-01-01T00:45:00Z")})

		assert.Equal(t, before, e.BBox().Slice())
		assert.Equal(t, utcTime("2025-01-01T00:00:00Z"), e.Interval().Start)
		assert.Equal(t, utcTime("2025-01-01T01:00:00Z"), e.Interval().End)

		wider := NewBBox(-1, -1, 2, 2)
		e.Add(&wider, Interval{End: utcTime("2025-01-01T02:00:00Z")})
		assert.Equal(t, []float64{-1, -1, 2, 2}, e.BBox().Slice())
		assert.Equal(t, utcTime("2025-01-01T02:00:00Z"), e.Interval().End)
	})

	t.Run("empty accumulator", func(t *testing.T) {
		var e Extent
		assert.Nil(t, e.BBox())
		assert.Nil(t, e.Interval().Start)
		assert.Nil(t, e.Interval().End)
	})
}
