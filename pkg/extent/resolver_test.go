package extent_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hf-eolus/geocatalog/internal/parquettest"
	"github.com/hf-eolus/geocatalog/pkg/extent"
	"github.com/hf-eolus/geocatalog/pkg/scanner"
	"github.com/hf-eolus/geocatalog/pkg/tabular"
)

func openTable[T any](t *testing.T, rows []T, metadata map[string]string) *tabular.Table {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, parquettest.Write(fsys, "data.parquet", rows, metadata))

	table, err := tabular.Open(fsys, "data.parquet")
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Close() })
	return table
}

func geoBlock(t *testing.T, primary string, columnBBox, topBBox []float64) string {
	t.Helper()
	block := map[string]any{"primary_column": primary}
	if columnBBox != nil {
		block["columns"] = map[string]any{primary: map[string]any{"bbox": columnBBox}}
	}
	if topBBox != nil {
		block["bbox"] = topBBox
	}
	raw, err := json.Marshal(block)
	require.NoError(t, err)
	return string(raw)
}

func TestSpatialFromGeoMetadataPrimaryColumn(t *testing.T) {
	meta := map[string]string{
		extent.GeoMetadataKey: geoBlock(t, "geometry", []float64{-9, 41, -8, 43}, []float64{-180, -90, 180, 90}),
	}
	table := openTable(t, []parquettest.Row{{Lon: 0, Lat: 0}}, meta)

	primary, bbox := extent.Spatial(table)
	assert.Equal(t, "geometry", primary)
	require.NotNil(t, bbox)
	assert.Equal(t, []float64{-9, 41, -8, 43}, bbox.Slice())
}

func TestSpatialFromGeoMetadataTopLevelBBox(t *testing.T) {
	meta := map[string]string{
		extent.GeoMetadataKey: geoBlock(t, "geometry", nil, []float64{-10, 40, -7, 44}),
	}
	table := openTable(t, []parquettest.Row{{Lon: 0, Lat: 0}}, meta)

	primary, bbox := extent.Spatial(table)
	assert.Equal(t, "geometry", primary)
	require.NotNil(t, bbox)
	assert.Equal(t, []float64{-10, 40, -7, 44}, bbox.Slice())
}

func TestSpatialFallsBackToCoordinateScan(t *testing.T) {
	rows := []parquettest.Row{
		{Lon: -8.5, Lat: 42.1},
		{Lon: -8.1, Lat: 42.9},
		{Lon: -8.9, Lat: 41.8},
	}
	table := openTable(t, rows, nil)

	primary, bbox := extent.Spatial(table)
	assert.Empty(t, primary)
	require.NotNil(t, bbox)
	assert.Equal(t, []float64{-8.9, 41.8, -8.1, 42.9}, bbox.Slice())
}

func TestSpatialScanExcludesNonFinite(t *testing.T) {
	rows := []parquettest.Row{
		{Lon: -8.5, Lat: 42.1},
		{Lon: math.NaN(), Lat: math.Inf(1)},
		{Lon: -8.1, Lat: 42.9},
	}
	table := openTable(t, rows, nil)

	_, bbox := extent.Spatial(table)
	require.NotNil(t, bbox)
	assert.Equal(t, []float64{-8.5, 42.1, -8.1, 42.9}, bbox.Slice())
}

func TestSpatialNoCoordinateColumns(t *testing.T) {
	type row struct {
		Value float64 `parquet:"value"`
	}
	table := openTable(t, []row{{Value: 1}}, nil)

	primary, bbox := extent.Spatial(table)
	assert.Empty(t, primary)
	assert.Nil(t, bbox)
}

func TestSpatialMalformedGeoMetadataFallsBack(t *testing.T) {
	rows := []parquettest.Row{{Lon: -8.5, Lat: 42.1}}
	table := openTable(t, rows, map[string]string{extent.GeoMetadataKey: "{not json"})

	primary, bbox := extent.Spatial(table)
	assert.Empty(t, primary)
	require.NotNil(t, bbox)
	assert.Equal(t, []float64{-8.5, 42.1, -8.5, 42.1}, bbox.Slice())
}

func TestTemporalFromTimestampColumn(t *testing.T) {
	rows := []parquettest.Row{
		{Timestamp: time.Date(2025, 1, 2, 4, 0, 0, 0, time.UTC)},
		{Timestamp: time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)},
	}
	table := openTable(t, rows, nil)

	interval := extent.Temporal(table, nil)
	require.NotNil(t, interval.Start)
	require.NotNil(t, interval.End)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC), interval.Start.Time.UTC())
	assert.Equal(t, time.Date(2025, 1, 2, 4, 0, 0, 0, time.UTC), interval.End.Time.UTC())
}

func TestTemporalPairedColumnsOutrankSingle(t *testing.T) {
	type row struct {
		StartDatetime string    `parquet:"start_datetime"`
		EndDatetime   string    `parquet:"end_datetime"`
		Timestamp     time.Time `parquet:"timestamp"`
	}
	rows := []row{
		{
			StartDatetime: "2024-12-31T23:00:00Z",
			EndDatetime:   "2025-01-01T01:00:00Z",
			Timestamp:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	table := openTable(t, rows, nil)

	interval := extent.Temporal(table, nil)
	require.NotNil(t, interval.Start)
	require.NotNil(t, interval.End)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), interval.Start.Time.UTC())
	assert.Equal(t, time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC), interval.End.Time.UTC())
}

func TestTemporalFallsBackToPartitions(t *testing.T) {
	type row struct {
		Value float64 `parquet:"value"`
	}
	table := openTable(t, []row{{Value: 1}}, nil)
	partitions := scanner.Partitions{
		{Key: "year", Value: "2025"},
		{Key: "month", Value: "3"},
		{Key: "day", Value: "15"},
		{Key: "hour", Value: "6"},
	}

	interval := extent.Temporal(table, partitions)
	require.NotNil(t, interval.Start)
	require.NotNil(t, interval.End)
	assert.Equal(t, time.Date(2025, 3, 15, 6, 0, 0, 0, time.UTC), interval.Start.Time.UTC())
	assert.Equal(t, time.Date(2025, 3, 15, 7, 0, 0, 0, time.UTC), interval.End.Time.UTC())
}

func TestTemporalExhaustedChain(t *testing.T) {
	type row struct {
		Value float64 `parquet:"value"`
	}
	table := openTable(t, []row{{Value: 1}}, nil)

	interval := extent.Temporal(table, nil)
	assert.Nil(t, interval.Start)
	assert.Nil(t, interval.End)
}

func TestFromPartitions(t *testing.T) {
	tests := []struct {
		name       string
		partitions scanner.Partitions
		ok         bool
		start      time.Time
	}{
		{
			name: "full coordinates",
			partitions: scanner.Partitions{
				{Key: "year", Value: "2025"},
				{Key: "month", Value: "1"},
				{Key: "day", Value: "2"},
				{Key: "hour", Value: "3"},
			},
			ok:    true,
			start: time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC),
		},
		{
			name:       "year only defaults the rest",
			partitions: scanner.Partitions{{Key: "year", Value: "2024"}},
			ok:         true,
			start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "missing year",
			partitions: scanner.Partitions{{Key: "month", Value: "5"}},
			ok:         false,
		},
		{
			name: "malformed year",
			partitions: scanner.Partitions{
				{Key: "year", Value: "twenty25"},
			},
			ok: false,
		},
		{
			name: "malformed month",
			partitions: scanner.Partitions{
				{Key: "year", Value: "2025"},
				{Key: "month", Value: "jan"},
			},
			ok: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interval, ok := extent.FromPartitions(tt.partitions)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			require.NotNil(t, interval.Start)
			require.NotNil(t, interval.End)
			assert.Equal(t, tt.start, interval.Start.Time.UTC())
			assert.Equal(t, tt.start.Add(time.Hour), interval.End.Time.UTC())
		})
	}
}
