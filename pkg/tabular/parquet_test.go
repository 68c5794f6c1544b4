package tabular_test

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hf-eolus/geocatalog/internal/parquettest"
	"github.com/hf-eolus/geocatalog/pkg/errors"
	"github.com/hf-eolus/geocatalog/pkg/tabular"
)

func fixtureRows() []parquettest.Row {
	return []parquettest.Row{
		{NodeID: "n1", Lon: -8.5, Lat: 42.1, U: 3.25, IsOrig: true,
			Timestamp: time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC), SourceModel: "era5"},
		{NodeID: "n2", Lon: -8.1, Lat: 42.9, U: 4.5, IsOrig: false,
			Timestamp: time.Date(2025, 1, 2, 4, 0, 0, 0, time.UTC), SourceModel: "era5"},
	}
}

func openFixture(t *testing.T, metadata map[string]string) *tabular.Table {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, parquettest.Write(fsys, "data.parquet", fixtureRows(), metadata))

	table, err := tabular.Open(fsys, "data.parquet")
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Close() })
	return table
}

func TestOpenMissingFile(t *testing.T) {
	_, err := tabular.Open(afero.NewMemMapFs(), "nope.parquet")
	require.Error(t, err)
}

func TestOpenNotParquet(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "bad.parquet", []byte("not parquet"), 0644))

	_, err := tabular.Open(fsys, "bad.parquet")
	require.Error(t, err)
}

func TestNumRows(t *testing.T) {
	table := openFixture(t, nil)
	assert.Equal(t, int64(2), table.NumRows())
}

func TestMetadataLookup(t *testing.T) {
	table := openFixture(t, map[string]string{"geo": `{"primary_column":"geometry"}`})

	value, ok := table.Metadata("geo")
	require.True(t, ok)
	assert.Equal(t, `{"primary_column":"geometry"}`, value)

	_, ok = table.Metadata("missing")
	assert.False(t, ok)
}

func TestColumnKinds(t *testing.T) {
	table := openFixture(t, nil)

	kinds := map[string]tabular.Kind{}
	for _, column := range table.Columns() {
		kinds[column.Name] = column.Kind
	}

	assert.Equal(t, tabular.KindString, kinds["node_id"])
	assert.Equal(t, tabular.KindFloat, kinds["lon"])
	assert.Equal(t, tabular.KindFloat, kinds["u"])
	assert.Equal(t, tabular.KindBoolean, kinds["is_orig"])
	assert.Equal(t, tabular.KindTimestamp, kinds["timestamp"])
	assert.Equal(t, tabular.KindString, kinds["source_model"])
}

func TestHasColumn(t *testing.T) {
	table := openFixture(t, nil)
	assert.True(t, table.HasColumn("lon"))
	assert.False(t, table.HasColumn("elevation"))
}

func TestScanFloats(t *testing.T) {
	table := openFixture(t, nil)

	var values []float64
	require.NoError(t, table.ScanFloats("u", func(v float64) {
		values = append(values, v)
	}))
	assert.Equal(t, []float64{3.25, 4.5}, values)
}

func TestScanFloatsMissingColumn(t *testing.T) {
	table := openFixture(t, nil)
	require.Error(t, table.ScanFloats("missing", func(float64) {}))
}

func TestScanTimesTimestampColumn(t *testing.T) {
	table := openFixture(t, nil)

	var times []time.Time
	require.NoError(t, table.ScanTimes("timestamp", func(ts utc.Time) {
		times = append(times, ts.Time)
	}))
	require.Len(t, times, 2)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC), times[0].UTC())
	assert.Equal(t, time.Date(2025, 1, 2, 4, 0, 0, 0, time.UTC), times[1].UTC())
}

func TestScanTimesStringColumn(t *testing.T) {
	type row struct {
		StartDatetime string `parquet:"start_datetime"`
	}
	fsys := afero.NewMemMapFs()
	rows := []row{
		{StartDatetime: "2025-03-01T00:00:00Z"},
		{StartDatetime: "not a time"},
		{StartDatetime: "2025-03-02"},
	}
	require.NoError(t, parquettest.Write(fsys, "data.parquet", rows, nil))

	table, err := tabular.Open(fsys, "data.parquet")
	require.NoError(t, err)
	defer table.Close()

	var times []time.Time
	require.NoError(t, table.ScanTimes("start_datetime", func(ts utc.Time) {
		times = append(times, ts.Time)
	}))
	require.Len(t, times, 2)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), times[0].UTC())
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), times[1].UTC())
}

func TestFirst(t *testing.T) {
	table := openFixture(t, nil)

	value, ok, err := table.First("source_model")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "era5", value)

	value, ok, err = table.First("is_orig")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, true, value)
}

func TestFirstMissingColumn(t *testing.T) {
	table := openFixture(t, nil)

	_, ok, err := table.First("missing")
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2025-01-02T03:04:05Z", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), true},
		{"2025-01-02T03:04:05", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), true},
		{"2025-01-02", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"02/01/2025", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := tabular.ParseTime(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		if tt.ok {
			assert.Equal(t, tt.want, got.Time.UTC(), tt.input)
		}
	}
}
