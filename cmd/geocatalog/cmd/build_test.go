package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleFromID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"wind-galicia", "Wind Galicia"},
		{"interpolated_winds", "Interpolated Winds"},
		{"catalog", "Catalog"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, titleFromID(tt.id), tt.id)
	}
}

func TestParseInstant(t *testing.T) {
	got, err := parseInstant("2025-01-02T03:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC), got.Time.UTC())

	// Naive values are assumed UTC.
	got, err = parseInstant("2025-01-02T03:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC), got.Time.UTC())

	_, err = parseInstant("02/01/2025")
	require.Error(t, err)
}

func TestDeclaredPeriod(t *testing.T) {
	buildFlags.temporalStart = "2025-01-01T00:00:00Z"
	buildFlags.temporalEnd = ""
	defer func() { buildFlags.temporalStart = "" }()

	interval, err := declaredPeriod()
	require.NoError(t, err)
	require.NotNil(t, interval.Start)
	assert.Nil(t, interval.End)

	buildFlags.temporalStart = "not a date"
	_, err = declaredPeriod()
	require.Error(t, err)
}

func TestLoadOverridesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"properties":{"constellation":"wind"}}`), 0644))

	overrides, err := loadOverrides(path)
	require.NoError(t, err)
	props, ok := overrides["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "wind", props["constellation"])
}

func TestLoadOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords:\n  - wind\n  - galicia\n"), 0644))

	overrides, err := loadOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, []any{"wind", "galicia"}, overrides["keywords"])
}

func TestLoadOverridesEmptyPath(t *testing.T) {
	overrides, err := loadOverrides("")
	require.NoError(t, err)
	assert.Nil(t, overrides)
}

func TestLoadOverridesMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	_, err := loadOverrides(path)
	require.Error(t, err)
}

func TestFormatBound(t *testing.T) {
	assert.Equal(t, "open", formatBound(nil))

	bound, err := parseInstant("2025-01-02T03:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02T03:00:00Z", formatBound(&bound))
}
