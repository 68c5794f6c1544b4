// Package extent infers a partition's spatial bounding box and time interval
// through ordered fallback chains: embedded geo metadata, then coordinate
// column scans for space; timestamp columns, then partition coordinates for
// time. Failure of a whole chain degrades the item, it never fails the run.
package extent

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/agentstation/utc"

	"github.com/hf-eolus/geocatalog/pkg/geometry"
	"github.com/hf-eolus/geocatalog/pkg/scanner"
	"github.com/hf-eolus/geocatalog/pkg/tabular"
)

// GeoMetadataKey is the file-level key-value metadata entry carrying the
// embedded geo block.
const GeoMetadataKey = "geo"

// Candidate coordinate columns, in priority order. The first present pair
// wins.
var (
	lonCandidates = []string{"lon", "longitude", "x"}
	latCandidates = []string{"lat", "latitude", "y"}
)

// temporalCandidates are the column-name patterns tried in order. A paired
// start/end candidate outranks the single-column candidates.
var temporalCandidates = [][]string{
	{"start_datetime", "end_datetime"},
	{"timestamp"},
	{"datetime"},
	{"time"},
	{"date"},
}

// geoMetadata is the embedded geo block shape: a primary geometry column
// and, per column, an explicit bbox, with an optional top-level bbox.
type geoMetadata struct {
	PrimaryColumn string                   `json:"primary_column"`
	Columns       map[string]geoColumnMeta `json:"columns"`
	BBox          []float64                `json:"bbox"`
}

type geoColumnMeta struct {
	BBox []float64 `json:"bbox"`
}

// Spatial resolves the bounding box and primary geometry column name of a
// table. Tried in order: the embedded geo block's primary-column bbox, its
// top-level bbox, then a full scan of the first present lon/lat candidate
// pair. A nil bbox means the chain was exhausted; the caller degrades the
// item instead of failing.
func Spatial(table *tabular.Table) (primaryGeom string, bbox *geometry.BBox) {
	primaryGeom, bbox = fromGeoMetadata(table)
	if bbox == nil {
		bbox = scanCoordinates(table)
	}
	return primaryGeom, bbox
}

// fromGeoMetadata reads the embedded geo block.
func fromGeoMetadata(table *tabular.Table) (string, *geometry.BBox) {
	raw, ok := table.Metadata(GeoMetadataKey)
	if !ok || raw == "" {
		return "", nil
	}
	var meta geoMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return "", nil
	}
	var bbox *geometry.BBox
	if meta.PrimaryColumn != "" {
		if col, ok := meta.Columns[meta.PrimaryColumn]; ok {
			bbox = geometry.FromSlice(col.BBox)
		}
	}
	if bbox == nil {
		bbox = geometry.FromSlice(meta.BBox)
	}
	return meta.PrimaryColumn, bbox
}

// scanCoordinates computes a bounding box from the first present lon/lat
// candidate pair by a running min/max over the whole file. Non-finite values
// are excluded from the computation.
func scanCoordinates(table *tabular.Table) *geometry.BBox {
	lonCol := firstPresent(table, lonCandidates)
	latCol := firstPresent(table, latCandidates)
	if lonCol == "" || latCol == "" {
		return nil
	}

	minLon, maxLon, lonOK := columnRange(table, lonCol)
	minLat, maxLat, latOK := columnRange(table, latCol)
	if !lonOK || !latOK {
		return nil
	}
	bbox := geometry.NewBBox(minLon, minLat, maxLon, maxLat)
	return &bbox
}

// columnRange scans one column for its finite min/max.
func columnRange(table *tabular.Table, name string) (minV, maxV float64, ok bool) {
	minV = math.Inf(1)
	maxV = math.Inf(-1)
	err := table.ScanFloats(name, func(v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
		ok = true
	})
	if err != nil {
		return 0, 0, false
	}
	return minV, maxV, ok
}

// firstPresent returns the first candidate column present in the table.
func firstPresent(table *tabular.Table, candidates []string) string {
	for _, name := range candidates {
		if table.HasColumn(name) {
			return name
		}
	}
	return ""
}

// Temporal resolves a table's time interval. Tried in order: the first fully
// present temporal column candidate (min of starts, max of ends), then a
// synthetic one-hour interval derived from the year/month/day/hour partition
// coordinates. Both bounds nil means the chain was exhausted.
func Temporal(table *tabular.Table, partitions scanner.Partitions) geometry.Interval {
	if interval, ok := fromColumns(table); ok {
		return interval
	}
	if interval, ok := FromPartitions(partitions); ok {
		return interval
	}
	return geometry.Interval{}
}

// fromColumns scans the first present temporal candidate.
func fromColumns(table *tabular.Table) (geometry.Interval, bool) {
	for _, candidate := range temporalCandidates {
		if !hasAll(table, candidate) {
			continue
		}
		if len(candidate) == 2 {
			start, startOK := columnTimeRange(table, candidate[0])
			end, endOK := columnTimeRange(table, candidate[1])
			if startOK && endOK {
				s, e := start.min, end.max
				return geometry.Interval{Start: &s, End: &e}, true
			}
			continue
		}
		r, ok := columnTimeRange(table, candidate[0])
		if ok {
			s, e := r.min, r.max
			return geometry.Interval{Start: &s, End: &e}, true
		}
	}
	return geometry.Interval{}, false
}

// timeRange is the min/max of one scanned temporal column.
type timeRange struct {
	min utc.Time
	max utc.Time
}

// columnTimeRange scans one column for its min/max instants.
func columnTimeRange(table *tabular.Table, name string) (timeRange, bool) {
	var r timeRange
	found := false
	err := table.ScanTimes(name, func(t utc.Time) {
		if !found {
			r.min, r.max = t, t
			found = true
			return
		}
		if t.Time.Before(r.min.Time) {
			r.min = t
		}
		if t.Time.After(r.max.Time) {
			r.max = t
		}
	})
	if err != nil || !found {
		return timeRange{}, false
	}
	return r, true
}

// hasAll reports whether every named column is present.
func hasAll(table *tabular.Table, names []string) bool {
	for _, name := range names {
		if !table.HasColumn(name) {
			return false
		}
	}
	return true
}

// FromPartitions derives a synthetic one-hour interval from year/month/day/
// hour partition coordinates. Missing month and day default to 1, missing
// hour to 0; a missing or malformed year yields no interval.
func FromPartitions(partitions scanner.Partitions) (geometry.Interval, bool) {
	yearStr, ok := partitions.Get("year")
	if !ok {
		return geometry.Interval{}, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return geometry.Interval{}, false
	}
	month, ok := partitionInt(partitions, "month", 1)
	if !ok {
		return geometry.Interval{}, false
	}
	day, ok := partitionInt(partitions, "day", 1)
	if !ok {
		return geometry.Interval{}, false
	}
	hour, ok := partitionInt(partitions, "hour", 0)
	if !ok {
		return geometry.Interval{}, false
	}

	start := utc.New(time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC))
	end := start.Add(time.Hour)
	return geometry.Interval{Start: &start, End: &end}, true
}

// partitionInt reads an integer partition coordinate. A missing coordinate
// takes the default; a malformed one fails the derivation.
func partitionInt(partitions scanner.Partitions, key string, def int) (int, bool) {
	raw, ok := partitions.Get(key)
	if !ok {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
