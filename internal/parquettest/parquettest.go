// Package parquettest builds small in-memory parquet fixtures for tests.
package parquettest

import (
	"bytes"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/spf13/afero"
)

// Row is a synthetic interpolation partition row covering the column shapes
// the catalog cares about: coordinates, measurements, flags, timestamps, and
// the constant source-model column.
type Row struct {
	NodeID      string    `parquet:"node_id"`
	Lon         float64   `parquet:"lon"`
	Lat         float64   `parquet:"lat"`
	U           float64   `parquet:"u"`
	IsOrig      bool      `parquet:"is_orig"`
	Timestamp   time.Time `parquet:"timestamp"`
	SourceModel string    `parquet:"source_model"`
}

// Encode serializes rows with optional file-level key-value metadata.
func Encode[T any](rows []T, metadata map[string]string) ([]byte, error) {
	var opts []parquet.WriterOption
	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		opts = append(opts, parquet.KeyValueMetadata(key, metadata[key]))
	}

	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[T](&buf, opts...)
	if _, err := writer.Write(rows); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes rows and stores the file on the given filesystem.
func Write[T any](fsys afero.Fs, path string, rows []T, metadata map[string]string) error {
	raw, err := Encode(rows, metadata)
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, path, raw, 0644)
}
