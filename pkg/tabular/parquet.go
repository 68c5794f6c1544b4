package tabular

import (
	"io"
	"time"

	"github.com/agentstation/utc"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
	"github.com/spf13/afero"

	"github.com/hf-eolus/geocatalog/pkg/errors"
)

// Table is an open parquet file exposing only what catalog assembly needs.
type Table struct {
	path string
	file *parquet.File
	f    afero.File
}

// Open opens a parquet file on the given filesystem.
func Open(fsys afero.Fs, path string) (*Table, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, errors.WrapIO("stat", path, err)
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	file, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, errors.WrapParse("parquet", path, err)
	}
	return &Table{path: path, file: file, f: f}, nil
}

// Close releases the underlying file handle.
func (t *Table) Close() error {
	return t.f.Close()
}

// NumRows returns the total row count of the file.
func (t *Table) NumRows() int64 {
	return t.file.NumRows()
}

// Metadata returns the file-level key-value metadata entry for key.
func (t *Table) Metadata(key string) (string, bool) {
	return t.file.Lookup(key)
}

// Columns lists the leaf columns of the file in schema order.
func (t *Table) Columns() []Column {
	fields := t.file.Schema().Fields()
	columns := make([]Column, 0, len(fields))
	for _, field := range fields {
		if !field.Leaf() {
			continue
		}
		columns = append(columns, Column{Name: field.Name(), Kind: fieldKind(field)})
	}
	return columns
}

// HasColumn reports whether a leaf column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.file.Schema().Lookup(name)
	return ok
}

// fieldKind maps a parquet field to its abstract native-type tag. Logical
// annotations win over the physical type.
func fieldKind(field parquet.Field) Kind {
	typ := field.Type()
	if lt := typ.LogicalType(); lt != nil {
		switch {
		case lt.UTF8 != nil:
			return KindString
		case lt.Timestamp != nil:
			return KindTimestamp
		case lt.Date != nil:
			return KindDate
		case lt.Integer != nil:
			return KindInteger
		}
	}
	switch typ.Kind() {
	case parquet.Boolean:
		return KindBoolean
	case parquet.Int32, parquet.Int64, parquet.Int96:
		return KindInteger
	case parquet.Float, parquet.Double:
		return KindFloat
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return KindBinary
	default:
		return KindUnknown
	}
}

// scanColumn streams every non-null value of a column through fn, in file
// order. fn returns false to stop early.
func (t *Table) scanColumn(name string, fn func(parquet.Value) bool) error {
	leaf, ok := t.file.Schema().Lookup(name)
	if !ok {
		return errors.NewNotFoundError("column", name)
	}

	buf := make([]parquet.Value, 256)
	for _, rowGroup := range t.file.RowGroups() {
		pages := rowGroup.ColumnChunks()[leaf.ColumnIndex].Pages()
		err := func() error {
			defer func() { _ = pages.Close() }()
			for {
				page, err := pages.ReadPage()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return errors.WrapParse("parquet", t.path, err)
				}
				reader := page.Values()
				for {
					n, err := reader.ReadValues(buf)
					for _, value := range buf[:n] {
						if value.IsNull() {
							continue
						}
						if !fn(value) {
							return errStopScan
						}
					}
					if err == io.EOF {
						break
					}
					if err != nil {
						return errors.WrapParse("parquet", t.path, err)
					}
				}
			}
		}()
		if err == errStopScan {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// errStopScan signals an intentional early stop inside scanColumn.
var errStopScan = errors.New("stop scan")

// ScanFloats streams every non-null numeric value of a column as float64.
func (t *Table) ScanFloats(name string, fn func(float64)) error {
	return t.scanColumn(name, func(value parquet.Value) bool {
		switch value.Kind() {
		case parquet.Int32:
			fn(float64(value.Int32()))
		case parquet.Int64:
			fn(float64(value.Int64()))
		case parquet.Float:
			fn(float64(value.Float()))
		case parquet.Double:
			fn(value.Double())
		}
		return true
	})
}

// ScanTimes streams every non-null value of a column that can be read as a
// UTC instant. Timestamp and date columns convert directly; string columns
// are parsed, with naive values assumed UTC. Unparseable values are skipped.
func (t *Table) ScanTimes(name string, fn func(utc.Time)) error {
	leaf, ok := t.file.Schema().Lookup(name)
	if !ok {
		return errors.NewNotFoundError("column", name)
	}
	logical := leaf.Node.Type().LogicalType()

	return t.scanColumn(name, func(value parquet.Value) bool {
		if ts, ok := decodeTime(value, logical); ok {
			fn(ts)
		}
		return true
	})
}

// decodeTime converts one column value into a UTC instant.
func decodeTime(value parquet.Value, logical *format.LogicalType) (utc.Time, bool) {
	if logical != nil && logical.Timestamp != nil {
		v := value.Int64()
		unit := logical.Timestamp.Unit
		switch {
		case unit.Millis != nil:
			return utc.New(time.UnixMilli(v)), true
		case unit.Micros != nil:
			return utc.New(time.UnixMicro(v)), true
		default:
			return utc.New(time.Unix(0, v)), true
		}
	}
	if logical != nil && logical.Date != nil {
		days := int64(value.Int32())
		return utc.New(time.Unix(days*24*3600, 0)), true
	}
	if value.Kind() == parquet.ByteArray {
		return ParseTime(string(value.ByteArray()))
	}
	return utc.Time{}, false
}

// ParseTime parses an ISO-8601 instant or date, assuming UTC for naive
// values.
func ParseTime(s string) (utc.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return utc.New(t), true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return utc.New(t.UTC()), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return utc.New(t.UTC()), true
	}
	return utc.Time{}, false
}

// First returns the first non-null value of a column as a plain Go value.
// ok is false for a column with only null values; an absent column reports a
// NotFoundError.
func (t *Table) First(name string) (any, bool, error) {
	var out any
	found := false
	err := t.scanColumn(name, func(value parquet.Value) bool {
		out = goValue(value)
		found = true
		return false
	})
	if err != nil {
		return nil, false, err
	}
	return out, found, nil
}

// goValue converts a column value to its natural Go representation.
func goValue(value parquet.Value) any {
	switch value.Kind() {
	case parquet.Boolean:
		return value.Boolean()
	case parquet.Int32:
		return int64(value.Int32())
	case parquet.Int64:
		return value.Int64()
	case parquet.Float:
		return float64(value.Float())
	case parquet.Double:
		return value.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(value.ByteArray())
	default:
		return nil
	}
}
