// Package tabular provides narrow read access to the columnar partition
// files the catalog describes: column schema with abstract native-type tags,
// file key-value metadata, row counts, and targeted column scans. It is the
// only package that touches the parquet format directly; everything above it
// works with the Kind tags and plain Go values.
package tabular

// Kind is an abstract native-type tag for a column, decoupled from the
// underlying file format's type system.
type Kind int

// Native type tags.
const (
	KindUnknown Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindTimestamp
	KindDate
	KindString
	KindBinary
)

// String returns the tag name, for logs.
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindTimestamp:
		return "timestamp"
	case KindDate:
		return "date"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Column is one column of a tabular file.
type Column struct {
	Name string
	Kind Kind
}
