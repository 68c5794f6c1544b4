// Package builder assembles the catalog: it coordinates partition discovery,
// extent resolution, incremental merging with prior catalog state, item
// construction with companion sidecars and plots, override merging, and
// persistence of the final link graph. Execution is strictly sequential; the
// extent accumulator and known-identifier sets are unsynchronized in-process
// state, and recovery from a partial run relies on the incremental skip
// logic rather than rollback.
package builder

import (
	"github.com/spf13/afero"

	"github.com/hf-eolus/geocatalog/pkg/errors"
	"github.com/hf-eolus/geocatalog/pkg/geometry"
)

// Item kinds, one per sub-catalog.
const (
	KindParquet  = "parquet"
	KindMetadata = "metadata"
	KindPlots    = "plots"
)

// DefaultExtensions are the file extensions accepted by the scanner when the
// caller does not override them.
var DefaultExtensions = []string{".parquet", ".geoparquet"}

// Source is a filesystem location: a mounted tree plus a root path within it.
type Source struct {
	FS   afero.Fs
	Root string
}

// Config describes one catalog build.
type Config struct {
	// Input is the partitioned data tree to catalog.
	Input Source

	// Metadata optionally holds per-partition metadata sidecars in a tree
	// parallel to Input.
	Metadata *Source

	// Plots optionally holds per-partition diagnostic images in a tree
	// parallel to Input.
	Plots *Source

	// Output is the destination directory for the persisted catalog.
	Output Source

	CollectionID string
	Title        string
	Description  string
	Region       string
	License      string

	// DeclaredPeriod is the caller-declared coverage period recorded on the
	// collection alongside the accumulated one.
	DeclaredPeriod geometry.Interval

	// Extensions restricts which files are treated as partition assets.
	Extensions []string

	// Incremental reuses previously persisted catalog state: known items
	// are reloaded unchanged and their partitions skipped.
	Incremental bool

	// ItemOverrides is deep-merged into every generated item document.
	ItemOverrides map[string]any

	// CollectionOverrides is deep-merged into the collection document.
	CollectionOverrides map[string]any
}

// validate checks the config for the required fields.
func (c *Config) validate() error {
	if c.Input.FS == nil || c.Input.Root == "" {
		return errors.NewConfigError("builder", "input root is required", nil)
	}
	if c.Output.FS == nil || c.Output.Root == "" {
		return errors.NewConfigError("builder", "output directory is required", nil)
	}
	if c.CollectionID == "" {
		return errors.NewConfigError("builder", "collection id is required", nil)
	}
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions
	}
	if c.License == "" {
		c.License = "proprietary"
	}
	return nil
}
