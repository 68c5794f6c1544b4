// Package stac defines the catalog document model persisted on disk:
// collections, sub-catalogs, items, assets, and links, following the
// SpatioTemporal Asset Catalog JSON shape. The types here are plain data
// carriers with JSON round-trip support; assembly and persistence logic
// lives in pkg/builder.
package stac

// Version is the catalog spec version written into every document.
const Version = "1.0.0"

// Relation kinds used on links.
const (
	RelSelf        = "self"
	RelRoot        = "root"
	RelParent      = "parent"
	RelChild       = "child"
	RelItem        = "item"
	RelDescribes   = "describes"
	RelDescribedBy = "describedby"
	RelRelated     = "related"
)

// Link is a typed relation from one document to another.
type Link struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// Asset is a named reference to a file described by an item.
type Asset struct {
	Href        string   `json:"href"`
	Type        string   `json:"type,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// Geometry is a GeoJSON geometry. Only bbox-derived polygons are emitted.
type Geometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// Column describes one column of a tabular asset for the table extension.
type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// SpatialExtent holds the accumulated bounding boxes of a collection.
type SpatialExtent struct {
	BBox [][]float64 `json:"bbox"`
}

// TemporalExtent holds the accumulated time intervals of a collection,
// formatted as RFC 3339 strings with null for open bounds.
type TemporalExtent struct {
	Interval [][]*string `json:"interval"`
}

// Extent combines the spatial and temporal summaries of a collection.
type Extent struct {
	Spatial  SpatialExtent  `json:"spatial"`
	Temporal TemporalExtent `json:"temporal"`
}

// Period is the declared or derived coverage period stored as a collection
// extension field.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}
