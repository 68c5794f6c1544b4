package stac

import (
	"encoding/json"

	"github.com/hf-eolus/geocatalog/pkg/errors"
	"github.com/hf-eolus/geocatalog/pkg/geometry"
)

// Collection is the top-level catalog node: identity, licensing, the
// accumulated spatial/temporal extent, child sub-catalog links, and the
// extension fields (region, period, source models) of this product family.
type Collection struct {
	Type        string `json:"type"`
	StacVersion string `json:"stac_version"`
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	License     string `json:"license"`
	Extent      Extent `json:"extent"`
	Links       []Link `json:"links"`

	// Extension fields
	Region       string   `json:"region,omitempty"`
	Period       *Period  `json:"period,omitempty"`
	SourceModels []string `json:"source_models,omitempty"`
}

// NewCollection creates a collection with an empty extent.
func NewCollection(id, title, description, license string) *Collection {
	if description == "" {
		description = title
	}
	return &Collection{
		Type:        "Collection",
		StacVersion: Version,
		ID:          id,
		Title:       title,
		Description: description,
		License:     license,
		Links:       []Link{},
	}
}

// AddLink appends a typed relation to the collection.
func (c *Collection) AddLink(link Link) {
	c.Links = append(c.Links, link)
}

// SetExtent writes the accumulated extent into the collection document.
// A missing bbox or interval bound is recorded as null.
func (c *Collection) SetExtent(extent *geometry.Extent) {
	spatial := SpatialExtent{BBox: [][]float64{nil}}
	if bbox := extent.BBox(); bbox != nil {
		spatial.BBox = [][]float64{bbox.Slice()}
	}
	interval := extent.Interval()
	var start, end *string
	if interval.Start != nil {
		s := interval.Start.Format(DatetimeFormat)
		start = &s
	}
	if interval.End != nil {
		s := interval.End.Format(DatetimeFormat)
		end = &s
	}
	c.Extent = Extent{
		Spatial:  spatial,
		Temporal: TemporalExtent{Interval: [][]*string{{start, end}}},
	}
}

// Doc returns the collection as a generic document tree for override merging
// and persistence.
func (c *Collection) Doc() (map[string]any, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, errors.WrapParse("json", c.ID, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.WrapParse("json", c.ID, err)
	}
	return doc, nil
}

// Catalog is a sub-catalog owning the items of one asset kind.
type Catalog struct {
	Type        string `json:"type"`
	StacVersion string `json:"stac_version"`
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Links       []Link `json:"links"`
}

// NewCatalog creates an empty sub-catalog.
func NewCatalog(id, title, description string) *Catalog {
	return &Catalog{
		Type:        "Catalog",
		StacVersion: Version,
		ID:          id,
		Title:       title,
		Description: description,
		Links:       []Link{},
	}
}

// AddLink appends a typed relation to the catalog.
func (c *Catalog) AddLink(link Link) {
	c.Links = append(c.Links, link)
}
