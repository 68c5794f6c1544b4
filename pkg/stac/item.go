package stac

import (
	"encoding/json"

	"github.com/agentstation/utc"

	"github.com/hf-eolus/geocatalog/pkg/errors"
	"github.com/hf-eolus/geocatalog/pkg/geometry"
)

// DatetimeFormat is the layout used for datetime property values.
const DatetimeFormat = "2006-01-02T15:04:05Z"

// Item is the catalog's atomic description of one partition asset: identity,
// geometry, time interval, property map, named asset references, and typed
// relations to other items.
type Item struct {
	Type        string           `json:"type"`
	StacVersion string           `json:"stac_version"`
	ID          string           `json:"id"`
	Geometry    *Geometry        `json:"geometry"`
	BBox        []float64        `json:"bbox,omitempty"`
	Properties  map[string]any   `json:"properties"`
	Links       []Link           `json:"links"`
	Assets      map[string]Asset `json:"assets"`
}

// NewItem creates an item with the given identity, spatial footprint, and
// time interval. A nil bbox leaves geometry and bbox absent. The datetime
// property is the interval start (or its end when no start exists), per the
// single-datetime convention of the catalog format.
func NewItem(id string, bbox *geometry.BBox, interval geometry.Interval) *Item {
	item := &Item{
		Type:        "Feature",
		StacVersion: Version,
		ID:          id,
		Properties:  map[string]any{},
		Links:       []Link{},
		Assets:      map[string]Asset{},
	}
	if bbox != nil {
		item.BBox = bbox.Slice()
		item.Geometry = &Geometry{Type: "Polygon", Coordinates: bbox.Polygon()}
	}
	dt := interval.Start
	if dt == nil {
		dt = interval.End
	}
	if dt != nil {
		item.Properties["datetime"] = dt.Format(DatetimeFormat)
	} else {
		item.Properties["datetime"] = nil
	}
	if interval.Start != nil {
		item.Properties["start_datetime"] = interval.Start.Format(DatetimeFormat)
	}
	if interval.End != nil {
		item.Properties["end_datetime"] = interval.End.Format(DatetimeFormat)
	}
	return item
}

// AddAsset registers a named asset reference on the item.
func (i *Item) AddAsset(key string, asset Asset) {
	i.Assets[key] = asset
}

// AddLink appends a typed relation to the item.
func (i *Item) AddLink(link Link) {
	i.Links = append(i.Links, link)
}

// SetColumns stores the table-extension column schema on the item.
func (i *Item) SetColumns(columns []Column) {
	i.Properties["table:columns"] = columns
}

// BBoxValue returns the item's bounding box as a geometry value, or nil.
func (i *Item) BBoxValue() *geometry.BBox {
	return geometry.FromSlice(i.BBox)
}

// Interval returns the item's time interval parsed from its datetime
// properties. Falls back to the single datetime when no explicit start or
// end is present.
func (i *Item) Interval() geometry.Interval {
	start := parseDatetimeProperty(i.Properties, "start_datetime")
	end := parseDatetimeProperty(i.Properties, "end_datetime")
	if start == nil && end == nil {
		single := parseDatetimeProperty(i.Properties, "datetime")
		return geometry.Interval{Start: single, End: single}
	}
	return geometry.Interval{Start: start, End: end}
}

// Doc returns the item as a generic document tree for override merging and
// persistence.
func (i *Item) Doc() (map[string]any, error) {
	raw, err := json.Marshal(i)
	if err != nil {
		return nil, errors.WrapParse("json", i.ID, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.WrapParse("json", i.ID, err)
	}
	return doc, nil
}

// ItemFromDoc parses a decoded document tree back into an item view. Extra
// fields are dropped from the view but preserved in the document itself.
func ItemFromDoc(doc map[string]any) (*Item, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	var item Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	if item.ID == "" {
		return nil, errors.NewValidationError("id", nil, "item document has no id")
	}
	return &item, nil
}

// parseDatetimeProperty reads a datetime-valued property, returning nil for
// absent, null, or unparseable values.
func parseDatetimeProperty(properties map[string]any, key string) *utc.Time {
	raw, ok := properties[key]
	if !ok {
		return nil
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil
	}
	t, err := utc.Parse(DatetimeFormat, s)
	if err != nil {
		return nil
	}
	return &t
}
