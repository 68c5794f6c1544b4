package builder

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/hf-eolus/geocatalog/pkg/constants"
	"github.com/hf-eolus/geocatalog/pkg/errors"
	"github.com/hf-eolus/geocatalog/pkg/extent"
	"github.com/hf-eolus/geocatalog/pkg/geometry"
	"github.com/hf-eolus/geocatalog/pkg/logging"
	"github.com/hf-eolus/geocatalog/pkg/overrides"
	"github.com/hf-eolus/geocatalog/pkg/scanner"
	"github.com/hf-eolus/geocatalog/pkg/stac"
	"github.com/hf-eolus/geocatalog/pkg/tabular"
)

// identityKeys are the partition coordinates that synthesize an item id.
var identityKeys = []string{"year", "month", "day", "hour"}

// ItemID synthesizes the stable identifier for a partition asset. Assets
// carrying all of year/month/day/hour collapse to "{year}{month}{day}T{hour}";
// anything else falls back to the lower-cased filename stem with dots
// replaced by hyphens. Identical partition coordinates always yield the
// identical id, across any number of reruns.
func ItemID(asset scanner.Asset) string {
	if asset.Partitions.Has(identityKeys...) {
		year, _ := asset.Partitions.Get("year")
		month, _ := asset.Partitions.Get("month")
		day, _ := asset.Partitions.Get("day")
		hour, _ := asset.Partitions.Get("hour")
		return year + month + day + "T" + hour
	}
	return strings.ToLower(strings.ReplaceAll(asset.Stem(), ".", "-"))
}

// entry is one item owned by a sub-catalog: its identifier and the document
// that will be persisted. Entries loaded from a prior run are immutable and
// written back verbatim.
type entry struct {
	id     string
	doc    map[string]any
	loaded bool
}

// subCatalog collects the entries and known identifiers of one item kind.
type subCatalog struct {
	kind    string
	known   map[string]struct{}
	entries []*entry
}

func (s *subCatalog) isKnown(id string) bool {
	_, ok := s.known[id]
	return ok
}

func (s *subCatalog) add(e *entry) {
	s.entries = append(s.entries, e)
	s.known[e.id] = struct{}{}
}

// Summary reports what a build produced.
type Summary struct {
	DataItems     int
	MetadataItems int
	PlotItems     int
	BBox          *geometry.BBox
	Interval      geometry.Interval
}

// Builder runs one catalog build. It is single-use and not safe for
// concurrent access: the extent accumulator and known-identifier sets are
// shared mutable state, and each asset is fully processed before the next.
type Builder struct {
	cfg    Config
	log    *zerolog.Logger
	extent geometry.Extent
	models map[string]struct{}
	subs   map[string]*subCatalog
}

// New creates a builder for one run.
func New(cfg Config) (*Builder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	subs := map[string]*subCatalog{}
	for _, kind := range []string{KindParquet, KindMetadata, KindPlots} {
		subs[kind] = &subCatalog{kind: kind, known: map[string]struct{}{}}
	}
	return &Builder{
		cfg:    cfg,
		models: map[string]struct{}{},
		subs:   subs,
	}, nil
}

// Run executes the build: discovery, incremental merge, assembly, and
// persistence. Fatal errors abort immediately, leaving partial output for
// the next incremental invocation to pick up.
func (b *Builder) Run(ctx context.Context) (*Summary, error) {
	b.log = logging.FromContext(ctx)

	assets, err := scanner.Scan(b.cfg.Input.FS, b.cfg.Input.Root, b.cfg.Extensions)
	if err != nil {
		return nil, err
	}
	b.log.Info().
		Str("root", b.cfg.Input.Root).
		Int("assets", len(assets)).
		Msg("Discovered partition assets")

	if b.cfg.Incremental {
		b.loadPrior()
	}

	for _, asset := range assets {
		id := ItemID(asset)
		if b.subs[KindParquet].isKnown(id) {
			b.log.Debug().
				Str("item", id).
				Str("asset", asset.RelPath).
				Msg("Asset already cataloged, skipping")
			continue
		}
		if err := b.process(asset, id); err != nil {
			return nil, err
		}
	}

	if err := b.persist(); err != nil {
		return nil, err
	}

	return &Summary{
		DataItems:     len(b.subs[KindParquet].entries),
		MetadataItems: len(b.subs[KindMetadata].entries),
		PlotItems:     len(b.subs[KindPlots].entries),
		BBox:          b.extent.BBox(),
		Interval:      b.extent.Interval(),
	}, nil
}

// process builds the data item for one asset, its companions, and folds the
// result into the extent accumulator.
func (b *Builder) process(asset scanner.Asset, id string) error {
	srcPath := path.Join(b.cfg.Input.Root, asset.RelPath)
	table, err := tabular.Open(b.cfg.Input.FS, srcPath)
	if err != nil {
		return err
	}
	defer func() { _ = table.Close() }()

	primaryGeom, bbox := extent.Spatial(table)
	if bbox == nil {
		b.log.Warn().
			Str("asset", asset.RelPath).
			Msg("Asset provides no bounding box; item geometry will be omitted")
	}
	interval := extent.Temporal(table, asset.Partitions)
	if interval.Start == nil && interval.End == nil {
		b.log.Warn().
			Str("asset", asset.RelPath).
			Msg("Asset provides no temporal information; item datetime will be omitted")
	}

	// Copy the asset bytes into the managed asset area, mirroring the
	// original relative path. Copy failure aborts the whole run.
	assetRel := path.Join(constants.AssetsDir, KindParquet, asset.RelPath)
	if err := copyFile(b.cfg.Input.FS, srcPath, b.cfg.Output.FS, path.Join(b.cfg.Output.Root, assetRel)); err != nil {
		return err
	}

	item := stac.NewItem(id, bbox, interval)
	item.SetColumns(b.columnSchema(asset, table))
	item.Properties["row_count"] = table.NumRows()
	if primaryGeom != "" {
		item.Properties["primary_geometry_column"] = primaryGeom
	}
	value, found, err := table.First("source_model")
	switch {
	case err != nil:
		// The column being absent is the normal case for older partitions.
		if !errors.IsNotFound(err) {
			b.log.Warn().Err(err).
				Str("asset", asset.RelPath).
				Msg("Failed to read source model column")
		}
	case found:
		if model, ok := value.(string); ok && model != "" {
			item.Properties["source_model"] = model
			b.models[model] = struct{}{}
		}
	}

	itemDir := itemDir(KindParquet, id)
	item.AddAsset("data", stac.Asset{
		Href:  relHref(itemDir, assetRel),
		Type:  constants.MediaTypeParquet,
		Roles: []string{"data"},
		Title: "Interpolated winds GeoParquet",
	})

	b.buildMetadataItem(asset, id, item, bbox, interval)
	b.buildPlotItems(asset, id, item, bbox, interval)

	if err := b.register(KindParquet, id, item); err != nil {
		return err
	}
	b.extent.Add(bbox, interval)
	return nil
}

// columnSchema builds the table-extension column list, classifying native
// types into the closed logical set.
func (b *Builder) columnSchema(asset scanner.Asset, table *tabular.Table) []stac.Column {
	native := table.Columns()
	columns := make([]stac.Column, 0, len(native))
	for _, col := range native {
		logical, known := ClassifyColumn(col.Kind)
		if !known {
			b.log.Warn().
				Str("asset", asset.RelPath).
				Str("column", col.Name).
				Str("native_type", col.Kind.String()).
				Msg("Unrecognized column type, defaulting to string")
		}
		columns = append(columns, stac.Column{
			Name:        col.Name,
			Type:        logical,
			Description: DescribeColumn(col.Name, logical),
		})
	}
	return columns
}

// buildMetadataItem copies the partition's metadata sidecar, if configured
// and present, and creates the metadata item linked to the data item.
func (b *Builder) buildMetadataItem(asset scanner.Asset, parentID string, parent *stac.Item, bbox *geometry.BBox, interval geometry.Interval) {
	if b.cfg.Metadata == nil {
		return
	}
	mdID := parentID + "-metadata"
	if b.subs[KindMetadata].isKnown(mdID) {
		return
	}
	sidecarRel := path.Join(asset.Dir(), constants.MetadataSidecarFile)
	srcPath := path.Join(b.cfg.Metadata.Root, sidecarRel)
	if !fileExists(b.cfg.Metadata.FS, srcPath) {
		return
	}
	assetRel := path.Join(constants.AssetsDir, KindMetadata, sidecarRel)
	if err := copyFile(b.cfg.Metadata.FS, srcPath, b.cfg.Output.FS, path.Join(b.cfg.Output.Root, assetRel)); err != nil {
		b.log.Warn().Err(err).
			Str("sidecar", srcPath).
			Msg("Failed to copy metadata sidecar, skipping companion item")
		return
	}

	mdItem := stac.NewItem(mdID, bbox, interval)
	mdItem.Properties["asset_type"] = "metadata"
	mdDir := itemDir(KindMetadata, mdID)
	mdItem.AddAsset("metadata", stac.Asset{
		Href:  relHref(mdDir, assetRel),
		Type:  constants.MediaTypeJSON,
		Roles: []string{"metadata"},
		Title: "Interpolation metadata",
	})

	// Bidirectional, symmetric links between the sidecar and its data item.
	parentDir := itemDir(KindParquet, parentID)
	mdItem.AddLink(stac.Link{
		Rel:   stac.RelDescribes,
		Href:  relHref(mdDir, itemPath(KindParquet, parentID)),
		Type:  constants.MediaTypeGeoJSON,
		Title: parentID,
	})
	parent.AddLink(stac.Link{
		Rel:   stac.RelDescribedBy,
		Href:  relHref(parentDir, itemPath(KindMetadata, mdID)),
		Type:  constants.MediaTypeGeoJSON,
		Title: mdID,
	})

	if err := b.register(KindMetadata, mdID, mdItem); err != nil {
		b.log.Warn().Err(err).Str("item", mdID).Msg("Failed to register metadata item")
	}
}

// buildPlotItems catalogs every diagnostic image in the partition's plot
// directory, classifying each by filename.
func (b *Builder) buildPlotItems(asset scanner.Asset, parentID string, parent *stac.Item, bbox *geometry.BBox, interval geometry.Interval) {
	if b.cfg.Plots == nil {
		return
	}
	plotDir := path.Join(b.cfg.Plots.Root, asset.Dir())
	infos, err := afero.ReadDir(b.cfg.Plots.FS, plotDir)
	if err != nil {
		// No plot directory for this partition.
		return
	}
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), ".png") {
			continue
		}
		filename := info.Name()
		stem := strings.TrimSuffix(filename, path.Ext(filename))
		plotID := parentID + "-plot-" + stem
		if b.subs[KindPlots].isKnown(plotID) {
			continue
		}

		plotRel := path.Join(asset.Dir(), filename)
		assetRel := path.Join(constants.AssetsDir, KindPlots, plotRel)
		if err := copyFile(b.cfg.Plots.FS, path.Join(b.cfg.Plots.Root, plotRel), b.cfg.Output.FS, path.Join(b.cfg.Output.Root, assetRel)); err != nil {
			b.log.Warn().Err(err).
				Str("plot", plotRel).
				Msg("Failed to copy plot, skipping")
			continue
		}

		description, props := DescribePlot(filename)
		if description == "" {
			b.log.Warn().
				Str("plot", filename).
				Msg("Unmatched plot filename, cataloging without description")
		}

		plotItem := stac.NewItem(plotID, bbox, interval)
		plotItem.Properties["plot_name"] = filename
		if description != "" {
			plotItem.Properties["plot_description"] = description
		}
		for key, value := range props {
			plotItem.Properties[key] = value
		}

		plotItemDir := itemDir(KindPlots, plotID)
		plotItem.AddAsset("plot", stac.Asset{
			Href:        relHref(plotItemDir, assetRel),
			Type:        constants.MediaTypePNG,
			Roles:       []string{"overview"},
			Title:       filename,
			Description: description,
		})

		parentDir := itemDir(KindParquet, parentID)
		plotItem.AddLink(stac.Link{
			Rel:   stac.RelRelated,
			Href:  relHref(plotItemDir, itemPath(KindParquet, parentID)),
			Type:  constants.MediaTypeGeoJSON,
			Title: parentID,
		})
		parent.AddLink(stac.Link{
			Rel:   stac.RelRelated,
			Href:  relHref(parentDir, itemPath(KindPlots, plotID)),
			Type:  constants.MediaTypeGeoJSON,
			Title: plotID,
		})

		if err := b.register(KindPlots, plotID, plotItem); err != nil {
			b.log.Warn().Err(err).Str("item", plotID).Msg("Failed to register plot item")
		}
	}
}

// register converts an item to its persisted document, applies the item
// overrides, and records it in its sub-catalog.
func (b *Builder) register(kind, id string, item *stac.Item) error {
	doc, err := item.Doc()
	if err != nil {
		return errors.WrapResource("create", "item", id, err)
	}
	if b.cfg.ItemOverrides != nil {
		doc = overrides.ApplyToItem(doc, b.cfg.ItemOverrides)
		restoreRelationLinks(doc, item.Links)
	}
	b.subs[kind].add(&entry{id: id, doc: doc})
	return nil
}

// relationRels are the companion link kinds that must survive any override:
// severing one side would leave the other dangling.
var relationRels = map[string]bool{
	stac.RelDescribes:   true,
	stac.RelDescribedBy: true,
	stac.RelRelated:     true,
}

// restoreRelationLinks re-appends the generated companion relation links an
// override dropped. Overrides may reshape an item's links, but relations
// between items stay bidirectional and symmetric.
func restoreRelationLinks(doc map[string]any, generated []stac.Link) {
	existing := map[string]struct{}{}
	if links, ok := doc["links"].([]any); ok {
		for _, raw := range links {
			link, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			rel, _ := link["rel"].(string)
			href, _ := link["href"].(string)
			existing[rel+" "+href] = struct{}{}
		}
	}
	for _, link := range generated {
		if !relationRels[link.Rel] {
			continue
		}
		if _, ok := existing[link.Rel+" "+link.Href]; ok {
			continue
		}
		entry := map[string]any{"rel": link.Rel, "href": link.Href}
		if link.Type != "" {
			entry["type"] = link.Type
		}
		if link.Title != "" {
			entry["title"] = link.Title
		}
		links, _ := doc["links"].([]any)
		doc["links"] = append(links, entry)
	}
}

// itemDir is an item's directory relative to the catalog root.
func itemDir(kind, id string) string {
	return path.Join(constants.ItemsDir, kind, id)
}

// itemPath is an item's document path relative to the catalog root.
func itemPath(kind, id string) string {
	return path.Join(constants.ItemsDir, kind, id, id+".json")
}

// relHref computes the href of target relative to a document directory, both
// given relative to the catalog root. The persisted graph never contains
// absolute paths.
func relHref(fromDir, target string) string {
	rel, err := filepath.Rel(fromDir, target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}
