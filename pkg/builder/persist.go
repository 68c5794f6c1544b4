package builder

import (
	"encoding/json"
	"path"
	"sort"

	"github.com/spf13/afero"

	"github.com/hf-eolus/geocatalog/pkg/constants"
	"github.com/hf-eolus/geocatalog/pkg/errors"
	"github.com/hf-eolus/geocatalog/pkg/overrides"
	"github.com/hf-eolus/geocatalog/pkg/stac"
)

// Sub-catalog display strings, keyed by kind.
var (
	subCatalogTitles = map[string]string{
		KindParquet:  "Parquet Assets",
		KindMetadata: "Metadata Assets",
		KindPlots:    "Plot Assets",
	}
	subCatalogDescriptions = map[string]string{
		KindParquet:  "GeoParquet assets produced by the interpolation pipeline.",
		KindMetadata: "Metadata sidecars associated with each interpolated partition.",
		KindPlots:    "Diagnostic plots generated during the interpolation pipeline.",
	}
)

// persistedKinds is the fixed emission order of sub-catalogs.
var persistedKinds = []string{KindParquet, KindMetadata, KindPlots}

// persist serializes the complete link graph in its final layout: the
// collection document at the root, one sub-catalog per populated kind under
// items/<kind>, and one document per item. All references are relative; the
// graph is built in memory first so no post-hoc relocation is needed.
func (b *Builder) persist() error {
	collection := stac.NewCollection(b.cfg.CollectionID, b.cfg.Title, b.cfg.Description, b.cfg.License)
	collection.Region = b.cfg.Region
	collection.SetExtent(&b.extent)
	collection.Period = b.collectionPeriod()
	collection.SourceModels = b.sortedModels()

	for _, kind := range persistedKinds {
		if len(b.subs[kind].entries) == 0 {
			continue
		}
		collection.AddLink(stac.Link{
			Rel:  stac.RelChild,
			Href: "./" + path.Join(constants.ItemsDir, kind, constants.CatalogFile),
			Type: constants.MediaTypeJSON,
		})
	}

	doc, err := collection.Doc()
	if err != nil {
		return errors.WrapResource("persist", "collection", collection.ID, err)
	}
	if b.cfg.CollectionOverrides != nil {
		doc = overrides.Merge(doc, b.cfg.CollectionOverrides)
	}
	if err := b.writeJSON(constants.CollectionFile, doc); err != nil {
		return err
	}

	for _, kind := range persistedKinds {
		if len(b.subs[kind].entries) == 0 {
			continue
		}
		if err := b.persistSubCatalog(b.subs[kind]); err != nil {
			return err
		}
	}
	return nil
}

// persistSubCatalog writes one sub-catalog document and every item it owns.
func (b *Builder) persistSubCatalog(sub *subCatalog) error {
	catalog := stac.NewCatalog(
		b.cfg.CollectionID+"-"+sub.kind,
		subCatalogTitles[sub.kind],
		subCatalogDescriptions[sub.kind],
	)
	catalog.AddLink(stac.Link{Rel: stac.RelSelf, Href: constants.CatalogFile, Type: constants.MediaTypeJSON})
	catalog.AddLink(stac.Link{Rel: stac.RelRoot, Href: "../../" + constants.CollectionFile, Type: constants.MediaTypeJSON})
	catalog.AddLink(stac.Link{Rel: stac.RelParent, Href: "../../" + constants.CollectionFile, Type: constants.MediaTypeJSON})
	for _, e := range sub.entries {
		catalog.AddLink(stac.Link{
			Rel:  stac.RelItem,
			Href: "./" + e.id + "/" + e.id + ".json",
			Type: constants.MediaTypeGeoJSON,
		})
	}

	catalogPath := path.Join(constants.ItemsDir, sub.kind, constants.CatalogFile)
	if err := b.writeJSONValue(catalogPath, catalog); err != nil {
		return err
	}

	for _, e := range sub.entries {
		if !e.loaded {
			// Structural links are attached at persist time; reloaded items
			// already carry them from their original run.
			docAddLink(e.doc, stac.RelRoot, "../../../"+constants.CollectionFile, constants.MediaTypeJSON)
			docAddLink(e.doc, stac.RelParent, "../"+constants.CatalogFile, constants.MediaTypeJSON)
		}
		if err := b.writeJSON(path.Join(itemDir(sub.kind, e.id), e.id+".json"), e.doc); err != nil {
			return err
		}
	}
	return nil
}

// collectionPeriod combines the declared period with the accumulated one,
// declared bounds winning.
func (b *Builder) collectionPeriod() *stac.Period {
	period := &stac.Period{}
	interval := b.extent.Interval()
	if b.cfg.DeclaredPeriod.Start != nil {
		period.Start = b.cfg.DeclaredPeriod.Start.Format(stac.DatetimeFormat)
	} else if interval.Start != nil {
		period.Start = interval.Start.Format(stac.DatetimeFormat)
	}
	if b.cfg.DeclaredPeriod.End != nil {
		period.End = b.cfg.DeclaredPeriod.End.Format(stac.DatetimeFormat)
	} else if interval.End != nil {
		period.End = interval.End.Format(stac.DatetimeFormat)
	}
	if period.Start == "" && period.End == "" {
		return nil
	}
	return period
}

// sortedModels returns the discovered source-model set as a sorted list.
func (b *Builder) sortedModels() []string {
	if len(b.models) == 0 {
		return nil
	}
	models := make([]string, 0, len(b.models))
	for model := range b.models {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

// writeJSONValue marshals any value and writes it under the output root.
func (b *Builder) writeJSONValue(rel string, value any) error {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.WrapParse("json", rel, err)
	}
	return b.writeBytes(rel, append(raw, '\n'))
}

// writeJSON writes a document tree under the output root.
func (b *Builder) writeJSON(rel string, doc map[string]any) error {
	return b.writeJSONValue(rel, doc)
}

// writeBytes writes a file under the output root, creating directories.
func (b *Builder) writeBytes(rel string, data []byte) error {
	full := path.Join(b.cfg.Output.Root, rel)
	if err := b.cfg.Output.FS.MkdirAll(path.Dir(full), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", path.Dir(full), err)
	}
	if err := afero.WriteFile(b.cfg.Output.FS, full, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", full, err)
	}
	return nil
}

// docAddLink appends a link to a document tree's links array.
func docAddLink(doc map[string]any, rel, href, mediaType string) {
	link := map[string]any{"rel": rel, "href": href, "type": mediaType}
	links, _ := doc["links"].([]any)
	doc["links"] = append(links, link)
}
