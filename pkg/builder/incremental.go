package builder

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/hf-eolus/geocatalog/pkg/constants"
	"github.com/hf-eolus/geocatalog/pkg/stac"
)

// loadPrior rebuilds the builder's state from a previously persisted catalog:
// every known item is re-registered unchanged, the extent accumulator is
// recomputed from scratch by folding over the loaded items (a cached extent
// value is never trusted), and the recorded source-model set is recovered.
// Prior state that cannot be parsed is treated as empty and rebuilt this run.
func (b *Builder) loadPrior() {
	for _, kind := range []string{KindParquet, KindMetadata, KindPlots} {
		b.loadPriorCatalog(kind)
	}
	b.loadPriorModels()
}

// loadPriorCatalog loads one sub-catalog's items from the output location.
func (b *Builder) loadPriorCatalog(kind string) {
	catalogPath := path.Join(b.cfg.Output.Root, constants.ItemsDir, kind, constants.CatalogFile)
	raw, err := afero.ReadFile(b.cfg.Output.FS, catalogPath)
	if err != nil {
		// No prior sub-catalog of this kind.
		return
	}
	var catalog stac.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		b.log.Warn().Err(err).
			Str("catalog", catalogPath).
			Msg("Unable to parse existing sub-catalog, rebuilding from scratch")
		return
	}

	for _, link := range catalog.Links {
		if link.Rel != stac.RelItem {
			continue
		}
		href := strings.TrimPrefix(link.Href, "./")
		docPath := path.Join(b.cfg.Output.Root, constants.ItemsDir, kind, href)
		doc, item, err := readItemDoc(b.cfg.Output.FS, docPath)
		if err != nil {
			b.log.Warn().Err(err).
				Str("item", docPath).
				Msg("Unable to load existing item, it will be rebuilt")
			continue
		}
		b.subs[kind].add(&entry{id: item.ID, doc: doc, loaded: true})
		b.extent.Add(item.BBoxValue(), item.Interval())
		if kind == KindParquet {
			if model, ok := item.Properties["source_model"].(string); ok && model != "" {
				b.models[model] = struct{}{}
			}
		}
	}
	b.log.Info().
		Str("kind", kind).
		Int("items", len(b.subs[kind].entries)).
		Msg("Loaded existing items")
}

// readItemDoc reads one persisted item document and its parsed view.
func readItemDoc(fsys afero.Fs, docPath string) (map[string]any, *stac.Item, error) {
	raw, err := afero.ReadFile(fsys, docPath)
	if err != nil {
		return nil, nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, err
	}
	item, err := stac.ItemFromDoc(doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, item, nil
}

// loadPriorModels recovers the source-model set recorded on the previously
// persisted collection.
func (b *Builder) loadPriorModels() {
	collectionPath := path.Join(b.cfg.Output.Root, constants.CollectionFile)
	raw, err := afero.ReadFile(b.cfg.Output.FS, collectionPath)
	if err != nil {
		return
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		b.log.Warn().Err(err).
			Str("collection", collectionPath).
			Msg("Unable to parse existing collection")
		return
	}
	models, ok := doc["source_models"].([]any)
	if !ok {
		return
	}
	for _, model := range models {
		if s, ok := model.(string); ok && s != "" {
			b.models[s] = struct{}{}
		}
	}
}
