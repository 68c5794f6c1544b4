// Package overrides deep-merges caller-supplied document fragments into
// generated catalog documents. The merge is one generic structural function
// over decoded JSON trees: objects merge recursively, everything else
// (arrays included) is replaced wholesale by the override value. A special
// case protects asset hrefs: an override that omits an asset's href can
// never strip the path to the underlying file.
package overrides

// Merge returns a new tree combining base and override without mutating
// either. For keys present in both where both values are objects the merge
// recurses; otherwise the override value replaces the base value.
func Merge(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		baseMap, baseIsMap := result[key].(map[string]any)
		overrideMap, overrideIsMap := value.(map[string]any)
		if baseIsMap && overrideIsMap {
			result[key] = Merge(baseMap, overrideMap)
			continue
		}
		result[key] = value
	}
	return result
}

// ApplyToItem merges an override tree into an item document, restoring any
// generated asset href the override dropped.
func ApplyToItem(doc, override map[string]any) map[string]any {
	originalHrefs := assetHrefs(doc)
	merged := Merge(doc, override)
	restoreHrefs(merged, originalHrefs)
	return merged
}

// assetHrefs captures the href of every asset entry in a document.
func assetHrefs(doc map[string]any) map[string]string {
	hrefs := map[string]string{}
	assets, ok := doc["assets"].(map[string]any)
	if !ok {
		return hrefs
	}
	for key, raw := range assets {
		asset, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if href, ok := asset["href"].(string); ok && href != "" {
			hrefs[key] = href
		}
	}
	return hrefs
}

// restoreHrefs puts captured hrefs back into asset entries that lost theirs
// during the merge.
func restoreHrefs(doc map[string]any, hrefs map[string]string) {
	assets, ok := doc["assets"].(map[string]any)
	if !ok {
		return
	}
	for key, href := range hrefs {
		asset, ok := assets[key].(map[string]any)
		if !ok {
			continue
		}
		if _, present := asset["href"]; !present {
			asset["href"] = href
		}
	}
}
