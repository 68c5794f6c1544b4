// Package scanner discovers partition files under a root location. It walks
// the tree, keeps files matching the accepted extensions, and parses the
// hierarchical key=value path segments into partition coordinates. Results
// are sorted by relative path so downstream processing is independent of
// filesystem enumeration order.
package scanner

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/hf-eolus/geocatalog/pkg/errors"
)

// Partition is one key=value path segment.
type Partition struct {
	Key   string
	Value string
}

// Partitions is an ordered list of partition coordinates, outermost first.
type Partitions []Partition

// Get returns the value for a partition key.
func (p Partitions) Get(key string) (string, bool) {
	for _, part := range p {
		if part.Key == key {
			return part.Value, true
		}
	}
	return "", false
}

// Has reports whether every given key is present.
func (p Partitions) Has(keys ...string) bool {
	for _, key := range keys {
		if _, ok := p.Get(key); !ok {
			return false
		}
	}
	return true
}

// Asset is one discovered partition file, identified by its slash-separated
// path relative to the scanned root.
type Asset struct {
	RelPath    string
	Partitions Partitions
}

// Stem returns the file name without directory or extension.
func (a Asset) Stem() string {
	name := path.Base(a.RelPath)
	return strings.TrimSuffix(name, path.Ext(name))
}

// Dir returns the partition directory of the asset, relative to the root.
func (a Asset) Dir() string {
	dir := path.Dir(a.RelPath)
	if dir == "." {
		return ""
	}
	return dir
}

// ParsePartitions extracts key=value coordinates from a relative path.
// Segments without a key=value shape are ignored.
func ParsePartitions(relPath string) Partitions {
	var parts Partitions
	for _, segment := range strings.Split(relPath, "/") {
		key, value, ok := strings.Cut(segment, "=")
		if !ok || key == "" {
			continue
		}
		parts = append(parts, Partition{Key: key, Value: value})
	}
	return parts
}

// Scan walks root recursively and returns every file matching one of the
// accepted extensions, sorted by relative path. It fails when root is not a
// directory or when nothing matches.
func Scan(fsys afero.Fs, root string, extensions []string) ([]Asset, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, errors.WrapIO("stat", root, err)
	}
	if !info.IsDir() {
		return nil, errors.NewValidationError("root", root, "not a directory")
	}

	var assets []Asset
	walkErr := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !matchesExtension(p, extensions) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return errors.WrapIO("list", p, err)
		}
		rel = filepath.ToSlash(rel)
		assets = append(assets, Asset{
			RelPath:    rel,
			Partitions: ParsePartitions(rel),
		})
		return nil
	})
	if walkErr != nil {
		return nil, errors.WrapIO("list", root, walkErr)
	}
	if len(assets) == 0 {
		return nil, errors.WrapResource("scan", "asset", root, errors.ErrNoAssets)
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].RelPath < assets[j].RelPath
	})
	return assets, nil
}

// matchesExtension reports whether the path ends with one of the accepted
// extensions.
func matchesExtension(p string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}
