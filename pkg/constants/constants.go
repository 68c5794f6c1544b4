// Package constants provides shared constants used throughout the geocatalog
// codebase: file permissions, catalog layout names, and media types that
// should be consistent across the application.
package constants

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Catalog layout names define the fixed on-disk shape of a persisted catalog.
const (
	// CollectionFile is the top-level collection document name
	CollectionFile = "collection.json"

	// CatalogFile is the sub-catalog document name
	CatalogFile = "catalog.json"

	// ItemsDir is the directory holding per-kind sub-catalogs
	ItemsDir = "items"

	// AssetsDir is the directory holding copied asset bytes
	AssetsDir = "assets"

	// MetadataSidecarFile is the per-partition metadata sidecar name
	MetadataSidecarFile = "metadata.json"
)

// Media types used on assets and links.
const (
	// MediaTypeParquet is the media type for Apache Parquet assets
	MediaTypeParquet = "application/vnd.apache.parquet"

	// MediaTypeJSON is the media type for JSON assets
	MediaTypeJSON = "application/json"

	// MediaTypeGeoJSON is the media type for item documents
	MediaTypeGeoJSON = "application/geo+json"

	// MediaTypePNG is the media type for plot images
	MediaTypePNG = "image/png"
)

// CopyBufferSize is the chunk size used when copying asset bytes.
const CopyBufferSize = 8 * 1024 * 1024
