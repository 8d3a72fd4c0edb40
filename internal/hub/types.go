package hub

import (
	"github.com/eoforge/sathub/internal/aoi"
	"github.com/eoforge/sathub/internal/scene"
)

// Iterator provides streaming access to query results.
type Iterator[T any] interface {
	// Next advances to the next record. Returns false when done or on error.
	Next() bool

	// Value returns the current record. Only valid after Next() returns true.
	Value() T

	// Err returns any error encountered during iteration.
	Err() error

	// Close releases resources. Must be called when done.
	Close() error
}

// Collect drains an iterator into a slice, closing it afterwards.
func Collect[T any](it Iterator[T]) ([]T, error) {
	defer it.Close()
	var out []T
	for it.Next() {
		out = append(out, it.Value())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Query Types ---

// CloudRange bounds scene cloud cover in percent. Scenes match when
// Min <= cover < Max.
type CloudRange struct {
	Min int
	Max int
}

// SceneQuery describes a catalog search. From/To accept RFC3339 timestamps,
// compact yyyyMMdd dates, or provider-relative expressions such as
// "NOW-30DAYS" (see NormalizeQueryTime).
type SceneQuery struct {
	Platform   scene.Platform
	AOI        *aoi.AOI
	From       string
	To         string
	CloudCover *CloudRange

	// Limit caps the number of records the iterator yields. Zero means
	// no cap.
	Limit int

	// Extra carries provider-specific parameters, e.g. STAC collection
	// IDs or additional OpenSearch terms.
	Extra map[string]string
}

// --- Validation Types ---

type ValidationResult struct {
	Valid           bool
	Message         string
	DetectedVersion string
}

// --- Capabilities ---

type Capabilities struct {
	SupportsQuery     bool
	SupportsCount     bool
	SupportsGet       bool
	SupportsDownload  bool
	SupportsQuicklook bool

	// DefaultPageSize is the provider page size used when paginating.
	DefaultPageSize int
}

// --- Descriptor ---

// Descriptor describes a hub template for discovery and CLI listings.
type Descriptor struct {
	ID      string
	Family  string // "catalog.opensearch", "catalog.json-api", "catalog.stac", "catalog.file"
	Title   string
	Vendor  string
	DocsURL string
}

// --- Download Types ---

// DownloadRequest identifies a product to fetch to local disk.
type DownloadRequest struct {
	ProductUUID string
	TargetDir   string
}

// DownloadResult reports what a product download produced.
type DownloadResult struct {
	// Path is the final product artifact (archive or file).
	Path string

	// Bytes is the total size written or verified on disk.
	Bytes int64

	// Skipped is true when the product was already complete locally.
	Skipped bool

	// Resumed is true when a partial download was continued.
	Resumed bool
}

// QuicklookRequest identifies a product quicklook to fetch.
type QuicklookRequest struct {
	ProductUUID string
	TargetDir   string
}

// QuicklookResult reports the files a quicklook download produced.
type QuicklookResult struct {
	ImagePath     string
	WorldfilePath string
}
