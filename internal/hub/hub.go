// Package hub defines the core interfaces that all sathub connectors must implement.
//
// Architecture:
//
//	Hub          - Base contract (ID, Validate, Capabilities, Descriptor)
//	CatalogHub   - Query scene metadata (Query, Count, Get)
//	DownloadHub  - Fetch product data (DownloadImage, DownloadQuicklook)
//
// All connectors must implement the base Hub interface. Connectors then
// compose additional interfaces based on what the provider supports: the
// local file catalog is query-only, while SciHub and Earth Explorer also
// serve product and quicklook downloads.
package hub

import (
	"context"

	"github.com/eoforge/sathub/internal/scene"
)

// Hub is the base contract that all sathub connectors must implement.
type Hub interface {
	// ID returns the unique template identifier (e.g., "hub.scihub", "hub.stac").
	ID() string

	// ValidateConfig tests configuration validity and connectivity.
	ValidateConfig(ctx context.Context, config map[string]any) (*ValidationResult, error)

	// GetCapabilities returns the set of supported operations.
	GetCapabilities() *Capabilities

	// GetDescriptor returns metadata about this hub type.
	GetDescriptor() *Descriptor

	// Close releases any resources held by the hub (sessions, API keys).
	Close() error
}

// CatalogHub can query a provider catalog for scene metadata.
type CatalogHub interface {
	Hub

	// Query streams normalized scene metadata matching the query.
	// Returns an Iterator that must be closed after use.
	Query(ctx context.Context, q *SceneQuery) (Iterator[scene.Metadata], error)

	// Count returns the number of scenes matching the query without
	// fetching them all.
	Count(ctx context.Context, q *SceneQuery) (int, error)

	// Get resolves a single product by its provider UUID.
	Get(ctx context.Context, productUUID string) (*scene.Metadata, error)
}

// DownloadHub can fetch product data and quicklooks to local disk.
type DownloadHub interface {
	Hub

	// DownloadImage streams the full product for a UUID into the target
	// directory. Incomplete downloads are continued and complete files
	// are skipped.
	DownloadImage(ctx context.Context, req *DownloadRequest) (*DownloadResult, error)

	// DownloadQuicklook fetches the product quicklook into the target
	// directory together with a worldfile for rough geocoding.
	DownloadQuicklook(ctx context.Context, req *QuicklookRequest) (*QuicklookResult, error)
}
