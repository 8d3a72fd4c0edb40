// Package hub provides the public API for satellite imagery hubs.
package hub

import (
	"time"

	internal "github.com/eoforge/sathub/internal/hub"
	"github.com/eoforge/sathub/internal/scene"
)

// Re-export types for external use
type (
	Hub              = internal.Hub
	CatalogHub       = internal.CatalogHub
	DownloadHub      = internal.DownloadHub
	Iterator[T any]  = internal.Iterator[T]
	SceneQuery       = internal.SceneQuery
	CloudRange       = internal.CloudRange
	ValidationResult = internal.ValidationResult
	Capabilities     = internal.Capabilities
	Descriptor       = internal.Descriptor
	DownloadRequest  = internal.DownloadRequest
	DownloadResult   = internal.DownloadResult
	QuicklookRequest = internal.QuicklookRequest
	QuicklookResult  = internal.QuicklookResult
	Factory          = internal.Factory
	Registry         = internal.Registry
)

// Scene record re-exports
type (
	Metadata   = scene.Metadata
	Platform   = scene.Platform
	Collection = scene.Collection
)

// Supported platforms
const (
	Sentinel1 = scene.Sentinel1
	Sentinel2 = scene.Sentinel2
	Sentinel3 = scene.Sentinel3
	Landsat5  = scene.Landsat5
	Landsat7  = scene.Landsat7
	Landsat8  = scene.Landsat8
)

// ParsePlatform maps a platform string to its Platform value.
func ParsePlatform(s string) (Platform, error) {
	return scene.ParsePlatform(s)
}

// NewCollection groups scene records for filtering and export.
func NewCollection(items ...*Metadata) *Collection {
	return scene.NewCollection(items...)
}

// ResolveQueryTime converts user time input (RFC3339, compact dates, or
// NOW-relative expressions) into a concrete UTC instant.
func ResolveQueryTime(value string, now time.Time) (time.Time, error) {
	return internal.ResolveQueryTime(value, now)
}

// Collect drains an iterator into a slice and closes it.
func Collect[T any](it Iterator[T]) ([]T, error) {
	return internal.Collect(it)
}

// DefaultRegistry returns the default hub registry.
func DefaultRegistry() *internal.Registry {
	return internal.DefaultRegistry()
}

// Register adds a factory to the default registry.
func Register(hubID string, factory Factory) {
	DefaultRegistry().Register(hubID, factory)
}

// Create creates a hub from the registry by ID.
func Create(hubID string, config map[string]any) (Hub, error) {
	factory, ok := DefaultRegistry().Get(hubID)
	if !ok || factory == nil {
		return nil, ErrNotFound{HubID: hubID}
	}
	return factory(config)
}

// CreateCatalog creates a hub that supports catalog queries.
func CreateCatalog(hubID string, config map[string]any) (CatalogHub, error) {
	h, err := Create(hubID, config)
	if err != nil {
		return nil, err
	}
	catalog, ok := h.(CatalogHub)
	if !ok {
		return nil, ErrNotCatalog{HubID: hubID}
	}
	return catalog, nil
}

// CreateDownloader creates a hub that supports product downloads.
func CreateDownloader(hubID string, config map[string]any) (DownloadHub, error) {
	h, err := Create(hubID, config)
	if err != nil {
		return nil, err
	}
	downloader, ok := h.(DownloadHub)
	if !ok {
		return nil, ErrNotDownloader{HubID: hubID}
	}
	return downloader, nil
}

// ErrNotFound indicates a hub ID is not registered.
type ErrNotFound struct {
	HubID string
}

func (e ErrNotFound) Error() string {
	return "hub not found: " + e.HubID
}

// ErrNotCatalog indicates a hub doesn't support catalog queries.
type ErrNotCatalog struct {
	HubID string
}

func (e ErrNotCatalog) Error() string {
	return "hub does not support catalog queries: " + e.HubID
}

// ErrNotDownloader indicates a hub doesn't support product downloads.
type ErrNotDownloader struct {
	HubID string
}

func (e ErrNotDownloader) Error() string {
	return "hub does not support downloads: " + e.HubID
}
