package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/eoforge/sathub/internal/hub"
	"github.com/eoforge/sathub/internal/scene"
)

// =============================================================================
// FILE CONNECTOR
// Implements hub.CatalogHub
// =============================================================================

// Ensure interface compliance
var _ hub.CatalogHub = (*Catalog)(nil)

// Catalog is the local directory catalog connector.
type Catalog struct {
	config *Config
}

// New creates a new local catalog with the given configuration.
func New(config *Config) (*Catalog, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Catalog{config: config}, nil
}

// =============================================================================
// HUB INTERFACE
// =============================================================================

// ID returns the hub identifier.
func (c *Catalog) ID() string { return "hub.file" }

// ValidateConfig checks that the data directory exists and is readable.
func (c *Catalog) ValidateConfig(ctx context.Context, config map[string]any) (*hub.ValidationResult, error) {
	info, err := os.Stat(c.config.DataDir)
	if err != nil {
		return &hub.ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("Directory not accessible: %s", c.config.DataDir),
		}, nil
	}
	if !info.IsDir() {
		return &hub.ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("Not a directory: %s", c.config.DataDir),
		}, nil
	}
	return &hub.ValidationResult{Valid: true, Message: "Directory accessible"}, nil
}

// GetCapabilities returns local catalog capabilities.
func (c *Catalog) GetCapabilities() *hub.Capabilities {
	return &hub.Capabilities{
		SupportsQuery: true,
		SupportsCount: true,
		SupportsGet:   true,
	}
}

// GetDescriptor returns the local catalog descriptor.
func (c *Catalog) GetDescriptor() *hub.Descriptor {
	return &hub.Descriptor{
		ID:     "hub.file",
		Family: "catalog.file",
		Title:  "Local Directory Catalog",
	}
}

// Close releases nothing; the catalog holds no resources between calls.
func (c *Catalog) Close() error { return nil }

// =============================================================================
// CATALOG HUB
// =============================================================================

// Query scans the data directory and streams the matching records.
func (c *Catalog) Query(ctx context.Context, q *hub.SceneQuery) (hub.Iterator[scene.Metadata], error) {
	f, err := buildFilter(q)
	if err != nil {
		return nil, err
	}
	records, err := c.scan(ctx, f)
	if err != nil {
		return nil, err
	}
	return &sliceIterator{records: records, max: q.Limit}, nil
}

// Count returns the number of matching records.
func (c *Catalog) Count(ctx context.Context, q *hub.SceneQuery) (int, error) {
	f, err := buildFilter(q)
	if err != nil {
		return 0, err
	}
	records, err := c.scan(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Get resolves a single record by source UUID, accepting the source ID as
// an alias since local catalogs are usually addressed by scene name.
func (c *Catalog) Get(ctx context.Context, productUUID string) (*scene.Metadata, error) {
	records, err := c.scan(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].SrcUUID == productUUID || records[i].SrcID == productUUID {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("file: product %s not found in %s", productUUID, c.config.DataDir)
}

// =============================================================================
// SCANNING
// =============================================================================

// scan walks the data directory and decodes every matching metadata file.
// A nil filter keeps everything.
func (c *Catalog) scan(ctx context.Context, f *filter) ([]scene.Metadata, error) {
	var records []scene.Metadata
	err := filepath.WalkDir(c.config.DataDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !c.wantFile(d.Name()) {
			return nil
		}

		m, err := readMetadata(path)
		if err != nil {
			return err
		}
		if f == nil || f.matches(m) {
			records = append(records, *m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Catalog) wantFile(name string) bool {
	if !strings.HasSuffix(name, ".json") {
		return false
	}
	if len(c.config.Substrings) == 0 {
		return true
	}
	for _, sub := range c.config.Substrings {
		if strings.Contains(name, sub) {
			return true
		}
	}
	return false
}

func readMetadata(path string) (*scene.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("file: read %s: %w", path, err)
	}
	feature, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return nil, fmt.Errorf("file: %s is not a GeoJSON feature: %w", path, err)
	}
	m, err := scene.FromFeature(feature)
	if err != nil {
		return nil, fmt.Errorf("file: %s: %w", path, err)
	}
	return m, nil
}

// =============================================================================
// FILTERING
// =============================================================================

// filter holds the resolved query conditions. Relative time expressions
// resolve at build time since all filtering happens locally.
type filter struct {
	platform scene.Platform
	from     time.Time
	to       time.Time
	hasFrom  bool
	hasTo    bool
	query    *hub.SceneQuery
}

func buildFilter(q *hub.SceneQuery) (*filter, error) {
	if q == nil || q.Platform == "" {
		return nil, fmt.Errorf("file: platform is required")
	}
	f := &filter{platform: q.Platform, query: q}
	if q.From != "" {
		t, err := hub.ResolveQueryTime(q.From, time.Now())
		if err != nil {
			return nil, fmt.Errorf("file: from: %w", err)
		}
		f.from = t
		f.hasFrom = true
	}
	if q.To != "" {
		t, err := hub.ResolveQueryTime(q.To, time.Now())
		if err != nil {
			return nil, fmt.Errorf("file: to: %w", err)
		}
		f.to = t
		f.hasTo = true
	}
	return f, nil
}

// matches applies the window as from <= acquisition < to and the cloud
// bounds as min <= cover < max, with records lacking a cloud estimate
// counted as 0. SAR platforms skip the cloud filter.
func (f *filter) matches(m *scene.Metadata) bool {
	if m.Platform != f.platform {
		return false
	}
	if f.hasFrom && m.AcquisitionDate.Before(f.from) {
		return false
	}
	if f.hasTo && !m.AcquisitionDate.Before(f.to) {
		return false
	}
	if f.query.AOI != nil && !f.query.AOI.Intersects(m.Geometry) {
		return false
	}
	if f.query.CloudCover != nil && f.platform.HasCloudCover() {
		cc := m.CloudCover()
		if cc < float64(f.query.CloudCover.Min) || cc >= float64(f.query.CloudCover.Max) {
			return false
		}
	}
	return true
}

// =============================================================================
// RESULT ITERATOR
// =============================================================================

type sliceIterator struct {
	records []scene.Metadata
	index   int
	max     int
	fetched int
}

func (it *sliceIterator) Next() bool {
	if it.max > 0 && it.fetched >= it.max {
		return false
	}
	return it.index < len(it.records)
}

func (it *sliceIterator) Value() scene.Metadata {
	if it.index < len(it.records) {
		m := it.records[it.index]
		it.index++
		it.fetched++
		return m
	}
	return scene.Metadata{}
}

func (it *sliceIterator) Err() error   { return nil }
func (it *sliceIterator) Close() error { return nil }
