package scihub

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/eoforge/sathub/internal/connector/http"
	"github.com/eoforge/sathub/internal/download"
	"github.com/eoforge/sathub/internal/hub"
	"github.com/eoforge/sathub/internal/scene"
)

// =============================================================================
// SCIHUB CONNECTOR
// Implements hub.CatalogHub and hub.DownloadHub
// =============================================================================

// Ensure interface compliance
var (
	_ hub.CatalogHub  = (*SciHub)(nil)
	_ hub.DownloadHub = (*SciHub)(nil)
)

// SciHub is the Copernicus Open Access Hub connector.
type SciHub struct {
	*http.Base
	config *Config
}

// New creates a new SciHub connector with the given configuration.
func New(config *Config) (*SciHub, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	httpConfig := http.DefaultClientConfig()
	httpConfig.BaseURL = config.BaseURL
	httpConfig.Auth = http.BasicAuth{
		Username: config.User,
		Password: config.Password,
	}
	if config.Timeout > 0 {
		httpConfig.Timeout = time.Duration(config.Timeout) * time.Second
	}
	if config.RateLimit > 0 {
		httpConfig.RateLimit = config.RateLimit
	}
	if config.Transport != nil {
		httpConfig.Transport = config.Transport
	}

	s := &SciHub{
		Base:   http.NewBase("hub.scihub", "Copernicus Open Access Hub", "ESA", httpConfig),
		config: config,
	}

	return s, nil
}

// =============================================================================
// HUB INTERFACE
// =============================================================================

// ValidateConfig tests the connection and credentials against the
// OpenSearch endpoint.
func (s *SciHub) ValidateConfig(ctx context.Context, config map[string]any) (*hub.ValidationResult, error) {
	_, err := s.Client.Get(ctx, "search", url.Values{
		"format": {"json"},
		"q":      {"*"},
		"rows":   {"0"},
	})
	if err != nil {
		if httpErr, ok := err.(*http.HTTPError); ok {
			msg := fmt.Sprintf("Connection failed: HTTP %d", httpErr.StatusCode)
			if httpErr.IsAuthError() {
				msg = "Authentication failed: check SCIHUB_USER and SCIHUB_PW"
			}
			return &hub.ValidationResult{Valid: false, Message: msg}, nil
		}
		return nil, err
	}

	var version struct {
		Value string `json:"value"`
	}
	if err := s.FetchJSON(ctx, "api/stub/version", &version); err == nil {
		s.Version = version.Value
	}

	return &hub.ValidationResult{
		Valid:           true,
		Message:         "Connection successful",
		DetectedVersion: s.Version,
	}, nil
}

// GetCapabilities returns SciHub capabilities.
func (s *SciHub) GetCapabilities() *hub.Capabilities {
	return &hub.Capabilities{
		SupportsQuery:     true,
		SupportsCount:     true,
		SupportsGet:       true,
		SupportsDownload:  true,
		SupportsQuicklook: true,
		DefaultPageSize:   s.config.FetchSize,
	}
}

// GetDescriptor returns the SciHub descriptor.
func (s *SciHub) GetDescriptor() *hub.Descriptor {
	return &hub.Descriptor{
		ID:      "hub.scihub",
		Family:  "catalog.opensearch",
		Title:   "Copernicus Open Access Hub",
		Vendor:  "ESA",
		DocsURL: "https://scihub.copernicus.eu/userguide/OpenSearchAPI",
	}
}

// =============================================================================
// CATALOG HUB
// =============================================================================

// Query streams scenes matching q from the OpenSearch endpoint.
func (s *SciHub) Query(ctx context.Context, q *hub.SceneQuery) (hub.Iterator[scene.Metadata], error) {
	query, err := buildSearchQuery(q)
	if err != nil {
		return nil, err
	}
	rows := s.config.FetchSize
	if q.Limit > 0 && q.Limit < rows {
		rows = q.Limit
	}
	return &searchIterator{hub: s, ctx: ctx, query: query, rows: rows, max: q.Limit}, nil
}

// Count returns the total number of matching scenes via a zero-row search.
func (s *SciHub) Count(ctx context.Context, q *hub.SceneQuery) (int, error) {
	query, err := buildSearchQuery(q)
	if err != nil {
		return 0, err
	}
	resp, err := s.Client.Get(ctx, "search", url.Values{
		"format": {"json"},
		"q":      {query},
		"start":  {"0"},
		"rows":   {"0"},
	})
	if err != nil {
		return 0, err
	}
	var result searchResponse
	if err := resp.JSON(&result); err != nil {
		return 0, fmt.Errorf("scihub: decode search response: %w", err)
	}
	return result.Feed.Total(), nil
}

// Get resolves a single product through the OData endpoint.
func (s *SciHub) Get(ctx context.Context, productUUID string) (*scene.Metadata, error) {
	product, err := s.fetchODataProduct(ctx, productUUID)
	if err != nil {
		return nil, err
	}
	return mapODataProduct(s.Client.BaseURL(), product)
}

func (s *SciHub) fetchODataProduct(ctx context.Context, productUUID string) (*odataProduct, error) {
	resp, err := s.Client.Get(ctx, productPath(productUUID)+"?$format=json", nil)
	if err != nil {
		if http.IsStatus(err, 404) {
			return nil, fmt.Errorf("scihub: product %s not found", productUUID)
		}
		return nil, err
	}
	var env odataEnvelope
	if err := resp.JSON(&env); err != nil {
		return nil, fmt.Errorf("scihub: decode OData response: %w", err)
	}
	return &env.D, nil
}

// =============================================================================
// DOWNLOAD HUB
// =============================================================================

// DownloadImage streams the product archive into the target directory.
// Complete files are skipped, partial downloads continue via Range, the
// result is verified against the hub's MD5 checksum.
func (s *SciHub) DownloadImage(ctx context.Context, req *hub.DownloadRequest) (*hub.DownloadResult, error) {
	product, err := s.fetchODataProduct(ctx, req.ProductUUID)
	if err != nil {
		return nil, err
	}
	if product.Online != nil && !*product.Online {
		return nil, fmt.Errorf("scihub: product %s is offline (long term archive)", product.Name)
	}

	checksum := ""
	if strings.EqualFold(product.Checksum.Algorithm, "MD5") {
		checksum = product.Checksum.Value
	}

	dest := filepath.Join(req.TargetDir, product.Name+".zip")
	res, err := download.Fetch(ctx, s.Client, &http.Request{
		Path: productPath(req.ProductUUID) + "/$value",
	}, dest, &download.Options{
		SkipExisting: true,
		Resume:       true,
		ChecksumMD5:  checksum,
	})
	if err != nil {
		return nil, err
	}
	return &hub.DownloadResult{
		Path:    res.Path,
		Bytes:   res.Bytes,
		Skipped: res.Skipped,
		Resumed: res.Resumed,
	}, nil
}

// DownloadQuicklook fetches the product quicklook, crops its no-data
// border, and writes image plus worldfile into the target directory.
func (s *SciHub) DownloadQuicklook(ctx context.Context, req *hub.QuicklookRequest) (*hub.QuicklookResult, error) {
	product, err := s.fetchODataProduct(ctx, req.ProductUUID)
	if err != nil {
		return nil, err
	}
	meta, err := mapODataProduct(s.Client.BaseURL(), product)
	if err != nil {
		return nil, err
	}
	if meta.Geometry == nil {
		return nil, fmt.Errorf("scihub: product %s has no footprint for geocoding", product.Name)
	}

	resp, err := s.Client.Do(ctx, &http.Request{
		Method: "GET",
		Path:   productPath(req.ProductUUID) + "/Products('Quicklook')/$value",
	})
	if err != nil {
		return nil, err
	}

	files, err := download.SaveQuicklook(resp.Body, meta.Geometry.Bound(), req.TargetDir, product.Name)
	if err != nil {
		return nil, err
	}
	return &hub.QuicklookResult{
		ImagePath:     files.ImagePath,
		WorldfilePath: files.WorldfilePath,
	}, nil
}

func productPath(productUUID string) string {
	return fmt.Sprintf("odata/v1/Products('%s')", productUUID)
}

// =============================================================================
// SEARCH ITERATOR
// =============================================================================

type searchIterator struct {
	hub   *SciHub
	ctx   context.Context
	query string
	rows  int
	max   int

	start   int
	total   int
	fetched int
	current []scene.Metadata
	index   int
	done    bool
	err     error
}

func (it *searchIterator) Next() bool {
	if it.max > 0 && it.fetched >= it.max {
		return false
	}

	if it.index < len(it.current) {
		return true
	}

	if it.done {
		return false
	}

	if err := it.fetchPage(); err != nil {
		it.err = err
		return false
	}

	return it.index < len(it.current)
}

func (it *searchIterator) fetchPage() error {
	resp, err := it.hub.Client.Get(it.ctx, "search", url.Values{
		"format": {"json"},
		"q":      {it.query},
		"start":  {strconv.Itoa(it.start)},
		"rows":   {strconv.Itoa(it.rows)},
	})
	if err != nil {
		return err
	}

	var result searchResponse
	if err := resp.JSON(&result); err != nil {
		return fmt.Errorf("scihub: decode search response: %w", err)
	}

	mapped := make([]scene.Metadata, 0, len(result.Feed.Entries))
	for i := range result.Feed.Entries {
		m, err := mapEntry(&result.Feed.Entries[i])
		if err != nil {
			return err
		}
		mapped = append(mapped, *m)
	}

	it.total = result.Feed.Total()
	it.current = mapped
	it.index = 0
	it.start += len(result.Feed.Entries)

	if it.start >= it.total || len(result.Feed.Entries) == 0 {
		it.done = true
	}

	return nil
}

func (it *searchIterator) Value() scene.Metadata {
	if it.index < len(it.current) {
		m := it.current[it.index]
		it.index++
		it.fetched++
		return m
	}
	return scene.Metadata{}
}

func (it *searchIterator) Err() error   { return it.err }
func (it *searchIterator) Close() error { return nil }
