package stac

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/eoforge/sathub/internal/connector/http"
	"github.com/eoforge/sathub/internal/hub"
	"github.com/eoforge/sathub/internal/scene"
)

// =============================================================================
// STAC CONNECTOR
// Implements hub.CatalogHub
// =============================================================================

// Ensure interface compliance
var _ hub.CatalogHub = (*STAC)(nil)

// STAC is the connector for STAC API catalogs.
type STAC struct {
	*http.Base
	config *Config
	items  ItemReader
}

// New creates a new STAC connector with the given configuration.
func New(config *Config) (*STAC, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	httpConfig := http.DefaultClientConfig()
	httpConfig.BaseURL = config.BaseURL
	for k, v := range config.Headers {
		httpConfig.Headers[k] = v
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

	items := config.Items
	if items == nil {
		items = PassthroughReader{}
	}

	s := &STAC{
		Base:   http.NewBase("hub.stac", "STAC API", "", httpConfig),
		config: config,
		items:  items,
	}

	return s, nil
}

// =============================================================================
// HUB INTERFACE
// =============================================================================

// ValidateConfig tests the connection by fetching the landing page.
func (s *STAC) ValidateConfig(ctx context.Context, config map[string]any) (*hub.ValidationResult, error) {
	resp, err := s.Client.Get(ctx, "", nil)
	if err != nil {
		if httpErr, ok := err.(*http.HTTPError); ok {
			return &hub.ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("Connection failed: HTTP %d", httpErr.StatusCode),
			}, nil
		}
		return nil, err
	}

	var landing struct {
		ID          string `json:"id"`
		STACVersion string `json:"stac_version"`
	}
	if err := resp.JSON(&landing); err != nil || landing.STACVersion == "" {
		return &hub.ValidationResult{
			Valid:   false,
			Message: "Endpoint does not serve a STAC landing page",
		}, nil
	}
	s.Version = landing.STACVersion

	return &hub.ValidationResult{
		Valid:           true,
		Message:         "Connection successful",
		DetectedVersion: s.Version,
	}, nil
}

// GetCapabilities returns STAC capabilities. STAC catalogs serve metadata
// and asset links; downloading the assets is the caller's business.
func (s *STAC) GetCapabilities() *hub.Capabilities {
	return &hub.Capabilities{
		SupportsQuery:     true,
		SupportsCount:     true,
		SupportsGet:       true,
		SupportsDownload:  false,
		SupportsQuicklook: false,
		DefaultPageSize:   s.config.FetchSize,
	}
}

// GetDescriptor returns the STAC descriptor.
func (s *STAC) GetDescriptor() *hub.Descriptor {
	return &hub.Descriptor{
		ID:      "hub.stac",
		Family:  "catalog.stac",
		Title:   "STAC API",
		DocsURL: "https://github.com/radiantearth/stac-api-spec",
	}
}

// =============================================================================
// RAW SEARCH SURFACE
// =============================================================================

// search posts the body to the search endpoint when it carries spatial
// parameters. Servers without a POST search endpoint answer 405; the body
// flattens into query parameters and the search repeats as GET.
func (s *STAC) search(ctx context.Context, params map[string]any) (*http.Response, error) {
	if hasSpatialParam(params) {
		resp, err := s.Client.Post(ctx, "search", params)
		if err == nil {
			return resp, nil
		}
		if !http.IsStatus(err, 405) {
			return nil, err
		}
	}
	return s.Client.Get(ctx, "search", stringifyParams(params))
}

func hasSpatialParam(params map[string]any) bool {
	_, intersects := params["intersects"]
	_, bbox := params["bbox"]
	return intersects || bbox
}

// Search runs one item search and returns the raw page.
func (s *STAC) Search(ctx context.Context, params map[string]any) (*SearchResponse, error) {
	resp, err := s.search(ctx, params)
	if err != nil {
		return nil, err
	}
	var result SearchResponse
	if err := resp.JSON(&result); err != nil {
		return nil, fmt.Errorf("stac: decode search response: %w", err)
	}
	return &result, nil
}

// Items collects the items matching params, following next links. max caps
// the total when positive.
func (s *STAC) Items(ctx context.Context, params map[string]any, max int) ([]*Item, error) {
	it, err := s.itemIterator(ctx, params, max)
	if err != nil {
		return nil, err
	}
	return hub.Collect[*Item](it)
}

// Item resolves a single item by ID through the search endpoint.
func (s *STAC) Item(ctx context.Context, id string) (*Item, error) {
	result, err := s.Search(ctx, map[string]any{"ids": []string{id}, "limit": 1})
	if err != nil {
		return nil, err
	}
	if len(result.Features) == 0 {
		return nil, fmt.Errorf("stac: item %s not found", id)
	}
	return s.items.Read(ctx, result.Features[0])
}

// Collections lists the catalog's collections. Server responses vary in
// shape; an object with a collections array, a bare array, and a single
// collection all decode.
func (s *STAC) Collections(ctx context.Context) ([]Collection, error) {
	resp, err := s.Client.Get(ctx, "collections", nil)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Collections []Collection `json:"collections"`
	}
	if err := resp.JSON(&wrapper); err == nil && wrapper.Collections != nil {
		return wrapper.Collections, nil
	}
	var list []Collection
	if err := resp.JSON(&list); err == nil {
		return list, nil
	}
	var single Collection
	if err := resp.JSON(&single); err == nil && single.ID != "" {
		return []Collection{single}, nil
	}
	return nil, fmt.Errorf("stac: decode collections response")
}

// Collection fetches a single collection by ID.
func (s *STAC) Collection(ctx context.Context, id string) (*Collection, error) {
	resp, err := s.Client.Get(ctx, "collections/"+url.PathEscape(id), nil)
	if err != nil {
		if http.IsStatus(err, 404) {
			return nil, fmt.Errorf("stac: collection %s not found", id)
		}
		return nil, err
	}
	var c Collection
	if err := resp.JSON(&c); err != nil {
		return nil, fmt.Errorf("stac: decode collection response: %w", err)
	}
	return &c, nil
}

// =============================================================================
// CATALOG HUB
// =============================================================================

// Query streams scenes matching q from the item-search endpoint.
func (s *STAC) Query(ctx context.Context, q *hub.SceneQuery) (hub.Iterator[scene.Metadata], error) {
	limit := s.config.FetchSize
	if q != nil && q.Limit > 0 && q.Limit < limit {
		limit = q.Limit
	}
	params, err := buildSearchParams(q, s.config.Collections, limit)
	if err != nil {
		return nil, err
	}
	items, err := s.itemIterator(ctx, params, q.Limit)
	if err != nil {
		return nil, err
	}
	return &metadataIterator{items: items}, nil
}

// Count returns the total match count via a one-item search.
func (s *STAC) Count(ctx context.Context, q *hub.SceneQuery) (int, error) {
	params, err := buildSearchParams(q, s.config.Collections, 1)
	if err != nil {
		return 0, err
	}
	result, err := s.Search(ctx, params)
	if err != nil {
		return 0, err
	}
	if n, ok := result.Matched(); ok {
		return n, nil
	}
	return 0, fmt.Errorf("stac: server reports no match count")
}

// Get resolves a single product by item ID.
func (s *STAC) Get(ctx context.Context, productUUID string) (*scene.Metadata, error) {
	item, err := s.Item(ctx, productUUID)
	if err != nil {
		return nil, err
	}
	return mapItem(item)
}

// =============================================================================
// SEARCH ITERATOR
// =============================================================================

// itemIterator runs the first search through the 405 fallback, then chains
// into link-based pagination for the remaining pages.
func (s *STAC) itemIterator(ctx context.Context, params map[string]any, max int) (hub.Iterator[*Item], error) {
	resp, err := s.search(ctx, params)
	if err != nil {
		return nil, err
	}
	first, err := s.parseFeatures(ctx, resp)
	if err != nil {
		return nil, err
	}

	paginator := &http.LinkPaginator{}
	nextReq, err := paginator.NextPage(ctx, resp)
	if err != nil {
		return nil, err
	}
	var tail *http.PaginatedIterator[*Item]
	if nextReq != nil {
		tail = http.NewPaginatedIterator(ctx, s.Client, nextReq, paginator, 0,
			func(resp *http.Response) ([]*Item, error) {
				return s.parseFeatures(ctx, resp)
			})
	}

	return &searchIterator{first: first, tail: tail, max: max}, nil
}

// parseFeatures reads one search page's features through the item reader.
func (s *STAC) parseFeatures(ctx context.Context, resp *http.Response) ([]*Item, error) {
	var page SearchResponse
	if err := resp.JSON(&page); err != nil {
		return nil, fmt.Errorf("stac: decode search response: %w", err)
	}
	items := make([]*Item, 0, len(page.Features))
	for _, feature := range page.Features {
		item, err := s.items.Read(ctx, feature)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

type searchIterator struct {
	first   []*Item
	index   int
	tail    *http.PaginatedIterator[*Item]
	max     int
	fetched int
}

func (it *searchIterator) Next() bool {
	if it.max > 0 && it.fetched >= it.max {
		return false
	}
	if it.index < len(it.first) {
		return true
	}
	if it.tail == nil {
		return false
	}
	return it.tail.Next()
}

func (it *searchIterator) Value() *Item {
	if it.index < len(it.first) {
		item := it.first[it.index]
		it.index++
		it.fetched++
		return item
	}
	if it.tail != nil {
		it.fetched++
		return it.tail.Value()
	}
	return nil
}

func (it *searchIterator) Err() error {
	if it.tail != nil {
		return it.tail.Err()
	}
	return nil
}

func (it *searchIterator) Close() error {
	if it.tail != nil {
		return it.tail.Close()
	}
	return nil
}

// metadataIterator maps items into harmonized records as they stream.
type metadataIterator struct {
	items   hub.Iterator[*Item]
	current *scene.Metadata
	err     error
}

func (it *metadataIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if it.current != nil {
		return true
	}
	if !it.items.Next() {
		return false
	}
	m, err := mapItem(it.items.Value())
	if err != nil {
		it.err = err
		return false
	}
	it.current = m
	return true
}

func (it *metadataIterator) Value() scene.Metadata {
	if it.current == nil {
		return scene.Metadata{}
	}
	m := *it.current
	it.current = nil
	return m
}

func (it *metadataIterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.items.Err()
}

func (it *metadataIterator) Close() error { return it.items.Close() }
