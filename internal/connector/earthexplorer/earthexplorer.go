package earthexplorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eoforge/sathub/internal/connector/http"
	"github.com/eoforge/sathub/internal/download"
	"github.com/eoforge/sathub/internal/hub"
	"github.com/eoforge/sathub/internal/scene"
	"github.com/eoforge/sathub/internal/sceneid"
)

// Interface compliance check
var (
	_ hub.CatalogHub  = (*EarthExplorer)(nil)
	_ hub.DownloadHub = (*EarthExplorer)(nil)
)

// EarthExplorer talks to the USGS inventory JSON API and pulls product
// files from the public Landsat mirror on Google Cloud Storage.
type EarthExplorer struct {
	*http.Base
	config *Config

	mu     sync.Mutex
	apiKey string

	// files fetches public product files and browse images. No session
	// is attached to these requests.
	files *http.Client
}

// New creates an Earth Explorer hub from the given configuration.
func New(config *Config) (*EarthExplorer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	httpConfig := http.DefaultClientConfig()
	httpConfig.BaseURL = config.BaseURL
	httpConfig.Transport = config.Transport

	filesConfig := http.DefaultClientConfig()
	filesConfig.Transport = config.Transport

	if config.Timeout > 0 {
		httpConfig.Timeout = time.Duration(config.Timeout) * time.Second
		filesConfig.Timeout = httpConfig.Timeout
	}
	if config.RateLimit > 0 {
		httpConfig.RateLimit = config.RateLimit
		filesConfig.RateLimit = config.RateLimit
	}

	return &EarthExplorer{
		Base:   http.NewBase("hub.earthexplorer", "USGS Earth Explorer", "USGS", httpConfig),
		config: config,
		files:  http.NewClient(filesConfig),
	}, nil
}

// =============================================================================
// SESSION HANDLING
// =============================================================================

// sessionKey returns the cached API key, logging in on first use.
func (e *EarthExplorer) sessionKey(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.apiKey != "" {
		return e.apiKey, nil
	}
	key, err := e.login(ctx)
	if err != nil {
		return "", err
	}
	e.apiKey = key
	return key, nil
}

// resetSession drops the cached API key so the next call logs in again.
func (e *EarthExplorer) resetSession() {
	e.mu.Lock()
	e.apiKey = ""
	e.mu.Unlock()
}

// login trades credentials for a session API key.
func (e *EarthExplorer) login(ctx context.Context) (string, error) {
	envelope, err := e.call(ctx, "login", map[string]any{
		"username":  e.config.User,
		"password":  e.config.Password,
		"catalogId": "EE",
	})
	if err != nil {
		return "", fmt.Errorf("earthexplorer: login: %w", err)
	}
	e.Version = envelope.Version

	var key string
	if err := json.Unmarshal(envelope.Data, &key); err != nil {
		return "", fmt.Errorf("earthexplorer: decode login response: %w", err)
	}
	if key == "" {
		return "", fmt.Errorf("earthexplorer: login returned no api key")
	}
	return key, nil
}

// call posts one jsonRequest form to an API method and unwraps the
// envelope. Application errors surface as apiError.
func (e *EarthExplorer) call(ctx context.Context, method string, payload map[string]any) (*apiEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", method, err)
	}
	form := url.Values{"jsonRequest": {string(body)}}

	resp, err := e.Client.Do(ctx, &http.Request{
		Method: "POST",
		Path:   method,
		Body:   strings.NewReader(form.Encode()),
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
	})
	if err != nil {
		return nil, err
	}

	var envelope apiEnvelope
	if err := resp.JSON(&envelope); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if err := envelope.err(); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// request executes an authenticated API call. A rejected session key is
// renewed once and the call replayed.
func (e *EarthExplorer) request(ctx context.Context, method string, params map[string]any, out any) error {
	for attempt := 0; ; attempt++ {
		key, err := e.sessionKey(ctx)
		if err != nil {
			return err
		}

		payload := map[string]any{"apiKey": key}
		for k, v := range params {
			payload[k] = v
		}

		envelope, err := e.call(ctx, method, payload)
		if err != nil {
			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.isAuthError() && attempt == 0 {
				log.Warn().Str("hub", e.HubID).Str("code", apiErr.Code).
					Msg("session rejected, renewing api key")
				e.resetSession()
				continue
			}
			return err
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("earthexplorer: decode %s data: %w", method, err)
		}
		return nil
	}
}

// =============================================================================
// HUB INTERFACE
// =============================================================================

// ValidateConfig checks credentials with a login round trip.
func (e *EarthExplorer) ValidateConfig(ctx context.Context, config map[string]any) (*hub.ValidationResult, error) {
	e.resetSession()
	if _, err := e.sessionKey(ctx); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			if apiErr.isAuthError() {
				return &hub.ValidationResult{
					Valid:   false,
					Message: "Authentication failed: check EARTHEXPLORER_USER and EARTHEXPLORER_PW",
				}, nil
			}
			return &hub.ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("API error %s: %s", apiErr.Code, apiErr.Message),
			}, nil
		}
		var httpErr *http.HTTPError
		if errors.As(err, &httpErr) {
			return &hub.ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("Connection failed: HTTP %d", httpErr.StatusCode),
			}, nil
		}
		return nil, err
	}

	return &hub.ValidationResult{
		Valid:           true,
		Message:         "Connection successful",
		DetectedVersion: e.Version,
	}, nil
}

// GetCapabilities returns Earth Explorer capabilities.
func (e *EarthExplorer) GetCapabilities() *hub.Capabilities {
	return &hub.Capabilities{
		SupportsQuery:     true,
		SupportsCount:     true,
		SupportsGet:       true,
		SupportsDownload:  true,
		SupportsQuicklook: true,
		DefaultPageSize:   e.config.FetchSize,
	}
}

// GetDescriptor returns the hub descriptor.
func (e *EarthExplorer) GetDescriptor() *hub.Descriptor {
	return &hub.Descriptor{
		ID:      "hub.earthexplorer",
		Family:  "catalog.json-api",
		Title:   "USGS Earth Explorer",
		Vendor:  "USGS",
		DocsURL: "https://earthexplorer.usgs.gov/inventory/documentation/json-api",
	}
}

// Close releases the server-side session.
func (e *EarthExplorer) Close() error {
	e.mu.Lock()
	key := e.apiKey
	e.apiKey = ""
	e.mu.Unlock()
	if key == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := e.call(ctx, "logout", map[string]any{"apiKey": key}); err != nil {
		log.Debug().Str("hub", e.HubID).Err(err).Msg("logout failed")
	}
	return nil
}

// =============================================================================
// CATALOG OPERATIONS
// =============================================================================

// Query searches the inventory and streams normalized scene records.
func (e *EarthExplorer) Query(ctx context.Context, q *hub.SceneQuery) (hub.Iterator[scene.Metadata], error) {
	rows := e.config.FetchSize
	if q.Limit > 0 && q.Limit < rows {
		rows = q.Limit
	}
	params, err := buildSearchParams(q, rows)
	if err != nil {
		return nil, err
	}
	return &searchIterator{
		hub:    e,
		ctx:    ctx,
		params: params,
		rows:   rows,
		max:    q.Limit,
		next:   1,
	}, nil
}

// Count asks for a single-record page and reports the total hits.
func (e *EarthExplorer) Count(ctx context.Context, q *hub.SceneQuery) (int, error) {
	params, err := buildSearchParams(q, 1)
	if err != nil {
		return 0, err
	}
	var data searchData
	if err := e.request(ctx, "search", params, &data); err != nil {
		return 0, err
	}
	return data.TotalHits, nil
}

// Get resolves a single product by entity ID.
func (e *EarthExplorer) Get(ctx context.Context, productUUID string) (*scene.Metadata, error) {
	record, err := e.fetchMetadata(ctx, productUUID)
	if err != nil {
		return nil, err
	}
	return mapResult(record)
}

// fetchMetadata resolves the inventory record of one entity ID. The
// dataset name the lookup needs is derived from the ID prefix.
func (e *EarthExplorer) fetchMetadata(ctx context.Context, entityID string) (*sceneResult, error) {
	platform, err := datasetForEntityID(entityID)
	if err != nil {
		return nil, err
	}
	var records []sceneResult
	if err := e.request(ctx, "metadata", map[string]any{
		"datasetName": platform.String(),
		"entityIds":   []string{entityID},
	}, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("earthexplorer: product %s not found", entityID)
	}
	return &records[0], nil
}

// =============================================================================
// DOWNLOAD OPERATIONS
// =============================================================================

// DownloadImage assembles the product from the public GCS Landsat mirror
// and packs it into a zip archive in the target directory.
func (e *EarthExplorer) DownloadImage(ctx context.Context, req *hub.DownloadRequest) (*hub.DownloadResult, error) {
	record, err := e.fetchMetadata(ctx, req.ProductUUID)
	if err != nil {
		return nil, err
	}
	srcID := record.DisplayID

	archivePath := filepath.Join(req.TargetDir, srcID+".zip")
	if info, err := os.Stat(archivePath); err == nil {
		return &hub.DownloadResult{Path: archivePath, Bytes: info.Size(), Skipped: true}, nil
	}

	id, err := sceneid.ParseLandsatID(srcID)
	if err != nil {
		return nil, err
	}
	labels, err := id.AvailableFiles()
	if err != nil {
		return nil, err
	}

	productDir := filepath.Join(req.TargetDir, srcID)
	if err := os.MkdirAll(productDir, 0o755); err != nil {
		return nil, fmt.Errorf("earthexplorer: create %s: %w", productDir, err)
	}

	for _, label := range labels {
		fileURL := id.FileURL(label)
		dest := filepath.Join(productDir, path.Base(fileURL))
		if _, err := download.Fetch(ctx, e.files, &http.Request{URL: fileURL}, dest, &download.Options{
			SkipExisting: true,
			VerifyETag:   true,
		}); err != nil {
			return nil, fmt.Errorf("earthexplorer: fetch %s: %w", label, err)
		}
	}

	if _, err := download.Pack(filepath.Join(req.TargetDir, srcID), productDir); err != nil {
		return nil, err
	}
	if err := os.RemoveAll(productDir); err != nil {
		return nil, fmt.Errorf("earthexplorer: clean %s: %w", productDir, err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("earthexplorer: stat archive: %w", err)
	}
	return &hub.DownloadResult{Path: archivePath, Bytes: info.Size()}, nil
}

// DownloadQuicklook fetches the browse image and writes it with a
// worldfile derived from the scene footprint.
func (e *EarthExplorer) DownloadQuicklook(ctx context.Context, req *hub.QuicklookRequest) (*hub.QuicklookResult, error) {
	record, err := e.fetchMetadata(ctx, req.ProductUUID)
	if err != nil {
		return nil, err
	}
	if record.BrowseURL == "" {
		return nil, fmt.Errorf("earthexplorer: product %s has no browse image", req.ProductUUID)
	}
	meta, err := mapResult(record)
	if err != nil {
		return nil, err
	}
	if meta.Geometry == nil {
		return nil, fmt.Errorf("earthexplorer: product %s has no footprint for geocoding", req.ProductUUID)
	}

	resp, err := e.files.Do(ctx, &http.Request{Method: "GET", URL: record.BrowseURL})
	if err != nil {
		return nil, err
	}

	files, err := download.SaveQuicklook(resp.Body, meta.Geometry.Bound(), req.TargetDir, meta.SrcID)
	if err != nil {
		return nil, err
	}
	return &hub.QuicklookResult{
		ImagePath:     files.ImagePath,
		WorldfilePath: files.WorldfilePath,
	}, nil
}

// =============================================================================
// SEARCH ITERATOR
// =============================================================================

// searchIterator pages through inventory search results with
// startingNumber offsets.
type searchIterator struct {
	hub    *EarthExplorer
	ctx    context.Context
	params map[string]any
	rows   int
	max    int

	next    int // startingNumber of the next page, 1-based
	total   int
	fetched int
	current []scene.Metadata
	index   int
	done    bool
	err     error
}

// Next advances to the next record, fetching pages as needed.
func (it *searchIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if it.max > 0 && it.fetched >= it.max {
		return false
	}
	if it.index < len(it.current) {
		return true
	}
	if it.done {
		return false
	}
	return it.fetchPage()
}

// fetchPage requests the next result page.
func (it *searchIterator) fetchPage() bool {
	params := make(map[string]any, len(it.params)+1)
	for k, v := range it.params {
		params[k] = v
	}
	params["startingNumber"] = it.next
	params["maxResults"] = it.rows

	var data searchData
	if err := it.hub.request(it.ctx, "search", params, &data); err != nil {
		it.err = err
		return false
	}

	mapped := make([]scene.Metadata, 0, len(data.Results))
	for i := range data.Results {
		m, err := mapResult(&data.Results[i])
		if err != nil {
			it.err = err
			return false
		}
		mapped = append(mapped, *m)
	}

	it.total = data.TotalHits
	it.current = mapped
	it.index = 0
	if len(data.Results) == 0 || data.LastRecord >= data.TotalHits {
		it.done = true
	} else {
		it.next = data.LastRecord + 1
	}
	return len(mapped) > 0
}

// Value returns the current record and advances the cursor.
func (it *searchIterator) Value() scene.Metadata {
	v := it.current[it.index]
	it.index++
	it.fetched++
	return v
}

// Err returns any error encountered during iteration.
func (it *searchIterator) Err() error {
	return it.err
}

// Close releases iterator resources.
func (it *searchIterator) Close() error {
	return nil
}
