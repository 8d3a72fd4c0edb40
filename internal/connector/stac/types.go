package stac

import (
	"encoding/json"
	"net/http"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// DefaultFetchSize is the page size used when paginating item searches.
const DefaultFetchSize = 100

// Config holds STAC API connection configuration.
type Config struct {
	// BaseURL is the STAC API endpoint. Required; the factory falls back
	// to the STAC_API_URL environment variable.
	BaseURL string `json:"baseUrl"`

	// Collections restricts searches to these collection IDs unless the
	// query overrides them.
	Collections []string `json:"collections,omitempty"`

	// FetchSize is the item-search page size (default: 100).
	FetchSize int `json:"fetchSize,omitempty"`

	// Timeout overrides the HTTP request timeout in seconds.
	Timeout int `json:"timeout,omitempty"`

	// RateLimit overrides the requests-per-second cap.
	RateLimit int `json:"rateLimit,omitempty"`

	// Headers are sent with every request, e.g. API tokens.
	Headers map[string]string `json:"headers,omitempty"`

	// Items reads search features into items (default: PassthroughReader).
	Items ItemReader `json:"-"`

	// Transport allows injecting a custom HTTP transport (for tests).
	Transport http.RoundTripper `json:"-"`
}

// ValidationError describes a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks required fields and applies defaults.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return &ValidationError{Field: "baseUrl", Message: "required (set STAC_API_URL or pass baseUrl)"}
	}
	if c.FetchSize <= 0 {
		c.FetchSize = DefaultFetchSize
	}
	return nil
}

// =============================================================================
// STAC WIRE TYPES
// =============================================================================

// Link connects STAC entities. Next links may carry a method and body for
// POST-style paging.
type Link struct {
	Rel    string          `json:"rel"`
	Href   string          `json:"href"`
	Type   string          `json:"type,omitempty"`
	Method string          `json:"method,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// Asset points to scene data or auxiliary files.
type Asset struct {
	Href  string   `json:"href"`
	Title string   `json:"title,omitempty"`
	Type  string   `json:"type,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Item is a STAC item as served by item search.
type Item struct {
	Type       string           `json:"type"`
	ID         string           `json:"id"`
	Collection string           `json:"collection,omitempty"`
	Geometry   json.RawMessage  `json:"geometry,omitempty"`
	BBox       []float64        `json:"bbox,omitempty"`
	Properties map[string]any   `json:"properties"`
	Links      []Link           `json:"links,omitempty"`
	Assets     map[string]Asset `json:"assets,omitempty"`
}

// SelfHref returns the item's self link, or an empty string.
func (i *Item) SelfHref() string {
	for _, l := range i.Links {
		if l.Rel == "self" {
			return l.Href
		}
	}
	return ""
}

// Collection is a STAC collection summary.
type Collection struct {
	Type        string          `json:"type,omitempty"`
	ID          string          `json:"id"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	License     string          `json:"license,omitempty"`
	Extent      json.RawMessage `json:"extent,omitempty"`
	Links       []Link          `json:"links,omitempty"`
}

// searchContext is the item-search context extension block.
type searchContext struct {
	Matched  int `json:"matched"`
	Returned int `json:"returned"`
	Limit    int `json:"limit"`
}

// SearchResponse is one page of item-search results. Features stay raw so
// the configured ItemReader decides how to read them.
type SearchResponse struct {
	Type           string            `json:"type"`
	Context        *searchContext    `json:"context,omitempty"`
	NumberMatched  *int              `json:"numberMatched,omitempty"`
	NumberReturned int               `json:"numberReturned,omitempty"`
	Features       []json.RawMessage `json:"features"`
	Links          []Link            `json:"links,omitempty"`
}

// Matched reports the total match count. Servers expose it through the
// context extension or the OGC numberMatched field; some report neither.
func (r *SearchResponse) Matched() (int, bool) {
	if r.Context != nil {
		return r.Context.Matched, true
	}
	if r.NumberMatched != nil {
		return *r.NumberMatched, true
	}
	return 0, false
}
