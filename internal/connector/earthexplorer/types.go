package earthexplorer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

const (
	// DefaultBaseURL is the inventory JSON API endpoint.
	DefaultBaseURL = "https://earthexplorer.usgs.gov/inventory/json/v/1.4.1"

	// DefaultFetchSize is the page size used when paginating search
	// results.
	DefaultFetchSize = 100
)

// Config holds Earth Explorer connection configuration.
type Config struct {
	// BaseURL of the inventory JSON API (default: DefaultBaseURL).
	BaseURL string `json:"baseUrl,omitempty"`

	// User is the USGS account name.
	User string `json:"user"`

	// Password is the USGS account password.
	Password string `json:"password"`

	// FetchSize is the search page size (default: 100).
	FetchSize int `json:"fetchSize,omitempty"`

	// Timeout overrides the HTTP request timeout in seconds.
	Timeout int `json:"timeout,omitempty"`

	// RateLimit overrides the requests-per-second cap.
	RateLimit int `json:"rateLimit,omitempty"`

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
	if c.User == "" {
		return &ValidationError{Field: "user", Message: "required"}
	}
	if c.Password == "" {
		return &ValidationError{Field: "password", Message: "required"}
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.FetchSize <= 0 {
		c.FetchSize = DefaultFetchSize
	}
	return nil
}

// =============================================================================
// JSON API WIRE TYPES
// =============================================================================

// apiEnvelope is the uniform response wrapper of the inventory JSON API.
// Application errors arrive inside a 200 response.
type apiEnvelope struct {
	ErrorCode *string         `json:"errorCode"`
	ErrorMsg  string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Version   string          `json:"api_version"`
}

// err converts a populated errorCode into an apiError.
func (e *apiEnvelope) err() error {
	if e.ErrorCode != nil && *e.ErrorCode != "" {
		return &apiError{Code: *e.ErrorCode, Message: e.ErrorMsg}
	}
	return nil
}

// apiError is an application-level error reported by the JSON API.
type apiError struct {
	Code    string
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("earthexplorer: %s: %s", e.Code, e.Message)
}

// isAuthError reports whether the session key was rejected or expired.
func (e *apiError) isAuthError() bool {
	return strings.HasPrefix(e.Code, "AUTH")
}

// searchData is the payload of a search response. Record numbers are
// 1-based.
type searchData struct {
	NumberReturned int           `json:"numberReturned"`
	TotalHits      int           `json:"totalHits"`
	FirstRecord    int           `json:"firstRecord"`
	LastRecord     int           `json:"lastRecord"`
	NextRecord     int           `json:"nextRecord"`
	Results        []sceneResult `json:"results"`
}

// sceneResult is one catalog hit. The same shape comes back from both
// search and metadata calls. spatialFootprint is a GeoJSON geometry.
type sceneResult struct {
	AcquisitionDate  string          `json:"acquisitionDate"`
	ModifiedDate     string          `json:"modifiedDate"`
	DisplayID        string          `json:"displayId"`
	EntityID         string          `json:"entityId"`
	Summary          string          `json:"summary"`
	DataAccessURL    string          `json:"dataAccessUrl"`
	DownloadURL      string          `json:"downloadUrl"`
	OrderURL         string          `json:"orderUrl"`
	BrowseURL        string          `json:"browseUrl"`
	CloudCover       json.Number     `json:"cloudCover"`
	SceneBounds      string          `json:"sceneBounds"`
	SpatialFootprint json.RawMessage `json:"spatialFootprint"`
}
