package scihub

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Config holds Copernicus Open Access Hub connection configuration.
type Config struct {
	// BaseURL is the hub root (default: https://scihub.copernicus.eu/dhus).
	BaseURL string `json:"baseUrl"`

	// User is the hub account name.
	User string `json:"user"`

	// Password is the hub account password.
	Password string `json:"password"`

	// FetchSize is the number of records per search page.
	FetchSize int `json:"fetchSize,omitempty"`

	// Timeout overrides the HTTP request timeout in seconds.
	Timeout int `json:"timeout,omitempty"`

	// RateLimit overrides the requests-per-second cap.
	RateLimit int `json:"rateLimit,omitempty"`

	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper `json:"-"`
}

// DefaultBaseURL is the Copernicus Open Access Hub endpoint.
const DefaultBaseURL = "https://scihub.copernicus.eu/dhus"

// DefaultFetchSize is the default number of records per search page.
const DefaultFetchSize = 100

// MaxFetchSize is the OpenSearch rows hard limit.
const MaxFetchSize = 100

// Validate validates the configuration.
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
	if c.FetchSize > MaxFetchSize {
		c.FetchSize = MaxFetchSize
	}
	return nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// =============================================================================
// OPENSEARCH RESPONSE TYPES
// The dhus JSON rendering collapses single-element arrays into bare
// objects; oneOrMany absorbs that quirk during decoding.
// =============================================================================

// oneOrMany decodes either a JSON array or a single object into a slice.
type oneOrMany[T any] []T

func (l *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	var many []T
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = []T{one}
	return nil
}

type searchResponse struct {
	Feed feed `json:"feed"`
}

type feed struct {
	TotalResults string           `json:"opensearch:totalResults"`
	StartIndex   string           `json:"opensearch:startIndex"`
	ItemsPerPage string           `json:"opensearch:itemsPerPage"`
	Entries      oneOrMany[entry] `json:"entry"`
}

// Total parses the result count, zero when absent or malformed.
func (f *feed) Total() int {
	n, _ := strconv.Atoi(f.TotalResults)
	return n
}

// entry is one OpenSearch result. Typed values arrive in per-type
// name/content lists.
type entry struct {
	Title   string                `json:"title"`
	ID      string                `json:"id"`
	Summary string                `json:"summary"`
	Links   oneOrMany[entryLink]  `json:"link"`
	Strs    oneOrMany[typedValue] `json:"str"`
	Ints    oneOrMany[typedValue] `json:"int"`
	Dates   oneOrMany[typedValue] `json:"date"`
	Doubles oneOrMany[typedValue] `json:"double"`
}

type entryLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type typedValue struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func lookup(values []typedValue, name string) (string, bool) {
	for _, v := range values {
		if v.Name == name {
			return v.Content, true
		}
	}
	return "", false
}

func (e *entry) str(name string) (string, bool)    { return lookup(e.Strs, name) }
func (e *entry) date(name string) (string, bool)   { return lookup(e.Dates, name) }
func (e *entry) intval(name string) (string, bool) { return lookup(e.Ints, name) }
func (e *entry) double(name string) (string, bool) { return lookup(e.Doubles, name) }

// downloadLink returns the href of the unqualified link, which points at
// the OData $value stream.
func (e *entry) downloadLink() string {
	for _, l := range e.Links {
		if l.Rel == "" {
			return l.Href
		}
	}
	return ""
}

// =============================================================================
// ODATA RESPONSE TYPES
// =============================================================================

// odataEnvelope wraps OData v1 JSON responses.
type odataEnvelope struct {
	D odataProduct `json:"d"`
}

type odataProduct struct {
	ID              string         `json:"Id"`
	Name            string         `json:"Name"`
	ContentLength   json.Number    `json:"ContentLength"`
	IngestionDate   string         `json:"IngestionDate"`
	CreationDate    string         `json:"CreationDate"`
	Online          *bool          `json:"Online"`
	ContentGeometry string         `json:"ContentGeometry"`
	Checksum        odataChecksum  `json:"Checksum"`
	ContentDate     odataDateRange `json:"ContentDate"`
}

type odataChecksum struct {
	Algorithm string `json:"Algorithm"`
	Value     string `json:"Value"`
}

type odataDateRange struct {
	Start string `json:"Start"`
	End   string `json:"End"`
}
