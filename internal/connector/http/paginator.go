package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// =============================================================================
// PAGINATION STRATEGIES
// =============================================================================

// Paginator handles API pagination.
type Paginator interface {
	// NextPage returns the request for the next page, or nil if done.
	NextPage(ctx context.Context, resp *Response) (*Request, error)
}

// =============================================================================
// OFFSET PAGINATION
// =============================================================================

// OffsetPaginator uses offset/limit pagination. OpenSearch endpoints
// page this way with start/rows parameters.
type OffsetPaginator struct {
	Path       string
	Limit      int
	Offset     int
	Query      url.Values // Extra query params repeated on every page.
	OffsetKey  string     // Query param name (default: "offset")
	LimitKey   string     // Query param name (default: "limit")
	TotalKey   string     // JSON key with total count (default: "total")
	ResultsKey string     // JSON key with results array (default: "results")
	total      int
	fetched    int
}

// NewOffsetPaginator creates a new offset-based paginator.
func NewOffsetPaginator(path string, limit int) *OffsetPaginator {
	return &OffsetPaginator{
		Path:       path,
		Limit:      limit,
		Offset:     0,
		OffsetKey:  "offset",
		LimitKey:   "limit",
		TotalKey:   "total",
		ResultsKey: "results",
	}
}

// FirstPage returns the first page request.
func (p *OffsetPaginator) FirstPage() *Request {
	query := url.Values{}
	for k, vs := range p.Query {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set(p.OffsetKey, strconv.Itoa(p.Offset))
	query.Set(p.LimitKey, strconv.Itoa(p.Limit))
	return &Request{
		Method: "GET",
		Path:   p.Path,
		Query:  query,
	}
}

// NextPage returns the next page request based on response.
func (p *OffsetPaginator) NextPage(ctx context.Context, resp *Response) (*Request, error) {
	// Parse response to get total
	var data map[string]any
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		return nil, err
	}

	// Get total count
	if total, ok := data[p.TotalKey]; ok {
		switch v := total.(type) {
		case float64:
			p.total = int(v)
		case int:
			p.total = v
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				p.total = n
			}
		}
	}

	// Get results count
	if results, ok := data[p.ResultsKey]; ok {
		if arr, ok := results.([]any); ok {
			p.fetched += len(arr)
		}
	}

	// Check if more pages
	if p.fetched >= p.total {
		return nil, nil
	}

	// Build next request
	p.Offset = p.fetched
	return p.FirstPage(), nil
}

// =============================================================================
// LINK PAGINATION
// =============================================================================

// LinkPaginator follows rel=next links embedded in the response body.
// STAC APIs page this way.
type LinkPaginator struct {
	// Method for follow-up requests (default: same as the link's
	// "method" field, falling back to GET).
	Method string
}

type linkedPage struct {
	Links []struct {
		Rel    string          `json:"rel"`
		Href   string          `json:"href"`
		Method string          `json:"method"`
		Body   json.RawMessage `json:"body"`
	} `json:"links"`
}

// NextPage extracts the next link from the response, or nil if the page
// chain ends here.
func (p *LinkPaginator) NextPage(ctx context.Context, resp *Response) (*Request, error) {
	var page linkedPage
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, err
	}
	for _, link := range page.Links {
		if link.Rel != "next" || link.Href == "" {
			continue
		}
		method := p.Method
		if method == "" {
			method = link.Method
		}
		if method == "" {
			method = "GET"
		}
		req := &Request{Method: method, URL: link.Href}
		if len(link.Body) > 0 && method != "GET" {
			req.Headers = map[string]string{"Content-Type": "application/json"}
			req.Body = bytes.NewReader(link.Body)
		}
		return req, nil
	}
	return nil, nil
}

// =============================================================================
// PAGINATED ITERATOR
// =============================================================================

// PaginatedIterator fetches all pages from an API.
type PaginatedIterator[T any] struct {
	ctx          context.Context
	client       *Client
	paginator    Paginator
	parseResults func(resp *Response) ([]T, error)

	current     []T
	currentIdx  int
	nextRequest *Request
	fetched     int
	max         int
	done        bool
	err         error
}

// NewPaginatedIterator creates a paginated iterator. The context governs
// every page fetch. max caps the total number of items when positive.
func NewPaginatedIterator[T any](
	ctx context.Context,
	client *Client,
	firstRequest *Request,
	paginator Paginator,
	max int,
	parseResults func(resp *Response) ([]T, error),
) *PaginatedIterator[T] {
	return &PaginatedIterator[T]{
		ctx:          ctx,
		client:       client,
		paginator:    paginator,
		parseResults: parseResults,
		nextRequest:  firstRequest,
		max:          max,
	}
}

// Next advances to the next item.
func (it *PaginatedIterator[T]) Next() bool {
	if it.max > 0 && it.fetched >= it.max {
		return false
	}

	// Check if we have more items in current page
	if it.currentIdx < len(it.current) {
		return true
	}

	// Check if we're done
	if it.done || it.nextRequest == nil {
		return false
	}

	// Fetch next page
	resp, err := it.client.Do(it.ctx, it.nextRequest)
	if err != nil {
		it.err = err
		return false
	}

	// Parse results
	results, err := it.parseResults(resp)
	if err != nil {
		it.err = err
		return false
	}

	// Get next page request
	nextReq, err := it.paginator.NextPage(it.ctx, resp)
	if err != nil {
		it.err = err
		return false
	}

	it.current = results
	it.currentIdx = 0
	it.nextRequest = nextReq
	it.done = nextReq == nil

	return len(it.current) > 0
}

// Value returns the current item and advances past it.
func (it *PaginatedIterator[T]) Value() T {
	if it.currentIdx < len(it.current) {
		val := it.current[it.currentIdx]
		it.currentIdx++
		it.fetched++
		return val
	}
	var zero T
	return zero
}

// Err returns any error encountered.
func (it *PaginatedIterator[T]) Err() error {
	return it.err
}

// Close releases resources.
func (it *PaginatedIterator[T]) Close() error {
	it.done = true
	return nil
}
