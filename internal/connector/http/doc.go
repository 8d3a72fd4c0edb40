// Package http provides a generic HTTP base connector for catalog hubs.
// This serves as the foundation for connectors like SciHub, EarthExplorer
// and STAC.
//
// Structure:
//
//	client.go     - HTTP client with rate limiting and retry
//	auth.go       - Authentication strategies (Basic, Bearer, API key)
//	paginator.go  - Pagination helpers (offset, next-link)
//	base.go       - Embeddable hub base with validation helpers
package http
