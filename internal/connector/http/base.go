package http

import (
	"context"
	"fmt"

	"github.com/eoforge/sathub/internal/hub"
)

// =============================================================================
// BASE HTTP HUB
// Provides common HTTP functionality for catalog connectors.
// =============================================================================

// Base provides common HTTP hub functionality.
// Embed this in connectors like SciHub, EarthExplorer, STAC.
type Base struct {
	// Client is the HTTP client for making requests.
	Client *Client

	// HubID is the unique identifier for this hub.
	HubID string

	// HubName is the display name.
	HubName string

	// Vendor is the operating agency (e.g., "ESA", "USGS").
	Vendor string

	// Version is the detected API version.
	Version string
}

// NewBase creates a new HTTP base with the given configuration.
func NewBase(id, name, vendor string, config *ClientConfig) *Base {
	return &Base{
		Client:  NewClient(config),
		HubID:   id,
		HubName: name,
		Vendor:  vendor,
	}
}

// ID returns the hub identifier.
func (b *Base) ID() string {
	return b.HubID
}

// Close closes the HTTP client.
func (b *Base) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// GetCapabilities returns default HTTP catalog capabilities.
// Override in concrete implementations for specific capabilities.
func (b *Base) GetCapabilities() *hub.Capabilities {
	return &hub.Capabilities{
		SupportsQuery:     true,
		SupportsCount:     true,
		SupportsGet:       false,
		SupportsDownload:  false,
		SupportsQuicklook: false,
		DefaultPageSize:   100,
	}
}

// GetDescriptor returns the hub descriptor.
// Override in concrete implementations.
func (b *Base) GetDescriptor() *hub.Descriptor {
	return &hub.Descriptor{
		ID:     b.HubID,
		Family: "http.catalog",
		Title:  b.HubName,
		Vendor: b.Vendor,
	}
}

// ValidateConfig tests the connection by making a probe request.
func (b *Base) ValidateConfig(ctx context.Context, probePath string) (*hub.ValidationResult, error) {
	resp, err := b.Client.Get(ctx, probePath, nil)
	if err != nil {
		if httpErr, ok := err.(*HTTPError); ok {
			return &hub.ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("Connection failed: HTTP %d", httpErr.StatusCode),
			}, nil
		}
		return nil, err
	}

	return &hub.ValidationResult{
		Valid:           resp.IsSuccess(),
		Message:         "Connection successful",
		DetectedVersion: b.Version,
	}, nil
}

// =============================================================================
// HELPER METHODS
// =============================================================================

// FetchJSON fetches a JSON response and unmarshals it.
func (b *Base) FetchJSON(ctx context.Context, path string, target any) error {
	resp, err := b.Client.Get(ctx, path, nil)
	if err != nil {
		return err
	}
	return resp.JSON(target)
}
