// Package connector registers all sathub connectors.
package connector

import (
	// Import all connectors to register them
	_ "github.com/eoforge/sathub/internal/connector/earthexplorer"
	_ "github.com/eoforge/sathub/internal/connector/file"
	_ "github.com/eoforge/sathub/internal/connector/scihub"
	_ "github.com/eoforge/sathub/internal/connector/stac"
)

// All imports trigger init() functions that register connectors.
