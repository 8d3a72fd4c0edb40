package scihub

import (
	nethttp "net/http"
	"os"

	"github.com/eoforge/sathub/internal/hub"
)

// init registers the SciHub factory with the global hub registry.
// Credentials fall back to the environment names operators already use
// (SCIHUB_USER, SCIHUB_PW).
func init() {
	hub.Register("hub.scihub", func(config map[string]any) (hub.Hub, error) {
		cfg := &Config{
			BaseURL:   getString(config, "baseUrl", ""),
			User:      getString(config, "user", os.Getenv("SCIHUB_USER")),
			Password:  getString(config, "password", os.Getenv("SCIHUB_PW")),
			FetchSize: getInt(config, "fetchSize", 0),
			Timeout:   getInt(config, "timeout", 0),
			RateLimit: getInt(config, "rateLimit", 0),
		}
		if t, ok := config["transport"].(nethttp.RoundTripper); ok {
			cfg.Transport = t
		}
		return New(cfg)
	})
}

// --- Config Helpers ---

func getString(m map[string]any, key, defaultVal string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return defaultVal
}

func getInt(m map[string]any, key string, defaultVal int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return defaultVal
}
