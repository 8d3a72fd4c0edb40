package stac

import (
	nethttp "net/http"
	"os"
	"strings"

	"github.com/eoforge/sathub/internal/hub"
)

// init registers the STAC factory with the global hub registry. The
// endpoint falls back to the STAC_API_URL environment variable.
func init() {
	hub.Register("hub.stac", func(config map[string]any) (hub.Hub, error) {
		cfg := &Config{
			BaseURL:   getString(config, "baseUrl", os.Getenv("STAC_API_URL")),
			FetchSize: getInt(config, "fetchSize", 0),
			Timeout:   getInt(config, "timeout", 0),
			RateLimit: getInt(config, "rateLimit", 0),
		}
		if raw := getString(config, "collections", ""); raw != "" {
			for _, c := range strings.Split(raw, ",") {
				if c = strings.TrimSpace(c); c != "" {
					cfg.Collections = append(cfg.Collections, c)
				}
			}
		}
		if h, ok := config["headers"].(map[string]string); ok {
			cfg.Headers = h
		}
		if r, ok := config["itemReader"].(ItemReader); ok {
			cfg.Items = r
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
