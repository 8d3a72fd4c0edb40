package earthexplorer

import (
	nethttp "net/http"
	"os"

	"github.com/eoforge/sathub/internal/hub"
)

func init() {
	hub.Register("hub.earthexplorer", func(config map[string]any) (hub.Hub, error) {
		cfg := &Config{
			BaseURL:   getString(config, "baseUrl", ""),
			User:      getString(config, "user", os.Getenv("EARTHEXPLORER_USER")),
			Password:  getString(config, "password", os.Getenv("EARTHEXPLORER_PW")),
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

func getString(config map[string]any, key, defaultValue string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

func getInt(config map[string]any, key string, defaultValue int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return defaultValue
}
