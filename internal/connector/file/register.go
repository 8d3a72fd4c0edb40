package file

import (
	"strings"

	"github.com/eoforge/sathub/internal/hub"
)

// init registers the local catalog factory with the global hub registry.
func init() {
	hub.Register("hub.file", func(config map[string]any) (hub.Hub, error) {
		cfg := &Config{
			DataDir: getString(config, "datadir", ""),
		}
		switch v := config["substrings"].(type) {
		case []string:
			cfg.Substrings = v
		case string:
			for _, s := range strings.Split(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					cfg.Substrings = append(cfg.Substrings, s)
				}
			}
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
