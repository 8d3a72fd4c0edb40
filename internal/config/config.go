// Package config loads sathub settings from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/eoforge/sathub/internal/storage"
)

// Config holds the settings shared by the CLI and the hub factories.
// Credentials may stay empty here; a connector that needs them fails at
// construction time.
type Config struct {
	// Copernicus Open Access Hub credentials
	SciHubUser     string
	SciHubPassword string

	// USGS Earth Explorer credentials
	EarthExplorerUser     string
	EarthExplorerPassword string

	// STAC API endpoint
	STACURL string

	// Object store settings
	S3EndpointURL string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3Region      string
	S3UseSSL      bool

	// Scene catalog index
	IndexDSN string

	// Download target directory
	DownloadDir string

	// HTTP tuning shared by the hub clients
	TimeoutSecs int
	RateLimit   int
}

// FromEnv loads configuration from environment variables.
func FromEnv() *Config {
	return &Config{
		SciHubUser:            getEnv("SCIHUB_USER", ""),
		SciHubPassword:        getEnv("SCIHUB_PW", ""),
		EarthExplorerUser:     getEnv("EARTHEXPLORER_USER", ""),
		EarthExplorerPassword: getEnv("EARTHEXPLORER_PW", ""),
		STACURL:               getEnv("STAC_API_URL", ""),
		S3EndpointURL:         getEnv("SATHUB_S3_ENDPOINT", ""),
		S3AccessKey:           getEnv("SATHUB_S3_ACCESS_KEY", ""),
		S3SecretKey:           getEnv("SATHUB_S3_SECRET_KEY", ""),
		S3Bucket:              getEnv("SATHUB_S3_BUCKET", "sathub"),
		S3Region:              getEnv("SATHUB_S3_REGION", ""),
		S3UseSSL:              getEnvBool("SATHUB_S3_USE_SSL", false),
		IndexDSN:              getEnv("SATHUB_INDEX_DSN", ""),
		DownloadDir:           getEnv("SATHUB_DOWNLOAD_DIR", "."),
		TimeoutSecs:           getEnvInt("SATHUB_HTTP_TIMEOUT", 0),
		RateLimit:             getEnvInt("SATHUB_RATE_LIMIT", 0),
	}
}

// HubConfig assembles the factory config map for the given hub ID. Only
// populated settings are passed through, so factory defaults and their
// own environment fallbacks still apply.
func (c *Config) HubConfig(hubID string) map[string]any {
	cfg := map[string]any{}
	if c.TimeoutSecs > 0 {
		cfg["timeout"] = c.TimeoutSecs
	}
	if c.RateLimit > 0 {
		cfg["rateLimit"] = c.RateLimit
	}
	switch hubID {
	case "hub.scihub":
		putString(cfg, "user", c.SciHubUser)
		putString(cfg, "password", c.SciHubPassword)
	case "hub.earthexplorer":
		putString(cfg, "user", c.EarthExplorerUser)
		putString(cfg, "password", c.EarthExplorerPassword)
	case "hub.stac":
		putString(cfg, "baseUrl", c.STACURL)
	case "hub.file":
		putString(cfg, "datadir", c.DownloadDir)
	}
	return cfg
}

// HasObjectStore reports whether an object store endpoint is configured.
func (c *Config) HasObjectStore() bool {
	return c.S3EndpointURL != ""
}

// S3Config converts the object store settings for storage.NewS3Client.
func (c *Config) S3Config() *storage.S3Config {
	return &storage.S3Config{
		EndpointURL:     c.S3EndpointURL,
		Region:          c.S3Region,
		UseSSL:          c.S3UseSSL,
		AccessKeyID:     c.S3AccessKey,
		SecretAccessKey: c.S3SecretKey,
		Bucket:          c.S3Bucket,
	}
}

func putString(cfg map[string]any, key, value string) {
	if value != "" {
		cfg[key] = value
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	switch os.Getenv(key) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}
