package config_test

// =============================================================================
// Environment Configuration Tests
// =============================================================================

import (
	"testing"

	"github.com/eoforge/sathub/internal/config"
)

// allEnvKeys clears every variable FromEnv reads so tests are isolated
// from the developer's environment.
var allEnvKeys = []string{
	"SCIHUB_USER", "SCIHUB_PW",
	"EARTHEXPLORER_USER", "EARTHEXPLORER_PW",
	"STAC_API_URL",
	"SATHUB_S3_ENDPOINT", "SATHUB_S3_ACCESS_KEY", "SATHUB_S3_SECRET_KEY",
	"SATHUB_S3_BUCKET", "SATHUB_S3_REGION", "SATHUB_S3_USE_SSL",
	"SATHUB_INDEX_DSN", "SATHUB_DOWNLOAD_DIR",
	"SATHUB_HTTP_TIMEOUT", "SATHUB_RATE_LIMIT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	cfg := config.FromEnv()

	if cfg.SciHubUser != "" || cfg.SciHubPassword != "" {
		t.Error("Expected empty hub credentials by default")
	}
	if cfg.S3Bucket != "sathub" {
		t.Errorf("Expected default bucket sathub, got %q", cfg.S3Bucket)
	}
	if cfg.S3UseSSL {
		t.Error("Expected SSL off by default")
	}
	if cfg.DownloadDir != "." {
		t.Errorf("Expected default download dir ., got %q", cfg.DownloadDir)
	}
	if cfg.TimeoutSecs != 0 || cfg.RateLimit != 0 {
		t.Error("Expected HTTP tuning unset by default")
	}
	if cfg.HasObjectStore() {
		t.Error("Expected no object store without an endpoint")
	}
}

func TestFromEnvReadsValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCIHUB_USER", "alice")
	t.Setenv("SCIHUB_PW", "secret")
	t.Setenv("STAC_API_URL", "https://earth-search.aws.element84.com/v1")
	t.Setenv("SATHUB_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("SATHUB_S3_USE_SSL", "true")
	t.Setenv("SATHUB_HTTP_TIMEOUT", "60")
	t.Setenv("SATHUB_RATE_LIMIT", "not-a-number")

	cfg := config.FromEnv()
	if cfg.SciHubUser != "alice" || cfg.SciHubPassword != "secret" {
		t.Error("Expected hub credentials from environment")
	}
	if cfg.STACURL != "https://earth-search.aws.element84.com/v1" {
		t.Errorf("Unexpected STAC URL: %q", cfg.STACURL)
	}
	if !cfg.HasObjectStore() {
		t.Error("Expected object store with endpoint set")
	}
	if !cfg.S3UseSSL {
		t.Error("Expected SSL on")
	}
	if cfg.TimeoutSecs != 60 {
		t.Errorf("Expected timeout 60, got %d", cfg.TimeoutSecs)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("Expected malformed rate limit to fall back to 0, got %d", cfg.RateLimit)
	}
}

func TestHubConfig(t *testing.T) {
	cfg := &config.Config{
		SciHubUser:     "alice",
		SciHubPassword: "secret",
		STACURL:        "https://stac.example.com",
		DownloadDir:    "/data/scenes",
		TimeoutSecs:    60,
		RateLimit:      5,
	}

	m := cfg.HubConfig("hub.scihub")
	if m["user"] != "alice" || m["password"] != "secret" {
		t.Errorf("Expected scihub credentials, got %v", m)
	}
	if m["timeout"] != 60 || m["rateLimit"] != 5 {
		t.Errorf("Expected HTTP tuning passed through, got %v", m)
	}
	if _, ok := m["baseUrl"]; ok {
		t.Error("Did not expect a baseUrl for scihub")
	}

	m = cfg.HubConfig("hub.stac")
	if m["baseUrl"] != "https://stac.example.com" {
		t.Errorf("Expected STAC baseUrl, got %v", m)
	}
	if _, ok := m["user"]; ok {
		t.Error("Did not expect credentials for stac")
	}

	m = cfg.HubConfig("hub.file")
	if m["datadir"] != "/data/scenes" {
		t.Errorf("Expected file datadir, got %v", m)
	}

	// Empty settings stay off the map so factory env fallbacks apply.
	m = (&config.Config{}).HubConfig("hub.scihub")
	if _, ok := m["user"]; ok {
		t.Error("Expected empty credentials to be omitted")
	}
	if len(m) != 0 {
		t.Errorf("Expected empty map, got %v", m)
	}
}

func TestS3Config(t *testing.T) {
	cfg := &config.Config{
		S3EndpointURL: "http://localhost:9000",
		S3AccessKey:   "minio",
		S3SecretKey:   "minio123",
		S3Bucket:      "scenes",
		S3Region:      "us-east-1",
		S3UseSSL:      true,
	}
	s3 := cfg.S3Config()
	if s3.EndpointURL != "http://localhost:9000" || s3.Bucket != "scenes" {
		t.Errorf("Unexpected S3 config: %+v", s3)
	}
	if s3.AccessKeyID != "minio" || s3.SecretAccessKey != "minio123" {
		t.Error("Expected credentials mapped through")
	}
	if !s3.UseSSL || s3.Region != "us-east-1" {
		t.Error("Expected SSL and region mapped through")
	}
}
