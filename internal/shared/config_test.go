package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "alpencams.db" {
			t.Errorf("expected database path alpencams.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8090 {
			t.Errorf("expected server port 8090, got %d", config.Server.Port)
		}

		if config.Catalog.Path != "" {
			t.Errorf("expected empty catalog path, got %s", config.Catalog.Path)
		}

		if config.Scraper.RequestsPerSec != 0.5 {
			t.Errorf("expected 0.5 requests per second, got %v", config.Scraper.RequestsPerSec)
		}

		if config.OAuth.RedirectURI != "http://localhost:8091/callback" {
			t.Errorf("expected oauth redirect http://localhost:8091/callback, got %s", config.OAuth.RedirectURI)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[catalog]
path = "/custom/cams.json"

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[local]
path = "/custom/local.json"

[server]
host = "0.0.0.0"
port = 8080

[scraper]
output_path = "out.json"
max_bergfex_cams = 25
requests_per_sec = 2.0

[oauth]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:8091/callback"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Scraper.MaxBergfexCams != 25 {
			t.Errorf("expected 25 bergfex cams, got %d", config.Scraper.MaxBergfexCams)
		}

		if config.OAuth.ClientID != "test_client_id" {
			t.Errorf("expected oauth client_id test_client_id, got %s", config.OAuth.ClientID)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}
