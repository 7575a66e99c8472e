package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.CacheRoot != "graphs" {
		t.Errorf("Expected default cache root 'graphs', got %s", cfg.CacheRoot)
	}
	if cfg.DownloadWorkers != 4 {
		t.Errorf("Expected 4 download workers, got %d", cfg.DownloadWorkers)
	}
	if cfg.HTTPTimeout != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.ExportEnabled() {
		t.Error("Expected export disabled without NEO4J_URI")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DOWNLOAD_WORKERS", "8")
	t.Setenv("NEO4J_URI", "bolt://localhost:7687")
	t.Setenv("NEO4J_PASSWORD", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.DownloadWorkers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.DownloadWorkers)
	}
	if !cfg.ExportEnabled() {
		t.Error("Expected export enabled with NEO4J_URI set")
	}
}

func TestLoad_Neo4jPasswordRequired(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://localhost:7687")
	t.Setenv("NEO4J_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected validation error when NEO4J_URI is set without password")
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		CacheRoot:       "graphs",
		CatalogDir:      "catalogs",
		DownloadWorkers: 4,
		HTTPTimeout:     time.Minute,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty cache root", func(c *Config) { c.CacheRoot = "" }},
		{"empty catalog dir", func(c *Config) { c.CatalogDir = "" }},
		{"zero workers", func(c *Config) { c.DownloadWorkers = 0 }},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := *valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestEnvModes(t *testing.T) {
	cfg := &Config{Env: "development"}
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("Expected development mode")
	}
	cfg.Env = "production"
	if cfg.IsDevelopment() || !cfg.IsProduction() {
		t.Error("Expected production mode")
	}
}
