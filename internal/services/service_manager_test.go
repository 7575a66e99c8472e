package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"graphmine/pkg/config"
	pkgerrors "graphmine/pkg/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:            "8080",
		Env:             "development",
		CacheRoot:       t.TempDir(),
		CatalogDir:      t.TempDir(),
		DownloadWorkers: 2,
		HTTPTimeout:     5 * time.Second,
		UserAgent:       "graphmine-test/1.0",
		ExportBatchSize: 100,
	}
}

func TestNewServiceManager_MissingCatalogsAreSkipped(t *testing.T) {
	sm := NewServiceManager(testConfig(t))
	defer sm.Shutdown()

	// Only the scraped repository registers without catalog files
	names := sm.Registry().PackageNames()
	if len(names) != 1 || names[0] != "networkrepository" {
		t.Errorf("Expected only networkrepository, got %v", names)
	}
}

func TestNewServiceManager_RegistersCatalogAdapters(t *testing.T) {
	cfg := testConfig(t)
	catalogDoc := `{
		"repository": "Yue",
		"graphs": {
			"CTDDDA": {
				"urls": ["https://example.com/CTD_DDA.edgelist"],
				"arguments": {"edge_path": "CTD_DDA.edgelist"}
			}
		}
	}`
	if err := os.WriteFile(filepath.Join(cfg.CatalogDir, "yue.json"), []byte(catalogDoc), 0o644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	sm := NewServiceManager(cfg)
	defer sm.Shutdown()

	repo, err := sm.Registry().Get("yue")
	if err != nil {
		t.Fatalf("Expected yue adapter registered: %v", err)
	}
	if repo.Name() != "Yue" {
		t.Errorf("Expected Yue, got %s", repo.Name())
	}
}

func TestNewServiceManager_BrokenCatalogIsSkipped(t *testing.T) {
	cfg := testConfig(t)
	os.WriteFile(filepath.Join(cfg.CatalogDir, "string.json"), []byte("not json"), 0o644)

	sm := NewServiceManager(cfg)
	defer sm.Shutdown()

	if _, err := sm.Registry().Get("string"); err == nil {
		t.Error("Expected broken catalog adapter to be skipped")
	}
}

func TestExporter_DisabledWithoutURI(t *testing.T) {
	sm := NewServiceManager(testConfig(t))
	defer sm.Shutdown()

	_, err := sm.Exporter(context.Background())
	if err == nil {
		t.Fatal("Expected error without NEO4J_URI")
	}
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeConfig) {
		t.Errorf("Expected config error, got %v", err)
	}
}

func TestNewRetrieval(t *testing.T) {
	sm := NewServiceManager(testConfig(t))
	defer sm.Shutdown()

	r := sm.NewRetrieval("networkrepository", "soc-karate")
	if r == nil {
		t.Fatal("Expected a retrieval")
	}
}
