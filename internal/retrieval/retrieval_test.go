package retrieval

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"graphmine/internal/graph"
	"graphmine/internal/repository"
	pkgerrors "graphmine/pkg/errors"
)

const networksListingHTML = `<html><body>
<table>
	<thead><tr><th>Graph Name</th><th>Type</th></tr></thead>
	<tbody><tr><td>soc-karate</td><td>soc</td></tr></tbody>
</table>
</body></html>`

// newDatasetServer serves a listing page, a karate club zip on the mirror
// path, and a plain edge list for the catalog repository.
func newDatasetServer(t *testing.T, downloads *atomic.Int32) *httptest.Server {
	t.Helper()

	var karateZip bytes.Buffer
	zw := zip.NewWriter(&karateZip)
	w, _ := zw.Create("soc-karate.mtx")
	w.Write([]byte("%%MatrixMarket matrix coordinate pattern symmetric\n3 3 3\n1 2\n2 3\n3 1\n"))
	zw.Close()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/networks.php"):
			w.Write([]byte(networksListingHTML))
		case strings.HasSuffix(r.URL.Path, "soc-karate.zip"):
			if downloads != nil {
				downloads.Add(1)
			}
			w.Write(karateZip.Bytes())
		case strings.HasSuffix(r.URL.Path, "CTD_DDA.edgelist"):
			if downloads != nil {
				downloads.Add(1)
			}
			w.Write([]byte("D001 D002\nD002 D003\n"))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestRegistry(t *testing.T, server *httptest.Server) *repository.Registry {
	t.Helper()

	catalogPath := filepath.Join(t.TempDir(), "yue.json")
	catalogDoc := `{
		"repository": "Yue",
		"graphs": {
			"CTDDDA": {
				"urls": ["` + server.URL + `/CTD_DDA.edgelist"],
				"citations": ["@article{davis2019ctd}"],
				"arguments": {
					"edge_path": "CTD_DDA.edgelist",
					"edge_separator": " ",
					"edge_header": false
				}
			}
		}
	}`
	if err := os.WriteFile(catalogPath, []byte(catalogDoc), 0o644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
	yue, err := repository.NewYue(catalogPath)
	if err != nil {
		t.Fatalf("NewYue failed: %v", err)
	}

	registry := repository.NewRegistry()
	registry.Register(yue)
	registry.Register(repository.NewNetworkRepository(repository.NetworkRepositoryOptions{
		ListingURL:   server.URL + "/networks.php",
		GraphPageURL: server.URL + "/%s.php",
		DownloadURL:  server.URL + "/download/data/%s/%s.zip",
	}))
	return registry
}

func TestRetrieve_CatalogRepository(t *testing.T) {
	server := newDatasetServer(t, nil)
	defer server.Close()

	registry := newTestRegistry(t, server)
	cacheDir := t.TempDir()

	g, err := New(registry, "yue", "CTDDDA", WithCachePath(cacheDir)).Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if g.Name() != "CTDDDA" {
		t.Errorf("Expected graph CTDDDA, got %s", g.Name())
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Errorf("Expected 3 nodes and 2 edges, got %d and %d", g.NodeCount(), g.EdgeCount())
	}
	if g.Directed() {
		t.Error("Expected undirected graph by default")
	}
	if g.JobID == "" {
		t.Error("Expected a job ID")
	}
	if len(g.Citations) != 2 {
		t.Errorf("Expected 2 citations, got %v", g.Citations)
	}
	// The file landed in the cache directory
	if _, err := os.Stat(filepath.Join(cacheDir, "CTD_DDA.edgelist")); err != nil {
		t.Errorf("Cached file missing: %v", err)
	}
}

func TestRetrieve_UsesCacheOnSecondRun(t *testing.T) {
	var downloads atomic.Int32
	server := newDatasetServer(t, &downloads)
	defer server.Close()

	registry := newTestRegistry(t, server)
	cacheDir := t.TempDir()

	for i := 0; i < 2; i++ {
		if _, err := New(registry, "yue", "CTDDDA", WithCachePath(cacheDir)).Retrieve(context.Background()); err != nil {
			t.Fatalf("Retrieve %d failed: %v", i, err)
		}
	}
	if downloads.Load() != 1 {
		t.Errorf("Expected 1 download, got %d", downloads.Load())
	}
}

func TestRetrieve_ScrapedRepositoryWithArchive(t *testing.T) {
	server := newDatasetServer(t, nil)
	defer server.Close()

	registry := newTestRegistry(t, server)
	cacheDir := t.TempDir()

	// Partial name resolves through StoredGraphName; the edge list inside the
	// zip is found via the download report
	g, err := New(registry, "networkrepository", "soc-karate",
		WithCachePath(cacheDir),
		WithDirected(true),
	).Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if g.Name() != "SocKarate" {
		t.Errorf("Expected stored graph name SocKarate, got %s", g.Name())
	}
	if !g.Directed() {
		t.Error("Expected directed graph")
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 3 {
		t.Errorf("Expected 3 nodes and 3 edges, got %d and %d", g.NodeCount(), g.EdgeCount())
	}
}

func TestRetrieve_UnknownRepository(t *testing.T) {
	registry := repository.NewRegistry()
	_, err := New(registry, "nope", "graph").Retrieve(context.Background())
	if err == nil {
		t.Fatal("Expected error for unknown repository")
	}
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeRepository) {
		t.Errorf("Expected repository error, got %v", err)
	}
}

func TestRetrieve_UnknownGraph(t *testing.T) {
	server := newDatasetServer(t, nil)
	defer server.Close()

	registry := newTestRegistry(t, server)
	_, err := New(registry, "yue", "NotAGraph", WithCachePath(t.TempDir())).Retrieve(context.Background())
	if err == nil {
		t.Fatal("Expected error for unknown graph")
	}
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeCatalog) {
		t.Errorf("Expected catalog error, got %v", err)
	}
}

func TestRetrieve_LoadOverrides(t *testing.T) {
	server := newDatasetServer(t, nil)
	defer server.Close()

	registry := newTestRegistry(t, server)

	// Force a weight column that does not exist in the data by index; the
	// default weight then applies to every edge
	weightCol := 2
	g, err := New(registry, "yue", "CTDDDA",
		WithCachePath(t.TempDir()),
		WithLoadOverrides(graph.LoadOptions{
			WeightsColumnNumber: &weightCol,
			DefaultWeight:       0.5,
		}),
	).Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if !g.HasWeights() {
		t.Error("Expected weighted graph via overrides")
	}
}

func TestRetrieve_Progress(t *testing.T) {
	server := newDatasetServer(t, nil)
	defer server.Close()

	registry := newTestRegistry(t, server)

	var calls atomic.Int32
	_, err := New(registry, "yue", "CTDDDA",
		WithCachePath(t.TempDir()),
		WithProgress(func(completed, total int) { calls.Add(1) }),
	).Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected 1 progress call, got %d", calls.Load())
	}
}

func TestRetrieve_DownloadFailure(t *testing.T) {
	server := newDatasetServer(t, nil)
	registry := newTestRegistry(t, server)
	server.Close() // all downloads now fail

	_, err := New(registry, "yue", "CTDDDA", WithCachePath(t.TempDir())).Retrieve(context.Background())
	if err == nil {
		t.Fatal("Expected error when downloads fail")
	}
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeDownload) {
		t.Errorf("Expected download error, got %v", err)
	}
}
