package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "graphmine/pkg/errors"
)

const yueTestCatalog = `{
	"repository": "Yue",
	"graphs": {
		"CTDDDA": {
			"urls": ["https://example.com/CTD_DDA.edgelist"],
			"citations": ["@article{davis2019ctd}"],
			"arguments": {
				"edge_path": "CTD_DDA.edgelist",
				"edge_separator": " ",
				"edge_header": false
			}
		}
	}
}`

func writeTestCatalog(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
	return path
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	yue, err := NewYue(writeTestCatalog(t, yueTestCatalog))
	if err != nil {
		t.Fatalf("NewYue failed: %v", err)
	}
	registry.Register(yue)
	registry.Register(NewNetworkRepository(NetworkRepositoryOptions{}))

	names := registry.PackageNames()
	if len(names) != 2 || names[0] != "networkrepository" || names[1] != "yue" {
		t.Errorf("Expected sorted package names, got %v", names)
	}

	repo, err := registry.Get("yue")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if repo.Name() != "Yue" {
		t.Errorf("Expected Yue, got %s", repo.Name())
	}

	_, err = registry.Get("unknown")
	if err == nil {
		t.Fatal("Expected error for unknown repository")
	}
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeRepository) {
		t.Errorf("Expected repository error, got %v", err)
	}
}

func TestYue(t *testing.T) {
	yue, err := NewYue(writeTestCatalog(t, yueTestCatalog))
	if err != nil {
		t.Fatalf("NewYue failed: %v", err)
	}
	ctx := context.Background()

	names, err := yue.GraphNames(ctx)
	if err != nil || len(names) != 1 || names[0] != "CTDDDA" {
		t.Errorf("Expected [CTDDDA], got %v (%v)", names, err)
	}

	// Catalog keys are already the stored names
	if got := yue.StoredGraphName("CTDDDA"); got != "CTDDDA" {
		t.Errorf("Expected identity stored name, got %q", got)
	}

	urls, err := yue.URLs(ctx, "CTDDDA")
	if err != nil || len(urls) != 1 {
		t.Fatalf("URLs failed: %v (%v)", urls, err)
	}

	citations, err := yue.Citations(ctx, "CTDDDA")
	if err != nil {
		t.Fatalf("Citations failed: %v", err)
	}
	// Repository bibliography comes first, then the entry's own citations
	if len(citations) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(citations))
	}
	if citations[0] != yueBibliography {
		t.Error("Expected repository bibliography first")
	}
	if citations[1] != "@article{davis2019ctd}" {
		t.Errorf("Expected entry citation, got %q", citations[1])
	}

	opts, err := yue.LoadOptions("CTDDDA")
	if err != nil {
		t.Fatalf("LoadOptions failed: %v", err)
	}
	if opts.EdgePath != "CTD_DDA.edgelist" || opts.EdgeSeparator != " " {
		t.Errorf("Unexpected load options: %+v", opts)
	}

	if cb := yue.Callbacks("CTDDDA"); cb != nil {
		t.Error("Expected no callbacks for catalog-only repository")
	}

	_, err = yue.URLs(ctx, "Missing")
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeCatalog) {
		t.Errorf("Expected catalog error for unknown graph, got %v", err)
	}
}

func TestSTRING_StoredGraphName(t *testing.T) {
	s := &STRING{}
	cases := []struct {
		partial string
		want    string
	}{
		{"Homo sapiens", "HomoSapiens"},
		{"homo sapiens", "HomoSapiens"},
		{"Escherichia coli K-12", "EscherichiaColiK12"},
		{"Saccharomyces_cerevisiae", "SaccharomycesCerevisiae"},
		{"HomoSapiens", "HomoSapiens"},
	}
	for _, tc := range cases {
		if got := s.StoredGraphName(tc.partial); got != tc.want {
			t.Errorf("StoredGraphName(%q) = %q, want %q", tc.partial, got, tc.want)
		}
	}
}

func TestNetworkRepository_StoredGraphName(t *testing.T) {
	n := NewNetworkRepository(NetworkRepositoryOptions{})
	cases := []struct {
		partial string
		want    string
	}{
		{"soc-flickr", "SocFlickr"},
		{"ca-AstroPh", "CaAstroph"},
		{"web-google", "WebGoogle"},
		{"3-cycle", "Graph3Cycle"},
		{"soc--dolphins", "SocDolphins"},
	}
	for _, tc := range cases {
		if got := n.StoredGraphName(tc.partial); got != tc.want {
			t.Errorf("StoredGraphName(%q) = %q, want %q", tc.partial, got, tc.want)
		}
	}
}
