// Package catalog loads the per-repository dataset catalogs: JSON documents
// mapping graph names to their download URLs, citations, and load arguments.
// Catalog files may be stored plain or gzip-compressed (.json.gz).
package catalog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"graphmine/internal/graph"
	pkgerrors "graphmine/pkg/errors"
)

// Entry describes one graph in a catalog.
type Entry struct {
	// URLs are the files to download for this graph.
	URLs []string `json:"urls"`

	// Paths optionally pins each URL to a target path relative to the cache
	// directory. When empty, paths are derived from the URL basenames.
	Paths []string `json:"paths,omitempty"`

	// Citations to surface alongside the retrieved graph.
	Citations []string `json:"citations,omitempty"`

	// Arguments drive the graph loader once files are in the cache.
	Arguments graph.LoadOptions `json:"arguments"`
}

// Catalog is an immutable set of entries for one repository.
type Catalog struct {
	repository string
	entries    map[string]Entry
	names      []string
}

type catalogFile struct {
	Repository string           `json:"repository"`
	Graphs     map[string]Entry `json:"graphs"`
}

// Load reads a catalog from a JSON file; files ending in .gz are transparently
// decompressed.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.NewCatalogLoadFailed(path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, pkgerrors.NewCatalogLoadFailed(path, err)
		}
		defer gz.Close()
		reader = gz
	}

	return Parse(reader, path)
}

// Parse decodes a catalog document. The path argument is only used in error
// messages.
func Parse(r io.Reader, path string) (*Catalog, error) {
	var doc catalogFile
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, pkgerrors.NewCatalogLoadFailed(path, err)
	}
	if doc.Repository == "" {
		return nil, pkgerrors.NewCatalogLoadFailed(path, fmt.Errorf("missing repository name"))
	}
	if len(doc.Graphs) == 0 {
		return nil, pkgerrors.NewCatalogLoadFailed(path, fmt.Errorf("catalog has no graphs"))
	}

	names := make([]string, 0, len(doc.Graphs))
	for name, entry := range doc.Graphs {
		if len(entry.URLs) == 0 {
			return nil, pkgerrors.NewCatalogLoadFailed(path, fmt.Errorf("graph %q has no urls", name))
		}
		if len(entry.Paths) > 0 && len(entry.Paths) != len(entry.URLs) {
			return nil, pkgerrors.NewCatalogLoadFailed(path,
				fmt.Errorf("graph %q has %d paths for %d urls", name, len(entry.Paths), len(entry.URLs)))
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return &Catalog{
		repository: doc.Repository,
		entries:    doc.Graphs,
		names:      names,
	}, nil
}

// Repository returns the formatted repository name the catalog belongs to.
func (c *Catalog) Repository() string { return c.repository }

// Names returns all graph names in sorted order.
func (c *Catalog) Names() []string { return c.names }

// Get returns the entry for a graph name.
func (c *Catalog) Get(name string) (Entry, error) {
	entry, ok := c.entries[name]
	if !ok {
		return Entry{}, pkgerrors.NewGraphNotFound(c.repository, name)
	}
	return entry, nil
}

// Has reports whether the catalog contains the graph.
func (c *Catalog) Has(name string) bool {
	_, ok := c.entries[name]
	return ok
}
