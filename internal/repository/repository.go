// Package repository contains the adapters that map each public dataset
// repository's metadata (catalogs, scraped listings) onto the inputs the
// downloader and graph loader need: URLs, target paths, citations, load
// options, and post-download preprocessing callbacks.
package repository

import (
	"context"
	"sort"
	"sync"

	"graphmine/internal/graph"
	pkgerrors "graphmine/pkg/errors"
)

// Callback is a post-download preprocessing step, run with the graph's cache
// directory after all files are downloaded and extracted. LINQS uses these to
// convert incidence matrices into edge and node lists.
type Callback func(ctx context.Context, cacheDir string) error

// Repository is a single dataset repository adapter.
type Repository interface {
	// Name is the formatted repository name, e.g. "NetworkRepository".
	Name() string

	// PackageName is the lowercase name used as the cache subdirectory.
	PackageName() string

	// GraphNames lists the graphs the repository serves. May require network
	// access for scraped repositories.
	GraphNames(ctx context.Context) ([]string, error)

	// StoredGraphName turns a partial graph name into the identifier-safe
	// stored name.
	StoredGraphName(partial string) string

	// URLs returns the download URLs for a graph.
	URLs(ctx context.Context, graphName string) ([]string, error)

	// Paths returns the target paths, relative to the cache directory, for
	// each URL. A nil return means paths derive from the URL basenames.
	Paths(graphName string, urls []string) []string

	// Citations returns the citations to surface with a retrieved graph.
	Citations(ctx context.Context, graphName string) ([]string, error)

	// LoadOptions returns the loader arguments for a graph. Paths inside are
	// relative to the cache directory; an empty edge path means the loader
	// input must be resolved from the download report.
	LoadOptions(graphName string) (graph.LoadOptions, error)

	// Callbacks returns preprocessing steps to run before loading.
	Callbacks(graphName string) []Callback
}

// Registry maps package names to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Repository
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Repository)}
}

// Register adds an adapter, replacing any previous one with the same package
// name.
func (r *Registry) Register(repo Repository) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[repo.PackageName()] = repo
}

// Get returns the adapter for a package name.
func (r *Registry) Get(packageName string) (Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	repo, ok := r.adapters[packageName]
	if !ok {
		return nil, pkgerrors.NewRepositoryNotFound(packageName)
	}
	return repo, nil
}

// PackageNames returns registered package names in sorted order.
func (r *Registry) PackageNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
