// Package services wires the retrieval stack together from configuration:
// the adapter registry built from catalog files, the downloader settings
// shared by every retrieval, and the optional Neo4j exporter.
package services

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"graphmine/internal/download"
	"graphmine/internal/graph"
	"graphmine/internal/repository"
	"graphmine/internal/retrieval"
	"graphmine/internal/store"
	"graphmine/pkg/config"
	pkgerrors "graphmine/pkg/errors"
	"graphmine/pkg/logger"
)

// ServiceManager owns the long-lived pieces of the retrieval service.
type ServiceManager struct {
	cfg      *config.Config
	registry *repository.Registry
	client   *http.Client

	mu       sync.Mutex
	exporter *store.Exporter

	logger *zap.Logger
}

// NewServiceManager builds the registry and shared HTTP client from config.
// Catalog-backed adapters whose catalog file is missing are skipped with a
// warning so one absent catalog does not take the whole service down.
func NewServiceManager(cfg *config.Config) *ServiceManager {
	sm := &ServiceManager{
		cfg:      cfg,
		registry: repository.NewRegistry(),
		client:   &http.Client{Timeout: cfg.HTTPTimeout},
		logger:   logger.Named("services"),
	}

	sm.registerCatalogAdapter("yue", func(path string) (repository.Repository, error) {
		return repository.NewYue(path)
	})
	sm.registerCatalogAdapter("string", func(path string) (repository.Repository, error) {
		return repository.NewSTRING(path)
	})
	sm.registerCatalogAdapter("linqs", func(path string) (repository.Repository, error) {
		return repository.NewLINQS(path)
	})

	sm.registry.Register(repository.NewNetworkRepository(repository.NetworkRepositoryOptions{
		Client:    sm.client,
		UserAgent: cfg.UserAgent,
		From:      cfg.ContactEmail,
	}))

	return sm
}

func (sm *ServiceManager) registerCatalogAdapter(pkg string, build func(path string) (repository.Repository, error)) {
	path := filepath.Join(sm.cfg.CatalogDir, pkg+".json")
	if _, err := os.Stat(path); err != nil {
		if compressed := path + ".gz"; fileReadable(compressed) {
			path = compressed
		} else {
			sm.logger.Warn("Catalog file missing, adapter disabled",
				zap.String("repository", pkg),
				zap.String("path", path))
			return
		}
	}
	repo, err := build(path)
	if err != nil {
		sm.logger.Error("Failed to load catalog, adapter disabled",
			zap.String("repository", pkg),
			zap.String("path", path),
			zap.Error(err))
		return
	}
	sm.registry.Register(repo)
}

func fileReadable(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Registry exposes the adapter registry.
func (sm *ServiceManager) Registry() *repository.Registry {
	return sm.registry
}

// NewRetrieval prepares a retrieval for one graph using the service-wide
// downloader configuration, applying any extra options on top.
func (sm *ServiceManager) NewRetrieval(repoPkg, graphName string, opts ...retrieval.Option) *retrieval.RetrievedGraph {
	base := []retrieval.Option{
		retrieval.WithCachePath(filepath.Join(sm.cfg.CacheRoot, repoPkg)),
		retrieval.WithDownloadOptions(download.Options{
			Workers:   sm.cfg.DownloadWorkers,
			UserAgent: sm.cfg.UserAgent,
			From:      sm.cfg.ContactEmail,
			Client:    sm.client,
		}),
	}
	return retrieval.New(sm.registry, repoPkg, graphName, append(base, opts...)...)
}

// Exporter lazily connects to the configured Neo4j target. Returns a config
// error when no target is configured.
func (sm *ServiceManager) Exporter(ctx context.Context) (*store.Exporter, error) {
	if !sm.cfg.ExportEnabled() {
		return nil, pkgerrors.NewConfigMissingRequired("NEO4J_URI")
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.exporter != nil {
		return sm.exporter, nil
	}

	driver, err := neo4j.NewDriverWithContext(
		sm.cfg.Neo4jURI,
		neo4j.BasicAuth(sm.cfg.Neo4jUser, sm.cfg.Neo4jPassword, ""),
	)
	if err != nil {
		return nil, pkgerrors.NewStoreConnectionFailed(sm.cfg.Neo4jURI, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, pkgerrors.NewStoreConnectionFailed(sm.cfg.Neo4jURI, err)
	}

	sm.exporter = store.NewExporter(driver)
	return sm.exporter, nil
}

// Export pushes a retrieved graph to Neo4j with the configured batch size.
func (sm *ServiceManager) Export(ctx context.Context, g *graph.Graph) error {
	exporter, err := sm.Exporter(ctx)
	if err != nil {
		return err
	}
	return exporter.Export(ctx, g, sm.cfg.ExportBatchSize)
}

// Shutdown releases the exporter connection if one was opened.
func (sm *ServiceManager) Shutdown() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.exporter != nil {
		if err := sm.exporter.Close(); err != nil {
			sm.logger.Error("Failed to close exporter", zap.Error(err))
		}
		sm.exporter = nil
	}
	sm.logger.Info("Service manager shut down")
}
