// Package retrieval orchestrates automatic graph retrieval: it resolves a
// repository adapter, downloads the graph's files into a cache directory,
// runs the adapter's preprocessing callbacks, and loads the result into an
// in-memory graph carrying its citations.
package retrieval

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"graphmine/internal/download"
	"graphmine/internal/graph"
	"graphmine/internal/repository"
	pkgerrors "graphmine/pkg/errors"
	"graphmine/pkg/logger"
)

// RetrievedGraph describes one graph to retrieve and how.
type RetrievedGraph struct {
	registry  *repository.Registry
	repoPkg   string
	graphName string

	directed  bool
	verbose   bool
	cachePath string
	overrides graph.LoadOptions
	progress  download.ProgressFunc

	downloadOpts download.Options

	logger *zap.Logger
}

// Option configures a RetrievedGraph.
type Option func(*RetrievedGraph)

// WithDirected loads the graph as directed.
func WithDirected(directed bool) Option {
	return func(r *RetrievedGraph) { r.directed = directed }
}

// WithVerbose enables info-level progress logging during retrieval.
func WithVerbose(verbose bool) Option {
	return func(r *RetrievedGraph) { r.verbose = verbose }
}

// WithCachePath overrides the default "graphs/<package>" cache directory.
func WithCachePath(path string) Option {
	return func(r *RetrievedGraph) { r.cachePath = path }
}

// WithLoadOverrides overlays loader options on top of the adapter's.
func WithLoadOverrides(overrides graph.LoadOptions) Option {
	return func(r *RetrievedGraph) { r.overrides = overrides }
}

// WithProgress installs a download progress callback.
func WithProgress(progress download.ProgressFunc) Option {
	return func(r *RetrievedGraph) { r.progress = progress }
}

// WithDownloadOptions overrides the downloader configuration (workers,
// retries, user agent, HTTP client).
func WithDownloadOptions(opts download.Options) Option {
	return func(r *RetrievedGraph) { r.downloadOpts = opts }
}

// WithHTTPClient overrides just the downloader's HTTP client, keeping the
// other download options.
func WithHTTPClient(client download.HTTPClient) Option {
	return func(r *RetrievedGraph) { r.downloadOpts.Client = client }
}

// New prepares a retrieval for one graph from one repository package.
func New(registry *repository.Registry, repoPkg, graphName string, opts ...Option) *RetrievedGraph {
	r := &RetrievedGraph{
		registry:  registry,
		repoPkg:   repoPkg,
		graphName: graphName,
		logger:    logger.Named("retrieval"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cachePath == "" {
		r.cachePath = filepath.Join("graphs", repoPkg)
	}
	return r
}

// Retrieve downloads (or reuses) the graph's files and loads the graph.
// Unknown repositories and graphs fail before any I/O. Already-cached files
// are not fetched again.
func (r *RetrievedGraph) Retrieve(ctx context.Context) (*graph.Graph, error) {
	jobID := uuid.NewString()

	repo, err := r.registry.Get(r.repoPkg)
	if err != nil {
		return nil, err
	}
	stored := repo.StoredGraphName(r.graphName)

	urls, err := repo.URLs(ctx, stored)
	if err != nil {
		return nil, err
	}
	jobs := r.buildJobs(repo, stored, urls)

	if r.verbose {
		r.logger.Info("Retrieving graph",
			zap.String("job_id", jobID),
			zap.String("repository", repo.Name()),
			zap.String("graph", stored),
			zap.Int("files", len(jobs)))
	}

	downloader := download.New(r.downloadOpts)
	report, err := downloader.Fetch(ctx, jobs, r.progress)
	if err != nil {
		return nil, err
	}
	if !report.Ok() {
		return nil, report.FirstError()
	}

	for _, callback := range repo.Callbacks(stored) {
		if err := callback(ctx, r.cachePath); err != nil {
			return nil, err
		}
	}

	opts, err := repo.LoadOptions(stored)
	if err != nil {
		return nil, err
	}
	opts = opts.Merge(r.overrides)
	if err := r.resolvePaths(&opts, report); err != nil {
		return nil, err
	}

	g, err := graph.Load(stored, r.directed, opts)
	if err != nil {
		return nil, err
	}

	// A missing citation page should not lose an already loaded graph.
	citations, err := repo.Citations(ctx, stored)
	if err != nil {
		r.logger.Warn("Failed to collect citations",
			zap.String("graph", stored),
			zap.Error(err))
	}
	g.Citations = citations
	g.JobID = jobID

	if r.verbose {
		r.logger.Info("Graph retrieved",
			zap.String("job_id", jobID),
			zap.String("graph", stored),
			zap.Int("nodes", g.NodeCount()),
			zap.Int("edges", g.EdgeCount()),
			zap.Int("cache_hits", report.CacheHits()))
	}
	return g, nil
}

// buildJobs pairs each URL with its cache destination, preferring adapter
// supplied paths and falling back to the URL basename.
func (r *RetrievedGraph) buildJobs(repo repository.Repository, stored string, urls []string) []download.Job {
	paths := repo.Paths(stored, urls)
	jobs := make([]download.Job, len(urls))
	for i, url := range urls {
		target := filepath.Base(url)
		if i < len(paths) && paths[i] != "" {
			target = paths[i]
		}
		jobs[i] = download.Job{
			URL:     url,
			Path:    filepath.Join(r.cachePath, target),
			Extract: true,
		}
	}
	return jobs
}

// resolvePaths anchors the loader's relative paths under the cache directory.
// An empty edge path means the adapter could not know the file name up front
// (zip archives with internal layouts); it is resolved from the download
// report instead.
func (r *RetrievedGraph) resolvePaths(opts *graph.LoadOptions, report download.Report) error {
	if opts.EdgePath == "" {
		edgePath, err := edgeListCandidate(report)
		if err != nil {
			return err
		}
		opts.EdgePath = edgePath
	} else if !filepath.IsAbs(opts.EdgePath) {
		opts.EdgePath = filepath.Join(r.cachePath, opts.EdgePath)
	}
	if opts.NodePath != "" && !filepath.IsAbs(opts.NodePath) {
		opts.NodePath = filepath.Join(r.cachePath, opts.NodePath)
	}
	return nil
}

// edgeListExtensions orders candidate files from most to least likely to be
// the edge list.
var edgeListExtensions = []string{".edges", ".mtx", ".tsv", ".csv", ".txt"}

func edgeListCandidate(report download.Report) (string, error) {
	var candidates []string
	for _, result := range report.Results {
		if len(result.Extracted) > 0 {
			candidates = append(candidates, result.Extracted...)
		} else if !download.IsArchive(result.Path) {
			candidates = append(candidates, result.Path)
		}
	}

	for _, ext := range edgeListExtensions {
		for _, candidate := range candidates {
			if strings.HasSuffix(strings.ToLower(candidate), ext) {
				return candidate, nil
			}
		}
	}
	if len(candidates) > 0 {
		return candidates[0], nil
	}
	return "", pkgerrors.NewParseFailed("", 0, "no edge list candidate in download report", nil)
}
