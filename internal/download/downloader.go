// Package download implements the generic downloader/cache component that the
// repository adapters feed: bounded-concurrency fetches, atomic writes into a
// cache directory, checksum verification, retry with backoff, and archive
// extraction, all summarized in a per-file report.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	pkgerrors "graphmine/pkg/errors"
	"graphmine/pkg/logger"
)

// HTTPClient interface allows injecting mock HTTP clients for testing
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Job is a single file to bring into the cache.
type Job struct {
	// URL to download from.
	URL string
	// Path is the absolute destination path.
	Path string
	// SHA256, when set, is verified against the downloaded (or cached) file.
	SHA256 string
	// Extract unpacks the file next to itself when it is a known archive.
	Extract bool
}

// ProgressFunc is called as jobs finish, with completed and total counts.
type ProgressFunc func(completed, total int)

// NoRetries disables retrying entirely; a zero Retries selects the default.
const NoRetries = -1

// Options configures a Downloader.
type Options struct {
	// Workers bounds concurrent downloads. Default 4.
	Workers int
	// Retries is how many times a retryable failure is reattempted.
	// Default 2; NoRetries gives a single attempt.
	Retries int
	// Backoff is the base delay between attempts, doubled each retry.
	// Default 500ms.
	Backoff time.Duration
	// UserAgent is sent with every request.
	UserAgent string
	// From is sent in the From header; some dataset mirrors ask for a contact.
	From string
	// Client defaults to an http.Client with a 60s timeout.
	Client HTTPClient
}

// Downloader fetches dataset files into a local cache.
type Downloader struct {
	opts   Options
	client HTTPClient
	logger *zap.Logger
}

// New creates a Downloader, filling unset options with defaults.
func New(opts Options) *Downloader {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	switch {
	case opts.Retries == 0:
		opts.Retries = 2
	case opts.Retries < 0:
		opts.Retries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "graphmine/1.0"
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Downloader{
		opts:   opts,
		client: client,
		logger: logger.Named("download"),
	}
}

// Fetch downloads all jobs with bounded concurrency and returns a report with
// one result per job, in job order. Individual failures are recorded in the
// report; only context cancellation aborts the whole batch.
func (d *Downloader) Fetch(ctx context.Context, jobs []Job, progress ProgressFunc) (Report, error) {
	report := Report{Results: make([]FileResult, len(jobs))}
	if len(jobs) == 0 {
		return report, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)

	var mu sync.Mutex
	completed := 0

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return pkgerrors.NewContextCancelled("download "+job.URL, err)
			}

			result := d.fetchOne(gctx, job)

			mu.Lock()
			report.Results[i] = result
			completed++
			done := completed
			mu.Unlock()

			if progress != nil {
				progress(done, len(jobs))
			}
			if result.Err != nil && gctx.Err() != nil {
				return pkgerrors.NewContextCancelled("download "+job.URL, gctx.Err())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

func (d *Downloader) fetchOne(ctx context.Context, job Job) FileResult {
	result := FileResult{URL: job.URL, Path: job.Path}

	if size, ok := d.cached(job); ok {
		d.logger.Debug("Cache hit", zap.String("path", job.Path), zap.Int64("bytes", size))
		result.Bytes = size
		result.CacheHit = true
	} else {
		size, err := d.downloadWithRetry(ctx, job)
		if err != nil {
			result.Err = err
			return result
		}
		result.Bytes = size
	}

	if job.Extract && IsArchive(job.Path) {
		outputs, err := Extract(job.Path, filepath.Dir(job.Path))
		if err != nil {
			result.Err = err
			return result
		}
		result.Extracted = outputs
	}
	return result
}

// cached reports whether the destination already holds a usable file. When
// the job carries a checksum a mismatching file is treated as absent so it
// gets re-downloaded.
func (d *Downloader) cached(job Job) (int64, bool) {
	info, err := os.Stat(job.Path)
	if err != nil || info.Size() == 0 {
		return 0, false
	}
	if job.SHA256 != "" {
		actual, err := fileSHA256(job.Path)
		if err != nil || actual != job.SHA256 {
			return 0, false
		}
	}
	return info.Size(), true
}

func (d *Downloader) downloadWithRetry(ctx context.Context, job Job) (int64, error) {
	var lastErr error
	backoff := d.opts.Backoff

	for attempt := 0; attempt <= d.opts.Retries; attempt++ {
		if attempt > 0 {
			d.logger.Warn("Retrying download",
				zap.String("url", job.URL),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return 0, pkgerrors.NewContextCancelled("download "+job.URL, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		size, err := d.download(ctx, job)
		if err == nil {
			return size, nil
		}
		lastErr = err
		if !pkgerrors.IsRetryable(err) {
			return 0, err
		}
	}
	return 0, lastErr
}

func (d *Downloader) download(ctx context.Context, job Job) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return 0, pkgerrors.NewDownloadFailed(job.URL, 0, err)
	}
	req.Header.Set("User-Agent", d.opts.UserAgent)
	if d.opts.From != "" {
		req.Header.Set("From", d.opts.From)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, pkgerrors.NewDownloadFailed(job.URL, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, pkgerrors.NewDownloadFailed(job.URL, resp.StatusCode,
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	if err := os.MkdirAll(filepath.Dir(job.Path), 0o755); err != nil {
		return 0, pkgerrors.NewDownloadFailed(job.URL, 0, err)
	}

	// Write to a temp file and rename so a crashed download never leaves a
	// truncated file that would later count as a cache hit.
	tmp := job.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, pkgerrors.NewDownloadFailed(job.URL, 0, err)
	}

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, hash), resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return 0, pkgerrors.NewDownloadFailed(job.URL, 0, err)
	}

	if job.SHA256 != "" {
		actual := hex.EncodeToString(hash.Sum(nil))
		if actual != job.SHA256 {
			_ = os.Remove(tmp)
			return 0, pkgerrors.NewChecksumMismatch(job.Path, job.SHA256, actual)
		}
	}

	if err := os.Rename(tmp, job.Path); err != nil {
		_ = os.Remove(tmp)
		return 0, pkgerrors.NewDownloadFailed(job.URL, 0, err)
	}

	d.logger.Info("Downloaded",
		zap.String("url", job.URL),
		zap.String("path", job.Path),
		zap.Int64("bytes", size))
	return size, nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
