package download

// FileResult records the outcome for a single job.
type FileResult struct {
	URL       string
	Path      string
	Bytes     int64
	CacheHit  bool
	Extracted []string
	Err       error
}

// Report aggregates the results of one Fetch call, in job order.
type Report struct {
	Results []FileResult
}

// Ok reports whether every job completed without error.
func (r Report) Ok() bool {
	for _, result := range r.Results {
		if result.Err != nil {
			return false
		}
	}
	return true
}

// FirstError returns the first failure, or nil.
func (r Report) FirstError() error {
	for _, result := range r.Results {
		if result.Err != nil {
			return result.Err
		}
	}
	return nil
}

// CacheHits counts jobs satisfied from the cache.
func (r Report) CacheHits() int {
	hits := 0
	for _, result := range r.Results {
		if result.CacheHit {
			hits++
		}
	}
	return hits
}
