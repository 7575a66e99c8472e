package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeCatalog represents catalog loading/lookup errors
	ErrorTypeCatalog ErrorType = "catalog"
	// ErrorTypeRepository represents repository adapter errors
	ErrorTypeRepository ErrorType = "repository"
	// ErrorTypeDownload represents download/cache errors
	ErrorTypeDownload ErrorType = "download"
	// ErrorTypeParse represents edge/node list parsing errors
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeGraph represents in-memory graph construction errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeStore represents graph export (Neo4j) errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Category returns the error category; promoted to every typed error that
// embeds *BaseError, which is what IsErrorType relies on.
func (e *BaseError) Category() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Catalog Errors

// ErrCatalogLoadFailed is returned when a catalog file cannot be loaded
type ErrCatalogLoadFailed struct {
	*BaseError
	Path string
}

func NewCatalogLoadFailed(path string, err error) *ErrCatalogLoadFailed {
	return &ErrCatalogLoadFailed{
		BaseError: NewBaseError(ErrorTypeCatalog, fmt.Sprintf("failed to load catalog: %s", path), err),
		Path:      path,
	}
}

// ErrGraphNotFound is returned when a graph is not present in a catalog or listing
type ErrGraphNotFound struct {
	*BaseError
	Repository string
	GraphName  string
}

func NewGraphNotFound(repository, graphName string) *ErrGraphNotFound {
	return &ErrGraphNotFound{
		BaseError:  NewBaseError(ErrorTypeCatalog, fmt.Sprintf("graph not found in %s: %s", repository, graphName), nil),
		Repository: repository,
		GraphName:  graphName,
	}
}

// Repository Errors

// ErrRepositoryNotFound is returned when no adapter is registered for a package name
type ErrRepositoryNotFound struct {
	*BaseError
	PackageName string
}

func NewRepositoryNotFound(packageName string) *ErrRepositoryNotFound {
	return &ErrRepositoryNotFound{
		BaseError:   NewBaseError(ErrorTypeRepository, fmt.Sprintf("unknown repository: %s", packageName), nil),
		PackageName: packageName,
	}
}

// ErrListingFailed is returned when a repository listing cannot be retrieved
type ErrListingFailed struct {
	*BaseError
	Repository string
	URL        string
}

func NewListingFailed(repository, url string, err error) *ErrListingFailed {
	return &ErrListingFailed{
		BaseError:  NewBaseError(ErrorTypeRepository, fmt.Sprintf("failed to list graphs from %s", repository), err),
		Repository: repository,
		URL:        url,
	}
}

// Download Errors

// ErrDownloadFailed is returned when a download does not complete
type ErrDownloadFailed struct {
	*BaseError
	URL        string
	StatusCode int
}

func NewDownloadFailed(url string, statusCode int, err error) *ErrDownloadFailed {
	return &ErrDownloadFailed{
		BaseError:  NewBaseError(ErrorTypeDownload, fmt.Sprintf("download failed: %s", url), err),
		URL:        url,
		StatusCode: statusCode,
	}
}

// ErrChecksumMismatch is returned when a downloaded file fails verification
type ErrChecksumMismatch struct {
	*BaseError
	Path     string
	Expected string
	Actual   string
}

func NewChecksumMismatch(path, expected, actual string) *ErrChecksumMismatch {
	return &ErrChecksumMismatch{
		BaseError: NewBaseError(ErrorTypeDownload, fmt.Sprintf("checksum mismatch: %s", path), nil),
		Path:      path,
		Expected:  expected,
		Actual:    actual,
	}
}

// ErrUnsupportedArchive is returned for archive formats the extractor does not handle
type ErrUnsupportedArchive struct {
	*BaseError
	Path string
}

func NewUnsupportedArchive(path string) *ErrUnsupportedArchive {
	return &ErrUnsupportedArchive{
		BaseError: NewBaseError(ErrorTypeDownload, fmt.Sprintf("unsupported archive format: %s", path), nil),
		Path:      path,
	}
}

// Parse Errors

// ErrParseFailed is returned when an edge or node list cannot be parsed
type ErrParseFailed struct {
	*BaseError
	Path string
	Line int
}

func NewParseFailed(path string, line int, reason string, err error) *ErrParseFailed {
	message := fmt.Sprintf("failed to parse %s: %s", path, reason)
	if line > 0 {
		message = fmt.Sprintf("failed to parse %s (line %d): %s", path, line, reason)
	}
	return &ErrParseFailed{
		BaseError: NewBaseError(ErrorTypeParse, message, err),
		Path:      path,
		Line:      line,
	}
}

// Graph Errors

// ErrEmptyGraph is returned when loading produced no edges
type ErrEmptyGraph struct {
	*BaseError
	GraphName string
}

func NewEmptyGraph(graphName string) *ErrEmptyGraph {
	return &ErrEmptyGraph{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("graph has no edges: %s", graphName), nil),
		GraphName: graphName,
	}
}

// ErrNodeNotFound is returned when an operation references an unknown node
type ErrNodeNotFound struct {
	*BaseError
	GraphName string
	NodeName  string
}

func NewNodeNotFound(graphName, nodeName string) *ErrNodeNotFound {
	return &ErrNodeNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("node not found in %s: %s", graphName, nodeName), nil),
		GraphName: graphName,
		NodeName:  nodeName,
	}
}

// Store Errors

// ErrStoreConnectionFailed is returned when the Neo4j export target is unreachable
type ErrStoreConnectionFailed struct {
	*BaseError
	URI string
}

func NewStoreConnectionFailed(uri string, err error) *ErrStoreConnectionFailed {
	return &ErrStoreConnectionFailed{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrStoreQueryFailed is returned when an export query fails
type ErrStoreQueryFailed struct {
	*BaseError
	Query string
}

func NewStoreQueryFailed(query string, err error) *ErrStoreQueryFailed {
	return &ErrStoreQueryFailed{
		BaseError: NewBaseError(ErrorTypeStore, "export query failed", err),
		Query:     query,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if categorized, ok := err.(interface{ Category() ErrorType }); ok {
		return categorized.Category() == errType
	}
	if wrapper, ok := err.(interface{ Unwrap() error }); ok {
		if inner := wrapper.Unwrap(); inner != nil {
			return IsErrorType(inner, errType)
		}
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	if dlErr, ok := err.(*ErrDownloadFailed); ok {
		// Client errors will not change on retry; server errors and
		// transport failures might
		return dlErr.StatusCode == 0 || dlErr.StatusCode >= 500
	}
	// Export target connections come and go
	if IsErrorType(err, ErrorTypeStore) {
		return true
	}
	return false
}
