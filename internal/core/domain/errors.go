package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrPipeline is the root of the pipeline error taxonomy.
// Every typed error in this file matches it with errors.Is.
var ErrPipeline = errors.New("pipeline error")

// Error families. Each typed error matches exactly one family.
var (
	// ErrDataLoad indicates the catalog could not be loaded or normalised.
	ErrDataLoad = errors.New("data load failed")

	// ErrVectorStoreBuild indicates the similarity index could not be built.
	ErrVectorStoreBuild = errors.New("vector store build failed")

	// ErrVectorStoreNotAvailable indicates the similarity index is missing or empty.
	ErrVectorStoreNotAvailable = errors.New("vector store not available")

	// ErrRecommendation indicates a recommendation request failed.
	ErrRecommendation = errors.New("recommendation failed")

	// ErrConfig indicates invalid configuration detected at construction time.
	ErrConfig = errors.New("invalid configuration")

	// ErrTimeout indicates a bounded call to an external collaborator expired.
	ErrTimeout = errors.New("operation timed out")
)

// Causes carried inside the typed errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown provider or search type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the completion service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrNoDocumentsLoaded indicates the processed catalog yielded no documents.
	ErrNoDocumentsLoaded = errors.New("no documents loaded")

	// ErrNoChunksProduced indicates chunking produced nothing to embed.
	ErrNoChunksProduced = errors.New("text splitting produced no chunks")

	// ErrVectorStoreEmptyAfterBuild indicates the post-build probe found no entries
	// even though every insert reported success.
	ErrVectorStoreEmptyAfterBuild = errors.New("vector store appears empty after build")

	// ErrIndexLocked indicates another builder holds the index write lock.
	ErrIndexLocked = errors.New("index is locked by another builder")
)

// DataLoadError is the generic normalisation failure.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("data load failed: %s", e.Path)
	}
	return fmt.Sprintf("data load failed: %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Is reports membership of the data-load family.
func (e *DataLoadError) Is(target error) bool {
	return target == ErrPipeline || target == ErrDataLoad
}

// DataSourceNotFoundError reports a catalog file that does not exist.
type DataSourceNotFoundError struct {
	Path string
	Err  error
}

func (e *DataSourceNotFoundError) Error() string {
	return fmt.Sprintf("data source not found: %s", e.Path)
}

func (e *DataSourceNotFoundError) Unwrap() error { return e.Err }

// Is reports membership of the data-load family.
func (e *DataSourceNotFoundError) Is(target error) bool {
	return target == ErrPipeline || target == ErrDataLoad || target == ErrNotFound
}

// EmptyDataError reports a catalog file with no header row.
type EmptyDataError struct {
	Path string
}

func (e *EmptyDataError) Error() string {
	return fmt.Sprintf("no data found in file: %s", e.Path)
}

// Is reports membership of the data-load family.
func (e *EmptyDataError) Is(target error) bool {
	return target == ErrPipeline || target == ErrDataLoad
}

// MissingColumnsError reports required catalog columns absent from the header.
type MissingColumnsError struct {
	Path    string
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns in %s: %s", e.Path, strings.Join(e.Missing, ", "))
}

// Is reports membership of the data-load family.
func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrPipeline || target == ErrDataLoad
}

// Build stages reported by VectorStoreBuildError.
const (
	BuildStageLock   = "lock"
	BuildStageLoad   = "load"
	BuildStageChunk  = "chunk"
	BuildStageOpen   = "open"
	BuildStageEmbed  = "embed"
	BuildStageInsert = "insert"
	BuildStageProbe  = "probe"
)

// VectorStoreBuildError wraps any failure that happens while building the index.
type VectorStoreBuildError struct {
	Stage string
	Err   error
}

func (e *VectorStoreBuildError) Error() string {
	return fmt.Sprintf("error while building vector store (%s): %v", e.Stage, e.Err)
}

func (e *VectorStoreBuildError) Unwrap() error { return e.Err }

// Is reports membership of the build family.
func (e *VectorStoreBuildError) Is(target error) bool {
	return target == ErrPipeline || target == ErrVectorStoreBuild
}

// VectorStoreNotAvailableError reports a missing or empty index on the serving path.
type VectorStoreNotAvailableError struct {
	PersistDir string
	Collection string
}

func (e *VectorStoreNotAvailableError) Error() string {
	return fmt.Sprintf(
		"vector store not available at %q (collection %q): run 'animerec build' first",
		e.PersistDir, e.Collection)
}

// Is reports membership of the not-available family.
func (e *VectorStoreNotAvailableError) Is(target error) bool {
	return target == ErrPipeline || target == ErrVectorStoreNotAvailable
}

// RecommendationError wraps a retrieval or completion failure with the query
// that triggered it.
type RecommendationError struct {
	Query string
	Err   error
}

func (e *RecommendationError) Error() string {
	return fmt.Sprintf("error during getting recommendation for %q: %v", e.Query, e.Err)
}

func (e *RecommendationError) Unwrap() error { return e.Err }

// Is reports membership of the recommendation family.
func (e *RecommendationError) Is(target error) bool {
	return target == ErrPipeline || target == ErrRecommendation
}

// ConfigError reports an invalid option rejected at construction time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Is reports membership of the config family.
func (e *ConfigError) Is(target error) bool {
	return target == ErrPipeline || target == ErrConfig || target == ErrInvalidInput
}

// TimeoutError reports a bounded external call that ran out of time.
// Timeouts are retryable.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Is reports membership of the timeout family.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrPipeline || target == ErrTimeout
}

// Retryable is always true for timeouts.
func (e *TimeoutError) Retryable() bool { return true }

// IsRetryable reports whether any error in the chain declares itself retryable.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
