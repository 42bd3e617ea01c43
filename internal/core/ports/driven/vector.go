package driven

import (
	"context"

	"github.com/custodia-labs/animerec/internal/core/domain"
)

// IndexEntry is one row of a similarity collection.
type IndexEntry struct {
	// Chunk carries the text, document back-reference and metadata.
	Chunk domain.Chunk

	// Embedding is the chunk's vector. The index owns it after Insert.
	Embedding []float32
}

// SimilarityIndex is a named, persisted collection of embedded chunks.
// Reads are safe for concurrent use; a single writer is assumed.
type SimilarityIndex interface {
	// Insert appends entries to the collection. Existing entries are never
	// replaced, so rebuilding the same corpus produces duplicates.
	Insert(ctx context.Context, entries []IndexEntry) error

	// Query returns up to k entries ordered by ascending cosine distance.
	Query(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error)

	// Probe counts entries, stopping at limit. A zero result means empty.
	Probe(ctx context.Context, limit int) (int, error)

	// Close releases resources.
	Close() error
}

// IndexOpener opens a collection stored under a directory.
// The directory layout is owned entirely by the implementation.
type IndexOpener interface {
	// Open returns the named collection under dir. When create is false the
	// collection must already exist and domain.ErrNotFound is returned otherwise.
	Open(ctx context.Context, dir, collection string, create bool) (SimilarityIndex, error)
}
