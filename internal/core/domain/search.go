package domain

import "time"

// SearchType selects the nearest-neighbour strategy used by a retriever.
type SearchType string

// Available search types.
const (
	// SearchTypeSimilarity ranks entries by ascending cosine distance.
	SearchTypeSimilarity SearchType = "similarity"
)

// DefaultRetrievalK is the number of chunks retrieved when none is configured.
const DefaultRetrievalK = 4

// IsValid returns true if the search type is recognised.
func (t SearchType) IsValid() bool {
	switch t {
	case SearchTypeSimilarity:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t SearchType) String() string {
	return string(t)
}

// AllSearchTypes returns every supported search type.
func AllSearchTypes() []SearchType {
	return []SearchType{SearchTypeSimilarity}
}

// RetrievedChunk is a single nearest-neighbour hit.
type RetrievedChunk struct {
	// Chunk is the stored chunk text and metadata.
	Chunk Chunk

	// Distance is the cosine distance to the query (0 = identical direction).
	Distance float64
}

// BuildResult summarises one index build pass.
type BuildResult struct {
	PersistDir string
	Collection string
	Documents  int
	Chunks     int
	Inserted   int
	Duration   time.Duration
}

// Recommendation is a generated answer together with the chunks that grounded it.
type Recommendation struct {
	Query   string
	Answer  string
	Sources []RetrievedChunk
}
