package driving

import (
	"context"

	"github.com/custodia-labs/animerec/internal/core/domain"
)

// RetrievalService exposes top-k nearest-neighbour retrieval.
type RetrievalService interface {
	// Retrieve returns the k chunks closest to the query.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)
}

// RecommendationService answers free-text queries grounded in retrieved chunks.
type RecommendationService interface {
	// Recommend returns the generated recommendation text verbatim.
	Recommend(ctx context.Context, query string) (string, error)

	// RecommendWithSources also returns the chunks the answer was grounded in.
	RecommendWithSources(ctx context.Context, query string) (*domain.Recommendation, error)
}
