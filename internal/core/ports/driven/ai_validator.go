package driven

import (
	"context"

	"github.com/custodia-labs/animerec/internal/core/domain"
)

// AIConfigValidator checks provider settings against the live services.
type AIConfigValidator interface {
	// ValidateEmbedding returns nil when the embedding provider answers a ping.
	ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error

	// ValidateLLM returns nil when the completion provider answers a ping.
	ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error
}
