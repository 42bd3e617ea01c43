package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/animerec/internal/core/ports/driven"
)

// Ensure ThrottledEmbedder implements the interface.
var _ driven.EmbeddingService = (*ThrottledEmbedder)(nil)

// ThrottledEmbedder limits the request rate to a remote embedder.
// Each Embed or EmbedBatch call consumes one token.
type ThrottledEmbedder struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// NewThrottledEmbedder allows rps requests per second with a burst of
// max(1, rps).
func NewThrottledEmbedder(inner driven.EmbeddingService, rps float64) *ThrottledEmbedder {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &ThrottledEmbedder{
		EmbeddingService: inner,
		limiter:          rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Embed waits for a token, then embeds text.
func (t *ThrottledEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding throttle: %w", err)
	}
	return t.EmbeddingService.Embed(ctx, text)
}

// EmbedBatch waits for a token, then embeds texts in one request.
func (t *ThrottledEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding throttle: %w", err)
	}
	return t.EmbeddingService.EmbedBatch(ctx, texts)
}
