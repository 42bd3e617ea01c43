// Package whitespace folds runs of whitespace in catalog text.
package whitespace

import (
	"context"
	"strings"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor collapses runs of whitespace into single spaces and trims each
// chunk. Chunks left empty are removed and positions are renumbered.
type Processor struct{}

// New creates a new whitespace processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "whitespace"
}

// Fold collapses every run of whitespace in s into a single space and trims
// both ends.
func Fold(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Process folds whitespace in the given chunks.
func (p *Processor) Process(_ context.Context, _ *domain.NormalizedDocument, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := chunks[:0]
	for _, c := range chunks {
		c.Content = Fold(c.Content)
		if c.Content == "" {
			continue
		}
		c.Position = len(out)
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
