// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Metadata keys set on every chunk.
const (
	MetadataSource = "source"
	MetadataRow    = "row"
)

// Processor splits document content into fixed-size chunks.
// Sizes are measured in characters (runes), not bytes.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// It returns a *domain.ConfigError when the size is not positive, the overlap
// is negative, or the overlap is not smaller than the size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	switch {
	case p.chunkSize <= 0:
		return nil, &domain.ConfigError{Field: "chunk_size", Reason: "must be positive, got " + strconv.Itoa(p.chunkSize)}
	case p.overlap < 0:
		return nil, &domain.ConfigError{Field: "chunk_overlap", Reason: "must not be negative, got " + strconv.Itoa(p.overlap)}
	case p.overlap >= p.chunkSize:
		return nil, &domain.ConfigError{
			Field:  "chunk_overlap",
			Reason: "must be smaller than chunk_size (" + strconv.Itoa(p.overlap) + " >= " + strconv.Itoa(p.chunkSize) + ")",
		}
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.NormalizedDocument, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.CombinedText == "" {
		return nil, nil
	}

	spans := Split(doc.CombinedText, p.chunkSize, p.overlap)
	chunks := make([]domain.Chunk, 0, len(spans))

	for i, content := range spans {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    content,
			Position:   i,
			Metadata: map[string]any{
				MetadataSource: doc.ID,
				MetadataRow:    doc.Row,
			},
		})
	}

	return chunks, nil
}

// Split cuts text into windows of at most size runes, each starting overlap
// runes before the end of the previous one. The last window always ends at
// the end of the text, and no window is emitted after it.
// The caller guarantees 0 <= overlap < size.
func Split(text string, size, overlap int) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	step := size - overlap
	out := make([]string, 0, (n+step-1)/step)

	start := 0
	for {
		end := min(start+size, n)
		out = append(out, string(runes[start:end]))
		if end == n {
			break
		}
		start = end - overlap
	}

	return out
}
