package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
)

// countingEmbedder wraps an embedder, counting batches and optionally failing.
type countingEmbedder struct {
	driven.EmbeddingService
	mu      sync.Mutex
	batches int
	err     error
	hang    bool
}

func (e *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.batches++
	e.mu.Unlock()
	if e.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.EmbeddingService.EmbedBatch(ctx, texts)
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.EmbeddingService.Embed(ctx, text)
}

// stubOpener counts opens and returns a fixed index or error.
type stubOpener struct {
	index driven.SimilarityIndex
	err   error
	opens int
}

func (o *stubOpener) Open(_ context.Context, _, _ string, _ bool) (driven.SimilarityIndex, error) {
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.index, nil
}

// blackHoleIndex accepts inserts but never reports entries.
type blackHoleIndex struct {
	closed bool
}

func (b *blackHoleIndex) Insert(context.Context, []driven.IndexEntry) error { return nil }
func (b *blackHoleIndex) Query(context.Context, []float32, int) ([]domain.RetrievedChunk, error) {
	return nil, nil
}
func (b *blackHoleIndex) Probe(context.Context, int) (int, error) { return 0, nil }
func (b *blackHoleIndex) Close() error {
	b.closed = true
	return nil
}

// stubLocker records lock calls.
type stubLocker struct {
	err      error
	locked   int
	unlocked int
}

func (l *stubLocker) TryLock(context.Context, string) (func() error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked++
	return func() error {
		l.unlocked++
		return nil
	}, nil
}

// mockLLM records the last prompt.
type mockLLM struct {
	answer string
	err    error
	prompt string
	opts   driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompt = prompt
	m.opts = opts
	return m.answer, m.err
}
func (m *mockLLM) ModelName() string            { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPrompts serves one template.
type mockPrompts struct {
	template string
	err      error
}

func (m *mockPrompts) Load(string) (string, error) { return m.template, m.err }
func (m *mockPrompts) Reload()                     {}

// stubNormaliser returns fixed documents.
type stubNormaliser struct {
	docs   []domain.NormalizedDocument
	err    error
	report *domain.NormaliseReport
}

func (n *stubNormaliser) Normalise(_ context.Context, src, _ string) *domain.NormaliseReport {
	if n.report != nil {
		return n.report
	}
	return &domain.NormaliseReport{SourcePath: src}
}

func (n *stubNormaliser) LoadProcessed(context.Context, string) ([]domain.NormalizedDocument, error) {
	return n.docs, n.err
}
