package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
	"github.com/custodia-labs/animerec/internal/logger"
)

// Ensure IndexLoader implements the interface.
var _ driving.RetrievalService = (*IndexLoader)(nil)

// IndexLoader opens the persisted similarity index once per process.
// An index that is missing or empty is never handed out.
type IndexLoader struct {
	opener       driven.IndexOpener
	embedder     driven.EmbeddingService
	index        domain.IndexSettings
	embedTimeout time.Duration

	mu     sync.Mutex
	handle driven.SimilarityIndex
}

// NewIndexLoader creates a loader for the collection named by index.
func NewIndexLoader(
	opener driven.IndexOpener,
	embedder driven.EmbeddingService,
	index domain.IndexSettings,
	embedTimeout time.Duration,
) *IndexLoader {
	if embedTimeout <= 0 {
		embedTimeout = domain.DefaultEmbeddingTimeout
	}
	return &IndexLoader{
		opener:       opener,
		embedder:     embedder,
		index:        index,
		embedTimeout: embedTimeout,
	}
}

// Load returns the opened index, or false when it does not exist, is empty
// or cannot be opened. It logs a warning instead of failing.
func (l *IndexLoader) Load(ctx context.Context) (driven.SimilarityIndex, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle != nil {
		return l.handle, true
	}

	log := logger.L().With().
		Str("persist_dir", l.index.PersistDir).
		Str("collection", l.index.Collection).
		Logger()

	idx, err := l.opener.Open(ctx, l.index.PersistDir, l.index.Collection, false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Msg("vector store does not exist")
		} else {
			log.Warn().Err(err).Msg("failed to open vector store")
		}
		return nil, false
	}

	n, err := idx.Probe(ctx, 1)
	if err != nil || n == 0 {
		if err != nil {
			log.Warn().Err(err).Msg("failed to probe vector store")
		} else {
			log.Warn().Msg("vector store exists but is empty")
		}
		if cerr := idx.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("close vector store")
		}
		return nil, false
	}

	log.Debug().Msg("vector store loaded")
	l.handle = idx
	return idx, true
}

// LoadOrErr is Load for the serving path: absence is a
// *domain.VectorStoreNotAvailableError telling the user to build first.
func (l *IndexLoader) LoadOrErr(ctx context.Context) (driven.SimilarityIndex, error) {
	idx, ok := l.Load(ctx)
	if !ok {
		return nil, &domain.VectorStoreNotAvailableError{
			PersistDir: l.index.PersistDir,
			Collection: l.index.Collection,
		}
	}
	return idx, nil
}

// Retriever returns a top-k retriever. The index is opened on first use.
func (l *IndexLoader) Retriever(k int, searchType domain.SearchType) (*Retriever, error) {
	if k <= 0 {
		return nil, &domain.ConfigError{Field: "retrieval.k", Reason: fmt.Sprintf("must be positive, got %d", k)}
	}
	if !searchType.IsValid() {
		return nil, &domain.ConfigError{
			Field:  "retrieval.search_type",
			Reason: fmt.Sprintf("unsupported search type %q", searchType),
		}
	}
	if l.embedder == nil {
		return nil, &domain.ConfigError{Field: "embedding", Reason: "required for retrieval"}
	}
	return &Retriever{loader: l, k: k, searchType: searchType}, nil
}

// Retrieve returns the k chunks nearest to query.
func (l *IndexLoader) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	r, err := l.Retriever(k, domain.SearchTypeSimilarity)
	if err != nil {
		return nil, err
	}
	return r.Retrieve(ctx, query)
}

// Close releases the index handle. A later Load reopens it.
func (l *IndexLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle == nil {
		return nil
	}
	err := l.handle.Close()
	l.handle = nil
	return err
}

// Retriever runs nearest-neighbour queries against a loaded index.
type Retriever struct {
	loader     *IndexLoader
	k          int
	searchType domain.SearchType
}

// K returns the number of chunks returned per query.
func (r *Retriever) K() int {
	return r.k
}

// Retrieve embeds query and returns up to k chunks by ascending cosine distance.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	idx, err := r.loader.LoadOrErr(ctx)
	if err != nil {
		return nil, err
	}

	vec, err := withTimeout(ctx, "embedding", r.loader.embedTimeout, func(ctx context.Context) ([]float32, error) {
		return r.loader.embedder.Embed(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := idx.Query(ctx, vec, r.k)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.searchType, err)
	}
	logger.Debug("Retrieved %d chunks for %q", len(hits), query)
	return hits, nil
}
