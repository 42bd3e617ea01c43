package memory

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/animerec/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
)

// Ensure the index types implement the interfaces.
var (
	_ driven.SimilarityIndex = (*Index)(nil)
	_ driven.IndexOpener     = (*IndexOpener)(nil)
)

// Index is an in-memory similarity collection.
type Index struct {
	mu      sync.RWMutex
	dims    int
	entries []driven.IndexEntry
}

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{}
}

// Insert appends entries. Vectors are copied.
func (i *Index) Insert(ctx context.Context, entries []driven.IndexEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	dim := i.dims
	if dim == 0 {
		dim = len(entries[0].Embedding)
	}
	for n, e := range entries {
		if len(e.Embedding) == 0 || len(e.Embedding) != dim {
			return fmt.Errorf("entry %d has dimension %d, expected %d: %w",
				n, len(e.Embedding), dim, domain.ErrInvalidInput)
		}
	}

	for _, e := range entries {
		e.Embedding = append([]float32(nil), e.Embedding...)
		e.Chunk.Metadata = maps.Clone(e.Chunk.Metadata)
		i.entries = append(i.entries, e)
	}
	i.dims = dim
	return nil
}

// Query returns up to k entries nearest to vec by cosine distance.
func (i *Index) Query(ctx context.Context, vec []float32, k int) ([]domain.RetrievedChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidInput)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("query vector is empty: %w", domain.ErrInvalidInput)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.dims != 0 && len(vec) != i.dims {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d: %w",
			len(vec), i.dims, domain.ErrInvalidInput)
	}

	scored := make([]vector.Scored, 0, len(i.entries))
	for n, e := range i.entries {
		d, err := vector.CosineDistance(vec, e.Embedding)
		if err != nil {
			return nil, err
		}
		scored = append(scored, vector.Scored{Index: n, Distance: d})
	}

	top := vector.TopK(scored, k)
	out := make([]domain.RetrievedChunk, len(top))
	for n, sc := range top {
		c := i.entries[sc.Index].Chunk
		c.Metadata = maps.Clone(c.Metadata)
		out[n] = domain.RetrievedChunk{Chunk: c, Distance: sc.Distance}
	}
	return out, nil
}

// Probe counts entries, stopping at limit. A non-positive limit counts all.
func (i *Index) Probe(_ context.Context, limit int) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	n := len(i.entries)
	if limit > 0 && n > limit {
		n = limit
	}
	return n, nil
}

// Close is a no-op; the entries stay available to later opens.
func (i *Index) Close() error {
	return nil
}

// IndexOpener keeps named in-memory collections for the life of the process,
// keyed by directory and collection name.
type IndexOpener struct {
	mu      sync.Mutex
	indexes map[string]*Index
}

// NewIndexOpener creates an opener with no collections.
func NewIndexOpener() *IndexOpener {
	return &IndexOpener{indexes: make(map[string]*Index)}
}

// Open returns the collection, creating it when create is set.
func (o *IndexOpener) Open(_ context.Context, dir, collection string, create bool) (driven.SimilarityIndex, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection name is empty: %w", domain.ErrInvalidInput)
	}
	key := filepath.Join(filepath.Clean(dir), collection)

	o.mu.Lock()
	defer o.mu.Unlock()

	idx, ok := o.indexes[key]
	if !ok {
		if !create {
			return nil, fmt.Errorf("collection %q in %s: %w", collection, dir, domain.ErrNotFound)
		}
		idx = NewIndex()
		o.indexes[key] = idx
	}
	return idx, nil
}
