package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
	"github.com/custodia-labs/animerec/internal/logger"
)

// BuilderConfig configures an IndexBuilder.
type BuilderConfig struct {
	// Index names the persist directory and collection to write.
	Index domain.IndexSettings

	// BatchSize is the number of chunks per EmbedBatch call (default 32).
	BatchSize int

	// EmbedTimeout bounds each EmbedBatch call (default 60s).
	EmbedTimeout time.Duration
}

// IndexBuilder chunks documents, embeds the chunks and appends them to the
// similarity index. Rebuilding the same catalog appends duplicates.
type IndexBuilder struct {
	normaliser driven.CatalogNormaliser
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	opener     driven.IndexOpener
	locker     driven.IndexLocker
	cfg        BuilderConfig
}

// NewIndexBuilder creates an IndexBuilder. locker may be nil, in which case
// concurrent builders are not detected.
func NewIndexBuilder(
	normaliser driven.CatalogNormaliser,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	opener driven.IndexOpener,
	locker driven.IndexLocker,
	cfg BuilderConfig,
) (*IndexBuilder, error) {
	switch {
	case normaliser == nil:
		return nil, &domain.ConfigError{Field: "normaliser", Reason: "required"}
	case pipeline == nil:
		return nil, &domain.ConfigError{Field: "pipeline", Reason: "required"}
	case embedder == nil:
		return nil, &domain.ConfigError{Field: "embedding", Reason: "required"}
	case opener == nil:
		return nil, &domain.ConfigError{Field: "index", Reason: "required"}
	case cfg.Index.PersistDir == "":
		return nil, &domain.ConfigError{Field: "index.persist_dir", Reason: "is required"}
	case cfg.Index.Collection == "":
		return nil, &domain.ConfigError{Field: "index.collection", Reason: "is required"}
	case cfg.BatchSize < 0:
		return nil, &domain.ConfigError{Field: "embedding.batch_size", Reason: "must not be negative"}
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = domain.DefaultEmbeddingBatchSize
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = domain.DefaultEmbeddingTimeout
	}

	return &IndexBuilder{
		normaliser: normaliser,
		pipeline:   pipeline,
		embedder:   embedder,
		opener:     opener,
		locker:     locker,
		cfg:        cfg,
	}, nil
}

// BuildFromProcessedCSV loads the processed catalog at path and builds the index.
func (b *IndexBuilder) BuildFromProcessedCSV(ctx context.Context, path string) (*domain.BuildResult, error) {
	logger.Debug("Loading processed catalog from %s", path)

	docs, err := b.normaliser.LoadProcessed(ctx, path)
	if err != nil {
		return nil, buildError(domain.BuildStageLoad, err)
	}
	return b.Build(ctx, docs)
}

// Build chunks, embeds and inserts docs, then probes the collection.
// Every failure is a *domain.VectorStoreBuildError naming the stage.
func (b *IndexBuilder) Build(ctx context.Context, docs []domain.NormalizedDocument) (*domain.BuildResult, error) {
	start := time.Now()
	logger.Section("Build vector store")

	if len(docs) == 0 {
		return nil, buildError(domain.BuildStageLoad, domain.ErrNoDocumentsLoaded)
	}

	chunks, err := b.chunk(ctx, docs)
	if err != nil {
		return nil, buildError(domain.BuildStageChunk, err)
	}
	logger.Debug("Split %d documents into %d chunks", len(docs), len(chunks))

	if b.locker != nil {
		unlock, err := b.locker.TryLock(ctx, b.cfg.Index.PersistDir)
		if err != nil {
			return nil, buildError(domain.BuildStageLock, err)
		}
		defer func() {
			if err := unlock(); err != nil {
				logger.Warn("release index lock: %v", err)
			}
		}()
	}

	idx, err := b.opener.Open(ctx, b.cfg.Index.PersistDir, b.cfg.Index.Collection, true)
	if err != nil {
		return nil, buildError(domain.BuildStageOpen, err)
	}
	defer idx.Close()

	inserted := 0
	for lo := 0; lo < len(chunks); lo += b.cfg.BatchSize {
		hi := min(lo+b.cfg.BatchSize, len(chunks))
		batch := chunks[lo:hi]

		entries, stage, err := b.embed(ctx, batch)
		if err != nil {
			return nil, buildError(stage, err)
		}
		if err := idx.Insert(ctx, entries); err != nil {
			return nil, buildError(domain.BuildStageInsert, err)
		}
		inserted += len(entries)
		logger.Debug("Embedded %d/%d chunks", inserted, len(chunks))
	}

	n, err := idx.Probe(ctx, 1)
	if err != nil {
		return nil, buildError(domain.BuildStageProbe, err)
	}
	if n == 0 {
		return nil, buildError(domain.BuildStageProbe, domain.ErrVectorStoreEmptyAfterBuild)
	}

	result := &domain.BuildResult{
		PersistDir: b.cfg.Index.PersistDir,
		Collection: b.cfg.Index.Collection,
		Documents:  len(docs),
		Chunks:     len(chunks),
		Inserted:   inserted,
		Duration:   time.Since(start),
	}
	logger.L().Info().
		Str("persist_dir", result.PersistDir).
		Str("collection", result.Collection).
		Int("documents", result.Documents).
		Int("chunks", result.Chunks).
		Dur("duration", result.Duration).
		Msg("vector store built and saved")
	return result, nil
}

func (b *IndexBuilder) chunk(ctx context.Context, docs []domain.NormalizedDocument) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for i := range docs {
		out, err := b.pipeline.Process(ctx, &docs[i])
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", docs[i].ID, err)
		}
		chunks = append(chunks, out...)
	}
	if len(chunks) == 0 {
		return nil, domain.ErrNoChunksProduced
	}
	return chunks, nil
}

// embed returns the index entries for batch, or the failing stage.
func (b *IndexBuilder) embed(ctx context.Context, batch []domain.Chunk) ([]driven.IndexEntry, string, error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Content
	}

	vectors, err := withTimeout(ctx, "embedding", b.cfg.EmbedTimeout, func(ctx context.Context) ([][]float32, error) {
		return b.embedder.EmbedBatch(ctx, texts)
	})
	if err != nil {
		return nil, domain.BuildStageEmbed, err
	}
	if len(vectors) != len(batch) {
		return nil, domain.BuildStageEmbed, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
	}

	entries := make([]driven.IndexEntry, len(batch))
	for i := range batch {
		entries[i] = driven.IndexEntry{Chunk: batch[i], Embedding: vectors[i]}
	}
	return entries, "", nil
}

func buildError(stage string, err error) error {
	logger.Error("vector store build failed at %s: %v", stage, err)
	return &domain.VectorStoreBuildError{Stage: stage, Err: err}
}
