// Package usecase wires the embedding provider, the vector index, and the
// persistence adapters into the operations the CLI exposes.
package usecase

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"embedkit/internal/domain"
	"embedkit/internal/port"
	"embedkit/internal/vecindex"
)

// ProgressFunc reports embedding progress to the caller (CLI progress bars).
type ProgressFunc func(processed, total int)

// Indexer is the provider-agnostic glue around a named index: one Embedder,
// one IndexStore, no provider-specific branches. The index is persisted
// after every mutation.
type Indexer struct {
	store     port.IndexStore
	embedder  port.Embedder
	batchSize int
	logger    *zap.Logger
}

// NewIndexer creates an Indexer. batchSize <= 0 selects a default of 100;
// a nil logger is replaced with a no-op one.
func NewIndexer(store port.IndexStore, embedder port.Embedder, batchSize int, logger *zap.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		store:     store,
		embedder:  embedder,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Create builds a new index from texts and persists it. An empty texts slice
// produces a valid empty index with the embedder's dimensionality.
func (ix *Indexer) Create(name string, texts []string, progress ProgressFunc) (*vecindex.Flat, error) {
	vectors, err := ix.embed(texts, progress)
	if err != nil {
		return nil, err
	}

	idx, err := vecindex.New(ix.embedder.Dimension(), ix.embedder.ModelName(), texts, vectors)
	if err != nil {
		return nil, err
	}

	if err := ix.store.Save(name, idx); err != nil {
		return nil, fmt.Errorf("failed to save index %q: %w", name, err)
	}
	ix.logger.Info("index created",
		zap.String("name", name),
		zap.Int("chunks", idx.Len()),
		zap.Int("dimension", idx.Dim()))
	return idx, nil
}

// Update appends texts to an existing index and persists it. A missing index
// is surfaced as vecindex.ErrNotFound; it is never auto-created here.
func (ix *Indexer) Update(name string, texts []string, progress ProgressFunc) (*vecindex.Flat, error) {
	idx, err := ix.store.Load(name)
	if err != nil {
		return nil, err
	}

	vectors, err := ix.embed(texts, progress)
	if err != nil {
		return nil, err
	}

	if err := idx.Add(texts, vectors); err != nil {
		return nil, err
	}
	if err := ix.store.Save(name, idx); err != nil {
		return nil, fmt.Errorf("failed to save index %q: %w", name, err)
	}
	ix.logger.Info("index updated",
		zap.String("name", name),
		zap.Int("added", len(texts)),
		zap.Int("chunks", idx.Len()))
	return idx, nil
}

// Search embeds the query text and returns the k nearest chunks from the
// named index.
func (ix *Indexer) Search(name, query string, k int) ([]domain.SearchResult, error) {
	idx, err := ix.store.Load(name)
	if err != nil {
		return nil, err
	}

	vectors, err := ix.embed([]string{query}, nil)
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query embedding, got %d",
			vecindex.ErrEmbeddingProvider, len(vectors))
	}

	return idx.Search(vectors[0], k)
}

// List returns the names of all stored indexes.
func (ix *Indexer) List() ([]string, error) {
	return ix.store.List()
}

// embed runs the provider in batches, reporting progress. Provider failures
// are classified as ErrEmbeddingProvider and abort the whole operation.
func (ix *Indexer) embed(texts []string, progress ProgressFunc) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if progress != nil {
		progress(0, len(texts))
	}

	var all [][]float32
	for i := 0; i < len(texts); i += ix.batchSize {
		end := i + ix.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		start := time.Now()
		batch, err := ix.embedder.Embed(texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", vecindex.ErrEmbeddingProvider, err)
		}
		if len(batch) != end-i {
			return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
				vecindex.ErrEmbeddingProvider, len(batch), end-i)
		}
		ix.logger.Debug("embedded batch",
			zap.String("model", ix.embedder.ModelName()),
			zap.Int("size", end-i),
			zap.Duration("took", time.Since(start)))

		all = append(all, batch...)
		if progress != nil {
			progress(end, len(texts))
		}
	}
	return all, nil
}
