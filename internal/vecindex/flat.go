// Package vecindex implements a flat vector index with exact nearest-neighbor
// search by squared Euclidean distance. The index is append-only: rows are
// never removed, reordered, or rewritten, and chunk ids are dense and assigned
// in insertion order. Dataset sizes in this domain are small knowledge-base
// corpora, so a brute-force scan is preferred over approximate structures.
package vecindex

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"embedkit/internal/domain"
)

// Flat owns a growable collection of fixed-dimension float32 vectors and
// their text payloads. A single RWMutex guards the vector rows and the chunk
// metadata together, so a concurrent Search never observes a partially
// appended batch.
type Flat struct {
	mu      sync.RWMutex
	dim     int
	meta    domain.IndexMetadata
	vectors [][]float32
}

// New creates an index with the given fixed dimensionality from an initial
// batch of (text, vector) pairs. The batch may be empty; dim is still fixed
// from the declared dimensionality. Returns ErrDimensionMismatch when the
// texts and vectors differ in length or any vector is not dim long.
func New(dim int, modelName string, texts []string, vectors [][]float32) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dim)
	}
	if err := validateBatch(dim, texts, vectors); err != nil {
		return nil, err
	}

	f := &Flat{
		dim: dim,
		meta: domain.IndexMetadata{
			CreatedAt: time.Now().UTC(),
			Model:     modelName,
			Dimension: dim,
			Chunks:    make([]domain.Chunk, 0, len(texts)),
		},
		vectors: make([][]float32, 0, len(vectors)),
	}
	f.append(texts, vectors)
	return f, nil
}

// Add appends a batch of (text, vector) pairs. The whole batch is validated
// before anything is appended, so a failed Add leaves the index completely
// unmodified. Chunk ids continue from the current total; existing rows are
// never renumbered or moved.
func (f *Flat) Add(texts []string, vectors [][]float32) error {
	if err := validateBatch(f.dim, texts, vectors); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.append(texts, vectors)
	now := time.Now().UTC()
	f.meta.UpdatedAt = &now
	return nil
}

// append extends the chunk list and vector rows together. Caller holds the
// write lock (or exclusively owns f during construction) and has validated
// the batch.
func (f *Flat) append(texts []string, vectors [][]float32) {
	for i, text := range texts {
		id := uint64(len(f.meta.Chunks))
		f.meta.Chunks = append(f.meta.Chunks, domain.Chunk{
			ID:             id,
			Text:           text,
			EmbeddingIndex: id,
		})
		row := make([]float32, f.dim)
		copy(row, vectors[i])
		f.vectors = append(f.vectors, row)
	}
	f.meta.TotalChunks = len(f.meta.Chunks)
}

// Search returns the k nearest chunks to query by squared Euclidean distance,
// ascending, with ties broken by lower chunk id. Fewer than k stored vectors
// means fewer results; an empty index returns an empty result set, never an
// error. Score is 1/(1+distance); rank is 1-based.
func (f *Flat) Search(query []float32, k int) ([]domain.SearchResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has length %d, index dimension is %d",
			ErrDimensionMismatch, len(query), f.dim)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	n := len(f.vectors)
	if n == 0 {
		return nil, nil
	}

	distances := make([]float64, n)
	for i, row := range f.vectors {
		distances[i] = squaredL2(query, row)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if distances[order[a]] != distances[order[b]] {
			return distances[order[a]] < distances[order[b]]
		}
		return order[a] < order[b]
	})

	if k > n {
		k = n
	}
	results := make([]domain.SearchResult, k)
	for rank, idx := range order[:k] {
		chunk := f.meta.Chunks[idx]
		dist := distances[idx]
		results[rank] = domain.SearchResult{
			ChunkID:  chunk.ID,
			Text:     chunk.Text,
			Distance: dist,
			Score:    1.0 / (1.0 + dist),
			Rank:     rank + 1,
		}
	}
	return results, nil
}

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

// Dim returns the fixed dimensionality of the index.
func (f *Flat) Dim() int {
	return f.dim
}

// ModelName returns the embedding model recorded at creation.
func (f *Flat) ModelName() string {
	return f.meta.Model
}

// Metadata returns a deep copy of the index metadata.
func (f *Flat) Metadata() domain.IndexMetadata {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.copyMeta()
}

// Snapshot returns deep copies of the metadata and vector rows as a matched
// pair, taken under a single read lock. Stores persist exactly this pair.
func (f *Flat) Snapshot() (domain.IndexMetadata, [][]float32) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	vectors := make([][]float32, len(f.vectors))
	for i, row := range f.vectors {
		vectors[i] = make([]float32, len(row))
		copy(vectors[i], row)
	}
	return f.copyMeta(), vectors
}

func (f *Flat) copyMeta() domain.IndexMetadata {
	meta := f.meta
	meta.Chunks = make([]domain.Chunk, len(f.meta.Chunks))
	copy(meta.Chunks, f.meta.Chunks)
	if f.meta.UpdatedAt != nil {
		t := *f.meta.UpdatedAt
		meta.UpdatedAt = &t
	}
	return meta
}

// Restore rebuilds an index from persisted metadata and vector rows. It
// returns ErrCorruptIndex when the two artifacts disagree: row count vs
// TotalChunks vs chunk list length, row length vs declared dimension, or
// non-dense chunk ids. No repair is attempted.
func Restore(meta domain.IndexMetadata, vectors [][]float32) (*Flat, error) {
	if meta.Dimension <= 0 {
		return nil, fmt.Errorf("%w: declared dimension %d", ErrCorruptIndex, meta.Dimension)
	}
	if meta.TotalChunks != len(meta.Chunks) {
		return nil, fmt.Errorf("%w: total_chunks is %d but metadata lists %d chunks",
			ErrCorruptIndex, meta.TotalChunks, len(meta.Chunks))
	}
	if len(vectors) != meta.TotalChunks {
		return nil, fmt.Errorf("%w: vector store has %d rows but metadata expects %d",
			ErrCorruptIndex, len(vectors), meta.TotalChunks)
	}
	for i, chunk := range meta.Chunks {
		if chunk.ID != uint64(i) || chunk.EmbeddingIndex != uint64(i) {
			return nil, fmt.Errorf("%w: chunk at position %d has id %d, embedding index %d",
				ErrCorruptIndex, i, chunk.ID, chunk.EmbeddingIndex)
		}
	}
	for i, row := range vectors {
		if len(row) != meta.Dimension {
			return nil, fmt.Errorf("%w: row %d has length %d, expected %d",
				ErrCorruptIndex, i, len(row), meta.Dimension)
		}
	}

	f := &Flat{dim: meta.Dimension}
	f.meta = meta
	f.meta.Chunks = make([]domain.Chunk, len(meta.Chunks))
	copy(f.meta.Chunks, meta.Chunks)
	f.vectors = make([][]float32, len(vectors))
	for i, row := range vectors {
		f.vectors[i] = make([]float32, len(row))
		copy(f.vectors[i], row)
	}
	return f, nil
}

// validateBatch rejects the whole batch before any mutation happens.
func validateBatch(dim int, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return fmt.Errorf("%w: %d texts but %d vectors",
			ErrDimensionMismatch, len(texts), len(vectors))
	}
	for i, vec := range vectors {
		if len(vec) != dim {
			return fmt.Errorf("%w: vector %d has length %d, expected %d",
				ErrDimensionMismatch, i, len(vec), dim)
		}
	}
	return nil
}

// squaredL2 computes the squared Euclidean distance between two equal-length
// vectors, accumulating in float64.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
