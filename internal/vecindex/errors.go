package vecindex

import "errors"

// Sentinel errors surfaced by the index and its stores. Callers match with
// errors.Is; call sites add context with fmt.Errorf and %w.
var (
	// ErrDimensionMismatch means a supplied vector's length disagrees with
	// the index dimensionality, or a batch of texts and vectors differ in
	// length. The index is never modified when this is returned.
	ErrDimensionMismatch = errors.New("vecindex: vector dimension mismatch")

	// ErrCorruptIndex means persisted artifacts are mutually inconsistent
	// (row count vs chunk bookkeeping, or row length vs declared dimension).
	ErrCorruptIndex = errors.New("vecindex: stored index artifacts are inconsistent")

	// ErrNotFound means the named index does not exist in the store.
	ErrNotFound = errors.New("vecindex: index not found")

	// ErrEmbeddingProvider means the embedding collaborator failed to
	// produce vectors. Fatal to the enclosing operation; never retried here.
	ErrEmbeddingProvider = errors.New("vecindex: embedding provider failed")
)
