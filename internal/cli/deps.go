package cli

import (
	"fmt"
	"path/filepath"

	"embedkit/config"
	"embedkit/internal/adapter/embedding"
	"embedkit/internal/adapter/store"
	"embedkit/internal/port"
	"embedkit/internal/usecase"
)

// openStore builds the configured index store rooted under the working
// directory.
func openStore() (port.IndexStore, error) {
	dir := config.IndexDir(rootDir, cfg)

	switch cfg.Index.Storage {
	case "", "file":
		return store.NewFileStore(dir)
	case "bolt":
		return store.NewBoltStore(filepath.Join(dir, "indexes.db"))
	default:
		return nil, fmt.Errorf("unsupported index storage: %s", cfg.Index.Storage)
	}
}

// newEmbedder builds the configured embedding provider.
func newEmbedder() (port.Embedder, error) {
	e := cfg.Embedding
	switch e.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(e.APIKeyEnv, e.Model, e.BaseURL, e.Dimension, e.BatchSize)
	case "cohere":
		return embedding.NewCohereEmbedder(e.APIKeyEnv, e.Model, e.BaseURL, e.InputType, e.Dimension, e.BatchSize)
	case "mock":
		dim := e.Dimension
		if dim <= 0 {
			dim = 64
		}
		return embedding.NewMockEmbedder(dim), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", e.Provider)
	}
}

// newIndexer wires the store and embedder together.
func newIndexer(st port.IndexStore) (*usecase.Indexer, error) {
	embedder, err := newEmbedder()
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return usecase.NewIndexer(st, embedder, cfg.Embedding.BatchSize, logger), nil
}
