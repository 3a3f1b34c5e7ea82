package port

import (
	"context"

	"embedkit/internal/domain"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns one vector per input text, positionally, all of the same
	// fixed length.
	Embed(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// ChatModel produces a single assistant reply for a conversation history.
type ChatModel interface {
	Chat(ctx context.Context, messages []domain.Message) (string, error)

	ModelName() string
}
