package domain

import "time"

// Chunk is one unit of text together with its position in the vector store.
// EmbeddingIndex always equals the chunk's row in the store; both are dense
// and assigned in insertion order.
type Chunk struct {
	ID             uint64 `json:"id"`
	Text           string `json:"text"`
	EmbeddingIndex uint64 `json:"embedding_index"`
}

// IndexMetadata is the chunk bookkeeping persisted next to the raw vectors.
// TotalChunks equals len(Chunks) and the vector store row count at all times.
type IndexMetadata struct {
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Model       string     `json:"model"`
	Dimension   int        `json:"embedding_dim"`
	TotalChunks int        `json:"total_chunks"`
	Chunks      []Chunk    `json:"chunks"`
}

// SearchResult is a single similarity hit, ranked ascending by distance.
type SearchResult struct {
	ChunkID  uint64  `json:"chunk_id"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"`
}

// Message is one turn in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is a persisted chat session.
type Conversation struct {
	ConversationID string    `json:"conversation_id"`
	SessionName    string    `json:"session_name"`
	Timestamp      time.Time `json:"timestamp"`
	SystemPrompt   string    `json:"system_prompt"`
	History        []Message `json:"history"`
}
