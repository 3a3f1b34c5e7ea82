package port

import (
	"embedkit/internal/domain"
	"embedkit/internal/vecindex"
)

// IndexStore persists named indexes as a matched pair of artifacts: raw
// vector rows and chunk metadata. A reader must never observe one updated
// without the other.
type IndexStore interface {
	// Save persists the index under the given name, replacing any previous
	// version durably.
	Save(name string, idx *vecindex.Flat) error

	// Load restores a named index. Returns vecindex.ErrNotFound when the
	// name is unknown and vecindex.ErrCorruptIndex when the persisted
	// artifacts are mutually inconsistent.
	Load(name string) (*vecindex.Flat, error)

	// Exists reports whether a named index is present.
	Exists(name string) (bool, error)

	// List returns the names of all stored indexes, sorted.
	List() ([]string, error)

	// Delete removes a named index and all its artifacts.
	Delete(name string) error

	// Close releases any resources held by the store.
	Close() error
}

// SessionMeta describes a chat session at creation time.
type SessionMeta struct {
	Name         string  `json:"name"`
	CreatedAt    string  `json:"created_at"`
	SystemPrompt string  `json:"system_prompt"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	P            float64 `json:"p"`
}

// ConversationStore persists chat sessions and their message history.
type ConversationStore interface {
	SaveSession(provider, name string, meta SessionMeta) error

	SaveConversation(provider, name string, conv domain.Conversation) error

	ListConversations(provider, name string) ([]string, error)

	LoadConversation(provider, name, conversationID string) (domain.Conversation, error)
}
