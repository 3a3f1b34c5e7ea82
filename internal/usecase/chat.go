package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"embedkit/internal/domain"
	"embedkit/internal/port"
)

// ChatSession manages one named chat session: system-prompt bootstrap,
// message history, and JSON persistence after every exchange. The session
// name is supplied by the caller; the per-conversation id is a fresh UUID.
type ChatSession struct {
	model    port.ChatModel
	convs    port.ConversationStore
	provider string
	name     string
	system   string
	logger   *zap.Logger

	// Optional retrieval augmentation.
	indexer   *Indexer
	indexName string
	topK      int

	conversationID string
	history        []domain.Message
}

// NewChatSession registers the session with the conversation store and
// starts a fresh conversation seeded with the system prompt.
func NewChatSession(model port.ChatModel, convs port.ConversationStore, provider string, meta port.SessionMeta, logger *zap.Logger) (*ChatSession, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if meta.Name == "" {
		return nil, fmt.Errorf("session name must not be empty")
	}
	if meta.CreatedAt == "" {
		meta.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if meta.Model == "" {
		meta.Model = model.ModelName()
	}

	if err := convs.SaveSession(provider, meta.Name, meta); err != nil {
		return nil, fmt.Errorf("failed to register session: %w", err)
	}

	s := &ChatSession{
		model:    model,
		convs:    convs,
		provider: provider,
		name:     meta.Name,
		system:   meta.SystemPrompt,
		logger:   logger,
	}
	if err := s.StartNew(); err != nil {
		return nil, err
	}
	return s, nil
}

// WithRetrieval augments user messages with the top-k chunks from a named
// index before they reach the model.
func (s *ChatSession) WithRetrieval(indexer *Indexer, indexName string, topK int) *ChatSession {
	s.indexer = indexer
	s.indexName = indexName
	s.topK = topK
	return s
}

// StartNew begins a new conversation under the same session identity.
func (s *ChatSession) StartNew() error {
	s.conversationID = uuid.NewString()
	s.history = []domain.Message{{Role: "system", Content: s.system}}
	return s.save()
}

// Send appends the user message, asks the model for a reply, records it,
// and persists the conversation.
func (s *ChatSession) Send(ctx context.Context, message string) (string, error) {
	content := message
	if s.indexer != nil {
		augmented, err := s.augment(message)
		if err != nil {
			return "", err
		}
		content = augmented
	}

	s.history = append(s.history, domain.Message{Role: "user", Content: content})

	reply, err := s.model.Chat(ctx, s.history)
	if err != nil {
		// Roll the failed turn back so a retry does not duplicate it.
		s.history = s.history[:len(s.history)-1]
		return "", fmt.Errorf("chat request failed: %w", err)
	}

	s.history = append(s.history, domain.Message{Role: "assistant", Content: reply})
	if err := s.save(); err != nil {
		return reply, err
	}
	s.logger.Debug("exchange recorded",
		zap.String("conversation", s.conversationID),
		zap.Int("turns", len(s.history)))
	return reply, nil
}

// augment prepends retrieved context to the user message.
func (s *ChatSession) augment(message string) (string, error) {
	results, err := s.indexer.Search(s.indexName, message, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieval failed: %w", err)
	}
	if len(results) == 0 {
		return message, nil
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n", r.Rank, r.Text)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(message)
	return b.String(), nil
}

// ConversationID returns the current conversation's id.
func (s *ChatSession) ConversationID() string {
	return s.conversationID
}

// History returns a copy of the current conversation history.
func (s *ChatSession) History() []domain.Message {
	out := make([]domain.Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *ChatSession) save() error {
	conv := domain.Conversation{
		ConversationID: s.conversationID,
		SessionName:    s.name,
		Timestamp:      time.Now().UTC(),
		SystemPrompt:   s.system,
		History:        s.history,
	}
	if err := s.convs.SaveConversation(s.provider, s.name, conv); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}
