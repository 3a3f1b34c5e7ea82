package convlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"embedkit/internal/domain"
	"embedkit/internal/port"
)

func TestFileStore_SessionMetadata(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	meta := port.SessionMeta{
		Name:         "support",
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		SystemPrompt: "You are a helpful assistant.",
		Model:        "command-r-plus-08-2024",
		Temperature:  0.7,
	}
	if err := st.SaveSession("cohere", "support", meta); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	path := filepath.Join(st.root, "cohere", "support", "metadata.json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected metadata file at %s: %v", path, err)
	}
}

func TestFileStore_ConversationRoundTrip(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	conv := domain.Conversation{
		ConversationID: "abc-123",
		SessionName:    "support",
		Timestamp:      time.Now().UTC(),
		SystemPrompt:   "You are a helpful assistant.",
		History: []domain.Message{
			{Role: "system", Content: "You are a helpful assistant."},
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi there"},
		},
	}
	if err := st.SaveConversation("cohere", "support", conv); err != nil {
		t.Fatalf("SaveConversation failed: %v", err)
	}

	loaded, err := st.LoadConversation("cohere", "support", "abc-123")
	if err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}
	if loaded.ConversationID != conv.ConversationID || len(loaded.History) != 3 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	if loaded.History[2].Content != "hi there" {
		t.Errorf("unexpected last message: %+v", loaded.History[2])
	}
}

func TestFileStore_ListConversations(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"b-2", "a-1"} {
		conv := domain.Conversation{ConversationID: id, SessionName: "s"}
		if err := st.SaveConversation("cohere", "s", conv); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := st.ListConversations("cohere", "s")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "a-1" || ids[1] != "b-2" {
		t.Errorf("expected sorted [a-1 b-2], got %v", ids)
	}

	// Unknown session lists empty, not an error.
	ids, err = st.ListConversations("cohere", "nope")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no conversations, got %v", ids)
	}
}

func TestFileStore_LoadMissingConversation(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadConversation("cohere", "s", "missing"); err == nil {
		t.Error("expected error for missing conversation")
	}
}
