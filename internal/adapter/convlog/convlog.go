// Package convlog persists chat sessions as JSON files:
//
//	<root>/<provider>/<name>/metadata.json
//	<root>/<provider>/<name>/conversation_<id>.json
package convlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"embedkit/internal/domain"
	"embedkit/internal/port"
)

const (
	metadataFile = "metadata.json"
	convPrefix   = "conversation_"
)

// FileStore writes conversation artifacts under a root directory.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create conversations directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) sessionDir(provider, name string) string {
	return filepath.Join(s.root, provider, name)
}

// SaveSession writes (or rewrites) the session's metadata file.
func (s *FileStore) SaveSession(provider, name string, meta port.SessionMeta) error {
	dir := s.sessionDir(provider, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, metadataFile), data, 0644)
}

// SaveConversation writes the full conversation, replacing any previous
// version of the same conversation id.
func (s *FileStore) SaveConversation(provider, name string, conv domain.Conversation) error {
	dir := s.sessionDir(provider, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, convPrefix+conv.ConversationID+".json")
	return os.WriteFile(path, data, 0644)
}

// ListConversations returns the conversation ids recorded for a session,
// sorted.
func (s *FileStore) ListConversations(provider, name string) ([]string, error) {
	entries, err := os.ReadDir(s.sessionDir(provider, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, convPrefix) || !strings.HasSuffix(n, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(n, convPrefix), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// LoadConversation reads a recorded conversation by id.
func (s *FileStore) LoadConversation(provider, name, conversationID string) (domain.Conversation, error) {
	var conv domain.Conversation
	path := filepath.Join(s.sessionDir(provider, name), convPrefix+conversationID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return conv, fmt.Errorf("conversation %s not found", conversationID)
		}
		return conv, err
	}
	if err := json.Unmarshal(data, &conv); err != nil {
		return conv, fmt.Errorf("failed to parse conversation %s: %w", conversationID, err)
	}
	return conv, nil
}
