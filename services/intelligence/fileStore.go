package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"nexia/models"
)

// FileSessionStore keeps every conversation in one JSON document of the
// form {"<userID>": {"messages": [...]}}. The document is read once at
// construction and rewritten in full on every change; concurrent processes
// sharing the file overwrite each other.
type FileSessionStore struct {
	path     string
	mu       sync.Mutex
	sessions map[string]models.Session
}

func NewFileSessionStore(path string) (*FileSessionStore, error) {
	s := &FileSessionStore{path: path, sessions: make(map[string]models.Session)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.sessions); err != nil {
		return nil, fmt.Errorf("decode sessions file %s: %w", path, err)
	}
	return s, nil
}

func (s *FileSessionStore) Load(_ context.Context, userID string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	out := make([]models.ChatMessage, len(session.Messages))
	copy(out, session.Messages)
	return out, nil
}

func (s *FileSessionStore) Save(_ context.Context, userID string, messages []models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]models.ChatMessage, len(messages))
	copy(stored, messages)
	s.sessions[userID] = models.Session{Messages: stored}
	return s.flush()
}

func (s *FileSessionStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[userID]; !ok {
		return nil
	}
	delete(s.sessions, userID)
	return s.flush()
}

// flush must be called with mu held.
func (s *FileSessionStore) flush() error {
	b, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sessions dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write sessions file: %w", err)
	}
	return nil
}
