package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default in-process backend. History per session is
// bounded by historyLimit; the oldest messages are evicted first.
type MemoryStore struct {
	mu           sync.RWMutex
	messages     map[string][]Message
	settings     map[string]Settings
	nextID       int64
	historyLimit int
}

func NewMemoryStore(historyLimit int) *MemoryStore {
	if historyLimit < 1 {
		historyLimit = 500
	}
	return &MemoryStore{
		messages:     make(map[string][]Message),
		settings:     make(map[string]Settings),
		historyLimit: historyLimit,
	}
}

func (s *MemoryStore) CreateMessage(_ context.Context, msg Message) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg.ID = s.nextID
	msg.CreatedAt = time.Now().UTC()

	history := append(s.messages[msg.SessionID], msg)
	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}
	s.messages[msg.SessionID] = history

	return msg, nil
}

func (s *MemoryStore) GetMessages(_ context.Context, sessionID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.messages[sessionID]
	out := make([]Message, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStore) ClearMessages(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, sessionID)
	return nil
}

func (s *MemoryStore) GetSettings(_ context.Context, sessionID string) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.settings[sessionID]
	if !ok {
		return Settings{}, ErrSettingsNotFound
	}
	return settings, nil
}

func (s *MemoryStore) CreateOrUpdateSettings(_ context.Context, settings Settings) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings.UpdatedAt = time.Now().UTC()
	s.settings[settings.SessionID] = settings
	return settings, nil
}
