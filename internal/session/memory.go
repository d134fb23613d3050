package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/example/shop-assistant/internal/conversation"
)

// MemoryStore keeps sessions in a process-local map. Used for
// development and tests; state is copied through JSON on the way in and
// out so it behaves like the durable backends.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*conversation.State, error) {
	s.mu.RLock()
	data, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return decodeState(data)
}

func (s *MemoryStore) Put(_ context.Context, state *conversation.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sessions[state.SessionID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}
