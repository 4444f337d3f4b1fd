package state

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process. Values are deep copies so callers
// never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*SessionState)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*SessionState, error) {
	if _, err := sessionKey("", sessionID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	st, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrStateNotFound
	}
	return st.Clone()
}

func (s *MemoryStore) Save(_ context.Context, st *SessionState) error {
	if err := prepareSave(st); err != nil {
		return err
	}
	cp, err := st.Clone()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[st.SessionID] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if _, err := sessionKey("", sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
