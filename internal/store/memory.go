package store

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory Store for tests and development.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[int64]string
	denied map[int64]struct{}
}

// NewMemory constructs an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		users:  make(map[int64]string),
		denied: make(map[int64]struct{}),
	}
}

// Lookup returns the bearer token bound to the chat.
func (s *MemoryStore) Lookup(_ context.Context, chatID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.users[chatID]
	if !ok {
		return "", ErrNotFound
	}
	return token, nil
}

// TokenExists reports whether the token is bound to any chat.
func (s *MemoryStore) TokenExists(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.users {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

// Approve binds the token to the chat.
func (s *MemoryStore) Approve(_ context.Context, chatID int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[chatID] = token
	return nil
}

// IsDenied reports deny-list membership.
func (s *MemoryStore) IsDenied(_ context.Context, chatID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, denied := s.denied[chatID]
	return denied, nil
}

// Block adds the chat to the deny-list.
func (s *MemoryStore) Block(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied[chatID] = struct{}{}
	return nil
}
