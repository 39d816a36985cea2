// Package mocks provides hand-written test doubles for the domain ports.
package mocks

import (
	"context"
	"fmt"
	"sync"
)

// SessionStore is a mock implementation of ports.SessionStore.
type SessionStore struct {
	mu       sync.Mutex
	Sessions map[string]int64
	Err      error
	next     int
}

// NewSessionStore creates a new mock SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{Sessions: make(map[string]int64)}
}

// Create opens a session with a sequential token.
func (m *SessionStore) Create(_ context.Context, userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.next++
	token := fmt.Sprintf("token-%d", m.next)
	m.Sessions[token] = userID
	return token, nil
}

// Lookup resolves a token.
func (m *SessionStore) Lookup(_ context.Context, token string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, false, m.Err
	}
	userID, ok := m.Sessions[token]
	return userID, ok, nil
}

// Delete ends a session.
func (m *SessionStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.Sessions, token)
	return nil
}

// DeleteUser ends every session of a user.
func (m *SessionStore) DeleteUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for token, id := range m.Sessions {
		if id == userID {
			delete(m.Sessions, token)
		}
	}
	return nil
}

// Count returns the number of open sessions of a user.
func (m *SessionStore) Count(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range m.Sessions {
		if id == userID {
			n++
		}
	}
	return n
}
