// Package memory keeps sessions in process memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/campaign-core/internal/domain/ports"
)

type session struct {
	userID  int64
	expires time.Time
}

// Store is a mutex-guarded session map. Expired sessions are dropped on
// lookup.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]session
	ttl      time.Duration
	now      func() time.Time
}

var _ ports.SessionStore = (*Store)(nil)

// New creates a session store whose sessions live for ttl.
func New(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create opens a session for userID.
func (s *Store) Create(_ context.Context, userID int64) (string, error) {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session{userID: userID, expires: s.now().Add(s.ttl)}
	return token, nil
}

// Lookup resolves token to its user id.
func (s *Store) Lookup(_ context.Context, token string) (int64, bool, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return 0, false, nil
	}

	if !s.now().Before(sess.expires) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return 0, false, nil
	}
	return sess.userID, true, nil
}

// Delete ends a session.
func (s *Store) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// DeleteUser ends every session of userID.
func (s *Store) DeleteUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, sess := range s.sessions {
		if sess.userID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}
