// Package memory is an in-memory storage backend. It is safe for concurrent
// use and is the default for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/ports"
)

// Store keeps every collection in maps guarded by a single lock.
type Store struct {
	mu sync.RWMutex

	nextUserID    int64
	nextJournalID int64
	nextEntityID  int64

	users      map[int64]*entities.User
	usernames  map[string]int64
	journals   map[int64]*entities.Journal
	entityRecs map[int64]*entities.Entity

	now func() time.Time
}

var _ ports.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextUserID:    1,
		nextJournalID: 1,
		nextEntityID:  1,
		users:         make(map[int64]*entities.User),
		usernames:     make(map[string]int64),
		journals:      make(map[int64]*entities.Journal),
		entityRecs:    make(map[int64]*entities.Entity),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema is a no-op.
func (s *Store) EnsureSchema(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// Users ----------------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, user *entities.User) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[user.Username]; taken {
		return nil, fmt.Errorf("username %q: %w", user.Username, ports.ErrConflict)
	}

	rec := user.Clone()
	rec.ID = s.nextUserID
	rec.CreatedAt = s.now()
	s.nextUserID++

	s.users[rec.ID] = rec
	s.usernames[rec.Username] = rec.ID
	return rec.Clone(), nil
}

func (s *Store) GetUser(_ context.Context, id int64) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return user.Clone(), nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, nil
	}
	return s.users[id].Clone(), nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, ports.ErrNotFound)
	}
	delete(s.usernames, user.Username)
	delete(s.users, id)
	return nil
}

// Journals -------------------------------------------------------------------

func (s *Store) GetJournals(_ context.Context, userID int64) ([]*entities.Journal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*entities.Journal, 0)
	for _, j := range s.journals {
		if j.UserID == userID {
			result = append(result, j.Clone())
		}
	}
	sort.Slice(result, func(i, k int) bool { return result[i].ID < result[k].ID })
	return result, nil
}

func (s *Store) GetJournal(_ context.Context, id int64) (*entities.Journal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.journals[id]
	if !ok {
		return nil, nil
	}
	return j.Clone(), nil
}

func (s *Store) CreateJournal(_ context.Context, journal *entities.Journal) (*entities.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := journal.Clone()
	rec.ID = s.nextJournalID
	rec.CreatedAt = s.now()
	s.nextJournalID++

	s.journals[rec.ID] = rec
	return rec.Clone(), nil
}

func (s *Store) UpdateJournal(_ context.Context, id int64, patch entities.JournalPatch) (*entities.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.journals[id]
	if !ok {
		return nil, fmt.Errorf("journal %d: %w", id, ports.ErrNotFound)
	}
	j.Apply(patch)
	return j.Clone(), nil
}

func (s *Store) DeleteJournal(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.journals[id]; !ok {
		return fmt.Errorf("journal %d: %w", id, ports.ErrNotFound)
	}
	delete(s.journals, id)
	return nil
}

// Entities -------------------------------------------------------------------

func (s *Store) GetEntities(_ context.Context, filter entities.EntityFilter) ([]*entities.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*entities.Entity, 0)
	for _, e := range s.entityRecs {
		if filter.Matches(e) {
			result = append(result, e.Clone())
		}
	}
	sort.Slice(result, func(i, k int) bool { return result[i].ID < result[k].ID })
	return result, nil
}

func (s *Store) GetEntity(_ context.Context, id int64) (*entities.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entityRecs[id]
	if !ok {
		return nil, nil
	}
	return e.Clone(), nil
}

func (s *Store) CreateEntity(_ context.Context, entity *entities.Entity) (*entities.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := entity.Clone()
	rec.ID = s.nextEntityID
	rec.CreatedAt = s.now()
	s.nextEntityID++

	s.entityRecs[rec.ID] = rec
	return rec.Clone(), nil
}

func (s *Store) UpdateEntity(_ context.Context, id int64, patch entities.EntityPatch) (*entities.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entityRecs[id]
	if !ok {
		return nil, fmt.Errorf("entity %d: %w", id, ports.ErrNotFound)
	}
	e.Apply(patch)
	return e.Clone(), nil
}

func (s *Store) DeleteEntity(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entityRecs[id]; !ok {
		return fmt.Errorf("entity %d: %w", id, ports.ErrNotFound)
	}
	delete(s.entityRecs, id)
	return nil
}
