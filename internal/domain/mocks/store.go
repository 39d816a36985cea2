package mocks

import (
	"context"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/ports"
)

// Store wraps a ports.Store and injects errors into selected operations.
// A nil field passes the call through.
type Store struct {
	ports.Store

	GetErr           error
	CreateErr        error
	UpdateErr        error
	DeleteJournalErr error
	DeleteEntityErr  error
	DeleteUserErr    error

	// BeforeDeleteUser runs ahead of DeleteUser when set.
	BeforeDeleteUser func(ctx context.Context, id int64)
}

// NewStore wraps inner.
func NewStore(inner ports.Store) *Store {
	return &Store{Store: inner}
}

func (m *Store) GetUser(ctx context.Context, id int64) (*entities.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Store.GetUser(ctx, id)
}

func (m *Store) GetJournals(ctx context.Context, userID int64) ([]*entities.Journal, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Store.GetJournals(ctx, userID)
}

func (m *Store) GetJournal(ctx context.Context, id int64) (*entities.Journal, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Store.GetJournal(ctx, id)
}

func (m *Store) GetEntity(ctx context.Context, id int64) (*entities.Entity, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Store.GetEntity(ctx, id)
}

func (m *Store) GetEntities(ctx context.Context, filter entities.EntityFilter) ([]*entities.Entity, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Store.GetEntities(ctx, filter)
}

func (m *Store) CreateJournal(ctx context.Context, j *entities.Journal) (*entities.Journal, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Store.CreateJournal(ctx, j)
}

func (m *Store) CreateEntity(ctx context.Context, e *entities.Entity) (*entities.Entity, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Store.CreateEntity(ctx, e)
}

func (m *Store) UpdateJournal(ctx context.Context, id int64, patch entities.JournalPatch) (*entities.Journal, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	return m.Store.UpdateJournal(ctx, id, patch)
}

func (m *Store) UpdateEntity(ctx context.Context, id int64, patch entities.EntityPatch) (*entities.Entity, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	return m.Store.UpdateEntity(ctx, id, patch)
}

func (m *Store) DeleteJournal(ctx context.Context, id int64) error {
	if m.DeleteJournalErr != nil {
		return m.DeleteJournalErr
	}
	return m.Store.DeleteJournal(ctx, id)
}

func (m *Store) DeleteEntity(ctx context.Context, id int64) error {
	if m.DeleteEntityErr != nil {
		return m.DeleteEntityErr
	}
	return m.Store.DeleteEntity(ctx, id)
}

func (m *Store) DeleteUser(ctx context.Context, id int64) error {
	if m.BeforeDeleteUser != nil {
		m.BeforeDeleteUser(ctx, id)
	}
	if m.DeleteUserErr != nil {
		return m.DeleteUserErr
	}
	return m.Store.DeleteUser(ctx, id)
}
