package ports

import (
	"context"

	"github.com/ersonp/campaign-core/internal/domain/entities"
)

// UserStore persists accounts.
type UserStore interface {
	// CreateUser assigns the id and creation time. A taken username
	// returns ErrConflict.
	CreateUser(ctx context.Context, user *entities.User) (*entities.User, error)

	// GetUser returns nil when the id is unknown.
	GetUser(ctx context.Context, id int64) (*entities.User, error)

	// GetUserByUsername returns nil when the username is unknown.
	GetUserByUsername(ctx context.Context, username string) (*entities.User, error)

	// DeleteUser returns ErrNotFound when the id is unknown.
	DeleteUser(ctx context.Context, id int64) error
}

// JournalStore persists journal entries.
type JournalStore interface {
	// GetJournals lists a user's journals in id order.
	GetJournals(ctx context.Context, userID int64) ([]*entities.Journal, error)

	// GetJournal returns nil when the id is unknown.
	GetJournal(ctx context.Context, id int64) (*entities.Journal, error)

	CreateJournal(ctx context.Context, journal *entities.Journal) (*entities.Journal, error)

	// UpdateJournal merges the non-nil patch fields. It never creates.
	UpdateJournal(ctx context.Context, id int64, patch entities.JournalPatch) (*entities.Journal, error)

	DeleteJournal(ctx context.Context, id int64) error
}

// EntityStore persists campaign entities.
type EntityStore interface {
	// GetEntities lists entities matching every set filter field, in id order.
	GetEntities(ctx context.Context, filter entities.EntityFilter) ([]*entities.Entity, error)

	// GetEntity returns nil when the id is unknown.
	GetEntity(ctx context.Context, id int64) (*entities.Entity, error)

	CreateEntity(ctx context.Context, entity *entities.Entity) (*entities.Entity, error)

	// UpdateEntity merges the non-nil patch fields. It never creates.
	UpdateEntity(ctx context.Context, id int64, patch entities.EntityPatch) (*entities.Entity, error)

	DeleteEntity(ctx context.Context, id int64) error
}

// Store is the storage backend. Returned records are copies.
type Store interface {
	UserStore
	JournalStore
	EntityStore

	// EnsureSchema prepares the backend for use.
	EnsureSchema(ctx context.Context) error

	// Close releases the backend.
	Close() error
}
