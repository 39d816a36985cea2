package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/ports"
	"github.com/ersonp/campaign-core/internal/domain/schema"
)

// cascadeLimit bounds concurrent deletions during account removal.
const cascadeLimit = 8

// AuthService manages accounts and sessions.
type AuthService struct {
	store    ports.Store
	sessions ports.SessionStore
	hasher   ports.PasswordHasher
}

// NewAuthService creates a new AuthService.
func NewAuthService(store ports.Store, sessions ports.SessionStore, hasher ports.PasswordHasher) *AuthService {
	return &AuthService{
		store:    store,
		sessions: sessions,
		hasher:   hasher,
	}
}

// Register creates an account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, creds schema.Credentials) (*entities.User, string, error) {
	if err := creds.Validate(); err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.store.CreateUser(ctx, &entities.User{Username: creds.Username, Password: hash})
	if err != nil {
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("creating session: %w", err)
	}
	return user, token, nil
}

// Login checks credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, creds schema.Credentials) (*entities.User, string, error) {
	user, err := s.store.GetUserByUsername(ctx, creds.Username)
	if err != nil {
		return nil, "", fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.Password, creds.Password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("creating session: %w", err)
	}
	return user, token, nil
}

// Logout ends the session. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	userID, ok, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}
	if !ok {
		return nil, ErrUnauthenticated
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// DeleteAccount revokes every session of the user, then removes the user's
// journals and entities and finally the user. Records created by requests
// that were already in flight are swept once more after the user is gone.
// Deletions run concurrently and are not rolled back on failure.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.sessions.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("%w: deleting sessions: %w", ErrAccountDeletion, err)
	}

	if err := s.deleteOwnedRecords(ctx, userID); err != nil {
		return fmt.Errorf("%w: %w", ErrAccountDeletion, err)
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil && !errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("%w: deleting user: %w", ErrAccountDeletion, err)
	}

	if err := s.deleteOwnedRecords(ctx, userID); err != nil {
		return fmt.Errorf("%w: %w", ErrAccountDeletion, err)
	}
	return nil
}

func (s *AuthService) deleteOwnedRecords(ctx context.Context, userID int64) error {
	journals, err := s.store.GetJournals(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing journals: %w", err)
	}
	owned, err := s.store.GetEntities(ctx, entities.EntityFilter{UserID: userID})
	if err != nil {
		return fmt.Errorf("listing entities: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cascadeLimit)

	for _, j := range journals {
		id := j.ID
		g.Go(func() error {
			if err := s.store.DeleteJournal(gctx, id); err != nil && !errors.Is(err, ports.ErrNotFound) {
				return fmt.Errorf("deleting journal %d: %w", id, err)
			}
			return nil
		})
	}
	for _, e := range owned {
		id := e.ID
		g.Go(func() error {
			if err := s.store.DeleteEntity(gctx, id); err != nil && !errors.Is(err, ports.ErrNotFound) {
				return fmt.Errorf("deleting entity %d: %w", id, err)
			}
			return nil
		})
	}

	return g.Wait()
}
