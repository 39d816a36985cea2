package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/mocks"
	"github.com/ersonp/campaign-core/internal/domain/ports"
	"github.com/ersonp/campaign-core/internal/domain/schema"
)

func newAuthFixture() (*AuthService, *mocks.Store, *mocks.SessionStore) {
	store := mocks.NewStore(newTestStore())
	sessions := mocks.NewSessionStore()
	return NewAuthService(store, sessions, &mocks.Hasher{}), store, sessions
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	svc, store, sessions := newAuthFixture()

	user, token, err := svc.Register(ctx, schema.Credentials{Username: "alice", Password: "Abcdef12"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, token)
	assert.Equal(t, 1, sessions.Count(user.ID))

	stored, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hashed:Abcdef12", stored.Password)
}

func TestAuthService_RegisterWeakPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, _, err := svc.Register(context.Background(), schema.Credentials{Username: "alice", Password: "abc"})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Fields[0].Field)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture()

	_, _, err := svc.Register(ctx, schema.Credentials{Username: "alice", Password: "Abcdef12"})
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, schema.Credentials{Username: "alice", Password: "Abcdef12"})
	assert.ErrorIs(t, err, ports.ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture()

	_, _, err := svc.Register(ctx, schema.Credentials{Username: "alice", Password: "Abcdef12"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		creds   schema.Credentials
		wantErr error
	}{
		{name: "valid", creds: schema.Credentials{Username: "alice", Password: "Abcdef12"}},
		{name: "wrong password", creds: schema.Credentials{Username: "alice", Password: "Abcdef13"}, wantErr: ErrInvalidCredentials},
		{name: "unknown user", creds: schema.Credentials{Username: "bob", Password: "Abcdef12"}, wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := svc.Login(ctx, tt.creds)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)
			assert.NotEmpty(t, token)
		})
	}
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture()

	user, token, err := svc.Register(ctx, schema.Credentials{Username: "alice", Password: "Abcdef12"})
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Authenticate(ctx, "bogus")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_AuthenticateDeletedUser(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newAuthFixture()

	user, token, err := svc.Register(ctx, schema.Credentials{Username: "alice", Password: "Abcdef12"})
	require.NoError(t, err)
	require.NoError(t, store.Store.DeleteUser(ctx, user.ID))

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	svc, store, sessions := newAuthFixture()
	journals := NewJournalService(store, store)
	ents := NewEntityService(store, store)

	alice, aliceToken, err := svc.Register(ctx, schema.Credentials{Username: "alice", Password: "Abcdef12"})
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, schema.Credentials{Username: "alice", Password: "Abcdef12"})
	require.NoError(t, err)
	bob, _, err := svc.Register(ctx, schema.Credentials{Username: "bob", Password: "Abcdef12"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		mustCreateJournal(t, journals, alice.ID, "# Entry")
		mustCreateEntity(t, ents, alice.ID, "Goblin", entities.EntityTypeCreature, nil)
	}
	bobJournal := mustCreateJournal(t, journals, bob.ID, "# Bob's")

	require.NoError(t, svc.DeleteAccount(ctx, alice.ID))

	_, err = svc.Authenticate(ctx, aliceToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 0, sessions.Count(alice.ID))

	user, err := store.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, user)

	remainingJournals, err := store.GetJournals(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, remainingJournals)

	remainingEntities, err := store.GetEntities(ctx, entities.EntityFilter{UserID: alice.ID})
	require.NoError(t, err)
	assert.Empty(t, remainingEntities)

	got, err := journals.Get(ctx, bob.ID, bobJournal.ID)
	require.NoError(t, err)
	assert.Equal(t, bobJournal.ID, got.ID)
}

func TestAuthService_DeleteAccountFailure(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		inject func(s *mocks.Store, sessions *mocks.SessionStore)
	}{
		{
			name:   "journal deletion fails",
			inject: func(s *mocks.Store, _ *mocks.SessionStore) { s.DeleteJournalErr = errors.New("disk full") },
		},
		{
			name:   "entity deletion fails",
			inject: func(s *mocks.Store, _ *mocks.SessionStore) { s.DeleteEntityErr = errors.New("disk full") },
		},
		{
			name:   "listing fails",
			inject: func(s *mocks.Store, _ *mocks.SessionStore) { s.GetErr = errors.New("timeout") },
		},
		{
			name:   "user deletion fails",
			inject: func(s *mocks.Store, _ *mocks.SessionStore) { s.DeleteUserErr = errors.New("locked") },
		},
		{
			name:   "session cleanup fails",
			inject: func(_ *mocks.Store, sessions *mocks.SessionStore) { sessions.Err = errors.New("redis down") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, sessions := newAuthFixture()
			user, _, err := svc.Register(ctx, schema.Credentials{Username: "alice", Password: "Abcdef12"})
			require.NoError(t, err)
			mustCreateJournal(t, NewJournalService(store, store), user.ID, "x")
			mustCreateEntity(t, NewEntityService(store, store), user.ID, "x", entities.EntityTypeNPC, nil)

			tt.inject(store, sessions)
			err = svc.DeleteAccount(ctx, user.ID)
			assert.ErrorIs(t, err, ErrAccountDeletion)
		})
	}
}

func TestAuthService_DeleteAccountRevokesSessionsFirst(t *testing.T) {
	ctx := context.Background()
	svc, store, sessions := newAuthFixture()
	journals := NewJournalService(store, store)

	user, token, err := svc.Register(ctx, schema.Credentials{Username: "alice", Password: "Abcdef12"})
	require.NoError(t, err)
	mustCreateJournal(t, journals, user.ID, "# Before")

	store.BeforeDeleteUser = func(ctx context.Context, id int64) {
		assert.Equal(t, 0, sessions.Count(id))
		_, err := svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)

		// A write that authenticated before the cascade started.
		mustCreateJournal(t, journals, id, "# In flight")
	}

	require.NoError(t, svc.DeleteAccount(ctx, user.ID))

	remaining, err := store.GetJournals(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestAuthService_DeleteAccountSessionFailureKeepsRecords(t *testing.T) {
	ctx := context.Background()
	svc, store, sessions := newAuthFixture()

	user, _, err := svc.Register(ctx, schema.Credentials{Username: "alice", Password: "Abcdef12"})
	require.NoError(t, err)
	mustCreateJournal(t, NewJournalService(store, store), user.ID, "# Kept")

	sessions.Err = errors.New("redis down")
	require.ErrorIs(t, svc.DeleteAccount(ctx, user.ID), ErrAccountDeletion)

	remaining, err := store.GetJournals(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	stored, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}
