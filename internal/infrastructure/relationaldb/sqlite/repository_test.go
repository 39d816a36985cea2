package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/ports"
	"github.com/ersonp/campaign-core/internal/infrastructure/config"
)

// setupTestRepo creates an in-memory SQLite repository for testing.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	err = repo.EnsureSchema(context.Background())
	require.NoError(t, err)

	return repo
}

func TestNewRepository(t *testing.T) {
	t.Run("success with memory database", func(t *testing.T) {
		repo, err := NewRepository(config.SQLiteConfig{Path: ":memory:"})
		require.NoError(t, err)
		defer repo.Close()
		assert.NotNil(t, repo)
	})

	t.Run("error with empty path", func(t *testing.T) {
		_, err := NewRepository(config.SQLiteConfig{Path: ""})
		require.Error(t, err)
	})
}

func TestRepository_EnsureSchema(t *testing.T) {
	repo := setupTestRepo(t)

	// Verify tables exist
	tables := []string{"users", "journals", "entities"}
	for _, table := range tables {
		var count int
		err := repo.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestRepository_EnsureSchema_ReportsPath(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.Close())

	err := repo.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":memory:")
}

func TestRepository_EnsureSchema_Idempotent(t *testing.T) {
	repo := setupTestRepo(t)

	// Should not error when called again
	err := repo.EnsureSchema(context.Background())
	require.NoError(t, err)
}

func TestRepository_Users(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = time.Now })

	t.Run("create and find", func(t *testing.T) {
		user, err := repo.CreateUser(ctx, &entities.User{Username: "alice", Password: "hash"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, fixed, user.CreatedAt)

		found, err := repo.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user, found)

		byID, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "hash", byID.Password)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, &entities.User{Username: "alice", Password: "x"})
		assert.ErrorIs(t, err, ports.ErrConflict)
	})

	t.Run("missing user", func(t *testing.T) {
		found, err := repo.GetUser(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteUser(ctx, 1))
		assert.ErrorIs(t, repo.DeleteUser(ctx, 1), ports.ErrNotFound)
	})
}

func TestRepository_Journals(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateJournal(ctx, &entities.Journal{
		UserID:  3,
		Title:   "Session 1",
		Content: "# Session 1\nWe met [Drizzt](entity/npc/1).",
		Tags:    []string{"session", "icewind"},
	})
	require.NoError(t, err)

	t.Run("get round trip", func(t *testing.T) {
		got, err := repo.GetJournal(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Title, got.Title)
		assert.Equal(t, created.Content, got.Content)
		assert.Equal(t, created.Tags, got.Tags)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("list by owner", func(t *testing.T) {
		_, err := repo.CreateJournal(ctx, &entities.Journal{UserID: 4, Content: "other"})
		require.NoError(t, err)

		list, err := repo.GetJournals(ctx, 3)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})

	t.Run("update merges", func(t *testing.T) {
		content := "# Changed"
		updated, err := repo.UpdateJournal(ctx, created.ID, entities.JournalPatch{Content: &content})
		require.NoError(t, err)
		assert.Equal(t, "Session 1", updated.Title)
		assert.Equal(t, content, updated.Content)
		assert.Equal(t, []string{"session", "icewind"}, updated.Tags)
	})

	t.Run("update absent", func(t *testing.T) {
		title := "x"
		_, err := repo.UpdateJournal(ctx, 999, entities.JournalPatch{Title: &title})
		assert.ErrorIs(t, err, ports.ErrNotFound)

		got, err := repo.GetJournal(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteJournal(ctx, created.ID))
		assert.ErrorIs(t, repo.DeleteJournal(ctx, created.ID), ports.ErrNotFound)
	})
}

func TestRepository_Entities(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	props, err := entities.DecodeProperties(entities.EntityTypeLocation, map[string]any{
		"climate":             "Arctic",
		"activeOrganizations": []any{"2", "3"},
		"notes":               "extra key",
	})
	require.NoError(t, err)

	created, err := repo.CreateEntity(ctx, &entities.Entity{
		UserID:      5,
		Name:        "Bryn Shander",
		Type:        entities.EntityTypeLocation,
		Description: "Largest of the Ten-Towns",
		Properties:  props,
		Tags:        []string{"ten-towns"},
	})
	require.NoError(t, err)

	t.Run("properties round trip", func(t *testing.T) {
		got, err := repo.GetEntity(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Properties, got.Properties)
		assert.Equal(t, created.Tags, got.Tags)
		assert.Equal(t, "Bryn Shander", got.Name)
	})

	t.Run("filter", func(t *testing.T) {
		for _, e := range []struct {
			userID int64
			typ    entities.EntityType
		}{
			{5, entities.EntityTypeNPC},
			{6, entities.EntityTypeNPC},
			{5, entities.EntityTypeNPC},
		} {
			_, err := repo.CreateEntity(ctx, &entities.Entity{
				UserID:     e.userID,
				Name:       "npc",
				Type:       e.typ,
				Properties: entities.NewProperties(e.typ),
			})
			require.NoError(t, err)
		}

		all, err := repo.GetEntities(ctx, entities.EntityFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 4)

		npcs, err := repo.GetEntities(ctx, entities.EntityFilter{Type: entities.EntityTypeNPC, UserID: 5})
		require.NoError(t, err)
		require.Len(t, npcs, 2)
		assert.Less(t, npcs[0].ID, npcs[1].ID)
		for _, e := range npcs {
			assert.Equal(t, int64(5), e.UserID)
			assert.Equal(t, entities.EntityTypeNPC, e.Type)
		}
	})

	t.Run("update type retypes properties", func(t *testing.T) {
		typ := entities.EntityTypeOrganization
		updated, err := repo.UpdateEntity(ctx, created.ID, entities.EntityPatch{Type: &typ})
		require.NoError(t, err)
		require.NotNil(t, updated.Properties.Organization)

		got, err := repo.GetEntity(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.EntityTypeOrganization, got.Type)
		assert.Equal(t, "Arctic", got.Properties.Extra["climate"])
	})

	t.Run("delete absent", func(t *testing.T) {
		assert.ErrorIs(t, repo.DeleteEntity(ctx, 999), ports.ErrNotFound)
	})
}
