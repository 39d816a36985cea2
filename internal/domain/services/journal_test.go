package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/schema"
)

func TestJournalService_Create(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := NewJournalService(store, store)

	tests := []struct {
		name      string
		input     schema.JournalInput
		wantTitle string
	}{
		{
			name:      "derives title from heading",
			input:     schema.JournalInput{Content: strPtr("Intro\n## The Road North\nSnow.")},
			wantTitle: "The Road North",
		},
		{
			name:      "no heading",
			input:     schema.JournalInput{Content: strPtr("just text")},
			wantTitle: entities.UntitledEntry,
		},
		{
			name:      "blank title is derived",
			input:     schema.JournalInput{Title: strPtr(""), Content: strPtr("# Day One")},
			wantTitle: "Day One",
		},
		{
			name:      "explicit title wins",
			input:     schema.JournalInput{Title: strPtr("Recap"), Content: strPtr("# Day One")},
			wantTitle: "Recap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := svc.Create(ctx, 7, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, j.Title)
			assert.Equal(t, int64(7), j.UserID)
			assert.NotNil(t, j.Tags)
		})
	}
}

func TestJournalService_Ownership(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := NewJournalService(store, store)

	owned := mustCreateJournal(t, svc, 1, "# Mine")

	t.Run("owner can read", func(t *testing.T) {
		j, err := svc.Get(ctx, 1, owned.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mine", j.Title)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		_, err := svc.Get(ctx, 2, owned.ID)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = svc.Update(ctx, 2, owned.ID, schema.JournalInput{Content: strPtr("hijack")})
		assert.ErrorIs(t, err, ErrForbidden)

		assert.ErrorIs(t, svc.Delete(ctx, 2, owned.ID), ErrForbidden)

		_, err = svc.Mentions(ctx, 2, owned.ID)
		assert.ErrorIs(t, err, ErrForbidden)

		j, err := svc.Get(ctx, 1, owned.ID)
		require.NoError(t, err)
		assert.Equal(t, "# Mine", j.Content, "forbidden update leaves record untouched")
	})

	t.Run("missing is not found", func(t *testing.T) {
		_, err := svc.Get(ctx, 1, 999)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, 2, 999), ErrNotFound)
	})

	t.Run("list is scoped to caller", func(t *testing.T) {
		mustCreateJournal(t, svc, 2, "# Theirs")
		list, err := svc.List(ctx, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, owned.ID, list[0].ID)
	})
}

func TestJournalService_Update(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := NewJournalService(store, store)

	j, err := svc.Create(ctx, 1, schema.JournalInput{
		Content: strPtr("# First"),
		Tags:    &[]string{"a"},
	})
	require.NoError(t, err)

	t.Run("empty patch changes nothing", func(t *testing.T) {
		got, err := svc.Update(ctx, 1, j.ID, schema.JournalInput{})
		require.NoError(t, err)
		assert.Equal(t, j.Title, got.Title)
		assert.Equal(t, j.Content, got.Content)
		assert.Equal(t, j.Tags, got.Tags)
		assert.Equal(t, j.CreatedAt, got.CreatedAt)
	})

	t.Run("new content re-derives title", func(t *testing.T) {
		got, err := svc.Update(ctx, 1, j.ID, schema.JournalInput{Content: strPtr("# Second")})
		require.NoError(t, err)
		assert.Equal(t, "Second", got.Title)
		assert.Equal(t, []string{"a"}, got.Tags)
	})

	t.Run("explicit title kept", func(t *testing.T) {
		got, err := svc.Update(ctx, 1, j.ID, schema.JournalInput{Title: strPtr("Custom")})
		require.NoError(t, err)
		assert.Equal(t, "Custom", got.Title)
		assert.Equal(t, "# Second", got.Content)
	})

	t.Run("blank title derived from stored content", func(t *testing.T) {
		got, err := svc.Update(ctx, 1, j.ID, schema.JournalInput{Title: strPtr("")})
		require.NoError(t, err)
		assert.Equal(t, "Second", got.Title)
	})

	t.Run("owner is immutable", func(t *testing.T) {
		got, err := svc.Get(ctx, 1, j.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.UserID)
	})
}

func TestJournalService_Mentions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	journals := NewJournalService(store, store)
	ents := NewEntityService(store, store)

	drizzt := mustCreateEntity(t, ents, 1, "Drizzt", entities.EntityTypeNPC, nil)
	foreign := mustCreateEntity(t, ents, 2, "Wulfgar", entities.EntityTypeNPC, nil)

	content := "# Log\n" +
		"Met " + entities.MentionLink(drizzt) + ".\n" +
		"Heard of [Wulfgar](entity/npc/" + itoa(foreign.ID) + ").\n" +
		"Wrong type [Drizzt](entity/location/" + itoa(drizzt.ID) + ").\n" +
		"Gone [Ghost](entity/creature/999).\n" +
		"Again " + entities.MentionLink(drizzt) + "."
	j := mustCreateJournal(t, journals, 1, content)

	mentions, err := journals.Mentions(ctx, 1, j.ID)
	require.NoError(t, err)
	require.Len(t, mentions, 4)

	assert.Equal(t, "Drizzt", mentions[0].Label)
	require.NotNil(t, mentions[0].Entity)
	assert.Equal(t, drizzt.ID, mentions[0].Entity.ID)

	assert.Nil(t, mentions[1].Entity, "entity of another user does not resolve")
	assert.Nil(t, mentions[2].Entity, "type mismatch does not resolve")
	assert.Nil(t, mentions[3].Entity, "missing entity does not resolve")

	require.NoError(t, ents.Delete(ctx, 1, drizzt.ID))
	mentions, err = journals.Mentions(ctx, 1, j.ID)
	require.NoError(t, err)
	assert.Nil(t, mentions[0].Entity, "deleted entity leaves a broken link")

	got, err := journals.Get(ctx, 1, j.ID)
	require.NoError(t, err)
	assert.Equal(t, content, got.Content)
}
