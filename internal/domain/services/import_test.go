package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/mocks"
	"github.com/ersonp/campaign-core/internal/infrastructure/parsers"
)

func newImportFixture() (*ImportService, *mocks.Store) {
	store := mocks.NewStore(newTestStore())
	return NewImportService(store, NewEntityTypeService()), store
}

func TestImportService_Import_ValidRows(t *testing.T) {
	ctx := context.Background()
	svc, store := newImportFixture()

	rows := []parsers.RawEntity{
		{Name: "Drizzt", Type: "NPC", Properties: map[string]any{"race": "Drow", "relationship": "ally"}, Tags: []string{"hero"}},
		{Name: "Icewind Dale", Type: "location", Description: "Frozen north"},
	}

	result, err := svc.Import(ctx, 4, rows, ImportOptions{OnConflict: ConflictSkip})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)

	stored, err := store.GetEntities(ctx, entities.EntityFilter{UserID: 4})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, entities.EntityTypeNPC, stored[0].Type)
	assert.Equal(t, "Drow", stored[0].Properties.NPC.Race)
	assert.Equal(t, []string{"hero"}, stored[0].Tags)
	assert.Equal(t, []string{}, stored[1].Tags)
}

func TestImportService_Import_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	svc, store := newImportFixture()

	rows := []parsers.RawEntity{
		{Name: "", Type: "npc", LineNum: 2},
		{Name: "Thing", Type: "", LineNum: 3},
		{Name: "Thing", Type: "dragon", LineNum: 4},
		{Name: "Bad ref", Type: "npc", Properties: map[string]any{"organization": "abc"}, LineNum: 5},
		{Name: "Good", Type: "creature", LineNum: 6},
	}

	result, err := svc.Import(ctx, 1, rows, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 4)

	tests := []struct {
		line  int
		field string
	}{
		{2, "name"},
		{3, "type"},
		{4, "type"},
		{5, "properties.organization"},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.line, result.Errors[i].Line)
		assert.Equal(t, tt.field, result.Errors[i].Field)
	}
	assert.Equal(t, "dragon", result.Errors[2].Value)
	assert.Contains(t, result.Errors[0].Error(), "line 2")

	stored, err := store.GetEntities(ctx, entities.EntityFilter{UserID: 1})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestImportService_Import_DryRun(t *testing.T) {
	ctx := context.Background()
	svc, store := newImportFixture()

	result, err := svc.Import(ctx, 1, []parsers.RawEntity{{Name: "Goblin", Type: "creature"}}, ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	stored, err := store.GetEntities(ctx, entities.EntityFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestImportService_Import_Conflicts(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		strategy    ConflictStrategy
		wantUpdated int
		wantSkipped int
		wantDesc    string
	}{
		{name: "skip", strategy: ConflictSkip, wantSkipped: 1, wantDesc: "original"},
		{name: "overwrite", strategy: ConflictOverwrite, wantUpdated: 1, wantDesc: "imported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newImportFixture()
			_, err := svc.Import(ctx, 1, []parsers.RawEntity{{Name: "Goblin", Type: "creature", Description: "original"}}, ImportOptions{})
			require.NoError(t, err)

			rows := []parsers.RawEntity{
				{Name: "goblin", Type: "creature", Description: "imported"},
				{Name: "Goblin", Type: "npc"},
			}
			result, err := svc.Import(ctx, 1, rows, ImportOptions{OnConflict: tt.strategy})
			require.NoError(t, err)
			assert.Equal(t, 1, result.Imported, "same name with another type is a new entity")
			assert.Equal(t, tt.wantUpdated, result.Updated)
			assert.Equal(t, tt.wantSkipped, result.Skipped)

			creatures, err := store.GetEntities(ctx, entities.EntityFilter{UserID: 1, Type: entities.EntityTypeCreature})
			require.NoError(t, err)
			require.Len(t, creatures, 1)
			assert.Equal(t, tt.wantDesc, creatures[0].Description)
		})
	}
}

func TestImportService_Import_ConflictsScopedToCaller(t *testing.T) {
	ctx := context.Background()
	svc, _ := newImportFixture()

	_, err := svc.Import(ctx, 1, []parsers.RawEntity{{Name: "Goblin", Type: "creature"}}, ImportOptions{})
	require.NoError(t, err)

	result, err := svc.Import(ctx, 2, []parsers.RawEntity{{Name: "Goblin", Type: "creature"}}, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Skipped)
}

func TestImportService_Import_StoreError(t *testing.T) {
	svc, store := newImportFixture()
	store.CreateErr = errors.New("disk full")

	_, err := svc.Import(context.Background(), 1, []parsers.RawEntity{{Name: "Goblin", Type: "creature"}}, ImportOptions{})
	assert.ErrorContains(t, err, "disk full")
}
