package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/schema"
	"github.com/ersonp/campaign-core/internal/infrastructure/storage/memory"
)

func strPtr(s string) *string { return &s }

func typePtr(t entities.EntityType) *entities.EntityType { return &t }

func newTestStore() *memory.Store {
	return memory.New()
}

func mustCreateEntity(t *testing.T, svc *EntityService, callerID int64, name string, typ entities.EntityType, props map[string]any) *entities.Entity {
	t.Helper()
	e, err := svc.Create(context.Background(), callerID, schema.EntityInput{
		Name:       strPtr(name),
		Type:       typePtr(typ),
		Properties: props,
	})
	require.NoError(t, err)
	return e
}

func mustCreateJournal(t *testing.T, svc *JournalService, callerID int64, content string) *entities.Journal {
	t.Helper()
	j, err := svc.Create(context.Background(), callerID, schema.JournalInput{Content: strPtr(content)})
	require.NoError(t, err)
	return j
}
