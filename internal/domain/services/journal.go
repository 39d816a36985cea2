package services

import (
	"context"
	"fmt"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/ports"
	"github.com/ersonp/campaign-core/internal/domain/schema"
)

// ResolvedMention is a journal link together with the entity it points at.
// Entity is nil when the link is broken: the entity is missing, belongs to
// someone else or has a different type.
type ResolvedMention struct {
	entities.Mention
	Entity *entities.Entity `json:"entity"`
}

// JournalService manages journal entries on behalf of a caller.
type JournalService struct {
	journals ports.JournalStore
	entities ports.EntityStore
}

// NewJournalService creates a new JournalService.
func NewJournalService(journals ports.JournalStore, entityStore ports.EntityStore) *JournalService {
	return &JournalService{
		journals: journals,
		entities: entityStore,
	}
}

// List returns the caller's journals.
func (s *JournalService) List(ctx context.Context, callerID int64) ([]*entities.Journal, error) {
	journals, err := s.journals.GetJournals(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}
	return journals, nil
}

// Get returns a journal owned by the caller.
func (s *JournalService) Get(ctx context.Context, callerID, id int64) (*entities.Journal, error) {
	j, err := s.journals.GetJournal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding journal: %w", err)
	}
	if j == nil {
		return nil, fmt.Errorf("journal %d: %w", id, ErrNotFound)
	}
	if err := authorize(j.UserID, callerID); err != nil {
		return nil, err
	}
	return j, nil
}

// Create stores a journal owned by the caller. Without a title, the title
// is derived from the content.
func (s *JournalService) Create(ctx context.Context, callerID int64, in schema.JournalInput) (*entities.Journal, error) {
	j := &entities.Journal{UserID: callerID, Tags: []string{}}
	j.Apply(in.Patch())

	if j.Title == "" {
		j.Title = entities.DeriveTitle(j.Content)
	}

	created, err := s.journals.CreateJournal(ctx, j)
	if err != nil {
		return nil, fmt.Errorf("creating journal: %w", err)
	}
	return created, nil
}

// Update merges in into a journal owned by the caller. New content without
// a title, or a blank title, re-derives the title.
func (s *JournalService) Update(ctx context.Context, callerID, id int64, in schema.JournalInput) (*entities.Journal, error) {
	current, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	patch := in.Patch()
	content := current.Content
	if patch.Content != nil {
		content = *patch.Content
	}
	if (patch.Title == nil && patch.Content != nil) || (patch.Title != nil && *patch.Title == "") {
		title := entities.DeriveTitle(content)
		patch.Title = &title
	}

	updated, err := s.journals.UpdateJournal(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("updating journal: %w", err)
	}
	return updated, nil
}

// Delete removes a journal owned by the caller.
func (s *JournalService) Delete(ctx context.Context, callerID, id int64) error {
	if _, err := s.Get(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.journals.DeleteJournal(ctx, id); err != nil {
		return fmt.Errorf("deleting journal: %w", err)
	}
	return nil
}

// Mentions returns the entity links in a journal, resolved at read time.
func (s *JournalService) Mentions(ctx context.Context, callerID, id int64) ([]ResolvedMention, error) {
	j, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	mentions := entities.ParseMentions(j.Content)
	resolved := make([]ResolvedMention, 0, len(mentions))
	for _, m := range mentions {
		e, err := resolveRef(ctx, s.entities, callerID, m.Ref())
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, ResolvedMention{Mention: m, Entity: e})
	}
	return resolved, nil
}

// resolveRef loads the referenced entity when it exists, belongs to the
// caller and has the expected type.
func resolveRef(ctx context.Context, store ports.EntityStore, callerID int64, ref entities.EntityRef) (*entities.Entity, error) {
	e, err := store.GetEntity(ctx, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("resolving entity %d: %w", ref.ID, err)
	}
	if e == nil || e.UserID != callerID || e.Type != ref.Type {
		return nil, nil
	}
	return e, nil
}
