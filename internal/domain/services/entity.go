package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/ports"
	"github.com/ersonp/campaign-core/internal/domain/schema"
)

// ResolvedReference is a property reference together with the entity it
// points at, or nil when the reference is broken.
type ResolvedReference struct {
	entities.PropertyRef
	Entity *entities.Entity `json:"entity"`
}

// EntityService manages entity operations on behalf of a caller.
type EntityService struct {
	entities ports.EntityStore
	journals ports.JournalStore
}

// NewEntityService creates a new EntityService.
func NewEntityService(entityStore ports.EntityStore, journals ports.JournalStore) *EntityService {
	return &EntityService{
		entities: entityStore,
		journals: journals,
	}
}

// List returns the caller's entities, optionally of one type.
func (s *EntityService) List(ctx context.Context, callerID int64, typ entities.EntityType) ([]*entities.Entity, error) {
	result, err := s.entities.GetEntities(ctx, entities.EntityFilter{Type: typ, UserID: callerID})
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	return result, nil
}

// Get returns an entity owned by the caller.
func (s *EntityService) Get(ctx context.Context, callerID, id int64) (*entities.Entity, error) {
	e, err := s.entities.GetEntity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding entity: %w", err)
	}
	if e == nil {
		return nil, fmt.Errorf("entity %d: %w", id, ErrNotFound)
	}
	if err := authorize(e.UserID, callerID); err != nil {
		return nil, err
	}
	return e, nil
}

// Create stores an entity owned by the caller. Omitted properties get the
// empty template for the type.
func (s *EntityService) Create(ctx context.Context, callerID int64, in schema.EntityInput) (*entities.Entity, error) {
	verr := &schema.ValidationError{}
	if in.Name == nil {
		verr.Add("name", "is required")
	}
	if in.Type == nil {
		verr.Add("type", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	patch, err := in.Patch("")
	if err != nil {
		return nil, err
	}

	e := &entities.Entity{
		UserID:     callerID,
		Type:       *in.Type,
		Properties: entities.NewProperties(*in.Type),
		Tags:       []string{},
	}
	e.Apply(patch)

	created, err := s.entities.CreateEntity(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("creating entity: %w", err)
	}
	return created, nil
}

// Update merges in into an entity owned by the caller.
func (s *EntityService) Update(ctx context.Context, callerID, id int64, in schema.EntityInput) (*entities.Entity, error) {
	current, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	patch, err := in.Patch(current.Type)
	if err != nil {
		return nil, err
	}
	if patch.Type != nil && *patch.Type != current.Type && patch.Properties == nil {
		converted, err := current.Properties.Retype(*patch.Type)
		if err != nil {
			return nil, retypeFailure(*patch.Type, err)
		}
		patch.Properties = &converted
	}

	updated, err := s.entities.UpdateEntity(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("updating entity: %w", err)
	}
	return updated, nil
}

// retypeFailure reports a stored property the new type cannot hold.
func retypeFailure(t entities.EntityType, err error) error {
	var propErr *entities.PropertyError
	if errors.As(err, &propErr) {
		return schema.Invalid("properties."+propErr.Key, fmt.Sprintf("cannot convert to %s: %s", t, propErr.Message))
	}
	return schema.Invalid("properties", err.Error())
}

// Delete removes an entity owned by the caller. References to it from other
// records are left in place and resolve as broken.
func (s *EntityService) Delete(ctx context.Context, callerID, id int64) error {
	if _, err := s.Get(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.entities.DeleteEntity(ctx, id); err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}
	return nil
}

// References resolves the soft references in an entity's properties.
func (s *EntityService) References(ctx context.Context, callerID, id int64) ([]ResolvedReference, error) {
	e, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	refs := e.Properties.References()
	resolved := make([]ResolvedReference, 0, len(refs))
	for _, ref := range refs {
		target, err := resolveRef(ctx, s.entities, callerID, ref.EntityRef)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, ResolvedReference{PropertyRef: ref, Entity: target})
	}
	return resolved, nil
}

// Backlinks returns the caller's journals that link to the entity.
func (s *EntityService) Backlinks(ctx context.Context, callerID, id int64) ([]*entities.Journal, error) {
	e, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	journals, err := s.journals.GetJournals(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}

	target := entities.EntityRef{ID: e.ID, Type: e.Type}
	result := make([]*entities.Journal, 0)
	for _, j := range journals {
		for _, m := range entities.ParseMentions(j.Content) {
			if m.Ref() == target {
				result = append(result, j)
				break
			}
		}
	}
	return result, nil
}
