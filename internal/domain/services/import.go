package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/ports"
	"github.com/ersonp/campaign-core/internal/infrastructure/parsers"
)

// ConflictStrategy defines how to handle existing entities during import.
// An entity exists when the user already owns one with the same name and type.
type ConflictStrategy string

const (
	// ConflictSkip skips entities that already exist.
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite updates existing entities with the imported data.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing entities
}

// ImportError represents an error for a specific row during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Updated  int
	Skipped  int
	Errors   []ImportError
}

// ImportService handles importing entities from external sources.
type ImportService struct {
	entities ports.EntityStore
	types    *EntityTypeService
}

// NewImportService creates a new import service.
func NewImportService(entityStore ports.EntityStore, types *EntityTypeService) *ImportService {
	return &ImportService{
		entities: entityStore,
		types:    types,
	}
}

// Import validates raw rows and creates entities owned by callerID.
func (s *ImportService) Import(ctx context.Context, callerID int64, rows []parsers.RawEntity, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	// Validate all rows first
	valid, validationErrors := s.validateRows(rows)
	result.Errors = validationErrors

	if len(valid) == 0 {
		return result, nil
	}

	// Handle dry run
	if opts.DryRun {
		result.Imported = len(valid)
		return result, nil
	}

	existing, err := s.existingByKey(ctx, callerID)
	if err != nil {
		return nil, err
	}

	for _, e := range valid {
		e.UserID = callerID
		key := entityKey(e.Name, e.Type)

		current, found := existing[key]
		switch {
		case !found:
			created, err := s.entities.CreateEntity(ctx, e)
			if err != nil {
				return nil, fmt.Errorf("creating entity %q: %w", e.Name, err)
			}
			existing[key] = created
			result.Imported++
		case opts.OnConflict == ConflictOverwrite:
			patch := entities.EntityPatch{
				Description: &e.Description,
				Properties:  &e.Properties,
				Tags:        &e.Tags,
			}
			if _, err := s.entities.UpdateEntity(ctx, current.ID, patch); err != nil && !errors.Is(err, ports.ErrNotFound) {
				return nil, fmt.Errorf("updating entity %q: %w", e.Name, err)
			}
			result.Updated++
		default:
			result.Skipped++
		}
	}

	return result, nil
}

// validateRows converts raw rows to entities and returns any errors.
func (s *ImportService) validateRows(rows []parsers.RawEntity) ([]*entities.Entity, []ImportError) {
	valid := make([]*entities.Entity, 0, len(rows))
	var errs []ImportError

	for i := range rows {
		raw := &rows[i]
		lineNum := raw.LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		e, err := s.convertRow(raw, lineNum)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		valid = append(valid, e)
	}

	return valid, errs
}

// convertRow validates a single raw row and builds the entity.
func (s *ImportService) convertRow(raw *parsers.RawEntity, lineNum int) (*entities.Entity, *ImportError) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil, &ImportError{Line: lineNum, Field: "name", Message: "missing required field: name"}
	}
	if strings.TrimSpace(raw.Type) == "" {
		return nil, &ImportError{Line: lineNum, Field: "type", Message: "missing required field: type"}
	}

	typ, err := s.types.ParseType(raw.Type)
	if err != nil {
		return nil, &ImportError{Line: lineNum, Field: "type", Value: raw.Type, Message: err.Error()}
	}

	props, err := entities.DecodeProperties(typ, raw.Properties)
	if err != nil {
		field := "properties"
		var propErr *entities.PropertyError
		if errors.As(err, &propErr) {
			field = "properties." + propErr.Key
		}
		return nil, &ImportError{Line: lineNum, Field: field, Message: err.Error()}
	}

	tags := raw.Tags
	if tags == nil {
		tags = []string{}
	}

	return &entities.Entity{
		Name:        name,
		Type:        typ,
		Description: raw.Description,
		Properties:  props,
		Tags:        tags,
	}, nil
}

// existingByKey indexes the caller's entities by name and type.
func (s *ImportService) existingByKey(ctx context.Context, callerID int64) (map[string]*entities.Entity, error) {
	owned, err := s.entities.GetEntities(ctx, entities.EntityFilter{UserID: callerID})
	if err != nil {
		return nil, fmt.Errorf("listing existing entities: %w", err)
	}
	index := make(map[string]*entities.Entity, len(owned))
	for _, e := range owned {
		index[entityKey(e.Name, e.Type)] = e
	}
	return index, nil
}

func entityKey(name string, typ entities.EntityType) string {
	return string(typ) + "/" + strings.ToLower(name)
}
