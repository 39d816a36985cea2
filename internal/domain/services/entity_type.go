package services

import (
	"fmt"
	"strings"

	"github.com/ersonp/campaign-core/internal/domain/entities"
)

// EntityTypeService exposes the closed set of entity types and their
// property templates.
type EntityTypeService struct {
	templates []entities.TypeTemplate
	byName    map[entities.EntityType]entities.TypeTemplate
}

// NewEntityTypeService creates a new EntityTypeService over the built-in
// templates.
func NewEntityTypeService() *EntityTypeService {
	s := &EntityTypeService{
		templates: make([]entities.TypeTemplate, len(entities.DefaultTemplates)),
		byName:    make(map[entities.EntityType]entities.TypeTemplate, len(entities.DefaultTemplates)),
	}
	for i, t := range entities.DefaultTemplates {
		t.Properties = entities.PropertyTemplate(t.Type)
		s.templates[i] = t
		s.byName[t.Type] = t
	}
	return s
}

// List returns all entity type templates in declaration order.
func (s *EntityTypeService) List() []entities.TypeTemplate {
	result := make([]entities.TypeTemplate, len(s.templates))
	for i, t := range s.templates {
		t.Properties = append([]string(nil), t.Properties...)
		result[i] = t
	}
	return result
}

// Get returns the template for a type name.
func (s *EntityTypeService) Get(name string) (*entities.TypeTemplate, error) {
	t, err := s.ParseType(name)
	if err != nil {
		return nil, err
	}
	tmpl := s.byName[t]
	tmpl.Properties = append([]string(nil), tmpl.Properties...)
	return &tmpl, nil
}

// GetValidTypes returns all valid type names.
func (s *EntityTypeService) GetValidTypes() []string {
	return entities.TypeNames()
}

// ParseType normalizes a user-supplied type name.
func (s *EntityTypeService) ParseType(name string) (entities.EntityType, error) {
	t := entities.EntityType(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := s.byName[t]; !ok {
		return "", fmt.Errorf("invalid entity type %q (valid: %s)", name, strings.Join(s.GetValidTypes(), ", "))
	}
	return t, nil
}
