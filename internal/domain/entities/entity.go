package entities

import (
	"encoding/json"
	"time"
)

// Entity is a user-owned campaign record: an NPC, creature, location or
// organization.
type Entity struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Name        string     `json:"name"`
	Type        EntityType `json:"type"`
	Description string     `json:"description"`
	Properties  Properties `json:"properties"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// UnmarshalJSON decodes an entity, building the property variant from its type.
func (e *Entity) UnmarshalJSON(data []byte) error {
	type alias Entity
	aux := struct {
		*alias
		Properties map[string]any `json:"properties"`
	}{alias: (*alias)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	props, err := DecodeProperties(e.Type, aux.Properties)
	if err != nil {
		return err
	}
	e.Properties = props
	return nil
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	c := *e
	c.Tags = cloneTags(e.Tags)
	c.Properties = e.Properties.Clone()
	return &c
}

// EntityPatch is a partial update. Nil fields are left untouched.
type EntityPatch struct {
	Name        *string
	Type        *EntityType
	Description *string
	Properties  *Properties
	Tags        *[]string
}

// IsEmpty reports whether the patch changes nothing.
func (p EntityPatch) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.Description == nil && p.Properties == nil && p.Tags == nil
}

// Apply merges the patch into e field by field. Changing the type without
// new properties converts the existing properties to the new template,
// dropping values the new template cannot hold. Callers that must not lose
// values check Retype first and pass the converted properties in the patch.
func (e *Entity) Apply(p EntityPatch) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Type != nil && *p.Type != e.Type {
		e.Type = *p.Type
		if p.Properties == nil {
			e.Properties, _ = e.Properties.Retype(e.Type)
		}
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Properties != nil {
		e.Properties = p.Properties.Clone()
	}
	if p.Tags != nil {
		e.Tags = cloneTags(*p.Tags)
	}
}

// EntityFilter selects entities. Zero fields do not filter.
type EntityFilter struct {
	Type   EntityType
	UserID int64
}

// Matches reports whether e passes every set predicate.
func (f EntityFilter) Matches(e *Entity) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.UserID != 0 && e.UserID != f.UserID {
		return false
	}
	return true
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	c := make([]string, len(tags))
	copy(c, tags)
	return c
}
