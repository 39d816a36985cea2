// Package entities contains core domain data structures.
package entities

// EntityType is the kind of a campaign entity. The set is closed.
type EntityType string

// Valid entity types.
const (
	EntityTypeNPC          EntityType = "npc"
	EntityTypeCreature     EntityType = "creature"
	EntityTypeLocation     EntityType = "location"
	EntityTypeOrganization EntityType = "organization"
)

// IsValid reports whether t is one of the known entity types.
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeNPC, EntityTypeCreature, EntityTypeLocation, EntityTypeOrganization:
		return true
	default:
		return false
	}
}

// TypeTemplate describes the property keys carried by an entity type.
type TypeTemplate struct {
	Type        EntityType `json:"type"`
	Description string     `json:"description"`
	Properties  []string   `json:"properties"`
}

// DefaultTemplates are the built-in property templates, one per entity type.
var DefaultTemplates = []TypeTemplate{
	{
		Type:        EntityTypeNPC,
		Description: "Non-player characters the party meets",
		Properties:  []string{"race", "class", "alignment", "location", "relationship", "organization"},
	},
	{
		Type:        EntityTypeCreature,
		Description: "Monsters, beasts and other creatures",
		Properties:  []string{"type", "size", "alignment", "habitat", "challengeRating"},
	},
	{
		Type:        EntityTypeLocation,
		Description: "Places, regions, settlements and dungeons",
		Properties:  []string{"type", "climate", "population", "government", "description", "activeOrganizations"},
	},
	{
		Type:        EntityTypeOrganization,
		Description: "Guilds, factions, cults and governments",
		Properties:  []string{"type", "alignment", "headquarters", "leader", "goals"},
	},
}

// TypeNames returns the names of all entity types in template order.
func TypeNames() []string {
	names := make([]string, len(DefaultTemplates))
	for i, t := range DefaultTemplates {
		names[i] = string(t.Type)
	}
	return names
}

// PropertyTemplate returns the property keys for an entity type, or nil for
// an unknown type.
func PropertyTemplate(t EntityType) []string {
	for _, tmpl := range DefaultTemplates {
		if tmpl.Type == t {
			keys := make([]string, len(tmpl.Properties))
			copy(keys, tmpl.Properties)
			return keys
		}
	}
	return nil
}
