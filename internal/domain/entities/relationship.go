package entities

// Relationship describes how an NPC regards the party.
type Relationship string

const (
	RelationshipAlly         Relationship = "ally"
	RelationshipAcquaintance Relationship = "acquaintance"
	RelationshipEnemy        Relationship = "enemy"
)

// IsValid reports whether r is one of the known relationships.
// The empty relationship is not valid; callers treat it as unset.
func (r Relationship) IsValid() bool {
	switch r {
	case RelationshipAlly, RelationshipAcquaintance, RelationshipEnemy:
		return true
	default:
		return false
	}
}
