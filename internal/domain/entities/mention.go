package entities

import (
	"fmt"
	"regexp"
	"strconv"
)

// mentionRegex matches markdown links of the form [label](entity/{type}/{id}).
var mentionRegex = regexp.MustCompile(`\[([^\]]*)\]\(/?entity/(npc|creature|location|organization)/([0-9]+)\)`)

// Mention is a link from journal content to an entity.
type Mention struct {
	Label string     `json:"label"`
	Type  EntityType `json:"type"`
	ID    int64      `json:"id"`
}

// Ref returns the mention as an entity reference.
func (m Mention) Ref() EntityRef {
	return EntityRef{ID: m.ID, Type: m.Type}
}

// ParseMentions returns the entity links in content in document order.
// Repeated links to the same entity are reported once.
func ParseMentions(content string) []Mention {
	matches := mentionRegex.FindAllStringSubmatch(content, -1)
	mentions := make([]Mention, 0, len(matches))
	seen := make(map[EntityRef]bool, len(matches))

	for _, match := range matches {
		id, err := strconv.ParseInt(match[3], 10, 64)
		if err != nil || id == 0 {
			continue
		}
		m := Mention{Label: match[1], Type: EntityType(match[2]), ID: id}
		if seen[m.Ref()] {
			continue
		}
		seen[m.Ref()] = true
		mentions = append(mentions, m)
	}

	return mentions
}

// MentionLink formats the markdown link for an entity.
func MentionLink(e *Entity) string {
	return fmt.Sprintf("[%s](entity/%s/%d)", e.Name, e.Type, e.ID)
}
