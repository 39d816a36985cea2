package entities

import (
	"regexp"
	"strings"
	"time"
)

// UntitledEntry is the title of a journal whose content has no heading.
const UntitledEntry = "Untitled Entry"

// headingRegex matches an ATX markdown heading line.
var headingRegex = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.+)$`)

// Journal is a user-owned markdown note.
type Journal struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy of the journal.
func (j *Journal) Clone() *Journal {
	c := *j
	c.Tags = cloneTags(j.Tags)
	return &c
}

// JournalPatch is a partial update. Nil fields are left untouched.
type JournalPatch struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// IsEmpty reports whether the patch changes nothing.
func (p JournalPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil
}

// Apply merges the patch into j field by field.
func (j *Journal) Apply(p JournalPatch) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Content != nil {
		j.Content = *p.Content
	}
	if p.Tags != nil {
		j.Tags = cloneTags(*p.Tags)
	}
}

// DeriveTitle returns the text of the first heading in content, or
// UntitledEntry when there is none.
func DeriveTitle(content string) string {
	for _, match := range headingRegex.FindAllStringSubmatch(content, -1) {
		title := strings.TrimSpace(match[1])
		if title != "" {
			return title
		}
	}
	return UntitledEntry
}
