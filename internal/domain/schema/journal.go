package schema

import (
	"strings"

	"github.com/ersonp/campaign-core/internal/domain/entities"
)

// MaxTitleLength bounds journal titles and entity names.
const MaxTitleLength = 200

// JournalInput holds the client-suppliable journal fields. Nil means absent.
type JournalInput struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// Patch converts the input to a journal patch.
func (in JournalInput) Patch() entities.JournalPatch {
	return entities.JournalPatch{Title: in.Title, Content: in.Content, Tags: in.Tags}
}

// DecodeJournal validates a journal payload. Server-assigned fields are ignored.
func DecodeJournal(body []byte, mode Mode) (JournalInput, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return JournalInput{}, err
	}

	verr := &ValidationError{}
	in := JournalInput{
		Title:   obj.str("title", verr),
		Content: obj.str("content", verr),
		Tags:    obj.tags("tags", verr),
	}

	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		if len([]rune(trimmed)) > MaxTitleLength {
			verr.Add("title", lengthMessage(MaxTitleLength))
		}
		in.Title = &trimmed
	}

	if mode == Create {
		obj.require(verr, "content")
	}

	if err := verr.OrNil(); err != nil {
		return JournalInput{}, err
	}
	return in, nil
}
