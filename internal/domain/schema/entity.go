package schema

import (
	"errors"
	"strings"

	"github.com/ersonp/campaign-core/internal/domain/entities"
)

// EntityInput holds the client-suppliable entity fields. Nil means absent.
type EntityInput struct {
	Name        *string
	Type        *entities.EntityType
	Description *string
	Properties  map[string]any
	Tags        *[]string
}

// DecodeEntity validates an entity payload. Properties stay an open map
// until the entity type is known; see Patch.
func DecodeEntity(body []byte, mode Mode) (EntityInput, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return EntityInput{}, err
	}

	verr := &ValidationError{}
	in := EntityInput{
		Name:        obj.str("name", verr),
		Description: obj.str("description", verr),
		Properties:  obj.object("properties", verr),
		Tags:        obj.tags("tags", verr),
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		switch {
		case name == "":
			verr.Add("name", "must not be blank")
		case len([]rune(name)) > MaxTitleLength:
			verr.Add("name", lengthMessage(MaxTitleLength))
		}
		in.Name = &name
	}

	if typ := obj.str("type", verr); typ != nil {
		t := entities.EntityType(strings.ToLower(strings.TrimSpace(*typ)))
		if t.IsValid() {
			in.Type = &t
		} else {
			verr.Add("type", "must be one of "+strings.Join(entities.TypeNames(), ", "))
		}
	}

	if mode == Create {
		obj.require(verr, "name", "type")
	}

	if in.Type != nil && in.Properties != nil {
		if _, err := entities.DecodeProperties(*in.Type, in.Properties); err != nil {
			addPropertyError(verr, err)
		}
	}

	if err := verr.OrNil(); err != nil {
		return EntityInput{}, err
	}
	return in, nil
}

// Patch converts the input to an entity patch. current is the stored type
// of the entity being updated, or empty on create; properties are decoded
// against the new type when one is supplied.
func (in EntityInput) Patch(current entities.EntityType) (entities.EntityPatch, error) {
	patch := entities.EntityPatch{
		Name:        in.Name,
		Type:        in.Type,
		Description: in.Description,
		Tags:        in.Tags,
	}

	if in.Properties == nil {
		return patch, nil
	}

	target := current
	if in.Type != nil {
		target = *in.Type
	}
	if !target.IsValid() {
		return entities.EntityPatch{}, Invalid("type", "is required when properties are set")
	}

	props, err := entities.DecodeProperties(target, in.Properties)
	if err != nil {
		verr := &ValidationError{}
		addPropertyError(verr, err)
		return entities.EntityPatch{}, verr
	}
	patch.Properties = &props
	return patch, nil
}

func addPropertyError(verr *ValidationError, err error) {
	var propErr *entities.PropertyError
	if errors.As(err, &propErr) {
		verr.Add("properties."+propErr.Key, propErr.Message)
		return
	}
	verr.Add("properties", err.Error())
}
