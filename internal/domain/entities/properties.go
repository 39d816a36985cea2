package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// EntityRef is a soft reference to another entity. It is not enforced at
// write time; resolution happens when the record is read.
type EntityRef struct {
	ID   int64      `json:"id"`
	Type EntityType `json:"type"`
}

// IsZero reports whether the reference points at nothing.
func (r EntityRef) IsZero() bool {
	return r.ID == 0
}

// String returns the id as a decimal string, or "" when unset.
func (r EntityRef) String() string {
	if r.IsZero() {
		return ""
	}
	return strconv.FormatInt(r.ID, 10)
}

// NPCProperties are the template fields of an npc.
type NPCProperties struct {
	Race         string
	Class        string
	Alignment    string
	Location     string
	Relationship Relationship
	Organization EntityRef
}

// CreatureProperties are the template fields of a creature.
type CreatureProperties struct {
	Type            string
	Size            string
	Alignment       string
	Habitat         string
	ChallengeRating string
}

// LocationProperties are the template fields of a location.
type LocationProperties struct {
	Type                string
	Climate             string
	Population          string
	Government          string
	Description         string
	ActiveOrganizations []EntityRef
}

// OrganizationProperties are the template fields of an organization.
type OrganizationProperties struct {
	Type         string
	Alignment    string
	Headquarters EntityRef
	Leader       string
	Goals        string
}

// Properties is the type-specific property bag of an entity. Exactly one
// variant is set, matching the entity type. Keys outside the template are
// kept in Extra.
type Properties struct {
	NPC          *NPCProperties
	Creature     *CreatureProperties
	Location     *LocationProperties
	Organization *OrganizationProperties
	Extra        map[string]any
}

// PropertyError reports a property value that cannot be decoded.
type PropertyError struct {
	Key     string
	Message string
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("property %s: %s", e.Key, e.Message)
}

// NewProperties returns the empty template for t.
func NewProperties(t EntityType) Properties {
	switch t {
	case EntityTypeNPC:
		return Properties{NPC: &NPCProperties{}}
	case EntityTypeCreature:
		return Properties{Creature: &CreatureProperties{}}
	case EntityTypeLocation:
		return Properties{Location: &LocationProperties{ActiveOrganizations: []EntityRef{}}}
	case EntityTypeOrganization:
		return Properties{Organization: &OrganizationProperties{}}
	default:
		return Properties{}
	}
}

// DecodeProperties builds the typed variant for t from an open map.
// Missing template keys are left empty.
func DecodeProperties(t EntityType, raw map[string]any) (Properties, error) {
	if !t.IsValid() {
		return Properties{}, fmt.Errorf("unknown entity type %q", t)
	}

	d := &propDecoder{raw: raw}
	p := NewProperties(t)

	switch t {
	case EntityTypeNPC:
		p.NPC.Race = d.text("race")
		p.NPC.Class = d.text("class")
		p.NPC.Alignment = d.text("alignment")
		p.NPC.Location = d.text("location")
		p.NPC.Relationship = d.relationship("relationship")
		p.NPC.Organization = d.ref("organization", EntityTypeOrganization)
	case EntityTypeCreature:
		p.Creature.Type = d.text("type")
		p.Creature.Size = d.text("size")
		p.Creature.Alignment = d.text("alignment")
		p.Creature.Habitat = d.text("habitat")
		p.Creature.ChallengeRating = d.text("challengeRating")
	case EntityTypeLocation:
		p.Location.Type = d.text("type")
		p.Location.Climate = d.text("climate")
		p.Location.Population = d.text("population")
		p.Location.Government = d.text("government")
		p.Location.Description = d.text("description")
		p.Location.ActiveOrganizations = d.refList("activeOrganizations", EntityTypeOrganization)
	case EntityTypeOrganization:
		p.Organization.Type = d.text("type")
		p.Organization.Alignment = d.text("alignment")
		p.Organization.Headquarters = d.ref("headquarters", EntityTypeLocation)
		p.Organization.Leader = d.text("leader")
		p.Organization.Goals = d.text("goals")
	}

	if d.err != nil {
		return Properties{}, d.err
	}

	template := PropertyTemplate(t)
	for key, value := range raw {
		if containsKey(template, key) {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[key] = value
	}

	return p, nil
}

// Type returns the entity type of the populated variant.
func (p Properties) Type() EntityType {
	switch {
	case p.NPC != nil:
		return EntityTypeNPC
	case p.Creature != nil:
		return EntityTypeCreature
	case p.Location != nil:
		return EntityTypeLocation
	case p.Organization != nil:
		return EntityTypeOrganization
	default:
		return ""
	}
}

// Map flattens the properties into the open map shape used on the wire.
// Every template key is present; extra keys never overwrite template keys.
func (p Properties) Map() map[string]any {
	m := make(map[string]any, len(p.Extra)+6)
	for k, v := range p.Extra {
		m[k] = v
	}

	switch {
	case p.NPC != nil:
		m["race"] = p.NPC.Race
		m["class"] = p.NPC.Class
		m["alignment"] = p.NPC.Alignment
		m["location"] = p.NPC.Location
		m["relationship"] = string(p.NPC.Relationship)
		m["organization"] = p.NPC.Organization.String()
	case p.Creature != nil:
		m["type"] = p.Creature.Type
		m["size"] = p.Creature.Size
		m["alignment"] = p.Creature.Alignment
		m["habitat"] = p.Creature.Habitat
		m["challengeRating"] = p.Creature.ChallengeRating
	case p.Location != nil:
		m["type"] = p.Location.Type
		m["climate"] = p.Location.Climate
		m["population"] = p.Location.Population
		m["government"] = p.Location.Government
		m["description"] = p.Location.Description
		ids := make([]string, 0, len(p.Location.ActiveOrganizations))
		for _, ref := range p.Location.ActiveOrganizations {
			ids = append(ids, ref.String())
		}
		m["activeOrganizations"] = ids
	case p.Organization != nil:
		m["type"] = p.Organization.Type
		m["alignment"] = p.Organization.Alignment
		m["headquarters"] = p.Organization.Headquarters.String()
		m["leader"] = p.Organization.Leader
		m["goals"] = p.Organization.Goals
	}

	return m
}

// MarshalJSON encodes the properties as a flat JSON object.
func (p Properties) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Map())
}

// PropertyRef is a soft reference together with the property key holding it.
type PropertyRef struct {
	Key string `json:"key"`
	EntityRef
}

// References returns the soft references held by the properties, in
// template order.
func (p Properties) References() []PropertyRef {
	var refs []PropertyRef
	add := func(key string, ref EntityRef) {
		if !ref.IsZero() {
			refs = append(refs, PropertyRef{Key: key, EntityRef: ref})
		}
	}
	switch {
	case p.NPC != nil:
		add("organization", p.NPC.Organization)
	case p.Location != nil:
		for _, ref := range p.Location.ActiveOrganizations {
			add("activeOrganizations", ref)
		}
	case p.Organization != nil:
		add("headquarters", p.Organization.Headquarters)
	}
	return refs
}

// Retype converts the properties to another entity type. Keys shared by
// both templates carry over and the rest move to Extra. A value that does
// not fit the new template is left out of the result and reported as a
// *PropertyError; every other key is still converted.
func (p Properties) Retype(t EntityType) (Properties, error) {
	if p.Type() == t {
		return p.Clone(), nil
	}

	raw := p.Map()
	var first error
	for i, n := 0, len(raw)+1; i < n; i++ {
		converted, err := DecodeProperties(t, raw)
		if err == nil {
			return converted, first
		}
		var propErr *PropertyError
		if !errors.As(err, &propErr) {
			return NewProperties(t), err
		}
		if first == nil {
			first = err
		}
		delete(raw, propErr.Key)
	}
	return NewProperties(t), first
}

// Clone returns a deep copy.
func (p Properties) Clone() Properties {
	var c Properties
	if p.NPC != nil {
		v := *p.NPC
		c.NPC = &v
	}
	if p.Creature != nil {
		v := *p.Creature
		c.Creature = &v
	}
	if p.Location != nil {
		v := *p.Location
		v.ActiveOrganizations = append([]EntityRef{}, p.Location.ActiveOrganizations...)
		c.Location = &v
	}
	if p.Organization != nil {
		v := *p.Organization
		c.Organization = &v
	}
	if p.Extra != nil {
		c.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// propDecoder reads template keys from an open map, keeping the first error.
type propDecoder struct {
	raw map[string]any
	err error
}

func (d *propDecoder) fail(key, msg string) {
	if d.err == nil {
		d.err = &PropertyError{Key: key, Message: msg}
	}
}

func (d *propDecoder) text(key string) string {
	v, ok := d.raw[key]
	if !ok {
		return ""
	}
	s, ok := scalarString(v)
	if !ok {
		d.fail(key, "must be a string")
		return ""
	}
	return s
}

func (d *propDecoder) relationship(key string) Relationship {
	s := strings.TrimSpace(d.text(key))
	if s == "" {
		return ""
	}
	r := Relationship(strings.ToLower(s))
	if !r.IsValid() {
		d.fail(key, "must be one of ally, acquaintance, enemy")
		return ""
	}
	return r
}

func (d *propDecoder) ref(key string, target EntityType) EntityRef {
	v, ok := d.raw[key]
	if !ok {
		return EntityRef{}
	}
	ref, err := parseRef(v, target)
	if err != nil {
		d.fail(key, err.Error())
		return EntityRef{}
	}
	return ref
}

func (d *propDecoder) refList(key string, target EntityType) []EntityRef {
	refs := []EntityRef{}
	v, ok := d.raw[key]
	if !ok || v == nil {
		return refs
	}
	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []string:
		for _, s := range list {
			items = append(items, s)
		}
	default:
		d.fail(key, "must be a list of entity ids")
		return refs
	}
	for _, item := range items {
		ref, err := parseRef(item, target)
		if err != nil {
			d.fail(key, err.Error())
			return []EntityRef{}
		}
		if !ref.IsZero() {
			refs = append(refs, ref)
		}
	}
	return refs
}

// parseRef accepts a number or numeric string. "", "0", 0 and null mean none.
func parseRef(v any, target EntityType) (EntityRef, error) {
	if _, isBool := v.(bool); isBool {
		return EntityRef{}, fmt.Errorf("must be an entity id")
	}
	s, ok := scalarString(v)
	if !ok {
		return EntityRef{}, fmt.Errorf("must be an entity id")
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return EntityRef{}, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return EntityRef{}, fmt.Errorf("must be an entity id")
	}
	return EntityRef{ID: id, Type: target}, nil
}

// scalarString renders JSON scalars as strings.
func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
