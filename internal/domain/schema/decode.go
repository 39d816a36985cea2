package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Mode selects which fields are required.
type Mode int

const (
	// Create enforces required fields.
	Create Mode = iota
	// Update treats every field as optional.
	Update
	// Login requires credentials but skips the registration policy.
	Login
)

// object is a decoded JSON object whose values are still raw.
type object map[string]json.RawMessage

// decodeObject parses body as a JSON object. An empty body is an empty object.
func decodeObject(body []byte) (object, error) {
	obj := object{}
	if len(bytes.TrimSpace(body)) == 0 {
		return obj, nil
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, Invalid("body", "must be a JSON object")
	}
	if obj == nil {
		return nil, Invalid("body", "must be a JSON object")
	}
	return obj, nil
}

// present reports whether key was sent with a non-null value.
func (o object) present(key string) bool {
	raw, ok := o[key]
	return ok && !isNull(raw)
}

// str decodes key as a string. It returns nil when the key is absent or null.
func (o object) str(key string, verr *ValidationError) *string {
	if !o.present(key) {
		return nil
	}
	var s string
	if err := json.Unmarshal(o[key], &s); err != nil {
		verr.Add(key, "must be a string")
		return nil
	}
	return &s
}

// tags decodes key as a list of strings. Null clears the list.
func (o object) tags(key string, verr *ValidationError) *[]string {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	tags := []string{}
	if isNull(raw) {
		return &tags
	}
	if err := json.Unmarshal(raw, &tags); err != nil {
		verr.Add(key, "must be a list of strings")
		return nil
	}
	if tags == nil {
		tags = []string{}
	}
	return &tags
}

// object decodes key as a nested JSON object.
func (o object) object(key string, verr *ValidationError) map[string]any {
	if !o.present(key) {
		return nil
	}
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(o[key]))
	if err := dec.Decode(&m); err != nil {
		verr.Add(key, "must be an object")
		return nil
	}
	if m == nil {
		m = map[string]any{}
	}
	return m
}

func (o object) require(verr *ValidationError, keys ...string) {
	for _, key := range keys {
		if !o.present(key) && !verr.Has(key) {
			verr.Add(key, "is required")
		}
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func lengthMessage(max int) string {
	return fmt.Sprintf("must be at most %d characters", max)
}
