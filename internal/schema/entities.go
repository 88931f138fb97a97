package schema

import (
	"strconv"
)

// Entity value formats.
const (
	FormatIndex = "index"
	FormatLabel = "label"
)

// Entity is one member of the entity-key vocabulary.
type Entity struct {
	Name        string
	Key         string
	Format      string
	Description string
}

// String returns the canonical key, so symbols normalize to their string form.
func (e Entity) String() string { return e.Key }

// IsIndex reports whether values of this entity are integers.
func (e Entity) IsIndex() bool { return e.Format == FormatIndex }

// Entities returns the vocabulary in enumeration order.
func (s *Schema) Entities() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// Entity looks up an entity by canonical key.
func (s *Schema) Entity(key string) (Entity, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return Entity{}, false
	}
	return s.entities[i], true
}

// EntityByName looks up an entity by its long name, e.g. "subject".
func (s *Schema) EntityByName(name string) (Entity, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Entity{}, false
	}
	return s.entities[i], true
}

// ProcessEntityValue normalizes a value stored under key. Index entities
// have padded integers trimmed ("001" -> 1); lists are normalized per
// element. Everything else passes through.
func (s *Schema) ProcessEntityValue(key string, value any) any {
	if isEmpty(value) {
		return value
	}
	e, ok := s.Entity(key)
	if !ok || !e.IsIndex() {
		return value
	}
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			if item == nil {
				continue
			}
			out[i] = trimInt(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = trimInt(item)
		}
		return out
	}
	return trimInt(value)
}

func trimInt(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return value
	}
	return n
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}
