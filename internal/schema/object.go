package schema

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a typed instance of a model type built from raw decoded data.
// Fields keep the order in which they were first assigned.
type Object struct {
	typ    *Type
	fields *orderedmap.OrderedMap[string, any]
}

// NewObject returns an empty instance of t.
func NewObject(t *Type) *Object {
	return &Object{
		typ:    t,
		fields: orderedmap.New[string, any](),
	}
}

// Type returns the model type of the object.
func (o *Object) Type() *Type { return o.typ }

// Get returns a field value.
func (o *Object) Get(name string) (any, bool) {
	return o.fields.Get(name)
}

// Has reports whether a field is set.
func (o *Object) Has(name string) bool {
	_, ok := o.fields.Get(name)
	return ok
}

// Set assigns a field. Reassigning keeps the original position.
func (o *Object) Set(name string, value any) {
	o.fields.Set(name, value)
}

// Delete removes a field.
func (o *Object) Delete(name string) {
	o.fields.Delete(name)
}

// String returns a field formatted as a string, or "" when unset.
func (o *Object) String(name string) string {
	v, ok := o.fields.Get(name)
	if !ok || v == nil {
		return ""
	}
	if s, isString := v.(string); isString {
		return s
	}
	return fmt.Sprint(v)
}

// Object returns a nested object field, or nil.
func (o *Object) Object(name string) *Object {
	v, _ := o.fields.Get(name)
	child, _ := v.(*Object)
	return child
}

// Objects returns the nested objects held by a list field. A single nested
// object is returned as a one-element slice.
func (o *Object) Objects(name string) []*Object {
	v, _ := o.fields.Get(name)
	switch x := v.(type) {
	case *Object:
		return []*Object{x}
	case []any:
		var objs []*Object
		for _, item := range x {
			if child, ok := item.(*Object); ok {
				objs = append(objs, child)
			}
		}
		return objs
	}
	return nil
}

// Keys returns field names in order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.fields.Len())
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of fields set.
func (o *Object) Len() int { return o.fields.Len() }

// Update copies every field of other onto o.
func (o *Object) Update(other *Object) {
	if other == nil {
		return
	}
	for pair := other.fields.Oldest(); pair != nil; pair = pair.Next() {
		o.fields.Set(pair.Key, pair.Value)
	}
}

// ToMap converts the object back into raw mappings, recursively.
func (o *Object) ToMap() map[string]any {
	out := make(map[string]any, o.fields.Len())
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = toRaw(pair.Value)
	}
	return out
}

func toRaw(v any) any {
	switch x := v.(type) {
	case *Object:
		return x.ToMap()
	case []any:
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = toRaw(item)
		}
		return items
	}
	return v
}

// MapObject builds an instance of t from a raw mapping. Every member of t
// (ancestors included) present in raw is assigned in member order, so a
// redeclared member overwrites the inherited one. Nested mappings, and
// mappings inside non-empty lists, become objects of the member's resolved
// type. Keys that are not members are dropped.
func (s *Schema) MapObject(t *Type, raw map[string]any) *Object {
	target := NewObject(t)
	for _, m := range s.MembersOf(t, true) {
		value, ok := raw[m.Name]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case []any:
			if len(v) > 0 {
				items := make([]any, len(v))
				for i, item := range v {
					if child, isMap := item.(map[string]any); isMap && m.Type != nil {
						items[i] = s.MapObject(m.Type, child)
					} else {
						items[i] = item
					}
				}
				value = items
			}
		case map[string]any:
			if m.Type != nil {
				value = s.MapObject(m.Type, v)
			}
		}
		target.Set(m.Name, value)
	}
	return target
}
