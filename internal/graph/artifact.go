package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agentic-research/bidsgraph/internal/schema"
)

// EntityRef is one key/value tag of an artifact.
type EntityRef struct {
	Key   string
	Value any
}

func (e EntityRef) String() string {
	return fmt.Sprintf("%s-%v", e.Key, e.Value)
}

// Artifact is a file tagged with entities, typically parsed from a name like
// sub-01_ses-02_T1w.nii.gz.
type Artifact struct {
	File

	suffix    string
	extension string
	entities  []EntityRef
}

// NewArtifact returns a detached artifact. An empty name makes the artifact
// derive its name from its entities, suffix and extension.
func NewArtifact(name string) *Artifact {
	a := &Artifact{}
	a.name = name
	a.self = a
	return a
}

// Name returns the explicit name, or key-value_..._suffix.ext.
func (a *Artifact) Name() string {
	if a.name != "" {
		return a.name
	}
	parts := make([]string, 0, len(a.entities)+1)
	for _, e := range a.entities {
		parts = append(parts, e.String())
	}
	if a.suffix != "" {
		parts = append(parts, a.suffix)
	}
	return strings.Join(parts, "_") + a.extension
}

func (a *Artifact) TypeName() string {
	if a.typeName == "" {
		return "Artifact"
	}
	return a.typeName
}

func (a *Artifact) Suffix() string          { return a.suffix }
func (a *Artifact) SetSuffix(suffix string) { a.suffix = suffix }
func (a *Artifact) SetExtension(ext string) { a.extension = ext }

// Extension returns the declared extension, falling back to the name's.
func (a *Artifact) Extension() string {
	if a.extension != "" {
		return a.extension
	}
	return a.File.Extension()
}

// HasEntity reports whether key is tagged on the artifact.
func (a *Artifact) HasEntity(key string) bool {
	return a.indexOf(key) >= 0
}

// GetEntity returns the value for key, or nil.
func (a *Artifact) GetEntity(key string) any {
	if i := a.indexOf(key); i >= 0 {
		return a.entities[i].Value
	}
	return nil
}

// AddEntity tags the artifact. An existing key is overwritten in place.
// Values of index entities are normalized to integers where they parse.
func (a *Artifact) AddEntity(key string, value any) {
	value = SchemaOf(a).ProcessEntityValue(key, value)
	if i := a.indexOf(key); i >= 0 {
		a.entities[i].Value = value
		return
	}
	a.entities = append(a.entities, EntityRef{Key: key, Value: value})
}

// Tag is AddEntity keyed by a schema entity.
func (a *Artifact) Tag(e schema.Entity, value any) {
	a.AddEntity(e.Key, value)
}

// AddEntities applies AddEntity for each ref in order.
func (a *Artifact) AddEntities(refs ...EntityRef) {
	for _, r := range refs {
		a.AddEntity(r.Key, r.Value)
	}
}

// RemoveEntity drops key from the artifact.
func (a *Artifact) RemoveEntity(key string) {
	if i := a.indexOf(key); i >= 0 {
		a.entities = slices.Delete(a.entities, i, i+1)
	}
}

// Entities returns the tags keyed by entity key.
func (a *Artifact) Entities() map[string]any {
	out := make(map[string]any, len(a.entities))
	for _, e := range a.entities {
		out[e.Key] = e.Value
	}
	return out
}

// EntityRefs returns the tags in insertion order.
func (a *Artifact) EntityRefs() []EntityRef {
	return slices.Clone(a.entities)
}

func (a *Artifact) indexOf(key string) int {
	return slices.IndexFunc(a.entities, func(e EntityRef) bool { return e.Key == key })
}
