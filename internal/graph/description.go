package graph

import (
	"weak"

	"github.com/pkg/errors"

	"github.com/agentic-research/bidsgraph/internal/schema"
)

// DatasetDescription is the typed view of a dataset_description.json file.
type DatasetDescription struct {
	File
	fields *schema.Object
}

// NewDatasetDescription returns an empty, detached description of the given
// model type.
func NewDatasetDescription(sc *schema.Schema, typeName string) *DatasetDescription {
	d := &DatasetDescription{fields: schema.NewObject(sc.Type(typeName))}
	d.name = DescriptionFileName
	d.typeName = typeName
	d.self = d
	return d
}

// BIDSVersion returns the declared layout version.
func (d *DatasetDescription) BIDSVersion() string { return d.fields.String("BIDSVersion") }

// DatasetName returns the human readable dataset name.
func (d *DatasetDescription) DatasetName() string { return d.fields.String("Name") }

func (d *DatasetDescription) Get(field string) (any, bool) { return d.fields.Get(field) }
func (d *DatasetDescription) Set(field string, value any)  { d.fields.Set(field, value) }

// Fields returns the underlying typed object.
func (d *DatasetDescription) Fields() *schema.Object { return d.fields }

// Save serializes the fields into the file contents and writes them.
func (d *DatasetDescription) Save() error {
	d.SetContents(d.fields.ToMap())
	return errors.WithMessage(d.File.Save(), "dataset description")
}

// descriptionSlot is the lazily derived description of a dataset-like folder.
// It has the same direct/weak shape as a file's contents.
type descriptionSlot struct {
	direct *DatasetDescription
	ref    weak.Pointer[DatasetDescription]
}

func (s *descriptionSlot) get(owner Container, typeName string) *DatasetDescription {
	if s.direct != nil {
		return s.direct
	}
	if d := s.ref.Value(); d != nil {
		return d
	}

	leaf := owner.AsFolder().GetFile(DescriptionFileName)
	if leaf == nil {
		return nil
	}
	contents := leaf.AsFile().Contents()
	raw := contents.Map()
	if raw == nil {
		return nil
	}

	sc := SchemaOf(owner)
	d := NewDatasetDescription(sc, typeName)
	d.fields = sc.MapObject(sc.Type(typeName), raw)
	d.setParent(owner)
	d.direct = contents
	s.ref = weak.Make(d)
	return d
}

func (s *descriptionSlot) set(owner Container, d *DatasetDescription) {
	if d == nil {
		s.direct = nil
		s.ref = weak.Pointer[DatasetDescription]{}
		return
	}
	d.setParent(owner)
	s.direct = d
	s.ref = weak.Make(d)
}

// DescriptionAssigned reports whether the description was set explicitly.
func (s *descriptionSlot) DescriptionAssigned() bool { return s.direct != nil }

// DescriptionCached reports whether a description is reachable without I/O.
func (s *descriptionSlot) DescriptionCached() bool {
	return s.direct != nil || s.ref.Value() != nil
}
