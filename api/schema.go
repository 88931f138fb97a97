package api

// Schema describes the model types and entity vocabulary of a dataset layout.
// It is the on-disk form; internal/schema resolves it into a type hierarchy.
type Schema struct {
	// Version of the layout standard this schema describes (semver).
	Version string `json:"version" yaml:"version"`
	// Types in the model. Order is irrelevant; hierarchy comes from Super.
	Types []TypeDef `json:"types,omitempty" yaml:"types,omitempty"`
	// Entities is the enumerated entity-key vocabulary, in enumeration order.
	Entities []EntityDef `json:"entities,omitempty" yaml:"entities,omitempty"`
}

// TypeDef declares a model type and the members it adds to its super type.
type TypeDef struct {
	// Name of the type, e.g. "DatasetDescriptionFile".
	Name string `json:"name" yaml:"name"`
	// Super is the parent type name. Empty means the universal base.
	Super string `json:"super,omitempty" yaml:"super,omitempty"`
	// Members is the type's own declared-member table. A nil table
	// contributes nothing.
	Members []MemberDef `json:"members,omitempty" yaml:"members,omitempty"`
}

// MemberDef is one entry of a declared-member table.
type MemberDef struct {
	Name string `json:"name" yaml:"name"`
	// Type is either a model type name or a literal such as "str", "int".
	Type string `json:"type" yaml:"type"`
	// List marks members holding an ordered collection.
	List bool `json:"list,omitempty" yaml:"list,omitempty"`
	// Required marks members every instance must carry.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
}

// EntityDef is one entry of the entity-key vocabulary.
type EntityDef struct {
	// Name is the long symbolic name, e.g. "subject".
	Name string `json:"name" yaml:"name"`
	// Key is the canonical short key used in filenames, e.g. "sub".
	Key string `json:"key" yaml:"key"`
	// Format is "index" or "label".
	Format string `json:"format" yaml:"format"`
	// Description is informational.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}
