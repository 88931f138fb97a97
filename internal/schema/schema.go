// Package schema resolves a layout description into a model type hierarchy,
// exposes the members each type declares (including inherited ones) and
// holds the entity-key vocabulary.
package schema

import (
	_ "embed"
	"regexp"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/agentic-research/bidsgraph/api"
)

// BaseType is the universal base of every model type. It never contributes members.
const BaseType = "Model"

//go:embed default.yaml
var defaultSchema []byte

var (
	defaultOnce sync.Once
	defaultInst *Schema
)

// Type is a resolved model type.
type Type struct {
	Name  string
	Super *Type

	members  []api.MemberDef
	hasTable bool
}

func (t *Type) String() string { return t.Name }

// IsA reports whether t is the named type or descends from it.
func (t *Type) IsA(name string) bool {
	for cur := t; cur != nil; cur = cur.Super {
		if cur.Name == name {
			return true
		}
	}
	return false
}

// Schema is an immutable, resolved layout description.
type Schema struct {
	rawVersion string
	version    *semver.Version
	types      map[string]*Type
	entities   []Entity
	byKey      map[string]int
	byName     map[string]int
}

// Default returns the embedded schema. It panics if the embedded file is
// malformed, which is a build defect.
func Default() *Schema {
	defaultOnce.Do(func() {
		s, err := Parse(defaultSchema)
		if err != nil {
			panic(errors.WithMessage(err, "embedded schema"))
		}
		defaultInst = s
	})
	return defaultInst
}

// Parse decodes a YAML (or JSON) schema description.
func Parse(data []byte) (*Schema, error) {
	var def api.Schema
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.WithMessage(err, "failed to decode schema")
	}
	return New(def)
}

// New resolves a schema description. Super types may be declared after
// their subtypes.
func New(def api.Schema) (*Schema, error) {
	s := &Schema{
		rawVersion: def.Version,
		types:      make(map[string]*Type, len(def.Types)+1),
		byKey:      make(map[string]int, len(def.Entities)),
		byName:     make(map[string]int, len(def.Entities)),
	}
	if def.Version != "" {
		v, err := ParseVersion(def.Version)
		if err != nil {
			return nil, errors.WithMessagef(err, "invalid schema version %q", def.Version)
		}
		s.version = v
	}

	s.types[BaseType] = &Type{Name: BaseType}
	for _, td := range def.Types {
		if td.Name == "" {
			return nil, errors.New("type without a name")
		}
		t, ok := s.types[td.Name]
		if !ok {
			t = &Type{Name: td.Name}
			s.types[td.Name] = t
		}
		if td.Members != nil {
			t.members = td.Members
			t.hasTable = true
		}
	}
	for _, td := range def.Types {
		if td.Name == BaseType {
			continue
		}
		superName := td.Super
		if superName == "" {
			superName = BaseType
		}
		super, ok := s.types[superName]
		if !ok {
			return nil, errors.Errorf("type %s extends unknown type %s", td.Name, superName)
		}
		s.types[td.Name].Super = super
	}
	for name, t := range s.types {
		seen := map[*Type]bool{}
		for cur := t; cur != nil; cur = cur.Super {
			if seen[cur] {
				return nil, errors.Errorf("type %s has a cyclic hierarchy", name)
			}
			seen[cur] = true
		}
	}

	for i, ed := range def.Entities {
		if ed.Key == "" {
			return nil, errors.Errorf("entity %q has no key", ed.Name)
		}
		s.entities = append(s.entities, Entity{
			Name:        ed.Name,
			Key:         ed.Key,
			Format:      ed.Format,
			Description: ed.Description,
		})
		s.byKey[ed.Key] = i
		s.byName[ed.Name] = i
	}
	return s, nil
}

// Type returns the named model type, or nil.
func (s *Schema) Type(name string) *Type {
	return s.types[name]
}

// Types returns the names of all model types.
func (s *Schema) Types() []string {
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	return names
}

// Version returns the schema version, or nil when none was declared.
func (s *Schema) Version() *semver.Version {
	return s.version
}

// VersionString returns the version as written in the description.
func (s *Schema) VersionString() string {
	return s.rawVersion
}

// Compatible reports whether a dataset declaring the given version can be
// read with this schema (same major version). Unparseable versions and
// schemas without a version are treated as compatible.
func (s *Schema) Compatible(version string) bool {
	if s.version == nil || version == "" {
		return true
	}
	v, err := ParseVersion(version)
	if err != nil {
		return true
	}
	return v.Major() == s.version.Major()
}

var looseSuffix = regexp.MustCompile(`^(v?\d+(?:\.\d+){0,2})([A-Za-z].*)$`)

// ParseVersion parses a semantic version, accepting the historical
// "1.0.0rc2" spelling as "1.0.0-rc2".
func ParseVersion(version string) (*semver.Version, error) {
	version = strings.TrimSpace(version)
	if v, err := semver.NewVersion(version); err == nil {
		return v, nil
	}
	if m := looseSuffix.FindStringSubmatch(version); m != nil {
		return semver.NewVersion(m[1] + "-" + m[2])
	}
	return semver.NewVersion(version)
}
