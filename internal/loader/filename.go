package loader

import (
	"regexp"
	"strings"

	"github.com/agentic-research/bidsgraph/internal/graph"
)

var (
	entityPart = regexp.MustCompile(`^([a-zA-Z0-9]+)-([a-zA-Z0-9]+)$`)
	suffixPart = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	lowerPart  = regexp.MustCompile(`^[a-z0-9]+$`)
)

// Parsed is the decomposition of an artifact file name.
type Parsed struct {
	Entities  []graph.EntityRef
	Suffix    string
	Extension string
}

// ParseFilename splits names like sub-01_task-rest_bold.nii.gz into entities,
// suffix and extension. Names without an extension, with a malformed entity
// part, or with a bare non-lowercase stem (README.md) are not artifacts.
func ParseFilename(name string) (Parsed, bool) {
	dot := strings.IndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return Parsed{}, false
	}
	stem, ext := name[:dot], name[dot:]

	parts := strings.Split(stem, "_")
	suffix := parts[len(parts)-1]
	if !suffixPart.MatchString(suffix) {
		return Parsed{}, false
	}
	if len(parts) == 1 && !lowerPart.MatchString(suffix) {
		return Parsed{}, false
	}

	p := Parsed{Suffix: suffix, Extension: ext}
	for _, part := range parts[:len(parts)-1] {
		m := entityPart.FindStringSubmatch(part)
		if m == nil {
			return Parsed{}, false
		}
		p.Entities = append(p.Entities, graph.EntityRef{Key: m[1], Value: m[2]})
	}
	return p, true
}

// newLeaf builds the node for a file name: an artifact when the name parses,
// a plain file otherwise. Entities are returned separately so they can be
// normalized by the schema of the dataset the leaf ends up in.
func newLeaf(name string) (graph.Leaf, []graph.EntityRef) {
	ext := ""
	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		ext = name[dot:]
	}
	if name == graph.DescriptionFileName {
		f := graph.NewFile(name)
		f.SetTypeName("JsonFile")
		return f, nil
	}

	p, ok := ParseFilename(name)
	if !ok {
		f := graph.NewFile(name)
		switch ext {
		case ".json":
			f.SetTypeName("JsonFile")
		case ".tsv":
			f.SetTypeName("TSVFile")
		}
		return f, nil
	}

	a := graph.NewArtifact(name)
	switch ext {
	case ".json":
		a.SetTypeName("MetadataArtifact")
	case ".tsv":
		a.SetTypeName("TSVArtifact")
	}
	a.SetSuffix(p.Suffix)
	a.SetExtension(p.Extension)
	return a, p.Entities
}
