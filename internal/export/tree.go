package export

import (
	"github.com/agentic-research/bidsgraph/internal/graph"
)

// Tree converts a subtree into nested mappings: name, type and, depending on
// the node, its entities, suffix, extension and children. Contents are never
// read.
func Tree(n graph.Node) map[string]any {
	out := map[string]any{
		"name": n.Name(),
		"type": n.TypeName(),
	}
	switch x := n.(type) {
	case *graph.Artifact:
		out["suffix"] = x.Suffix()
		out["extension"] = x.Extension()
		if refs := x.EntityRefs(); len(refs) > 0 {
			entities := make([]any, len(refs))
			for i, r := range refs {
				entities[i] = map[string]any{"key": r.Key, "value": r.Value}
			}
			out["entities"] = entities
		}
	case *graph.Dataset:
		out["base_dir"] = x.BaseDir
	}

	var children []any
	for _, c := range n.Children() {
		children = append(children, Tree(c))
	}
	if len(children) > 0 {
		out["children"] = children
	}
	return out
}
