package query

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/pkg/errors"

	"github.com/agentic-research/bidsgraph/internal/codec"
	"github.com/agentic-research/bidsgraph/internal/graph"
)

// Find builds a throwaway index over root and runs q against it.
func Find(root graph.Node, q Query) []*graph.Artifact {
	return Build(root).Find(q)
}

// Select returns the nodes below root (root included) whose model type is,
// or descends from, typeName.
func Select(root graph.Node, typeName string) []graph.Node {
	return graph.Collect(graph.Traverse(root, true, graph.OfType(typeName), graph.DefaultDepth))
}

// Sidecars returns the metadata files that apply to a, nearest first. A
// candidate lives in a's folder or one of its ancestors, shares a's suffix,
// has the given extension and carries only entities a also carries with the
// same values.
func Sidecars(a *graph.Artifact, extension string) []*graph.Artifact {
	if extension == "" {
		extension = ".json"
	}
	want := a.Entities()
	var out []*graph.Artifact
	for n := range graph.Ancestors(a) {
		c, ok := n.(graph.Container)
		if !ok {
			continue
		}
		for _, leaf := range c.AsFolder().Files() {
			candidate, isArtifact := leaf.(*graph.Artifact)
			if !isArtifact || candidate == a {
				continue
			}
			if candidate.Suffix() != a.Suffix() || candidate.Extension() != extension {
				continue
			}
			if subset(candidate.Entities(), want) {
				out = append(out, candidate)
			}
		}
	}
	return out
}

// Sidecar returns the nearest sidecar of a, or nil.
func Sidecar(a *graph.Artifact, extension string) *graph.Artifact {
	if all := Sidecars(a, extension); len(all) > 0 {
		return all[0]
	}
	return nil
}

func subset(have, of map[string]any) bool {
	for k, v := range have {
		other, ok := of[k]
		if !ok || fmt.Sprint(other) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

// Metadata merges the JSON sidecars of a, nearer files overriding farther ones.
func Metadata(a *graph.Artifact) map[string]any {
	merged := make(map[string]any)
	sidecars := Sidecars(a, ".json")
	for i := len(sidecars) - 1; i >= 0; i-- {
		for k, v := range sidecars[i].Contents().Map() {
			merged[k] = v
		}
	}
	return merged
}

// Extract evaluates a JSONPath expression against the decoded contents of f.
// A file without contents yields no results.
func Extract(f *graph.File, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid jsonpath '%s'", expr)
	}
	c := f.Contents()
	if c == nil {
		return nil, nil
	}
	return x.Get(codec.Generic(c.Value)), nil
}
