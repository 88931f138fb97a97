package graph

import (
	"iter"
	"path/filepath"
)

// DefaultDepth bounds traversals that have no natural limit.
const DefaultDepth = 1000

// Filter selects nodes during traversal. A nil Filter accepts everything.
type Filter func(Node) bool

// Traverse returns a lazy sequence over the subtree at root. Every range
// over the sequence walks the tree afresh.
//
// Pre-order (depthFirst false) tests a node before its children; a rejected
// node is not descended into. Post-order (depthFirst true) visits children
// first, then tests the node. maxDepth is the remaining descent: 0 yields at
// most root, a negative value yields nothing.
func Traverse(root Node, depthFirst bool, filter Filter, maxDepth int) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if root == nil {
			return
		}
		walk(root, depthFirst, filter, maxDepth, yield)
	}
}

func walk(n Node, depthFirst bool, filter Filter, depth int, yield func(Node) bool) bool {
	if depth < 0 {
		return true
	}
	if !depthFirst {
		if filter != nil && !filter(n) {
			return true
		}
		if !yield(n) {
			return false
		}
	}
	for _, child := range n.Children() {
		if !walk(child, depthFirst, filter, depth-1, yield) {
			return false
		}
	}
	if depthFirst && (filter == nil || filter(n)) {
		return yield(n)
	}
	return true
}

// Ancestors yields the parent of n, its parent, and so on up to the root.
func Ancestors(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if n == nil {
			return
		}
		for p := n.Parent(); p != nil; p = p.Parent() {
			if !yield(p) {
				return
			}
		}
	}
}

// IsFolder matches folder-like nodes.
func IsFolder(n Node) bool {
	_, ok := n.(Container)
	return ok
}

// IsFile matches file-like nodes.
func IsFile(n Node) bool {
	_, ok := n.(Leaf)
	return ok
}

// IsArtifact matches artifacts.
func IsArtifact(n Node) bool {
	_, ok := n.(*Artifact)
	return ok
}

// OfType matches nodes whose model type is, or descends from, typeName.
func OfType(typeName string) Filter {
	return func(n Node) bool {
		if n.TypeName() == typeName {
			return true
		}
		t := SchemaOf(n).Type(n.TypeName())
		return t != nil && t.IsA(typeName)
	}
}

// NameMatches matches nodes whose name matches a shell glob.
func NameMatches(pattern string) Filter {
	return func(n Node) bool {
		ok, err := filepath.Match(pattern, n.Name())
		return err == nil && ok
	}
}

// And matches nodes accepted by every filter.
func And(filters ...Filter) Filter {
	return func(n Node) bool {
		for _, f := range filters {
			if f != nil && !f(n) {
				return false
			}
		}
		return true
	}
}

// Collect drains a sequence into a slice.
func Collect(seq iter.Seq[Node]) []Node {
	var out []Node
	for n := range seq {
		out = append(out, n)
	}
	return out
}
