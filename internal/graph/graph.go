// Package graph mirrors a dataset directory as an in-memory node graph.
//
// Parents own their children; children keep a plain back pointer to their
// parent. File contents are never read eagerly: Contents decodes on first
// access and caches the result behind a weak pointer, so it is reclaimed as
// soon as no caller holds it.
//
// The graph is not safe for concurrent mutation. Callers sharing a tree
// across goroutines must synchronize externally.
package graph

import (
	"sync"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/agentic-research/bidsgraph/internal/codec"
	"github.com/agentic-research/bidsgraph/internal/schema"
)

// DescriptionFileName is the file holding a dataset's structured description.
const DescriptionFileName = "dataset_description.json"

// Node is the universal primitive of the tree.
type Node interface {
	Name() string
	Parent() Node
	// TypeName is the node's model type tag, e.g. "Folder" or "Artifact".
	TypeName() string
	// Children returns every child slot in declaration order.
	Children() []Node

	setParent(p Node)
}

// Container is a folder-like node.
type Container interface {
	Node
	AsFolder() *Folder
}

// Leaf is a file-like node.
type Leaf interface {
	Node
	AsFile() *File
}

// environment is what a node needs from its dataset to touch the disk.
type environment struct {
	fs     billy.Filesystem
	codecs *codec.Registry
	schema *schema.Schema
	pins   *lru.Cache[*File, *Contents]
}

var defaultEnv = sync.OnceValue(func() environment {
	return environment{
		fs:     osfs.New("/"),
		codecs: codec.Default(),
		schema: schema.Default(),
	}
})

// DatasetOf returns the dataset n belongs to (n itself included), or nil.
func DatasetOf(n Node) *Dataset {
	for cur := n; cur != nil; cur = cur.Parent() {
		if ds, ok := cur.(*Dataset); ok {
			return ds
		}
	}
	return nil
}

// SchemaOf returns the schema in effect for n.
func SchemaOf(n Node) *schema.Schema {
	return envOf(n).schema
}

func envOf(n Node) environment {
	if ds := DatasetOf(n); ds != nil {
		return ds.env
	}
	return defaultEnv()
}
