// Package query answers entity, suffix and extension queries over a dataset
// tree using roaring bitmap columns, one per distinct attribute value.
package query

import (
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring"

	"github.com/agentic-research/bidsgraph/internal/graph"
	"github.com/agentic-research/bidsgraph/internal/schema"
)

// Scope restricts a query to raw data, derivatives, or both.
type Scope string

const (
	ScopeAll         Scope = "all"
	ScopeRaw         Scope = "raw"
	ScopeDerivatives Scope = "derivatives"
)

// Any matches an artifact carrying the entity with any value. None matches
// artifacts without it.
const (
	Any  = "*"
	None = "!"
)

// Index is a column-major incidence table over the artifacts of a tree.
// Object i is the i-th artifact in post-order traversal.
type Index struct {
	schema    *schema.Schema
	artifacts []*graph.Artifact

	all         *roaring.Bitmap
	derivatives *roaring.Bitmap
	hasKey      map[string]*roaring.Bitmap
	byValue     map[string]map[string]*roaring.Bitmap
	bySuffix    map[string]*roaring.Bitmap
	byExtension map[string]*roaring.Bitmap
}

// Build indexes every artifact below root.
func Build(root graph.Node) *Index {
	idx := &Index{
		schema:      graph.SchemaOf(root),
		all:         roaring.New(),
		derivatives: roaring.New(),
		hasKey:      make(map[string]*roaring.Bitmap),
		byValue:     make(map[string]map[string]*roaring.Bitmap),
		bySuffix:    make(map[string]*roaring.Bitmap),
		byExtension: make(map[string]*roaring.Bitmap),
	}
	for n := range graph.Traverse(root, true, graph.IsArtifact, graph.DefaultDepth) {
		idx.add(n.(*graph.Artifact))
	}
	return idx
}

func (idx *Index) add(a *graph.Artifact) {
	id := uint32(len(idx.artifacts))
	idx.artifacts = append(idx.artifacts, a)
	idx.all.Add(id)
	if inDerivatives(a) {
		idx.derivatives.Add(id)
	}
	for _, ref := range a.EntityRefs() {
		column(idx.hasKey, ref.Key).Add(id)
		values, ok := idx.byValue[ref.Key]
		if !ok {
			values = make(map[string]*roaring.Bitmap)
			idx.byValue[ref.Key] = values
		}
		for _, v := range flatten(ref.Value) {
			column(values, v).Add(id)
		}
	}
	column(idx.bySuffix, a.Suffix()).Add(id)
	column(idx.byExtension, a.Extension()).Add(id)
}

func column(cols map[string]*roaring.Bitmap, name string) *roaring.Bitmap {
	bm, ok := cols[name]
	if !ok {
		bm = roaring.New()
		cols[name] = bm
	}
	return bm
}

func inDerivatives(n graph.Node) bool {
	for p := range graph.Ancestors(n) {
		if _, ok := p.(*graph.DerivativeFolder); ok {
			return true
		}
	}
	return false
}

func flatten(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	case []string:
		return x
	}
	return []string{fmt.Sprint(v)}
}

// Len returns the number of indexed artifacts.
func (idx *Index) Len() int { return len(idx.artifacts) }

// Query selects artifacts. Every non-empty criterion must hold; within one
// criterion any listed value may match.
type Query struct {
	// Entities maps entity keys (canonical or fuzzy) to accepted values.
	Entities  map[string][]any
	Suffix    []string
	Extension []string
	Scope     Scope
}

// Match returns the bitmap of artifacts selected by q.
func (idx *Index) Match(q Query) *roaring.Bitmap {
	result := idx.scoped(q.Scope)
	for key, values := range q.Entities {
		key = idx.schema.CanonicalKey(key)
		result.And(idx.entityColumn(key, values))
	}
	if len(q.Suffix) > 0 {
		result.And(union(idx.bySuffix, q.Suffix))
	}
	if len(q.Extension) > 0 {
		exts := make([]string, len(q.Extension))
		for i, e := range q.Extension {
			if e != "" && e[0] != '.' {
				e = "." + e
			}
			exts[i] = e
		}
		result.And(union(idx.byExtension, exts))
	}
	return result
}

// Find returns the artifacts selected by q in traversal order.
func (idx *Index) Find(q Query) []*graph.Artifact {
	bm := idx.Match(q)
	out := make([]*graph.Artifact, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, idx.artifacts[it.Next()])
	}
	return out
}

// Entities returns, for the artifacts selected by q, every entity key with
// its sorted distinct values.
func (idx *Index) Entities(q Query) map[string][]string {
	selected := idx.Match(q)
	out := make(map[string][]string)
	for key, values := range idx.byValue {
		for v, bm := range values {
			if selected.Intersects(bm) {
				out[key] = append(out[key], v)
			}
		}
		slices.Sort(out[key])
	}
	return out
}

func (idx *Index) scoped(scope Scope) *roaring.Bitmap {
	switch scope {
	case ScopeRaw:
		return roaring.AndNot(idx.all, idx.derivatives)
	case ScopeDerivatives:
		return idx.derivatives.Clone()
	}
	return idx.all.Clone()
}

func (idx *Index) entityColumn(key string, values []any) *roaring.Bitmap {
	has, ok := idx.hasKey[key]
	if !ok {
		has = roaring.New()
	}
	out := roaring.New()
	for _, v := range values {
		switch v {
		case Any:
			out.Or(has)
			continue
		case None:
			out.Or(roaring.AndNot(idx.all, has))
			continue
		}
		for _, s := range flatten(idx.schema.ProcessEntityValue(key, v)) {
			if bm, found := idx.byValue[key][s]; found {
				out.Or(bm)
			}
		}
	}
	return out
}

func union(cols map[string]*roaring.Bitmap, names []string) *roaring.Bitmap {
	bms := make([]*roaring.Bitmap, 0, len(names))
	for _, name := range names {
		if bm, ok := cols[name]; ok {
			bms = append(bms, bm)
		}
	}
	if len(bms) == 0 {
		return roaring.New()
	}
	return roaring.FastOr(bms...)
}
