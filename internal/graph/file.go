package graph

import (
	"path/filepath"
	"strings"
	"weak"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/agentic-research/bidsgraph/internal/codec"
)

// Contents is a decoded file value. The graph hands out *Contents so that
// callers holding one keep the cached value alive.
type Contents struct {
	Value any
}

// Lines returns text contents, or nil for any other shape.
func (c *Contents) Lines() []string {
	if c == nil {
		return nil
	}
	lines, _ := c.Value.([]string)
	return lines
}

// Rows returns TSV row contents, or nil for any other shape.
func (c *Contents) Rows() []map[string]string {
	if c == nil {
		return nil
	}
	rows, _ := c.Value.([]map[string]string)
	return rows
}

// Map returns mapping contents (JSON or YAML), or nil.
func (c *Contents) Map() map[string]any {
	if c == nil {
		return nil
	}
	m, _ := c.Value.(map[string]any)
	return m
}

// Len returns the number of top-level elements of the value.
func (c *Contents) Len() int {
	if c == nil {
		return 0
	}
	switch v := c.Value.(type) {
	case []string:
		return len(v)
	case []map[string]string:
		return len(v)
	case map[string]any:
		return len(v)
	case []any:
		return len(v)
	case *codec.Frame:
		return v.Len()
	}
	return 0
}

// File is a leaf backed by at most one file on disk.
type File struct {
	name     string
	parent   Node
	self     Leaf
	typeName string

	// direct holds an explicitly assigned value; it is never evicted.
	direct *Contents
	// ref tracks the last decoded value without keeping it alive.
	ref weak.Pointer[Contents]
}

// NewFile returns a detached plain file.
func NewFile(name string) *File {
	f := &File{name: name}
	f.self = f
	return f
}

func (f *File) Name() string        { return f.name }
func (f *File) SetName(name string) { f.name = name }
func (f *File) Parent() Node        { return f.parent }
func (f *File) Children() []Node    { return nil }
func (f *File) AsFile() *File       { return f }
func (f *File) setParent(p Node)    { f.parent = p }

// TypeName returns the model type of the file, "File" unless overridden.
func (f *File) TypeName() string {
	if f.typeName == "" {
		return "File"
	}
	return f.typeName
}

// SetTypeName overrides the model type of the file, e.g. "JsonFile".
func (f *File) SetTypeName(name string) { f.typeName = name }

// Node returns the outermost node this file belongs to.
func (f *File) Node() Leaf {
	if f.self == nil {
		return f
	}
	return f.self
}

// Extension returns everything from the first dot of the name, e.g. ".nii.gz".
func (f *File) Extension() string {
	name := f.Node().Name()
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}

// AbsolutePath returns the path of the backing file.
func (f *File) AbsolutePath() string {
	return resolvePath(f.Node().Parent(), f.Node().Name(), true)
}

// RelativePath returns the dataset-relative path of the backing file.
func (f *File) RelativePath() string {
	return resolvePath(f.Node().Parent(), f.Node().Name(), false)
}

// Contents returns the file's value: the assigned one, then the one still
// held elsewhere, and otherwise a fresh decode from disk. A file that cannot
// be decoded yields nil.
func (f *File) Contents() *Contents {
	if f.direct != nil {
		return f.direct
	}
	if c := f.ref.Value(); c != nil {
		return c
	}

	v, err := f.LoadContents(codec.Options{})
	if err != nil {
		logrus.WithError(err).WithField("path", f.AbsolutePath()).Debug("Contents unavailable")
		return nil
	}
	c := &Contents{Value: v}
	f.ref = weak.Make(c)
	if pins := envOf(f.Node()).pins; pins != nil {
		pins.Add(f, c)
	}
	return c
}

// SetContents assigns the file's value. The assignment survives until the
// next SetContents; passing nil clears it.
func (f *File) SetContents(v any) {
	if v == nil {
		f.direct = nil
		f.ref = weak.Pointer[Contents]{}
		return
	}
	c, ok := v.(*Contents)
	if !ok {
		c = &Contents{Value: v}
	}
	f.direct = c
	f.ref = weak.Make(c)
}

// Assigned reports whether the file carries an explicitly assigned value.
func (f *File) Assigned() bool { return f.direct != nil }

// Cached reports whether a decoded value is still reachable without I/O.
func (f *File) Cached() bool {
	return f.direct != nil || f.ref.Value() != nil
}

// LoadContents decodes the backing file, bypassing the cache.
func (f *File) LoadContents(opts codec.Options) (any, error) {
	return loadPath(envOf(f.Node()), f.AbsolutePath(), opts.ReturnType)
}

// Save writes the assigned value to disk with the codec for the file's format.
func (f *File) Save() error {
	c := f.Contents()
	if c == nil {
		return errors.Errorf("no contents to save for %s", f.Node().Name())
	}
	env := envOf(f.Node())
	path := f.AbsolutePath()
	if err := env.codecs.Store(env.fs, path, c.Value, codec.Options{}); err != nil {
		return errors.WithMessagef(err, "save %s", path)
	}
	return nil
}

func loadPath(env environment, path, returnType string) (any, error) {
	v, err := env.codecs.Load(env.fs, filepath.Clean(path), codec.Options{ReturnType: returnType})
	if err != nil {
		return nil, err
	}
	return v, nil
}
