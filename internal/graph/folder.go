package graph

import (
	"path/filepath"
	"slices"
	"strings"
)

// Folder is a directory node holding ordered child folders and files.
type Folder struct {
	name   string
	parent Node
	// self is the outermost node embedding this folder (a Dataset or
	// DerivativeFolder, or the folder itself). Children point back to it.
	self    Node
	folders []Container
	files   []Leaf
}

// NewFolder returns a detached folder.
func NewFolder(name string) *Folder {
	f := &Folder{name: name}
	f.self = f
	return f
}

func (f *Folder) Name() string        { return f.name }
func (f *Folder) SetName(name string) { f.name = name }
func (f *Folder) Parent() Node        { return f.parent }
func (f *Folder) TypeName() string    { return "Folder" }
func (f *Folder) AsFolder() *Folder   { return f }
func (f *Folder) setParent(p Node)    { f.parent = p }

// Node returns the outermost node this folder belongs to.
func (f *Folder) Node() Node {
	if f.self == nil {
		return f
	}
	return f.self
}

// Children returns the child folders followed by the files.
func (f *Folder) Children() []Node {
	out := make([]Node, 0, len(f.folders)+len(f.files))
	for _, c := range f.folders {
		out = append(out, c)
	}
	for _, l := range f.files {
		out = append(out, l)
	}
	return out
}

// Folders returns the child folders in insertion order.
func (f *Folder) Folders() []Container { return slices.Clone(f.folders) }

// Files returns the child files in insertion order.
func (f *Folder) Files() []Leaf { return slices.Clone(f.files) }

// AddFolder attaches c as the last child folder and returns it.
func (f *Folder) AddFolder(c Container) Container {
	c.setParent(f.Node())
	f.folders = append(f.folders, c)
	return c
}

// AddFile attaches l as the last file and returns it.
func (f *Folder) AddFile(l Leaf) Leaf {
	l.setParent(f.Node())
	f.files = append(f.files, l)
	return l
}

// CreateFolder appends a new, empty sub-folder.
func (f *Folder) CreateFolder(name string) *Folder {
	sub := NewFolder(name)
	f.AddFolder(sub)
	return sub
}

// CreateFile appends a new plain file.
func (f *Folder) CreateFile(name string) *File {
	file := NewFile(name)
	f.AddFile(file)
	return file
}

// CreateArtifact appends a new artifact. Entities of raw, when given, are
// copied onto it.
func (f *Folder) CreateArtifact(raw *Artifact) *Artifact {
	a := NewArtifact("")
	f.AddFile(a)
	if raw != nil {
		a.entities = append(a.entities, raw.entities...)
	}
	return a
}

// RemoveFile detaches every file with the given name.
func (f *Folder) RemoveFile(name string) {
	f.files = slices.DeleteFunc(f.files, func(l Leaf) bool {
		if l.Name() != name {
			return false
		}
		l.setParent(nil)
		return true
	})
}

// RemoveFolder detaches every sub-folder with the given name.
func (f *Folder) RemoveFolder(name string) {
	f.folders = slices.DeleteFunc(f.folders, func(c Container) bool {
		if c.Name() != name {
			return false
		}
		c.setParent(nil)
		return true
	})
}

// GetFile returns the file at a path relative to this folder, or nil.
func (f *Folder) GetFile(path string) Leaf {
	parent, name := ResolveSegments(f.Node().(Container), path, false)
	if parent == nil || name == "" {
		return nil
	}
	root := parent.AsFolder().Node()
	for n := range Traverse(root, true, IsFile, 1) {
		if n.Name() == name {
			return n.(Leaf)
		}
	}
	return nil
}

// GetFiles returns the direct files whose names match a shell glob.
func (f *Folder) GetFiles(pattern string) []Leaf {
	var out []Leaf
	for n := range Traverse(f.Node(), true, And(IsFile, NameMatches(pattern)), 1) {
		out = append(out, n.(Leaf))
	}
	return out
}

// GetFolder returns the direct sub-folder with the given name, or nil.
func (f *Folder) GetFolder(name string) Container {
	root := f.Node()
	for n := range Traverse(root, true, IsFolder, 1) {
		if n != root && n.Name() == name {
			return n.(Container)
		}
	}
	return nil
}

// FilesSorted returns the files ordered by name.
func (f *Folder) FilesSorted() []Leaf {
	out := f.Files()
	slices.SortFunc(out, func(a, b Leaf) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// FoldersSorted returns the sub-folders ordered by name.
func (f *Folder) FoldersSorted() []Container {
	out := f.Folders()
	slices.SortFunc(out, func(a, b Container) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// AbsolutePath returns the folder's path, or that of fileName inside it.
func (f *Folder) AbsolutePath(fileName ...string) string {
	return AbsolutePath(f.Node(), filepath.Join(fileName...))
}

// RelativePath returns the dataset-relative path of the folder.
func (f *Folder) RelativePath() string {
	return RelativePath(f.Node(), "")
}

// LoadFileContents decodes a file inside this folder without caching it.
func (f *Folder) LoadFileContents(fileName string, returnType string) (any, error) {
	env := envOf(f.Node())
	return loadPath(env, f.AbsolutePath(fileName), returnType)
}
