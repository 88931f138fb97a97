package graph

import (
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/agentic-research/bidsgraph/internal/codec"
	"github.com/agentic-research/bidsgraph/internal/schema"
)

// DerivativesFolderName is the conventional home of derivative datasets.
const DerivativesFolderName = "derivatives"

// Options configures a Dataset. Zero values fall back to the embedded
// schema, the default codecs and the host filesystem.
type Options struct {
	Schema *schema.Schema
	Codecs *codec.Registry
	FS     billy.Filesystem
	// PinnedContents keeps the N most recently decoded file values alive.
	// Zero disables pinning.
	PinnedContents int
}

// Dataset is the root of a tree. Every path in the tree resolves against
// BaseDir.
type Dataset struct {
	Folder
	descriptionSlot

	BaseDir string

	derivatives *DerivativeFolder
	env         environment
}

// NewDataset returns an empty dataset rooted at baseDir.
func NewDataset(name, baseDir string, opts Options) *Dataset {
	ds := &Dataset{BaseDir: baseDir}
	ds.name = name
	ds.self = ds

	env := defaultEnv()
	if opts.Schema != nil {
		env.schema = opts.Schema
	}
	if opts.Codecs != nil {
		env.codecs = opts.Codecs
	}
	if opts.FS != nil {
		env.fs = opts.FS
	}
	if opts.PinnedContents > 0 {
		pins, err := lru.New[*File, *Contents](opts.PinnedContents)
		if err != nil {
			logrus.WithError(err).Warn("Content pinning disabled")
		} else {
			env.pins = pins
		}
	}
	ds.env = env
	return ds
}

// CreateDataset returns a new dataset with an assigned description stamped
// with the schema version.
func CreateDataset(name, baseDir string, opts Options) *Dataset {
	ds := NewDataset(name, baseDir, opts)
	desc := NewDatasetDescription(ds.env.schema, "DatasetDescriptionFile")
	desc.Set("Name", name)
	desc.Set("BIDSVersion", ds.env.schema.VersionString())
	ds.SetDescription(desc)
	return ds
}

func (ds *Dataset) TypeName() string { return "Dataset" }

// Children returns the assigned description, the folders, the files and the
// derivatives folder, in that order.
func (ds *Dataset) Children() []Node {
	var out []Node
	if ds.direct != nil {
		out = append(out, ds.direct)
	}
	out = append(out, ds.Folder.Children()...)
	if ds.derivatives != nil {
		out = append(out, ds.derivatives)
	}
	return out
}

func (ds *Dataset) Schema() *schema.Schema  { return ds.env.schema }
func (ds *Dataset) Codecs() *codec.Registry { return ds.env.codecs }
func (ds *Dataset) FS() billy.Filesystem    { return ds.env.fs }

// Description returns the typed dataset description, deriving it from
// dataset_description.json when it was not assigned. It is nil when the
// file is missing or unreadable.
func (ds *Dataset) Description() *DatasetDescription {
	return ds.descriptionSlot.get(ds, "DatasetDescriptionFile")
}

// SetDescription assigns the description; nil clears it.
func (ds *Dataset) SetDescription(d *DatasetDescription) {
	ds.descriptionSlot.set(ds, d)
}

// Derivatives returns the derivatives folder, or nil.
func (ds *Dataset) Derivatives() *DerivativeFolder { return ds.derivatives }

// SetDerivatives attaches the derivatives folder.
func (ds *Dataset) SetDerivatives(d *DerivativeFolder) {
	if ds.derivatives != nil {
		ds.derivatives.setParent(nil)
	}
	if d != nil {
		d.setParent(ds)
	}
	ds.derivatives = d
}

// CreateDerivative adds a derivative dataset called name under the
// derivatives folder, at the folder path given by path (relative to the
// derivatives folder, or to the dataset when it starts with "derivatives").
// Missing folders are created. The new derivative's description starts as a
// copy of the dataset's and always carries a GeneratedBy list.
func (ds *Dataset) CreateDerivative(path, name string) *DerivativeFolder {
	if ds.derivatives == nil {
		ds.SetDerivatives(NewDerivativeFolder(DerivativesFolderName))
	}
	segments := splitPath(ToRelative(ds, path))
	if len(segments) > 0 && segments[0] == DerivativesFolderName {
		segments = segments[1:]
	}
	target, _ := ResolveSegments(ds.derivatives, joinSegments(append(segments, name)), true)
	if target == nil {
		return nil
	}

	derivative := NewDerivativeFolder(name)
	target.AsFolder().AddFolder(derivative)

	sc := ds.env.schema
	desc := NewDatasetDescription(sc, "DerivativeDatasetDescriptionFile")
	if src := ds.Description(); src != nil {
		desc.Fields().Update(src.Fields())
	}
	if !desc.Fields().Has("GeneratedBy") {
		desc.Set("GeneratedBy", []any{schema.NewObject(sc.Type("GeneratedBy"))})
	}
	derivative.SetDescription(desc)
	return derivative
}

// Locate returns the file or folder at a dataset-relative (or absolute)
// path, or nil.
func (ds *Dataset) Locate(path string) Node {
	rel := ToRelative(ds, path)
	if rel == "." {
		return ds
	}
	parent, leaf := ResolveSegments(ds, rel, false)
	if parent == nil {
		return nil
	}
	if l := parent.AsFolder().GetFile(leaf); l != nil {
		return l
	}
	if c := parent.AsFolder().GetFolder(leaf); c != nil {
		return c
	}
	return nil
}

// DerivativeFolder is a folder holding a derivative dataset, or the
// derivatives folder itself.
type DerivativeFolder struct {
	Folder
	descriptionSlot
}

// NewDerivativeFolder returns a detached derivative folder.
func NewDerivativeFolder(name string) *DerivativeFolder {
	d := &DerivativeFolder{}
	d.name = name
	d.self = d
	return d
}

func (d *DerivativeFolder) TypeName() string { return "DerivativeFolder" }

// Children returns the assigned description followed by the folder contents.
func (d *DerivativeFolder) Children() []Node {
	var out []Node
	if d.direct != nil {
		out = append(out, d.direct)
	}
	return append(out, d.Folder.Children()...)
}

// Description returns the derivative's typed description, or nil.
func (d *DerivativeFolder) Description() *DatasetDescription {
	return d.descriptionSlot.get(d, "DerivativeDatasetDescriptionFile")
}

// SetDescription assigns the description; nil clears it.
func (d *DerivativeFolder) SetDescription(desc *DatasetDescription) {
	d.descriptionSlot.set(d, desc)
}

func joinSegments(segments []string) string {
	if len(segments) == 0 {
		return "."
	}
	return filepath.Join(segments...)
}
