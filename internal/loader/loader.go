// Package loader scans a dataset directory into a graph.Dataset. Only names
// are read during the scan; file contents stay on disk until accessed.
package loader

import (
	"path/filepath"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/agentic-research/bidsgraph/internal/codec"
	"github.com/agentic-research/bidsgraph/internal/graph"
	"github.com/agentic-research/bidsgraph/internal/schema"
)

// ErrNoRoot is returned when no ancestor of a path holds a dataset description.
var ErrNoRoot = errors.New("no dataset root found")

// Options configures Load. Zero values use the host filesystem, the embedded
// schema and the default codecs.
type Options struct {
	FS             billy.Filesystem
	Schema         *schema.Schema
	Codecs         *codec.Registry
	PinnedContents int
	// IgnoreDerivatives skips the top-level derivatives folder.
	IgnoreDerivatives bool
	// ExtraIgnore adds gitignore-style patterns to those of .bidsignore.
	ExtraIgnore []string
}

func (o Options) fs() billy.Filesystem {
	if o.FS == nil {
		return osfs.New("/")
	}
	return o.FS
}

// FindRoot walks upward from path to the closest directory holding a
// dataset_description.json.
func FindRoot(fsys billy.Filesystem, path string) (string, error) {
	cur, err := absolute(path)
	if err != nil {
		return "", err
	}
	for {
		if _, err := fsys.Stat(filepath.Join(cur, graph.DescriptionFileName)); err == nil {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", errors.WithMessagef(ErrNoRoot, "from %s", path)
		}
		cur = parent
	}
}

func absolute(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", path)
	}
	return abs, nil
}

// Load mirrors the dataset containing path.
func Load(path string, opts Options) (*graph.Dataset, error) {
	fsys := opts.fs()
	root, err := FindRoot(fsys, path)
	if err != nil {
		return nil, err
	}
	m, err := newMatcher(fsys, root, opts.ExtraIgnore)
	if err != nil {
		return nil, err
	}

	ds := graph.NewDataset(filepath.Base(root), root, graph.Options{
		Schema:         opts.Schema,
		Codecs:         opts.Codecs,
		FS:             fsys,
		PinnedContents: opts.PinnedContents,
	})
	s := &scanner{fs: fsys, root: root, ignore: m, opts: opts}
	if err := s.scan(&ds.Folder, root, true); err != nil {
		return nil, err
	}

	if desc := ds.Description(); desc != nil && !ds.Schema().Compatible(desc.BIDSVersion()) {
		logrus.WithFields(logrus.Fields{
			"dataset": root,
			"version": desc.BIDSVersion(),
			"schema":  ds.Schema().VersionString(),
		}).Warn("Dataset version is not compatible with the schema")
	}
	logrus.WithFields(logrus.Fields{
		"root":      root,
		"artifacts": s.artifacts,
		"files":     s.files,
	}).Debug("Dataset loaded")
	return ds, nil
}

type scanner struct {
	fs     billy.Filesystem
	root   string
	ignore *matcher
	opts   Options

	files     int
	artifacts int
}

func (s *scanner) scan(folder *graph.Folder, dir string, top bool) error {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return errors.WithMessagef(err, "read directory %s", dir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return errors.Wrapf(err, "relative path of %s", path)
		}
		isDir := e.IsDir()
		if s.ignore.Matches(rel, isDir) {
			logrus.WithField("path", rel).Trace("Ignored")
			continue
		}
		if isDir {
			if err := s.scanDir(folder, path, e.Name(), top); err != nil {
				return err
			}
			continue
		}
		s.addLeaf(folder, e.Name())
	}
	return nil
}

func (s *scanner) scanDir(parent *graph.Folder, path, name string, top bool) error {
	if top && name == graph.DerivativesFolderName {
		if s.opts.IgnoreDerivatives {
			return nil
		}
		derivatives := graph.NewDerivativeFolder(name)
		ds, ok := parent.Node().(*graph.Dataset)
		if !ok {
			return errors.Errorf("derivatives folder outside a dataset at %s", path)
		}
		ds.SetDerivatives(derivatives)
		return s.scan(&derivatives.Folder, path, false)
	}

	if s.isDerivative(path) {
		d := graph.NewDerivativeFolder(name)
		parent.AddFolder(d)
		return s.scan(&d.Folder, path, false)
	}
	return s.scan(parent.CreateFolder(name), path, false)
}

// isDerivative reports whether a directory under derivatives/ is itself a
// dataset, i.e. carries its own description.
func (s *scanner) isDerivative(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || !underDerivatives(rel) {
		return false
	}
	_, err = s.fs.Stat(filepath.Join(path, graph.DescriptionFileName))
	return err == nil
}

func underDerivatives(rel string) bool {
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first == graph.DerivativesFolderName
}

func (s *scanner) addLeaf(folder *graph.Folder, name string) {
	leaf, entities := newLeaf(name)
	folder.AddFile(leaf)
	s.files++
	if a, ok := leaf.(*graph.Artifact); ok {
		a.AddEntities(entities...)
		s.artifacts++
	}
}
