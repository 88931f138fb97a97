// Package codec maps file formats (extensions without the dot) to read and
// write functions. The graph only ever sees decoded values; it never knows
// how a format is laid out on disk.
package codec

import (
	"path/filepath"
	"strings"
	"sync"

	billy "github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"
)

// ErrUnsupported is returned when no codec is registered for a format.
var ErrUnsupported = errors.New("unsupported format")

// Options tune a single read or write.
type Options struct {
	// ReturnType selects the decoded shape for formats with several, e.g.
	// "rows", "columns" or "frame" for tsv.
	ReturnType string
}

// ReadFunc decodes the file at path.
type ReadFunc func(fsys billy.Filesystem, path string, opts Options) (any, error)

// WriteFunc encodes value into the file at path.
type WriteFunc func(fsys billy.Filesystem, path string, value any, opts Options) error

// Registry holds codecs by format. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	readers map[string]ReadFunc
	writers map[string]WriteFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		readers: make(map[string]ReadFunc),
		writers: make(map[string]WriteFunc),
	}
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry with the built-in formats.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
		RegisterBuiltins(defaultReg, DefaultMmapThreshold)
	})
	return defaultReg
}

// RegisterBuiltins installs txt, tsv, yaml/yml and json support. Files
// without an extension (README, CHANGES) read as text. JSON files
// of at least mmapThreshold bytes are memory-mapped; a negative threshold
// disables mapping.
func RegisterBuiltins(r *Registry, mmapThreshold int64) {
	r.RegisterReader("txt", ReadText)
	r.RegisterReader("", ReadText)
	r.RegisterReader("tsv", ReadTSV)
	r.RegisterReader("yaml", ReadYAML)
	r.RegisterReader("yml", ReadYAML)
	r.RegisterReader("json", NewJSONReader(mmapThreshold))

	r.RegisterWriter("json", WriteJSON)
	r.RegisterWriter("txt", WriteText)
}

// RegisterReader installs or replaces the reader for format.
func (r *Registry) RegisterReader(format string, fn ReadFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readers[normalize(format)] = fn
}

// RegisterWriter installs or replaces the writer for format.
func (r *Registry) RegisterWriter(format string, fn WriteFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writers[normalize(format)] = fn
}

// Reader returns the reader for format.
func (r *Registry) Reader(format string) (ReadFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.readers[normalize(format)]
	return fn, ok
}

// Writer returns the writer for format.
func (r *Registry) Writer(format string) (WriteFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.writers[normalize(format)]
	return fn, ok
}

// Load decodes path with the reader registered for its extension.
func (r *Registry) Load(fsys billy.Filesystem, path string, opts Options) (any, error) {
	format := FormatOf(path)
	fn, ok := r.Reader(format)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupported, "no reader for %q", format)
	}
	v, err := fn(fsys, path, opts)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to read %s", path)
	}
	return v, nil
}

// Store encodes value into path with the writer registered for its extension.
func (r *Registry) Store(fsys billy.Filesystem, path string, value any, opts Options) error {
	format := FormatOf(path)
	fn, ok := r.Writer(format)
	if !ok {
		return errors.Wrapf(ErrUnsupported, "no writer for %q", format)
	}
	if err := fn(fsys, path, value, opts); err != nil {
		return errors.WithMessagef(err, "failed to write %s", path)
	}
	return nil
}

// FormatOf returns the format identifier of a file name: its last
// extension, lowercased, without the dot.
func FormatOf(path string) string {
	return normalize(filepath.Ext(path))
}

func normalize(format string) string {
	return strings.ToLower(strings.TrimPrefix(format, "."))
}
