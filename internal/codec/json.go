package codec

import (
	"io"

	billy "github.com/go-git/go-billy/v5"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
)

// DefaultMmapThreshold is the JSON size from which files are memory-mapped.
const DefaultMmapThreshold = 1 << 20

// NewJSONReader returns a JSON reader that memory-maps files of at least
// threshold bytes instead of buffering them. A negative threshold disables
// mapping. Filesystems that do not expose file descriptors are always read
// into memory.
func NewJSONReader(threshold int64) ReadFunc {
	return func(fsys billy.Filesystem, path string, _ Options) (any, error) {
		info, err := fsys.Stat(path)
		if err != nil {
			return nil, err
		}
		f, err := fsys.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		if threshold >= 0 && info.Size() >= threshold {
			if data, unmap, ok := mapFile(f, info.Size()); ok {
				defer unmap()
				return oj.Parse(data)
			}
		}
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		return oj.Parse(data)
	}
}

// ReadJSON reads JSON with the default mapping threshold.
func ReadJSON(fsys billy.Filesystem, path string, opts Options) (any, error) {
	return NewJSONReader(DefaultMmapThreshold)(fsys, path, opts)
}

// WriteJSON writes value as indented JSON with sorted keys.
func WriteJSON(fsys billy.Filesystem, path string, value any, _ Options) error {
	return writeFile(fsys, path, []byte(EncodeJSON(value)+"\n"))
}

// EncodeJSON renders value as indented JSON with sorted keys.
func EncodeJSON(value any) string {
	return oj.JSON(Generic(value), &ojg.Options{Indent: 2, Sort: true})
}

// Generic converts the shapes produced by the built-in readers into plain
// maps and slices.
func Generic(v any) any {
	switch x := v.(type) {
	case *Frame:
		rows := make([]any, len(x.Rows))
		for i, row := range x.Rows {
			rows[i] = Generic(row)
		}
		return map[string]any{"columns": Generic(x.Columns), "rows": rows}
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(x))
		for k, s := range x {
			out[k] = s
		}
		return out
	case []map[string]string:
		out := make([]any, len(x))
		for i, row := range x {
			out[i] = Generic(row)
		}
		return out
	case map[string][]string:
		out := make(map[string]any, len(x))
		for k, col := range x {
			out[k] = Generic(col)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = Generic(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Generic(item)
		}
		return out
	}
	return v
}
