package codec

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
)

const maxLineSize = 16 << 20

// ReadText returns the lines of a plain-text file without line terminators.
func ReadText(fsys billy.Filesystem, path string, _ Options) (any, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	lines := []string{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// WriteText writes the string form of value. Line slices are written one
// line per element.
func WriteText(fsys billy.Filesystem, path string, value any, _ Options) error {
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	case []string:
		if len(v) > 0 {
			text = strings.Join(v, "\n") + "\n"
		}
	default:
		text = fmt.Sprint(v)
	}
	return writeFile(fsys, path, []byte(text))
}

func writeFile(fsys billy.Filesystem, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
