package codec

import (
	"io"

	billy "github.com/go-git/go-billy/v5"
	"gopkg.in/yaml.v3"
)

// ReadYAML decodes a YAML document into generic maps and slices.
func ReadYAML(fsys billy.Filesystem, path string, _ Options) (any, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
