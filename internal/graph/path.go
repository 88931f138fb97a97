package graph

import (
	"path/filepath"
	"strings"
)

// AbsolutePath returns the filesystem path of n, or of fileName inside n
// when fileName is non-empty.
func AbsolutePath(n Node, fileName string) string {
	return resolvePath(n, fileName, true)
}

// RelativePath returns the dataset-relative path of n (or of fileName inside n).
func RelativePath(n Node, fileName string) string {
	return resolvePath(n, fileName, false)
}

// resolvePath collects name segments from n upward. At the dataset it adds
// the dataset name unless the base directory already ends with it, prepends
// the base directory for absolute paths, and stops. Without a dataset the
// collected segments alone form the path.
func resolvePath(n Node, fileName string, absolute bool) string {
	var segments []string
	if fileName != "" {
		segments = append(segments, fileName)
	}
	for cur := n; cur != nil; cur = cur.Parent() {
		if ds, ok := cur.(*Dataset); ok {
			if !strings.HasSuffix(ds.BaseDir, ds.Name()) {
				segments = append([]string{ds.Name()}, segments...)
			}
			if absolute {
				segments = append([]string{ds.BaseDir}, segments...)
			}
			break
		}
		segments = append([]string{cur.Name()}, segments...)
	}

	p := filepath.Clean(filepath.Join(segments...))
	if absolute {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	}
	return p
}

// ResolveSegments walks relPath from root. Every segment but the last must
// name a folder; missing folders are created when createIfMissing is set,
// otherwise the walk fails and returns nil. The last segment is returned
// unresolved as leaf.
func ResolveSegments(root Container, relPath string, createIfMissing bool) (Container, string) {
	segments := splitPath(relPath)
	if len(segments) == 0 {
		return root, ""
	}
	cur := root
	for _, seg := range segments[:len(segments)-1] {
		if seg == ".." {
			parent, ok := cur.Parent().(Container)
			if !ok {
				return nil, ""
			}
			cur = parent
			continue
		}
		next := cur.AsFolder().GetFolder(seg)
		if next == nil {
			if !createIfMissing {
				return nil, ""
			}
			next = cur.AsFolder().CreateFolder(seg)
		}
		cur = next
	}
	return cur, segments[len(segments)-1]
}

// ToRelative converts a path to dataset-relative form. Absolute paths under
// the dataset are made relative to it, and a leading dataset-name segment
// (present when the base directory does not end with the name) is dropped.
func ToRelative(ds *Dataset, p string) string {
	if p == "" {
		return "."
	}
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(ds.AbsolutePath(), p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.Clean(p)
		}
		return rel
	}
	p = filepath.Clean(p)
	if !strings.HasSuffix(ds.BaseDir, ds.Name()) {
		segments := splitPath(p)
		if len(segments) > 0 && segments[0] == ds.Name() {
			p = filepath.Join(append([]string{"."}, segments[1:]...)...)
		}
	}
	return p
}

func splitPath(p string) []string {
	p = filepath.ToSlash(filepath.Clean(p))
	var segments []string
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}
