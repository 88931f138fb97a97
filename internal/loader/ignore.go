package loader

import (
	"os"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName holds gitignore-style patterns excluded from loading.
const IgnoreFileName = ".bidsignore"

// defaultIgnore skips hidden files and directories (.git, .datalad, ...).
var defaultIgnore = []string{".*"}

// matcher decides which dataset-relative paths are skipped.
type matcher struct {
	ignorer *gitignore.GitIgnore
}

func newMatcher(fsys billy.Filesystem, root string, extra []string) (*matcher, error) {
	lines := append(append([]string{}, defaultIgnore...), extra...)
	data, err := util.ReadFile(fsys, filepath.Join(root, IgnoreFileName))
	switch {
	case err == nil:
		lines = append(lines, strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")...)
	case !os.IsNotExist(err):
		return nil, errors.WithMessagef(err, "read %s", IgnoreFileName)
	}
	return &matcher{ignorer: gitignore.CompileIgnoreLines(lines...)}, nil
}

// Matches reports whether rel (slash separated, relative to the dataset
// root) is ignored. Directories are also tested with a trailing slash so
// that "dir/" patterns apply.
func (m *matcher) Matches(rel string, dir bool) bool {
	if m == nil || m.ignorer == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if m.ignorer.MatchesPath(rel) {
		return true
	}
	return dir && m.ignorer.MatchesPath(rel+"/")
}
