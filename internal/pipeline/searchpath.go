package pipeline

import (
	"os"
	"path/filepath"
	"strings"
)

// SearchPath is the ordered list of directories consulted for pipeline units.
// Earlier directories take precedence when two hold the same identifier.
type SearchPath []string

// NewSearchPath builds a SearchPath from dirs, making each absolute and
// dropping empty or repeated entries. Order is preserved.
func NewSearchPath(dirs ...string) SearchPath {
	sp := make(SearchPath, 0, len(dirs))
	seen := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		sp = append(sp, dir)
	}
	return sp
}

// DefaultSearchPath returns the directory holding the running executable,
// then ../src relative to the working directory, then any extra directories.
// Directories that do not exist are kept; discovery skips them.
func DefaultSearchPath(extra ...string) SearchPath {
	var dirs []string
	if dir, err := executableDir(); err == nil {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, filepath.Join("..", "src"))
	dirs = append(dirs, extra...)
	return NewSearchPath(dirs...)
}

// String joins the directories with the OS list separator.
func (sp SearchPath) String() string {
	return strings.Join(sp, string(os.PathListSeparator))
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
