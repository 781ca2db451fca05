package pipeline

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Entry is one discovered pipeline unit.
type Entry struct {
	Identifier  string    `json:"identifier"`
	Command     string    `json:"command"`
	Path        string    `json:"path"`
	Dir         string    `json:"dir"`
	Runtime     Runtime   `json:"runtime"`
	Description string    `json:"description,omitempty"`
	Version     string    `json:"version,omitempty"`
	Manifest    *Manifest `json:"-"`
}

// SkippedDir records a search directory that could not be read.
type SkippedDir struct {
	Dir    string `json:"dir"`
	Reason string `json:"reason"`
}

// Catalog is the result of scanning a SearchPath.
type Catalog struct {
	SearchPath SearchPath   `json:"search_path"`
	Entries    []Entry      `json:"pipelines"`
	Skipped    []SkippedDir `json:"skipped,omitempty"`
}

// DiscoverOptions controls Discover.
type DiscoverOptions struct {
	// Runtimes lists recognised extensions in precedence order.
	// DefaultRuntimes is used when empty.
	Runtimes []Runtime
	// KeepDuplicates lists an identifier once per directory that holds it
	// instead of only the first.
	KeepDuplicates bool
	Logger         *log.Logger
}

// Discover lists the pipeline units in every directory of sp, in search
// order. Directories that cannot be read are recorded in Catalog.Skipped and
// never cause an error.
func Discover(sp SearchPath, opts DiscoverOptions) *Catalog {
	logger := loggerOrDiscard(opts.Logger)
	runtimes := runtimesOrDefault(opts.Runtimes)

	cat := &Catalog{SearchPath: sp}
	seen := make(map[string]string)

	for _, dir := range sp {
		entries, err := scanDir(dir, runtimes)
		if err != nil {
			logger.Debug("skipping search directory", "dir", dir, "err", err)
			cat.Skipped = append(cat.Skipped, SkippedDir{Dir: dir, Reason: err.Error()})
			continue
		}
		for _, e := range entries {
			if first, ok := seen[e.Identifier]; ok && !opts.KeepDuplicates {
				logger.Debug("pipeline shadowed", "identifier", e.Identifier, "path", e.Path, "by", first)
				continue
			}
			seen[e.Identifier] = e.Path
			cat.Entries = append(cat.Entries, e)
		}
	}

	return cat
}

// Names returns the display names of the catalog entries, with or without
// the identifier prefix.
func (c *Catalog) Names(stripPrefix bool) []string {
	names := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		if stripPrefix {
			names = append(names, e.Command)
		} else {
			names = append(names, e.Identifier)
		}
	}
	return names
}

// Commands returns the command names users type to run each entry.
func (c *Catalog) Commands() []string {
	return c.Names(true)
}

// Format renders the catalog in ncolumns columns.
func (c *Catalog) Format(ncolumns int, stripPrefix bool) string {
	return FormatColumns(c.Names(stripPrefix), ncolumns)
}

// scanDir lists the units in one directory in name order. When one
// identifier exists with several extensions, the runtime listed first wins.
func scanDir(dir string, runtimes []Runtime) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	rank := make(map[string]int)
	index := make(map[string]int)

	for _, de := range dirEntries {
		id, rtIndex, ok := matchUnit(de.Name(), runtimes)
		if !ok {
			continue
		}
		path := filepath.Join(dir, de.Name())
		if !isUnitFile(path) {
			continue
		}
		if i, dup := index[id]; dup {
			if rtIndex < rank[id] {
				entries[i] = newEntry(id, dir, path, runtimes[rtIndex])
				rank[id] = rtIndex
			}
			continue
		}
		index[id] = len(entries)
		rank[id] = rtIndex
		entries = append(entries, newEntry(id, dir, path, runtimes[rtIndex]))
	}

	return entries, nil
}

func newEntry(id, dir, path string, rt Runtime) Entry {
	e := Entry{
		Identifier: id,
		Command:    CommandName(id),
		Path:       path,
		Dir:        dir,
		Runtime:    rt,
	}
	if m, err := LoadManifest(dir, id); err == nil {
		e.Manifest = m
		e.Description = m.Description
		e.Version = m.Version
	}
	return e
}

// isUnitFile reports whether path is a regular file, following symlinks.
func isUnitFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func loggerOrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}
