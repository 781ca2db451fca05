package pipeline

import (
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Resolver maps a pipeline identifier to an invocable unit.
type Resolver interface {
	Resolve(identifier string) (Unit, error)
}

// DirResolver resolves identifiers against the files on a SearchPath, using
// the same matching rules as Discover.
type DirResolver struct {
	SearchPath SearchPath
	Runtimes   []Runtime
	Stdio      Stdio
	Logger     *log.Logger
}

// Lookup returns the entry for identifier. Directories are tried in search
// order and runtimes in precedence order; the first existing file wins.
func (r *DirResolver) Lookup(identifier string) (*Entry, error) {
	logger := loggerOrDiscard(r.Logger)
	runtimes := runtimesOrDefault(r.Runtimes)

	for _, dir := range r.SearchPath {
		for _, rt := range runtimes {
			path := filepath.Join(dir, identifier+rt.Ext)
			if !isUnitFile(path) {
				continue
			}
			if id, _, ok := matchUnit(filepath.Base(path), runtimes); !ok || id != identifier {
				continue
			}
			e := newEntry(identifier, dir, path, rt)
			logger.Debug("resolved pipeline", "identifier", identifier, "path", path, "interpreter", rt.Interpreter)
			return &e, nil
		}
	}

	return nil, &ResolutionError{Identifier: identifier, SearchPath: r.SearchPath}
}

// Resolve implements Resolver.
func (r *DirResolver) Resolve(identifier string) (Unit, error) {
	e, err := r.Lookup(identifier)
	if err != nil {
		return nil, err
	}
	return &ScriptUnit{Entry: *e, Stdio: r.Stdio}, nil
}
