package pipeline

import (
	"path/filepath"
	"strings"
)

// Runtime maps a file extension to the interpreter that runs it.
// An empty Interpreter runs the file directly.
type Runtime struct {
	Ext         string `mapstructure:"ext" yaml:"ext" json:"ext"`
	Interpreter string `mapstructure:"interpreter" yaml:"interpreter" json:"interpreter"`
}

// DefaultRuntimes are the recognised script extensions, in precedence order.
var DefaultRuntimes = []Runtime{
	{Ext: ".py", Interpreter: "python3"},
	{Ext: ".sh", Interpreter: "sh"},
	{Ext: ".R", Interpreter: "Rscript"},
}

// matchUnit reports whether name is a pipeline unit file for one of
// runtimes. It returns the identifier and the index of the matching runtime.
func matchUnit(name string, runtimes []Runtime) (string, int, bool) {
	if !strings.HasPrefix(name, Prefix) {
		return "", 0, false
	}
	ext := filepath.Ext(name)
	for i, rt := range runtimes {
		if rt.Ext != ext {
			continue
		}
		id := strings.TrimSuffix(name, ext)
		if id == Prefix {
			return "", 0, false
		}
		return id, i, true
	}
	return "", 0, false
}

func runtimesOrDefault(runtimes []Runtime) []Runtime {
	if len(runtimes) == 0 {
		return DefaultRuntimes
	}
	return runtimes
}

// IsUnitName reports whether a file called name would be picked up as a
// pipeline unit under runtimes, or is a unit's manifest directory.
func IsUnitName(name string, runtimes []Runtime) bool {
	if _, _, ok := matchUnit(name, runtimesOrDefault(runtimes)); ok {
		return true
	}
	return strings.HasPrefix(name, Prefix) && filepath.Ext(name) == "" && name != Prefix
}
