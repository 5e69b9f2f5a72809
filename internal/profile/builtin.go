package profile

import (
	"bytes"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/n0roo/richness-kit/internal/table"
)

// BuiltinPrefix marks a profile path served from the tables shipped with the
// binary, e.g. "builtin:cafe".
const BuiltinPrefix = "builtin:"

//go:embed builtin/*.csv
var builtinFS embed.FS

// IsBuiltin reports whether path names a shipped profile table
func IsBuiltin(p string) bool {
	return strings.HasPrefix(p, BuiltinPrefix)
}

// HasBuiltin reports whether the named shipped table exists
func HasBuiltin(p string) bool {
	if !IsBuiltin(p) {
		return false
	}
	_, err := fs.Stat(builtinFS, builtinFile(p))
	return err == nil
}

// Builtins lists the shipped table paths
func Builtins() []string {
	entries, _ := fs.ReadDir(builtinFS, "builtin")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, BuiltinPrefix+strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(names)
	return names
}

func readBuiltin(p string, f table.Format) (*table.Table, error) {
	data, err := builtinFS.ReadFile(builtinFile(p))
	if err != nil {
		return nil, &richness.MissingInputError{Path: p}
	}
	return table.ReadFrom(bytes.NewReader(data), f)
}

func builtinFile(p string) string {
	return path.Join("builtin", strings.TrimPrefix(p, BuiltinPrefix)+".csv")
}
