// SPDX-License-Identifier: MPL-2.0

package pkgindex

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// initFile marks a directory as a regular (non-namespace) package.
	initFile = "__init__.py"
	// moduleExt is the extension of single-file modules.
	moduleExt = ".py"
)

// ImportName derives the top-level import name of a distribution when the
// distribution does not declare one: separators that are illegal in Python
// identifiers become underscores.
func ImportName(distName string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(strings.TrimSpace(distName))
}

// importCandidates returns the import names to try for a package, most
// specific first and without duplicates.
func importCandidates(declared []string, name string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, d := range declared {
		add(d)
	}
	add(name)
	add(ImportName(name))
	add(strings.ToLower(ImportName(name)))
	return out
}

// locateIn resolves the source root of an importable name across search
// directories, following the import system's precedence: a regular package
// or single-file module on any search path wins over namespace portions,
// and the first namespace portion is used only when nothing else matches.
func locateIn(searchDirs []string, importName string) (string, bool) {
	namespace := ""
	for _, dir := range searchDirs {
		pkgDir := filepath.Join(dir, importName)
		if info, err := os.Stat(pkgDir); err == nil && info.IsDir() {
			if fileExists(filepath.Join(pkgDir, initFile)) {
				return pkgDir, true
			}
			if namespace == "" {
				namespace = pkgDir
			}
			continue
		}
		if fileExists(filepath.Join(dir, importName+moduleExt)) {
			// A module's origin is the file itself; its source root is the
			// directory containing it.
			return dir, true
		}
	}
	if namespace != "" {
		return namespace, true
	}
	return "", false
}

// fileExists reports whether path exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
