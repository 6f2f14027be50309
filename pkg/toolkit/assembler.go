// SPDX-License-Identifier: MPL-2.0

package toolkit

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arcadeai/arcade/pkg/pkgindex"
	"github.com/arcadeai/arcade/pkg/toolscan"
)

// DefaultSourcePattern selects the source files scanned for tools.
const DefaultSourcePattern = "**/*.py"

type (
	// Assembler loads toolkits from a package index.
	Assembler struct {
		index   pkgindex.Index
		scanner toolscan.Scanner
		pattern string
	}

	// AssemblerOption configures an Assembler.
	AssemblerOption func(*Assembler)
)

// WithSourcePattern sets the doublestar pattern, relative to the package
// source root, that selects the files to scan.
func WithSourcePattern(pattern string) AssemblerOption {
	return func(a *Assembler) {
		if pattern != "" {
			a.pattern = pattern
		}
	}
}

// NewAssembler creates an Assembler. A nil scanner defaults to toolscan.Python.
func NewAssembler(index pkgindex.Index, scanner toolscan.Scanner, opts ...AssemblerOption) *Assembler {
	if scanner == nil {
		scanner = toolscan.Python{}
	}
	a := &Assembler{
		index:   index,
		scanner: scanner,
		pattern: DefaultSourcePattern,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Index returns the package index the assembler reads from.
func (a *Assembler) Index() pkgindex.Index {
	return a.index
}

// Assemble loads the named package as a Toolkit.
func (a *Assembler) Assemble(packageName string, opts ...BuildOption) (*Toolkit, error) {
	meta, err := a.index.Metadata(packageName)
	if err != nil {
		switch {
		case errors.Is(err, pkgindex.ErrNotFound):
			return nil, newLoadError(packageName, ErrPackageNotFound, err, "Package '%s' not found.", packageName)
		case errors.Is(err, pkgindex.ErrMissingKey):
			return nil, newLoadError(packageName, ErrMetadataKey, err, "Metadata key error for package '%s'.", packageName)
		default:
			return nil, newLoadError(packageName, ErrMetadata, err, "Failed to load metadata for package '%s'.", packageName)
		}
	}

	root, err := a.index.Locate(packageName)
	if err != nil {
		return nil, newLoadError(packageName, ErrSourceDir, err, "Failed to locate package directory for '%s'.", packageName)
	}

	files, err := a.sourceFiles(root)
	if err != nil {
		return nil, newLoadError(packageName, ErrSourceFiles, err,
			"Failed to locate Python files in package directory for '%s'.", packageName)
	}

	modules := make([]Module, 0, len(files))
	total := 0
	for _, rel := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		tools, err := a.scanner.Scan(path)
		if err != nil {
			return nil, newLoadError(packageName, ErrScan, err,
				"Failed to scan tools in '%s' for package '%s'.", path, packageName)
		}
		total += len(tools)
		modules = append(modules, Module{Path: importPath(meta.Name, rel), Tools: tools})
	}

	if total == 0 {
		return nil, newLoadError(packageName, ErrNoTools, nil, "No tools found in package %s", packageName)
	}

	return Build(meta, modules, opts...), nil
}

// AssembleFromEntry loads the toolkit owning an entry point. The entry's
// value, without DefaultPrefix, becomes the display name.
func (a *Assembler) AssembleFromEntry(entry pkgindex.EntryPoint) (*Toolkit, error) {
	if entry.Dist == nil || entry.Dist.Name == "" {
		return nil, newLoadError(entry.Value, ErrNoDistribution, nil,
			"Entry point '%s' does not have distribution metadata. "+
				"This may indicate an incomplete package installation.", entry.Name)
	}
	return a.Assemble(entry.Dist.Name, WithName(StripPrefix(entry.Value)))
}

// sourceFiles returns the slash-separated paths of matching regular files
// under root, sorted.
func (a *Assembler) sourceFiles(root string) ([]string, error) {
	if !doublestar.ValidatePattern(a.pattern) {
		return nil, doublestar.ErrBadPattern
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "scan", Path: root, Err: errors.New("not a directory")}
	}

	matches, err := doublestar.Glob(os.DirFS(root), a.pattern,
		doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, err
	}
	slices.Sort(matches)
	return matches, nil
}

// importPath turns a source path relative to the package root into a
// dotted import path under pkg: "sub/ops.py" becomes "pkg.sub.ops".
func importPath(pkg, rel string) string {
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return pkg + "." + strings.ReplaceAll(rel, "/", ".")
}
