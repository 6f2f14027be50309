// SPDX-License-Identifier: MPL-2.0

package toolkit

import (
	"slices"
	"strings"

	"github.com/arcadeai/arcade/pkg/pkgindex"
)

// DefaultPrefix is the naming prefix of toolkit distributions.
const DefaultPrefix = "arcade_"

type (
	// Toolkit is a loaded toolkit package.
	Toolkit struct {
		// Name is the display name, usually the package name without prefix.
		Name string `json:"name" yaml:"name"`
		// PackageName is the distribution name the toolkit was loaded from.
		PackageName string   `json:"package_name" yaml:"package_name"`
		Version     string   `json:"version" yaml:"version"`
		Description string   `json:"description" yaml:"description"`
		Authors     []string `json:"author" yaml:"author"`
		Repository  string   `json:"repository,omitempty" yaml:"repository,omitempty"`
		Homepage    string   `json:"homepage,omitempty" yaml:"homepage,omitempty"`
		// Modules lists every scanned source module in enumeration order.
		// It encodes as a mapping from module path to tool names.
		Modules Modules `json:"tools" yaml:"tools"`
		// Requires holds the declared runtime dependencies.
		Requires []pkgindex.Requirement `json:"requires,omitempty" yaml:"requires,omitempty"`
	}

	// Module is one scanned source module and the tools it declares.
	Module struct {
		// Path is the dotted import path, e.g. "arcade_math.ops".
		Path  string
		Tools []string
	}

	// Modules is an ordered module-to-tools mapping.
	Modules []Module

	// BuildOption configures Build.
	BuildOption func(*Toolkit)
)

// WithName overrides the display name.
func WithName(name string) BuildOption {
	return func(tk *Toolkit) { tk.Name = name }
}

// Build creates a Toolkit from package metadata and scanned modules. The
// display name defaults to the package name with DefaultPrefix removed.
// Inputs are copied; the result shares no slices with its arguments.
func Build(meta *pkgindex.Metadata, modules []Module, opts ...BuildOption) *Toolkit {
	tk := &Toolkit{
		Name:        StripPrefix(meta.Name),
		PackageName: meta.Name,
		Version:     meta.Version,
		Description: meta.Description,
		Authors:     slices.Clone(meta.Authors),
		Repository:  meta.Repository,
		Homepage:    meta.Homepage,
		Modules:     make([]Module, 0, len(modules)),
		Requires:    slices.Clone(meta.Requires),
	}
	for _, m := range modules {
		tools := slices.Clone(m.Tools)
		if tools == nil {
			tools = []string{}
		}
		tk.Modules = append(tk.Modules, Module{Path: m.Path, Tools: tools})
	}
	for _, opt := range opts {
		opt(tk)
	}
	return tk
}

// StripPrefix removes DefaultPrefix from the start of name, once.
func StripPrefix(name string) string {
	return strings.TrimPrefix(name, DefaultPrefix)
}

// Tools returns the tools declared by the module at path, and whether the
// module was scanned at all.
func (tk *Toolkit) Tools(path string) ([]string, bool) {
	for _, m := range tk.Modules {
		if m.Path == path {
			return m.Tools, true
		}
	}
	return nil, false
}

// ToolMap returns the module-to-tools mapping as a map.
func (tk *Toolkit) ToolMap() map[string][]string {
	out := make(map[string][]string, len(tk.Modules))
	for _, m := range tk.Modules {
		out[m.Path] = slices.Clone(m.Tools)
	}
	return out
}

// ToolCount returns the number of tools across all modules.
func (tk *Toolkit) ToolCount() int {
	n := 0
	for _, m := range tk.Modules {
		n += len(m.Tools)
	}
	return n
}

// ToolNames returns every tool name in module order.
func (tk *Toolkit) ToolNames() []string {
	var names []string
	for _, m := range tk.Modules {
		names = append(names, m.Tools...)
	}
	return names
}
