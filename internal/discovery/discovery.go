// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/arcadeai/arcade/pkg/toolkit"
)

const (
	// DefaultEntryPointGroup is the entry-point group toolkits register under.
	DefaultEntryPointGroup = "arcade_toolkits"
	// DefaultEntryPointName is the entry name that identifies a toolkit.
	DefaultEntryPointName = "toolkit_name"
)

type (
	// Discovery finds toolkits through an Assembler's package index.
	Discovery struct {
		assembler *toolkit.Assembler
		logger    *log.Logger
		group     string
		entryName string
		prefix    string
	}

	// Option configures a Discovery.
	Option func(*Discovery)
)

// WithLogger sets the logger used for skip warnings and debug output.
func WithLogger(logger *log.Logger) Option {
	return func(d *Discovery) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithEntryPointGroup overrides DefaultEntryPointGroup.
func WithEntryPointGroup(group string) Option {
	return func(d *Discovery) {
		if group != "" {
			d.group = group
		}
	}
}

// WithEntryPointName overrides DefaultEntryPointName. An explicit empty
// name is ignored.
func WithEntryPointName(name string) Option {
	return func(d *Discovery) {
		if name != "" {
			d.entryName = name
		}
	}
}

// WithPrefix overrides the distribution name prefix used by FromPrefix.
func WithPrefix(prefix string) Option {
	return func(d *Discovery) {
		if prefix != "" {
			d.prefix = prefix
		}
	}
}

// New creates a Discovery over the given assembler.
func New(assembler *toolkit.Assembler, opts ...Option) *Discovery {
	d := &Discovery{
		assembler: assembler,
		logger:    log.New(io.Discard),
		group:     DefaultEntryPointGroup,
		entryName: DefaultEntryPointName,
		prefix:    toolkit.DefaultPrefix,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover runs the strategies selected by source.
func (d *Discovery) Discover(source Source) Result {
	switch source {
	case SourceEntryPoint:
		return d.FromEntryPoints()
	case SourcePrefix:
		return d.FromPrefix()
	default:
		return d.DiscoverAll()
	}
}

// FromEntryPoints loads every toolkit registered as an entry point.
func (d *Discovery) FromEntryPoints() Result {
	var res Result

	entries, err := d.assembler.Index().EntryPoints(d.group)
	if err != nil {
		d.logger.Debug("entry points unavailable", "group", d.group, "err", err)
		res.Diagnostics = append(res.Diagnostics, NewDiagnosticWithCause(SeverityWarning, CodeEntryPointsUnavailable,
			fmt.Sprintf("could not list entry points in group %q", d.group), "", err))
		return res
	}

	for _, entry := range entries {
		if entry.Name != d.entryName {
			continue
		}
		tk, err := d.assembler.AssembleFromEntry(entry)
		if err != nil {
			d.logger.Warn(fmt.Sprintf("Warning: %v Skipping toolkit from entry point '%s'", err, entry.Value))
			res.Diagnostics = append(res.Diagnostics, NewDiagnosticWithCause(SeverityWarning, CodeEntryPointToolkitSkipped,
				fmt.Sprintf("skipping toolkit from entry point '%s'", entry.Value), entry.Value, err))
			continue
		}
		d.logger.Debug(fmt.Sprintf("Loaded toolkit from entry point: %s = '%s'", entry.Name, tk.Name))
		res.Toolkits = append(res.Toolkits, tk)
	}
	return res
}

// FromPrefix loads every distribution whose name starts with the prefix.
func (d *Discovery) FromPrefix() Result {
	var res Result

	names, err := d.assembler.Index().Distributions(d.prefix)
	if err != nil {
		d.logger.Debug("distributions unavailable", "prefix", d.prefix, "err", err)
		res.Diagnostics = append(res.Diagnostics, NewDiagnosticWithCause(SeverityWarning, CodeDistributionsUnavailable,
			fmt.Sprintf("could not list distributions with prefix %q", d.prefix), "", err))
		return res
	}

	for _, name := range names {
		tk, err := d.assembler.Assemble(name)
		if err != nil {
			d.logger.Warn(fmt.Sprintf("Warning: %v Skipping toolkit %s", err, name))
			res.Diagnostics = append(res.Diagnostics, NewDiagnosticWithCause(SeverityWarning, CodePrefixToolkitSkipped,
				fmt.Sprintf("skipping toolkit %s", name), name, err))
			continue
		}
		d.logger.Debug("Loaded toolkit from prefix discovery: " + name)
		res.Toolkits = append(res.Toolkits, tk)
	}
	return res
}

// DiscoverAll runs both strategies and merges them, entry points first.
func (d *Discovery) DiscoverAll() Result {
	entry := d.FromEntryPoints()
	prefix := d.FromPrefix()

	diags := make([]Diagnostic, 0, len(entry.Diagnostics)+len(prefix.Diagnostics))
	diags = append(diags, entry.Diagnostics...)
	diags = append(diags, prefix.Diagnostics...)

	return Result{
		Toolkits:    Merge(entry.Toolkits, prefix.Toolkits),
		Diagnostics: diags,
	}
}

// Merge concatenates two toolkit lists, keeping the first toolkit seen for
// each package name. Order is otherwise preserved.
func Merge(entry, prefix []*toolkit.Toolkit) []*toolkit.Toolkit {
	seen := make(map[string]bool, len(entry)+len(prefix))
	out := make([]*toolkit.Toolkit, 0, len(entry)+len(prefix))
	for _, list := range [][]*toolkit.Toolkit{entry, prefix} {
		for _, tk := range list {
			if tk == nil || seen[tk.PackageName] {
				continue
			}
			seen[tk.PackageName] = true
			out = append(out, tk)
		}
	}
	return out
}
