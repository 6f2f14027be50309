// SPDX-License-Identifier: MPL-2.0

package sitetest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/arcadeai/arcade/internal/testutil"
)

type (
	// Dist describes one installed distribution.
	Dist struct {
		Name        string
		Version     string
		Summary     string
		Authors     []string
		Homepage    string
		Requires    []string
		Headers     map[string]string
		EntryPoints map[string]map[string]string
		TopLevel    []string
		// Files maps paths relative to the site directory to contents.
		Files map[string]string
		// OmitMetadata skips writing METADATA entirely.
		OmitMetadata bool
		// RawMetadata, when set, is written verbatim as METADATA.
		RawMetadata string
	}

	// DistOption configures a Dist.
	DistOption func(*Dist)
)

// NewDist creates a distribution with the given name and version and no files.
func NewDist(name, version string, opts ...DistOption) Dist {
	d := Dist{
		Name:        name,
		Version:     version,
		Headers:     make(map[string]string),
		EntryPoints: make(map[string]map[string]string),
		Files:       make(map[string]string),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithSummary sets the Summary header.
func WithSummary(s string) DistOption {
	return func(d *Dist) { d.Summary = s }
}

// WithAuthor appends an Author-email header.
func WithAuthor(a string) DistOption {
	return func(d *Dist) { d.Authors = append(d.Authors, a) }
}

// WithHomepage sets the Home-page header.
func WithHomepage(url string) DistOption {
	return func(d *Dist) { d.Homepage = url }
}

// WithRequires appends Requires-Dist headers.
func WithRequires(reqs ...string) DistOption {
	return func(d *Dist) { d.Requires = append(d.Requires, reqs...) }
}

// WithHeader sets an arbitrary METADATA header.
func WithHeader(key, value string) DistOption {
	return func(d *Dist) { d.Headers[key] = value }
}

// WithEntryPoint registers an entry point in entry_points.txt.
func WithEntryPoint(group, name, value string) DistOption {
	return func(d *Dist) {
		if d.EntryPoints[group] == nil {
			d.EntryPoints[group] = make(map[string]string)
		}
		d.EntryPoints[group][name] = value
	}
}

// WithTopLevel writes top_level.txt with the given import names.
func WithTopLevel(names ...string) DistOption {
	return func(d *Dist) { d.TopLevel = append(d.TopLevel, names...) }
}

// WithFile adds a source file relative to the site directory.
func WithFile(path, content string) DistOption {
	return func(d *Dist) { d.Files[path] = content }
}

// WithRawMetadata replaces the generated METADATA file.
func WithRawMetadata(raw string) DistOption {
	return func(d *Dist) { d.RawMetadata = raw }
}

// WithoutMetadata omits the METADATA file.
func WithoutMetadata() DistOption {
	return func(d *Dist) { d.OmitMetadata = true }
}

// DistInfoDir returns the dist-info directory name of d.
func (d Dist) DistInfoDir() string {
	return strings.ReplaceAll(d.Name, "-", "_") + "-" + d.Version + ".dist-info"
}

// Metadata renders the METADATA file of d.
func (d Dist) Metadata() string {
	if d.RawMetadata != "" {
		return d.RawMetadata
	}

	var sb strings.Builder
	sb.WriteString("Metadata-Version: 2.1\n")
	if d.Name != "" {
		fmt.Fprintf(&sb, "Name: %s\n", d.Name)
	}
	if d.Version != "" {
		fmt.Fprintf(&sb, "Version: %s\n", d.Version)
	}
	if d.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", d.Summary)
	}
	if d.Homepage != "" {
		fmt.Fprintf(&sb, "Home-page: %s\n", d.Homepage)
	}
	for _, a := range d.Authors {
		fmt.Fprintf(&sb, "Author-email: %s\n", a)
	}
	for _, r := range d.Requires {
		fmt.Fprintf(&sb, "Requires-Dist: %s\n", r)
	}
	for _, k := range sortedKeys(d.Headers) {
		fmt.Fprintf(&sb, "%s: %s\n", k, d.Headers[k])
	}
	sb.WriteString("\nLong description body.\n")
	return sb.String()
}

// Install writes d into siteDir and returns the dist-info directory path.
func Install(t testing.TB, siteDir string, d Dist) string {
	t.Helper()

	infoDir := filepath.Join(siteDir, d.DistInfoDir())
	testutil.MustMkdirAll(t, infoDir)
	if !d.OmitMetadata {
		testutil.MustWriteFile(t, filepath.Join(infoDir, "METADATA"), d.Metadata())
	}

	if len(d.EntryPoints) > 0 {
		var sb strings.Builder
		for _, group := range sortedKeys(d.EntryPoints) {
			fmt.Fprintf(&sb, "[%s]\n", group)
			for _, name := range sortedKeys(d.EntryPoints[group]) {
				fmt.Fprintf(&sb, "%s = %s\n", name, d.EntryPoints[group][name])
			}
			sb.WriteString("\n")
		}
		testutil.MustWriteFile(t, filepath.Join(infoDir, "entry_points.txt"), sb.String())
	}

	if len(d.TopLevel) > 0 {
		testutil.MustWriteFile(t, filepath.Join(infoDir, "top_level.txt"), strings.Join(d.TopLevel, "\n")+"\n")
	}

	testutil.WriteTree(t, siteDir, d.Files)
	return infoDir
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
