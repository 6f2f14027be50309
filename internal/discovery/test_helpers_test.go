// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/arcadeai/arcade/internal/testutil"
	"github.com/arcadeai/arcade/pkg/pkgindex"
	"github.com/arcadeai/arcade/pkg/toolkit"
)

const addTool = "@tool\ndef add(a, b):\n    return a + b\n"

// newToolkitPackage creates an in-memory package whose source root holds
// the given files. Entry points are attached as declared.
func newToolkitPackage(t *testing.T, name, version string, files map[string]string, eps ...pkgindex.EntryPoint) pkgindex.Package {
	t.Helper()
	root := filepath.Join(t.TempDir(), name)
	testutil.MustMkdirAll(t, root)
	testutil.WriteTree(t, root, files)
	return pkgindex.Package{
		Metadata:    pkgindex.Metadata{Name: name, Version: version},
		SourceRoot:  root,
		EntryPoints: eps,
	}
}

// newTestDiscovery wires a Discovery over idx with a buffered logger.
func newTestDiscovery(idx pkgindex.Index, opts ...Option) (*Discovery, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	d := New(toolkit.NewAssembler(idx, nil), append([]Option{WithLogger(logger)}, opts...)...)
	return d, &buf
}

func toolkitEntry(value string) pkgindex.EntryPoint {
	return pkgindex.EntryPoint{Name: DefaultEntryPointName, Value: value}
}

func packageNames(tks []*toolkit.Toolkit) []string {
	names := make([]string, 0, len(tks))
	for _, tk := range tks {
		names = append(names, tk.PackageName)
	}
	return names
}

func diagnosticCodes(diags []Diagnostic) []DiagnosticCode {
	codes := make([]DiagnosticCode, 0, len(diags))
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	return codes
}
