// SPDX-License-Identifier: MPL-2.0

package toolkit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arcadeai/arcade/internal/testutil"
	"github.com/arcadeai/arcade/internal/testutil/sitetest"
	"github.com/arcadeai/arcade/pkg/pkgindex"
	"github.com/arcadeai/arcade/pkg/toolscan"
)

const addTool = "from arcade_tdk import tool\n\n@tool\ndef add(a: int, b: int) -> int:\n    return a + b\n"

func memoryPackage(t *testing.T, name string, files map[string]string) pkgindex.Package {
	t.Helper()
	root := filepath.Join(t.TempDir(), name)
	testutil.MustMkdirAll(t, root)
	testutil.WriteTree(t, root, files)
	return pkgindex.Package{
		Metadata:   pkgindex.Metadata{Name: name, Version: "1.0.0", Authors: []string{"Ada"}},
		SourceRoot: root,
	}
}

func TestAssemble_ArcadeMath(t *testing.T) {
	t.Parallel()

	site := t.TempDir()
	sitetest.Install(t, site, sitetest.NewDist("arcade_math", "1.0.0",
		sitetest.WithSummary("Math tools"),
		sitetest.WithAuthor("ada@example.com"),
		sitetest.WithFile("arcade_math/ops.py", addTool),
	))

	a := NewAssembler(pkgindex.NewSitePackages(site), nil)
	tk, err := a.Assemble("arcade_math")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	want := &Toolkit{
		Name:        "math",
		PackageName: "arcade_math",
		Version:     "1.0.0",
		Description: "Math tools",
		Authors:     []string{"ada@example.com"},
		Modules:     []Module{{Path: "arcade_math.ops", Tools: []string{"add"}}},
	}
	if diff := cmp.Diff(want, tk); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string][]string{"arcade_math.ops": {"add"}}, tk.ToolMap()); diff != "" {
		t.Errorf("ToolMap() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_Modules(t *testing.T) {
	t.Parallel()

	pkg := memoryPackage(t, "arcade_geo", map[string]string{
		"__init__.py":        "",
		"tools/area.py":      addTool,
		"tools/__init__.py":  "",
		"README.md":          "@tool\ndef not_python(): pass\n",
		"__pycache__/x.pyc":  "binary",
		"tools/data/keep.py": "@tool\ndef keep():\n    pass\n",
	})
	a := NewAssembler(pkgindex.NewMemory(pkg), nil)

	tk, err := a.Assemble("arcade_geo")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	want := Modules{
		{Path: "arcade_geo.__init__", Tools: []string{}},
		{Path: "arcade_geo.tools.__init__", Tools: []string{}},
		{Path: "arcade_geo.tools.area", Tools: []string{"add"}},
		{Path: "arcade_geo.tools.data.keep", Tools: []string{"keep"}},
	}
	if diff := cmp.Diff(want, tk.Modules); diff != "" {
		t.Errorf("Modules mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_SourcePattern(t *testing.T) {
	t.Parallel()

	pkg := memoryPackage(t, "arcade_geo", map[string]string{
		"area.py":       addTool,
		"tests/test.py": "@tool\ndef fixture():\n    pass\n",
	})
	a := NewAssembler(pkgindex.NewMemory(pkg), nil, WithSourcePattern("*.py"))

	tk, err := a.Assemble("arcade_geo")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(tk.Modules) != 1 || tk.Modules[0].Path != "arcade_geo.area" {
		t.Errorf("Modules = %+v, want only arcade_geo.area", tk.Modules)
	}
}

func TestAssemble_Errors(t *testing.T) {
	t.Parallel()

	errDisk := errors.New("disk on fire")
	errScan := errors.New("scanner broke")

	tests := []struct {
		name     string
		index    func(t *testing.T) pkgindex.Index
		scanner  toolscan.Scanner
		pattern  string
		wantKind error
		wantMsg  string
		wantErr  error
	}{
		{
			name:     "package not found",
			index:    func(*testing.T) pkgindex.Index { return pkgindex.NewMemory() },
			wantKind: ErrPackageNotFound,
			wantMsg:  "Package 'arcade_x' not found.",
			wantErr:  pkgindex.ErrNotFound,
		},
		{
			name: "missing metadata key",
			index: func(*testing.T) pkgindex.Index {
				return pkgindex.NewMemory(pkgindex.Package{
					Metadata:    pkgindex.Metadata{Name: "arcade_x"},
					MetadataErr: &pkgindex.MissingKeyError{Package: "arcade_x", Key: "Version"},
				})
			},
			wantKind: ErrMetadataKey,
			wantMsg:  "Metadata key error for package 'arcade_x'.",
			wantErr:  pkgindex.ErrMissingKey,
		},
		{
			name: "other metadata failure",
			index: func(*testing.T) pkgindex.Index {
				return pkgindex.NewMemory(pkgindex.Package{
					Metadata:    pkgindex.Metadata{Name: "arcade_x"},
					MetadataErr: errDisk,
				})
			},
			wantKind: ErrMetadata,
			wantMsg:  "Failed to load metadata for package 'arcade_x'.",
			wantErr:  errDisk,
		},
		{
			name: "source root not located",
			index: func(*testing.T) pkgindex.Index {
				return pkgindex.NewMemory(pkgindex.Package{Metadata: pkgindex.Metadata{Name: "arcade_x", Version: "1"}})
			},
			wantKind: ErrSourceDir,
			wantMsg:  "Failed to locate package directory for 'arcade_x'.",
		},
		{
			name: "source root vanished",
			index: func(t *testing.T) pkgindex.Index {
				p := memoryPackage(t, "arcade_x", nil)
				p.SourceRoot = filepath.Join(p.SourceRoot, "gone")
				return pkgindex.NewMemory(p)
			},
			wantKind: ErrSourceFiles,
			wantMsg:  "Failed to locate Python files in package directory for 'arcade_x'.",
			wantErr:  os.ErrNotExist,
		},
		{
			name: "bad source pattern",
			index: func(t *testing.T) pkgindex.Index {
				return pkgindex.NewMemory(memoryPackage(t, "arcade_x", map[string]string{"a.py": addTool}))
			},
			pattern:  "[",
			wantKind: ErrSourceFiles,
		},
		{
			name: "no files",
			index: func(t *testing.T) pkgindex.Index {
				return pkgindex.NewMemory(memoryPackage(t, "arcade_x", map[string]string{"notes.txt": "hi"}))
			},
			wantKind: ErrNoTools,
			wantMsg:  "No tools found in package arcade_x",
		},
		{
			name: "files without tools",
			index: func(t *testing.T) pkgindex.Index {
				return pkgindex.NewMemory(memoryPackage(t, "arcade_x", map[string]string{
					"__init__.py": "",
					"util.py":     "def helper():\n    pass\n",
				}))
			},
			wantKind: ErrNoTools,
		},
		{
			name: "one file fails to scan",
			index: func(t *testing.T) pkgindex.Index {
				return pkgindex.NewMemory(memoryPackage(t, "arcade_x", map[string]string{
					"good.py": addTool,
					"bad.py":  "@tool(\n",
				}))
			},
			wantKind: ErrScan,
			wantErr:  toolscan.ErrParse,
		},
		{
			name: "scanner failure",
			index: func(t *testing.T) pkgindex.Index {
				return pkgindex.NewMemory(memoryPackage(t, "arcade_x", map[string]string{"a.py": addTool}))
			},
			scanner:  toolscan.Func(func(string) ([]string, error) { return nil, errScan }),
			wantKind: ErrScan,
			wantErr:  errScan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := NewAssembler(tt.index(t), tt.scanner, WithSourcePattern(tt.pattern))
			tk, err := a.Assemble("arcade_x")
			if tk != nil {
				t.Errorf("Assemble() returned a toolkit alongside error")
			}

			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("Assemble() error = %v, want *LoadError", err)
			}
			if loadErr.Package != "arcade_x" {
				t.Errorf("Package = %q, want %q", loadErr.Package, "arcade_x")
			}
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("errors.Is(err, %v) = false (err: %v)", tt.wantKind, err)
			}
			if tt.wantMsg != "" && loadErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", loadErr.Message, tt.wantMsg)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("errors.Is(err, %v) = false (err: %v)", tt.wantErr, err)
			}
		})
	}
}

func TestAssembleFromEntry(t *testing.T) {
	t.Parallel()

	pkg := memoryPackage(t, "arcade_math", map[string]string{"ops.py": addTool})
	pkg.EntryPoints = []pkgindex.EntryPoint{{Name: "toolkit_name", Value: "arcade_calculator"}}
	idx := pkgindex.NewMemory(pkg)
	a := NewAssembler(idx, nil)

	eps, err := idx.EntryPoints("arcade_toolkits")
	if err != nil || len(eps) != 1 {
		t.Fatalf("EntryPoints() = %v, %v", eps, err)
	}

	tk, err := a.AssembleFromEntry(eps[0])
	if err != nil {
		t.Fatalf("AssembleFromEntry() error = %v", err)
	}
	if tk.Name != "calculator" {
		t.Errorf("Name = %q, want %q", tk.Name, "calculator")
	}
	if tk.PackageName != "arcade_math" {
		t.Errorf("PackageName = %q, want %q", tk.PackageName, "arcade_math")
	}

	_, err = a.AssembleFromEntry(pkgindex.EntryPoint{Group: "arcade_toolkits", Name: "toolkit_name", Value: "arcade_orphan"})
	if !errors.Is(err, ErrNoDistribution) {
		t.Fatalf("AssembleFromEntry() without dist error = %v, want ErrNoDistribution", err)
	}
	if !strings.Contains(err.Error(), "Entry point 'toolkit_name' does not have distribution metadata") {
		t.Errorf("error message = %q", err.Error())
	}
}
