// SPDX-License-Identifier: MPL-2.0

package pkgindex_test

import (
	"errors"
	"testing"

	"github.com/arcadeai/arcade/pkg/pkgindex"
)

func TestParseRequirement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line    string
		want    pkgindex.Requirement
		wantOK  bool
		wantErr bool
	}{
		{line: "arcade-ai", want: pkgindex.Requirement{Name: "arcade-ai", Constraint: "*"}, wantOK: true},
		{line: "arcade-ai>=1.0", want: pkgindex.Requirement{Name: "arcade-ai", Constraint: ">=1.0"}, wantOK: true},
		{line: "httpx (>= 0.27, < 1)", want: pkgindex.Requirement{Name: "httpx", Constraint: ">=0.27,<1"}, wantOK: true},
		{line: "httpx[http2]~=0.27", want: pkgindex.Requirement{Name: "httpx", Constraint: "~=0.27"}, wantOK: true},
		{
			line:   `tomli>=2; python_version < "3.11"`,
			want:   pkgindex.Requirement{Name: "tomli", Constraint: ">=2"},
			wantOK: true,
		},
		{line: "pkg @ https://example.com/pkg.whl", want: pkgindex.Requirement{Name: "pkg", Constraint: "*"}, wantOK: true},
		{line: `pytest>=8; extra == "dev"`},
		{line: "", wantErr: true},
		{line: ">=1.0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			got, ok, err := pkgindex.ParseRequirement(tt.line)
			if tt.wantErr {
				if !errors.Is(err, pkgindex.ErrInvalidRequirement) {
					t.Fatalf("ParseRequirement(%q) error = %v, want ErrInvalidRequirement", tt.line, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequirement(%q) error = %v", tt.line, err)
			}
			if ok != tt.wantOK {
				t.Errorf("ParseRequirement(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseRequirement(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"arcade_math", "Arcade-Math", "arcade.math", "arcade__-math", " arcade_math "} {
		if got := pkgindex.NormalizeName(name); got != "arcade-math" {
			t.Errorf("NormalizeName(%q) = %q, want %q", name, got, "arcade-math")
		}
	}
}

func TestImportName(t *testing.T) {
	t.Parallel()

	if got := pkgindex.ImportName("arcade-google.docs"); got != "arcade_google_docs" {
		t.Errorf("ImportName() = %q, want %q", got, "arcade_google_docs")
	}
}
