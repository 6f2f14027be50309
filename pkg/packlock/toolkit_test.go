// SPDX-License-Identifier: MPL-2.0

package packlock

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arcadeai/arcade/pkg/pkgindex"
	"github.com/arcadeai/arcade/pkg/toolkit"
)

func mathToolkit(version string, authors ...string) *toolkit.Toolkit {
	return toolkit.Build(&pkgindex.Metadata{
		Name:        "arcade_math",
		Version:     version,
		Description: "Math tools",
		Authors:     authors,
		Requires:    []pkgindex.Requirement{{Name: "arcade-ai", Constraint: ">=1.0,<2"}},
	}, []toolkit.Module{
		{Path: "arcade_math.ops", Tools: []string{"add", "sub"}},
		{Path: "arcade_math.extra", Tools: []string{}},
	})
}

func TestFromToolkit(t *testing.T) {
	t.Parallel()

	tk := mathToolkit("1.2.0", "Ada Lovelace <ada@example.com>", "Bob <bob@example.com>")
	got := FromToolkit(tk, "", "")

	want := &ToolPack{
		Pack: PackInfo{
			Name:        "arcade_math",
			Description: "Math tools",
			Version:     "1.2.0",
			Author:      "Ada Lovelace",
			Email:       "ada@example.com",
		},
		Depends: map[string]string{"arcade-ai": ">=1.0,<2"},
		Tools:   map[string]string{"add": "==1.2.0", "sub": "==1.2.0"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromToolkit() mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestFromToolkit_NoSummary(t *testing.T) {
	t.Parallel()

	tk := toolkit.Build(&pkgindex.Metadata{Name: "arcade_math", Version: "1.0.0"}, []toolkit.Module{
		{Path: "arcade_math.ops", Tools: []string{"add"}},
	})
	dir := t.TempDir()
	if err := Write(FromToolkit(tk, "", ""), dir); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := Read(dir)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Pack.Description != "" || got.Pack.Name != "arcade_math" {
		t.Errorf("Read() pack = %+v", got.Pack)
	}
}

func TestFromToolkit_AuthorFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		authors    []string
		author     string
		email      string
		wantAuthor string
		wantEmail  string
	}{
		{name: "explicit wins", authors: []string{"Ada <ada@example.com>"}, author: "Team", email: "team@example.com", wantAuthor: "Team", wantEmail: "team@example.com"},
		{name: "bare email", authors: []string{"ada@example.com"}, wantEmail: "ada@example.com"},
		{name: "name only then email", authors: []string{"Ada", "bob@example.com"}, wantAuthor: "Ada", wantEmail: "bob@example.com"},
		{name: "no authors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FromToolkit(mathToolkit("1.0.0", tt.authors...), tt.author, tt.email)
			if got.Pack.Author != tt.wantAuthor || got.Pack.Email != tt.wantEmail {
				t.Errorf("author = %q, email = %q, want %q, %q", got.Pack.Author, got.Pack.Email, tt.wantAuthor, tt.wantEmail)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	tk := mathToolkit("1.2.0")

	t.Run("fresh manifest verifies", func(t *testing.T) {
		t.Parallel()
		if got := Verify(FromToolkit(tk, "", ""), tk); len(got) != 0 {
			t.Errorf("Verify() = %v, want no mismatches", got)
		}
	})

	t.Run("mismatches", func(t *testing.T) {
		t.Parallel()
		pack := &ToolPack{
			Pack: PackInfo{Name: "arcade-math", Description: "d", Version: "1.0.0"},
			Tools: map[string]string{
				"add": "^1.0",
				"sub": ">=2.0",
				"mul": "*",
				"div": "~=1",
			},
		}
		got := Verify(pack, tk)

		var subjects []string
		for _, m := range got {
			subjects = append(subjects, m.Subject)
		}
		if diff := cmp.Diff([]string{"div", "mul", "sub"}, subjects); diff != "" {
			t.Errorf("Verify() subjects mismatch (-want +got):\n%s", diff)
		}
		if got[1].Reason != "tool not found in toolkit" {
			t.Errorf("mul reason = %q", got[1].Reason)
		}
	})

	t.Run("wrong package", func(t *testing.T) {
		t.Parallel()
		pack := &ToolPack{Pack: PackInfo{Name: "arcade_web", Description: "d", Version: "1"}}
		got := Verify(pack, tk)
		if len(got) != 1 || got[0].Subject != "pack" {
			t.Errorf("Verify() = %v, want one pack mismatch", got)
		}
	})
}
