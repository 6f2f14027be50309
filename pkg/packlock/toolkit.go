// SPDX-License-Identifier: MPL-2.0

package packlock

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"github.com/arcadeai/arcade/pkg/pkgindex"
	"github.com/arcadeai/arcade/pkg/toolkit"
)

// Mismatch is one way a discovered toolkit disagrees with a manifest.
type Mismatch struct {
	// Subject is the tool name, or "pack" for manifest-level problems.
	Subject    string
	Constraint string
	Reason     string
}

// String renders the mismatch for display.
func (m Mismatch) String() string {
	if m.Constraint != "" {
		return fmt.Sprintf("%s (%s): %s", m.Subject, m.Constraint, m.Reason)
	}
	return fmt.Sprintf("%s: %s", m.Subject, m.Reason)
}

// FromToolkit creates a manifest describing tk. Every tool is pinned to the
// toolkit's version and declared requirements become [depends]. When author
// or email is empty it is taken from the first author entry that carries it.
func FromToolkit(tk *toolkit.Toolkit, author, email string) *ToolPack {
	if author == "" || email == "" {
		a, e := firstAuthor(tk.Authors)
		if author == "" {
			author = a
		}
		if email == "" {
			email = e
		}
	}

	pack := &ToolPack{
		Pack: PackInfo{
			Name:        tk.PackageName,
			Description: tk.Description,
			Version:     tk.Version,
			Author:      author,
			Email:       email,
		},
	}

	if len(tk.Requires) > 0 {
		pack.Depends = make(map[string]string, len(tk.Requires))
		for _, req := range tk.Requires {
			pack.Depends[req.Name] = req.Constraint
		}
	}

	if names := tk.ToolNames(); len(names) > 0 {
		pack.Tools = make(map[string]string, len(names))
		for _, name := range names {
			pack.Tools[name] = "==" + tk.Version
		}
	}
	return pack
}

// firstAuthor splits the first parseable "Name <email>" entry. An entry
// that is not an address is used as the author name.
func firstAuthor(authors []string) (name, email string) {
	for _, entry := range authors {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		addr, err := mail.ParseAddress(entry)
		if err != nil {
			if name == "" {
				name = entry
			}
			continue
		}
		if name == "" {
			name = addr.Name
		}
		return name, addr.Address
	}
	return name, ""
}

// Verify checks a manifest against a discovered toolkit: the manifest must
// describe the same package, and every locked tool must exist with a
// toolkit version that satisfies its constraint. Mismatches are sorted by
// tool name.
func Verify(pack *ToolPack, tk *toolkit.Toolkit) []Mismatch {
	var out []Mismatch

	if pkgindex.NormalizeName(pack.Pack.Name) != pkgindex.NormalizeName(tk.PackageName) {
		out = append(out, Mismatch{
			Subject: "pack",
			Reason:  fmt.Sprintf("lock file describes %q, toolkit is %q", pack.Pack.Name, tk.PackageName),
		})
	}

	version, verr := ParseVersion(tk.Version)
	available := make(map[string]bool)
	for _, name := range tk.ToolNames() {
		available[name] = true
	}

	names := make([]string, 0, len(pack.Tools))
	for name := range pack.Tools {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		raw := pack.Tools[name]
		if !available[name] {
			out = append(out, Mismatch{Subject: name, Constraint: raw, Reason: "tool not found in toolkit"})
			continue
		}
		c, err := ParseConstraint(raw)
		if err != nil {
			out = append(out, Mismatch{Subject: name, Constraint: raw, Reason: err.Error()})
			continue
		}
		if verr != nil {
			out = append(out, Mismatch{Subject: name, Constraint: raw, Reason: verr.Error()})
			continue
		}
		if !c.Matches(version) {
			out = append(out, Mismatch{
				Subject:    name,
				Constraint: raw,
				Reason:     fmt.Sprintf("toolkit version %s does not satisfy the constraint", tk.Version),
			})
		}
	}
	return out
}
