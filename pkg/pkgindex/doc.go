// SPDX-License-Identifier: MPL-2.0

// Package pkgindex exposes installed Python distributions through a small
// capability interface.
//
// The discovery pipeline never inspects an interpreter directly. It asks an
// Index for package metadata, for the on-disk source root of a package, for
// the entry points registered under a group, and for the distributions whose
// names start with a prefix. Several implementations are provided:
//
//   - SitePackages reads *.dist-info directories (METADATA, entry_points.txt,
//     top_level.txt) from one or more site-packages directories.
//   - Workspace reads source checkouts that carry a pyproject.toml.
//   - Memory is a map-backed index for tests and embedding.
//   - Chain combines indexes, with earlier members taking precedence.
//
// File organization:
//   - pkgindex.go: Index contract, shared types and sentinel errors
//   - requirement.go: Requires-Dist / PEP 508 requirement parsing
//   - locate.go: import-name resolution and source-root lookup
//   - sitepackages.go, workspace.go, memory.go, chain.go: implementations
package pkgindex
