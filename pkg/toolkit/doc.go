// SPDX-License-Identifier: MPL-2.0

// Package toolkit builds Toolkit records from installed packages.
//
// A Toolkit is immutable once returned by Build: the display name derived
// from an entry point is supplied as a build option rather than assigned
// afterwards. The Assembler performs the full load: it reads metadata from
// a pkgindex.Index, enumerates the package's source files, scans each of
// them for tools and builds the record. Every failure is a *LoadError.
package toolkit
