// SPDX-License-Identifier: MPL-2.0

// Package toolscan extracts tool names from toolkit source files.
//
// A Scanner reads one file and returns the names of the tools it declares,
// in source order. Python implements the Arcade convention: a top-level
// function decorated with @tool, @tool(...) or @<module>.tool(...).
//
// The scanner works on logical lines, so multi-line decorator calls and
// signatures are handled, and string literal contents never produce
// matches. It does not evaluate code: tools registered dynamically are
// not reported.
package toolscan
