// SPDX-License-Identifier: MPL-2.0

// Package packlock reads and writes toolkit lock manifests (pack.lock.toml).
//
// A manifest has three top-level tables, always written in this order:
//
//	[pack]     name, description, version, optional author and email
//	[depends]  dependency name = version constraint (omitted when empty)
//	[tools]    tool name = version constraint (omitted when empty)
//
// Writes are atomic. Reads distinguish a missing file, a malformed document
// and a document that parses but fails validation. The constraint helpers
// accept both Cargo/npm style (^1.2, ~1.2) and PEP 440 style (~=1.2, ==1.*)
// operators, so manifests produced from Python metadata can be verified
// against discovered toolkits.
package packlock
