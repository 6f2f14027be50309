// SPDX-License-Identifier: MPL-2.0

// Package discovery finds installed toolkits.
//
// Two strategies are supported: entry points registered under a group (by
// default "arcade_toolkits", entries named "toolkit_name"), and
// distributions whose name carries the "arcade_" prefix. Both strategies
// degrade gracefully: a toolkit that fails to load is logged and skipped,
// and an index that cannot be queried yields an empty result. Problems are
// returned as structured diagnostics for the CLI to render.
//
// File organization:
//   - diagnostic.go: Severity, DiagnosticCode, Diagnostic and Result
//   - discovery.go: Discovery, the strategies and Merge
//   - source.go: Source selection for callers exposing a strategy switch
package discovery
