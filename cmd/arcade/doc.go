// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for arcade.
//
// This package implements the Cobra command hierarchy: toolkit discovery and
// inspection (toolkit), pack lock manifests (lock) and configuration
// management (config). Handlers receive an App, which loads configuration
// and builds the package index, assembler and discovery for each run.
package cmd
