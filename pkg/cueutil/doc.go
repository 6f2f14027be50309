// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user-supplied CUE documents against an embedded
// schema definition and decodes the result.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	res, err := cueutil.Decode[map[string]any](
//	    []byte(schema), data, "#Config",
//	    cueutil.WithFilename(path), cueutil.WithConcrete(false),
//	)
//
// Errors carry the file name and a JSON-path style location
// ("discovery.prefix: conflicting values ...").
package cueutil
