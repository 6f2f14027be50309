// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

// ErrInvalidOutputFormat is returned for an unknown -o value.
var ErrInvalidOutputFormat = errors.New("invalid output format")

// outputFormat is the value of the -o flag. It implements pflag.Value.
type outputFormat string

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Set(s string) error {
	switch v := outputFormat(s); v {
	case outputText, outputJSON, outputYAML:
		*f = v
		return nil
	default:
		return fmt.Errorf("%w: %q (expected text, json or yaml)", ErrInvalidOutputFormat, s)
	}
}

func (f *outputFormat) Type() string { return "format" }

// writeStructured encodes v as JSON or YAML. It reports false for text
// output, which callers render themselves.
func writeStructured(w io.Writer, format outputFormat, v any) (bool, error) {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}
