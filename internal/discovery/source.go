// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
)

const (
	// SourceAll runs every strategy and merges the results.
	SourceAll Source = iota
	// SourceEntryPoint uses registered entry points only.
	SourceEntryPoint
	// SourcePrefix uses prefixed distribution names only.
	SourcePrefix
)

// ErrInvalidSource is returned when a Source value is not recognized.
var ErrInvalidSource = errors.New("invalid discovery source")

// Source selects which discovery strategies run.
type Source int

// String returns the flag spelling of the source.
func (s Source) String() string {
	switch s {
	case SourceAll:
		return "all"
	case SourceEntryPoint:
		return "entrypoint"
	case SourcePrefix:
		return "prefix"
	default:
		return "unknown"
	}
}

// IsValid reports whether s is a known source.
func (s Source) IsValid() (bool, []error) {
	switch s {
	case SourceAll, SourceEntryPoint, SourcePrefix:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %d", ErrInvalidSource, int(s))}
	}
}

// ParseSource parses the flag spelling of a source.
func ParseSource(s string) (Source, error) {
	switch s {
	case "", "all":
		return SourceAll, nil
	case "entrypoint", "entrypoints":
		return SourceEntryPoint, nil
	case "prefix":
		return SourcePrefix, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected all, entrypoint or prefix)", ErrInvalidSource, s)
	}
}
