// SPDX-License-Identifier: MPL-2.0

package pkgindex

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when a package is absent from the index.
	ErrNotFound = errors.New("package not found")
	// ErrMissingKey is the sentinel error wrapped by MissingKeyError.
	ErrMissingKey = errors.New("missing metadata key")

	// separatorRun matches the runs of separators that PEP 503 collapses.
	separatorRun = regexp.MustCompile(`[-_.]+`)
)

type (
	// Index is the read-only view of the host's installed packages.
	//
	// Metadata and Locate return an error wrapping ErrNotFound when the
	// package is unknown. EntryPoints and Distributions may fail as a whole
	// (e.g. an unreadable site-packages directory); callers treat that as
	// "nothing available" rather than a fatal error.
	Index interface {
		// Metadata returns the declared metadata of a distribution.
		Metadata(name string) (*Metadata, error)
		// Locate returns the directory holding the package's source files.
		Locate(name string) (string, error)
		// EntryPoints lists every entry point registered under group.
		EntryPoints(group string) ([]EntryPoint, error)
		// Distributions lists distribution names starting with prefix.
		Distributions(prefix string) ([]string, error)
	}

	// Metadata is the declared metadata of one distribution.
	Metadata struct {
		Name        string
		Version     string
		Description string
		Authors     []string
		// Homepage, Repository and SourceRoot are empty when undeclared.
		Homepage   string
		Repository string
		SourceRoot string
		// Requires holds the unconditional runtime requirements.
		Requires []Requirement
	}

	// Distribution identifies the installed distribution owning an entry point.
	Distribution struct {
		Name    string
		Version string
	}

	// EntryPoint is one `name = value` declaration inside an entry-point group.
	// Dist is nil when the owning distribution could not be determined.
	EntryPoint struct {
		Group string
		Name  string
		Value string
		Dist  *Distribution
	}

	// MissingKeyError is returned when a required metadata key is absent.
	// It wraps ErrMissingKey for errors.Is() compatibility.
	MissingKeyError struct {
		Package string
		Key     string
	}
)

// Error implements the error interface for MissingKeyError.
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("package %q: metadata key %q is missing", e.Package, e.Key)
}

// Unwrap returns ErrMissingKey for errors.Is() compatibility.
func (e *MissingKeyError) Unwrap() error { return ErrMissingKey }

// String renders the entry point the way entry_points.txt declares it.
func (e EntryPoint) String() string {
	return e.Name + " = " + e.Value
}

// NormalizeName returns the PEP 503 normalized form of a distribution name,
// so "Arcade_Math", "arcade-math" and "arcade.math" compare equal.
func NormalizeName(name string) string {
	return strings.ToLower(separatorRun.ReplaceAllString(strings.TrimSpace(name), "-"))
}

// notFound builds the error returned for unknown packages.
func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// hasNamePrefix reports whether a distribution name starts with prefix.
// The comparison is literal unless the prefix is empty.
func hasNamePrefix(name, prefix string) bool {
	return prefix == "" || strings.HasPrefix(name, prefix)
}
