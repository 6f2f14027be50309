// SPDX-License-Identifier: MPL-2.0

package toolkit

import (
	"errors"
	"fmt"
)

var (
	// ErrPackageNotFound is returned when the package is absent from the index.
	ErrPackageNotFound = errors.New("package not found")
	// ErrMetadataKey is returned when a required metadata key is absent.
	ErrMetadataKey = errors.New("metadata key error")
	// ErrMetadata is returned when metadata cannot be read for any other reason.
	ErrMetadata = errors.New("metadata load failed")
	// ErrSourceDir is returned when the package source root cannot be located.
	ErrSourceDir = errors.New("package directory not found")
	// ErrSourceFiles is returned when source files cannot be enumerated.
	ErrSourceFiles = errors.New("source enumeration failed")
	// ErrScan is returned when a source file cannot be scanned for tools.
	ErrScan = errors.New("tool scan failed")
	// ErrNoTools is returned when a package declares no tools at all.
	ErrNoTools = errors.New("no tools found")
	// ErrNoDistribution is returned for entry points without an owning distribution.
	ErrNoDistribution = errors.New("entry point has no distribution")
)

// LoadError describes why a toolkit could not be loaded. It wraps both its
// kind (one of the Err* sentinels) and the underlying cause, if any.
type LoadError struct {
	Package string
	Message string
	Kind    error
	Cause   error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the kind and the cause for errors.Is() and errors.As().
func (e *LoadError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func newLoadError(pkg string, kind, cause error, format string, args ...any) *LoadError {
	return &LoadError{
		Package: pkg,
		Message: fmt.Sprintf(format, args...),
		Kind:    kind,
		Cause:   cause,
	}
}
