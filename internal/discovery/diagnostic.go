// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"

	"github.com/arcadeai/arcade/pkg/toolkit"
)

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal discovery error diagnostic.
	SeverityError Severity = "error"
)

const (
	// CodeEntryPointToolkitSkipped reports an entry point whose toolkit failed to load.
	CodeEntryPointToolkitSkipped DiagnosticCode = "entrypoint_toolkit_skipped"
	// CodeEntryPointsUnavailable reports that entry points could not be listed.
	CodeEntryPointsUnavailable DiagnosticCode = "entrypoints_unavailable"
	// CodePrefixToolkitSkipped reports a prefixed distribution that failed to load.
	CodePrefixToolkitSkipped DiagnosticCode = "prefix_toolkit_skipped"
	// CodeDistributionsUnavailable reports that distributions could not be listed.
	CodeDistributionsUnavailable DiagnosticCode = "distributions_unavailable"
)

var (
	// ErrInvalidSeverity is returned when a Severity value is not recognized.
	ErrInvalidSeverity = errors.New("invalid diagnostic severity")
	// ErrInvalidDiagnosticCode is returned when a DiagnosticCode value is not recognized.
	ErrInvalidDiagnosticCode = errors.New("invalid diagnostic code")
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// DiagnosticCode is a machine-readable diagnostic identifier.
	DiagnosticCode string

	// Diagnostic represents a structured discovery diagnostic that is returned
	// to callers (rather than written to stderr) for consistent rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "prefix_toolkit_skipped").
		Code DiagnosticCode
		// Message is the human-readable description.
		Message string
		// Path is the package or source file associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}

	// Result bundles discovered toolkits with the diagnostics produced while
	// finding them.
	Result struct {
		Toolkits    []*toolkit.Toolkit
		Diagnostics []Diagnostic
	}
)

// IsValid reports whether s is a known severity.
func (s Severity) IsValid() (bool, []error) {
	switch s {
	case SeverityWarning, SeverityError:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidSeverity, string(s))}
	}
}

// String returns the code identifier.
func (c DiagnosticCode) String() string { return string(c) }

// IsValid reports whether c is a known diagnostic code.
func (c DiagnosticCode) IsValid() (bool, []error) {
	switch c {
	case CodeEntryPointToolkitSkipped, CodeEntryPointsUnavailable,
		CodePrefixToolkitSkipped, CodeDistributionsUnavailable:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidDiagnosticCode, string(c))}
	}
}

// NewDiagnostic creates a diagnostic without a path or cause.
func NewDiagnostic(severity Severity, code DiagnosticCode, message string) Diagnostic {
	return Diagnostic{Severity: severity, Code: code, Message: message}
}

// NewDiagnosticWithPath creates a diagnostic attached to a path.
func NewDiagnosticWithPath(severity Severity, code DiagnosticCode, message, path string) Diagnostic {
	return Diagnostic{Severity: severity, Code: code, Message: message, Path: path}
}

// NewDiagnosticWithCause creates a diagnostic carrying its underlying error.
func NewDiagnosticWithCause(severity Severity, code DiagnosticCode, message, path string, cause error) Diagnostic {
	return Diagnostic{Severity: severity, Code: code, Message: message, Path: path, Cause: cause}
}

// HasErrors reports whether any diagnostic has error severity.
func (r Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
