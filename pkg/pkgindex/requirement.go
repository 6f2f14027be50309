// SPDX-License-Identifier: MPL-2.0

package pkgindex

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidRequirement is the sentinel error wrapped by InvalidRequirementError.
var ErrInvalidRequirement = errors.New("invalid requirement")

var (
	// requirementPattern splits "name[extras] (spec)" into name and spec.
	requirementPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(\[[^\]]*\])?\s*(.*)$`)
	// extraMarkerPattern detects markers that only apply to an optional extra.
	extraMarkerPattern = regexp.MustCompile(`\bextra\s*==`)
)

type (
	// Requirement is one declared dependency: a distribution name and a
	// version constraint ("*" when unconstrained).
	Requirement struct {
		Name       string `json:"name" yaml:"name"`
		Constraint string `json:"constraint" yaml:"constraint"`
	}

	// InvalidRequirementError is returned when a requirement line cannot be
	// split into a name and a constraint.
	InvalidRequirementError struct {
		Value string
	}
)

// Error implements the error interface for InvalidRequirementError.
func (e *InvalidRequirementError) Error() string {
	return fmt.Sprintf("invalid requirement %q", e.Value)
}

// Unwrap returns ErrInvalidRequirement for errors.Is() compatibility.
func (e *InvalidRequirementError) Unwrap() error { return ErrInvalidRequirement }

// ParseRequirement parses a PEP 508 style requirement such as
// `httpx[http2] (>=0.27,<1); python_version >= "3.10"`.
//
// The boolean is false when the requirement only applies to an optional
// extra and should not be treated as a runtime dependency.
func ParseRequirement(line string) (Requirement, bool, error) {
	spec, marker, _ := strings.Cut(strings.TrimSpace(line), ";")
	if extraMarkerPattern.MatchString(marker) {
		return Requirement{}, false, nil
	}

	m := requirementPattern.FindStringSubmatch(strings.TrimSpace(spec))
	if m == nil {
		return Requirement{}, false, &InvalidRequirementError{Value: line}
	}

	constraint := strings.TrimSpace(m[3])
	constraint = strings.TrimSuffix(strings.TrimPrefix(constraint, "("), ")")
	constraint = strings.ReplaceAll(constraint, " ", "")
	if strings.HasPrefix(constraint, "@") {
		// Direct references ("pkg @ https://...") carry no version constraint.
		constraint = ""
	}
	if constraint == "" {
		constraint = "*"
	}

	return Requirement{Name: m[1], Constraint: constraint}, true, nil
}

// parseRequirements parses a list of requirement lines, dropping extras-only
// entries. The first malformed line aborts parsing.
func parseRequirements(lines []string) ([]Requirement, error) {
	var reqs []Requirement
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		req, ok, err := ParseRequirement(line)
		if err != nil {
			return nil, err
		}
		if ok {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}
