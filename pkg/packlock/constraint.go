// SPDX-License-Identifier: MPL-2.0

package packlock

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidConstraint is the sentinel error wrapped by InvalidConstraintError.
	ErrInvalidConstraint = errors.New("invalid version constraint")
)

var (
	// versionRegex accepts semver and the common PEP 440 release forms
	// ("1.2", "1.2.3rc1", "1.2.3.dev4", "v1.2.3-beta.1").
	versionRegex = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:[-.]?((?:a|b|c|rc|alpha|beta|pre|preview|dev)(?:[.-]?\d+)?(?:[.-][0-9A-Za-z]+)*))?(?:\+[0-9A-Za-z.-]+)?$`)

	// clauseRegex splits one clause into operator and version.
	clauseRegex = regexp.MustCompile(`^(===|==|!=|~=|>=|<=|[~^><=])?\s*(.+)$`)
)

type (
	// Version is a parsed release version.
	Version struct {
		Major      int
		Minor      int
		Patch      int
		Prerelease string
		Original   string
		// parts is the number of release components written (1 to 3).
		parts     int
		canonical string
	}

	// Constraint is a conjunction of comparison clauses. An empty clause list
	// (written "*" or "") matches every version.
	Constraint struct {
		Clauses  []Clause
		Original string
	}

	// Clause is one operator and version, e.g. ">=1.2". Wildcard is set for
	// "==1.2.*" and "!=1.2.*" forms.
	Clause struct {
		Op       string
		Version  *Version
		Wildcard bool
	}

	// InvalidVersionError is returned when a version string cannot be parsed.
	InvalidVersionError struct {
		Value string
	}

	// InvalidConstraintError is returned when a constraint string cannot be parsed.
	InvalidConstraintError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface for InvalidVersionError.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version format: %q", e.Value)
}

// Unwrap returns ErrInvalidVersion for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Error implements the error interface for InvalidConstraintError.
func (e *InvalidConstraintError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid constraint %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid constraint %q", e.Value)
}

// Unwrap returns ErrInvalidConstraint for errors.Is() compatibility.
func (e *InvalidConstraintError) Unwrap() error { return ErrInvalidConstraint }

// ParseVersion parses a version string into a Version struct.
func ParseVersion(s string) (*Version, error) {
	s = strings.TrimSpace(s)
	matches := versionRegex.FindStringSubmatch(s)
	if matches == nil {
		return nil, &InvalidVersionError{Value: s}
	}

	v := &Version{Original: s, parts: 1}
	v.Major, _ = strconv.Atoi(matches[1])
	if matches[2] != "" {
		v.Minor, _ = strconv.Atoi(matches[2])
		v.parts = 2
	}
	if matches[3] != "" {
		v.Patch, _ = strconv.Atoi(matches[3])
		v.parts = 3
	}
	if matches[4] != "" {
		v.Prerelease = strings.NewReplacer("-", ".", "_", ".").Replace(matches[4])
	}

	v.canonical = fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		v.canonical += "-" + v.Prerelease
	}
	if !semver.IsValid(v.canonical) {
		return nil, &InvalidVersionError{Value: s}
	}
	return v, nil
}

// String returns the version as written.
func (v *Version) String() string {
	return v.Original
}

// Compare compares two versions.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v *Version) Compare(other *Version) int {
	return semver.Compare(v.canonical, other.canonical)
}

// ParseConstraint parses a comma-separated list of clauses.
func ParseConstraint(s string) (*Constraint, error) {
	original := strings.TrimSpace(s)
	c := &Constraint{Original: original}
	if original == "" || original == "*" {
		return c, nil
	}

	for _, part := range strings.Split(original, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, &InvalidConstraintError{Value: original, Reason: "empty clause"}
		}
		if part == "*" {
			continue
		}
		clause, err := parseClause(part)
		if err != nil {
			return nil, &InvalidConstraintError{Value: original, Reason: err.Error()}
		}
		c.Clauses = append(c.Clauses, clause)
	}
	return c, nil
}

func parseClause(s string) (Clause, error) {
	matches := clauseRegex.FindStringSubmatch(s)
	if matches == nil {
		return Clause{}, fmt.Errorf("malformed clause %q", s)
	}

	op := matches[1]
	switch op {
	case "", "===":
		op = "=="
	case "=":
		op = "=="
	}

	raw := strings.TrimSpace(matches[2])
	wildcard := false
	if rest, ok := strings.CutSuffix(raw, ".*"); ok {
		if op != "==" && op != "!=" {
			return Clause{}, fmt.Errorf("wildcard is only allowed with == and !=")
		}
		raw, wildcard = rest, true
	}

	v, err := ParseVersion(raw)
	if err != nil {
		return Clause{}, err
	}
	if op == "~=" && v.parts < 2 {
		return Clause{}, fmt.Errorf("~= requires at least two release components")
	}
	return Clause{Op: op, Version: v, Wildcard: wildcard}, nil
}

// Matches reports whether v satisfies every clause.
func (c *Constraint) Matches(v *Version) bool {
	for _, clause := range c.Clauses {
		if !clause.Matches(v) {
			return false
		}
	}
	return true
}

// String returns the constraint as written.
func (c *Constraint) String() string {
	return c.Original
}

// Matches checks if a version satisfies the clause.
func (cl Clause) Matches(v *Version) bool {
	cv := cl.Version
	switch cl.Op {
	case "==":
		if cl.Wildcard {
			return samePrefix(v, cv, cv.parts)
		}
		return v.Compare(cv) == 0

	case "!=":
		if cl.Wildcard {
			return !samePrefix(v, cv, cv.parts)
		}
		return v.Compare(cv) != 0

	case "^":
		// Caret: allows changes that do not modify the left-most non-zero digit
		// ^1.2.3 := >=1.2.3 <2.0.0
		// ^0.2.3 := >=0.2.3 <0.3.0
		// ^0.0.3 := >=0.0.3 <0.0.4
		if v.Compare(cv) < 0 {
			return false
		}
		if cv.Major != 0 || cv.parts == 1 {
			return v.Major == cv.Major
		}
		if cv.Minor != 0 || cv.parts == 2 {
			return v.Major == 0 && v.Minor == cv.Minor
		}
		return v.Major == 0 && v.Minor == 0 && v.Patch == cv.Patch

	case "~":
		// Tilde: allows patch-level changes when a minor version is given
		// ~1.2.3 := >=1.2.3 <1.3.0
		// ~1     := >=1.0.0 <2.0.0
		if v.Compare(cv) < 0 {
			return false
		}
		if cv.parts == 1 {
			return v.Major == cv.Major
		}
		return v.Major == cv.Major && v.Minor == cv.Minor

	case "~=":
		// Compatible release: ~=1.4.2 := >=1.4.2 ==1.4.*
		return v.Compare(cv) >= 0 && samePrefix(v, cv, cv.parts-1)

	case ">":
		return v.Compare(cv) > 0

	case ">=":
		return v.Compare(cv) >= 0

	case "<":
		return v.Compare(cv) < 0

	case "<=":
		return v.Compare(cv) <= 0

	default:
		return false
	}
}

// samePrefix reports whether the first n release components of a and b match.
func samePrefix(a, b *Version, n int) bool {
	av := [3]int{a.Major, a.Minor, a.Patch}
	bv := [3]int{b.Major, b.Minor, b.Patch}
	for i := 0; i < n && i < 3; i++ {
		if av[i] != bv[i] {
			return false
		}
	}
	return true
}

// Satisfies reports whether version satisfies constraint.
func Satisfies(version, constraint string) (bool, error) {
	c, err := ParseConstraint(constraint)
	if err != nil {
		return false, err
	}
	v, err := ParseVersion(version)
	if err != nil {
		return false, err
	}
	return c.Matches(v), nil
}

// IsValidConstraint checks if a string is a valid version constraint.
func IsValidConstraint(s string) bool {
	_, err := ParseConstraint(s)
	return err == nil
}
