// SPDX-License-Identifier: MPL-2.0

package packlock

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// FileName is the lock manifest file name inside a pack directory.
const FileName = "pack.lock.toml"

var (
	// ErrLockFileNotFound is returned by Read when the manifest does not exist.
	ErrLockFileNotFound = errors.New("lock file not found")
	// ErrLockFileParse is the sentinel error wrapped by ParseError.
	ErrLockFileParse = errors.New("lock file parse error")
	// ErrInvalidLockFile is the sentinel error wrapped by ValidationError.
	ErrInvalidLockFile = errors.New("invalid lock file")
)

type (
	// ToolPack is the in-memory form of a lock manifest. Depends and Tools
	// are nil when the corresponding table is absent.
	ToolPack struct {
		Pack    PackInfo          `toml:"pack" json:"pack" yaml:"pack"`
		Depends map[string]string `toml:"depends,omitempty" json:"depends,omitempty" yaml:"depends,omitempty"`
		Tools   map[string]string `toml:"tools,omitempty" json:"tools,omitempty" yaml:"tools,omitempty"`
	}

	// PackInfo is the [pack] table.
	PackInfo struct {
		Name        string `toml:"name" json:"name" yaml:"name"`
		Description string `toml:"description" json:"description" yaml:"description"`
		Version     string `toml:"version" json:"version" yaml:"version"`
		Author      string `toml:"author,omitempty" json:"author,omitempty" yaml:"author,omitempty"`
		Email       string `toml:"email,omitempty" json:"email,omitempty" yaml:"email,omitempty"`
	}

	// ParseError is returned when a manifest is not valid TOML or does not
	// match the manifest shape. Line and Column are 1-based, or 0 when the
	// position is unknown. It wraps ErrLockFileParse and the decoder error.
	ParseError struct {
		Path   string
		Line   int
		Column int
		Err    error
	}

	// ValidationError lists every problem found in a manifest.
	// It wraps ErrInvalidLockFile for errors.Is() compatibility.
	ValidationError struct {
		Path     string
		Problems []string
	}
)

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("failed to parse %s at line %d, column %d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrLockFileParse and the decoder error.
func (e *ParseError) Unwrap() []error { return []error{ErrLockFileParse, e.Err} }

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid lock file")
	if e.Path != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Path)
	}
	sb.WriteString(": ")
	sb.WriteString(strings.Join(e.Problems, "; "))
	return sb.String()
}

// Unwrap returns ErrInvalidLockFile for errors.Is() compatibility.
func (e *ValidationError) Unwrap() error { return ErrInvalidLockFile }

// Validate checks the required [pack] fields and the email address. It
// returns a *ValidationError listing every problem, or nil. The description
// may be empty; Unmarshal checks that the key is present.
func (p *ToolPack) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Pack.Name) == "" {
		problems = append(problems, "pack.name is required")
	}
	if strings.TrimSpace(p.Pack.Version) == "" {
		problems = append(problems, "pack.version is required")
	}
	if p.Pack.Email != "" {
		if err := ValidateEmail(p.Pack.Email); err != nil {
			problems = append(problems, "pack.email: "+err.Error())
		}
	}
	for name := range p.Depends {
		if strings.TrimSpace(name) == "" {
			problems = append(problems, "depends: empty dependency name")
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateEmail accepts a single bare address ("user@example.com") whose
// domain has at least two labels.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("%q is not a valid email address", email)
	}
	if addr.Name != "" || addr.Address != strings.TrimSpace(email) {
		return fmt.Errorf("%q must be a bare address without a display name", email)
	}
	_, domain, _ := strings.Cut(addr.Address, "@")
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Errorf("%q has an invalid domain", email)
	}
	return nil
}
