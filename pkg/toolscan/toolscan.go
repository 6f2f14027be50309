// SPDX-License-Identifier: MPL-2.0

package toolscan

import (
	"errors"
	"fmt"
)

// ErrParse is the sentinel error wrapped by ParseError.
var ErrParse = errors.New("source parse error")

type (
	// Scanner returns the tool names declared in one source file.
	Scanner interface {
		Scan(path string) ([]string, error)
	}

	// Func adapts an ordinary function to the Scanner interface.
	Func func(path string) ([]string, error)

	// ParseError is returned when a source file is not well-formed enough to
	// be scanned. It wraps ErrParse for errors.Is() compatibility.
	ParseError struct {
		Path string
		Line int
		Msg  string
	}
)

// Scan implements Scanner.
func (f Func) Scan(path string) ([]string, error) { return f(path) }

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// Unwrap returns ErrParse for errors.Is() compatibility.
func (e *ParseError) Unwrap() error { return ErrParse }
