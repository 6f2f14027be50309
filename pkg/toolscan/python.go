// SPDX-License-Identifier: MPL-2.0

package toolscan

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultDecorator is the decorator name that marks a tool.
const DefaultDecorator = "tool"

var defPattern = regexp.MustCompile(`^(?:async\s+)?def\s+([\p{L}_][\p{L}\p{N}_]*)\s*\(`)

type (
	// Python scans Python source for decorated top-level functions.
	Python struct {
		// Decorator is the decorator name to match, bare or as the last
		// attribute of a dotted path. Empty means DefaultDecorator.
		Decorator string
	}

	// logicalLine is one Python logical line with comments removed and
	// string literal contents blanked.
	logicalLine struct {
		text   string
		line   int
		indent bool
	}

	lexer struct {
		path  string
		src   string
		pos   int
		line  int
		open  []openBracket
		buf   strings.Builder
		start int
		out   []logicalLine
	}

	openBracket struct {
		char byte
		line int
	}
)

// Compile-time interface check.
var _ Scanner = Python{}

// Scan implements Scanner.
func (p Python) Scan(path string) ([]string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.ScanSource(path, src)
}

// ScanSource scans already-loaded source; path is used in errors only.
func (p Python) ScanSource(path string, src []byte) ([]string, error) {
	if !utf8.Valid(src) {
		return nil, &ParseError{Path: path, Line: invalidUTF8Line(src), Msg: "invalid UTF-8"}
	}

	lines, err := splitLogical(path, string(src))
	if err != nil {
		return nil, err
	}

	decorator := p.Decorator
	if decorator == "" {
		decorator = DefaultDecorator
	}

	tools := []string{}
	decorated := false
	for _, ll := range lines {
		if ll.indent {
			continue
		}
		text := strings.TrimSpace(ll.text)
		switch {
		case strings.HasPrefix(text, "@"):
			if isToolDecorator(text[1:], decorator) {
				decorated = true
			}
		case decorated:
			if m := defPattern.FindStringSubmatch(text); m != nil {
				tools = append(tools, m[1])
			}
			decorated = false
		}
	}
	return tools, nil
}

// isToolDecorator reports whether a decorator expression (without the "@")
// names the tool decorator, with or without a call.
func isToolDecorator(expr, decorator string) bool {
	if i := strings.IndexByte(expr, '('); i >= 0 {
		expr = expr[:i]
	}
	expr = strings.Join(strings.Fields(expr), "")
	return expr == decorator || strings.HasSuffix(expr, "."+decorator)
}

// splitLogical joins physical lines into logical lines the way the Python
// tokenizer does: inside brackets and after a trailing backslash.
func splitLogical(path, src string) ([]logicalLine, error) {
	lx := &lexer{path: path, src: src, line: 1, start: 1}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.out, nil
}

func (lx *lexer) run() error {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch c {
		case '#':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		case '\'', '"':
			if err := lx.skipString(c); err != nil {
				return err
			}
		case '\\':
			if strings.HasPrefix(lx.src[lx.pos:], "\\\n") || strings.HasPrefix(lx.src[lx.pos:], "\\\r\n") {
				lx.pos = strings.IndexByte(lx.src[lx.pos:], '\n') + lx.pos + 1
				lx.line++
				lx.buf.WriteByte(' ')
				continue
			}
			lx.buf.WriteByte(c)
			lx.pos++
		case '(', '[', '{':
			lx.open = append(lx.open, openBracket{char: c, line: lx.line})
			lx.buf.WriteByte(c)
			lx.pos++
		case ')', ']', '}':
			if len(lx.open) == 0 || lx.open[len(lx.open)-1].char != matching(c) {
				return &ParseError{Path: lx.path, Line: lx.line, Msg: fmt.Sprintf("unmatched '%c'", c)}
			}
			lx.open = lx.open[:len(lx.open)-1]
			lx.buf.WriteByte(c)
			lx.pos++
		case '\n':
			lx.pos++
			lx.line++
			if len(lx.open) > 0 {
				lx.buf.WriteByte(' ')
				continue
			}
			lx.emit()
		case '\r':
			lx.pos++
		default:
			lx.buf.WriteByte(c)
			lx.pos++
		}
	}

	if n := len(lx.open); n > 0 {
		top := lx.open[n-1]
		return &ParseError{Path: lx.path, Line: top.line, Msg: fmt.Sprintf("'%c' was never closed", top.char)}
	}
	lx.emit()
	return nil
}

// skipString consumes a string literal starting at the current quote and
// writes an empty literal in its place.
func (lx *lexer) skipString(quote byte) error {
	startLine := lx.line
	delim := string(quote)
	if strings.HasPrefix(lx.src[lx.pos:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}
	triple := len(delim) == 3
	lx.pos += len(delim)

	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\\':
			rest := lx.src[lx.pos+1:]
			switch {
			case strings.HasPrefix(rest, "\r\n"):
				lx.line++
				lx.pos += 3
			case strings.HasPrefix(rest, "\n"):
				lx.line++
				lx.pos += 2
			default:
				lx.pos += 2
			}
			continue
		case c == '\n':
			if !triple {
				return &ParseError{Path: lx.path, Line: startLine, Msg: "unterminated string literal"}
			}
			lx.line++
		case strings.HasPrefix(lx.src[lx.pos:], delim):
			lx.pos += len(delim)
			lx.buf.WriteString(`""`)
			return nil
		}
		lx.pos++
	}
	return &ParseError{Path: lx.path, Line: startLine, Msg: "unterminated string literal"}
}

func (lx *lexer) emit() {
	text := lx.buf.String()
	lx.buf.Reset()
	if strings.TrimSpace(text) != "" {
		lx.out = append(lx.out, logicalLine{
			text:   text,
			line:   lx.start,
			indent: text[0] == ' ' || text[0] == '\t',
		})
	}
	lx.start = lx.line
}

func matching(closer byte) byte {
	switch closer {
	case ')':
		return '('
	case ']':
		return '['
	default:
		return '{'
	}
}

// invalidUTF8Line returns the 1-based line of the first invalid byte.
func invalidUTF8Line(src []byte) int {
	line := 1
	for len(src) > 0 {
		r, size := utf8.DecodeRune(src)
		if r == utf8.RuneError && size <= 1 {
			return line
		}
		if r == '\n' {
			line++
		}
		src = src[size:]
	}
	return line
}
