// Package diag holds the diagnostics produced by every stage of the
// compiler. Diagnostics are accumulated values, not Go errors: a stage
// returns its result plus a slice of them, and callers decide what to
// do based on severity.
package diag

import (
	"fmt"
	"strings"

	"github.com/pomsky-community/pomsky-go/internal/source"
)

type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	}
	panic("internal error: unknown severity")
}

// Kind classifies a diagnostic independently of its message text.
type Kind int

const (
	LexError Kind = iota
	ParseError
	UnknownVariable
	CyclicVariable
	DuplicateVariable
	UnknownReference
	UnknownGroupName
	DisabledFeature
	Unsupported
	LookbehindNotFixedWidth
	RangeTooLarge
	RecursionLimit
	Deprecated
	UnknownProperty
	NonUnicodeWordBoundary
)

var kindNames = map[Kind]string{
	LexError:                "lex",
	ParseError:              "parse",
	UnknownVariable:         "unknown variable",
	CyclicVariable:          "cyclic variable",
	DuplicateVariable:       "duplicate variable",
	UnknownReference:        "unknown reference",
	UnknownGroupName:        "unknown group name",
	DisabledFeature:         "disabled feature",
	Unsupported:             "unsupported",
	LookbehindNotFixedWidth: "lookbehind width",
	RangeTooLarge:           "range too large",
	RecursionLimit:          "recursion limit",
	Deprecated:              "deprecated",
	UnknownProperty:         "unknown property",
	NonUnicodeWordBoundary:  "word boundary",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	panic("internal error: unnamed diagnostic kind")
}

// Diagnostic is one finding. Help is optional and suggests a concrete
// fix. Span may be the empty sentinel for findings with no location.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Msg      string
	Help     string
	Span     source.Span
}

func Errorf(kind Kind, span source.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Error, Kind: kind, Msg: fmt.Sprintf(format, args...), Span: span}
}

func Warningf(kind Kind, span source.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Kind: kind, Msg: fmt.Sprintf(format, args...), Span: span}
}

// WithHelp returns a copy of d carrying the given help text.
func (d Diagnostic) WithHelp(format string, args ...any) Diagnostic {
	d.Help = fmt.Sprintf(format, args...)
	return d
}

// HasErrors reports whether any diagnostic in diags is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Render formats d against the source it was produced from, in the
// shape
//
//	error: expected `)`
//	  |
//	3 | ('a' | 'b'
//	  |           ^
//	  = help: insert a closing parenthesis
//
// Diagnostics with an empty span render as the first line only.
func (d Diagnostic) Render(src string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", d.Severity, d.Msg)
	if !d.Span.IsEmpty() && d.Span.Start <= len(src) {
		line, col := LineCol(src, d.Span.Start)
		text := lineText(src, d.Span.Start)
		prefix := fmt.Sprintf("%d | ", line)
		gutter := strings.Repeat(" ", len(prefix)-2)
		fmt.Fprintf(&b, "\n%s|\n%s%s\n%s| %s", gutter, prefix, text, gutter, caret(col, d.Span.Len(), len(text)))
	}
	if d.Help != "" {
		fmt.Fprintf(&b, "\n  = help: %s", d.Help)
	}
	return b.String()
}

// LineCol converts a byte offset into 1-based line and column numbers.
func LineCol(src string, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	line = 1 + strings.Count(src[:offset], "\n")
	if i := strings.LastIndexByte(src[:offset], '\n'); i >= 0 {
		col = offset - i
	} else {
		col = offset + 1
	}
	return line, col
}

func lineText(src string, offset int) string {
	start := 0
	if i := strings.LastIndexByte(src[:offset], '\n'); i >= 0 {
		start = i + 1
	}
	end := len(src)
	if i := strings.IndexByte(src[offset:], '\n'); i >= 0 {
		end = offset + i
	}
	return src[start:end]
}

func caret(col, width, lineLen int) string {
	if width < 1 {
		width = 1
	}
	if col-1+width > lineLen+1 {
		width = lineLen + 2 - col
		if width < 1 {
			width = 1
		}
	}
	return strings.Repeat(" ", col-1) + strings.Repeat("^", width)
}
