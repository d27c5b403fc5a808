// Package pomsky compiles pomsky expressions into regular expressions.
//
// A pomsky expression is parsed into a syntax tree, resolved and
// checked against the target flavor, and lowered to a regex string.
// Every stage reports its findings as diagnostics rather than Go
// errors, so a single invocation can surface several problems at once
// and warnings can accompany a successful result. A result is valid
// when diag.HasErrors returns false for the returned slice.
package pomsky

import (
	"github.com/pomsky-community/pomsky-go/internal/analyze"
	"github.com/pomsky-community/pomsky-go/internal/ast"
	"github.com/pomsky-community/pomsky-go/internal/codegen"
	"github.com/pomsky-community/pomsky-go/internal/diag"
	"github.com/pomsky-community/pomsky-go/internal/feature"
	"github.com/pomsky-community/pomsky-go/internal/flavor"
	"github.com/pomsky-community/pomsky-go/internal/parser"
)

// DefaultMaxRangeDigits is the operand length cap applied to `range`
// expressions when ParseOptions leaves MaxRangeDigits unset.
const DefaultMaxRangeDigits = parser.DefaultMaxRangeDigits

// ParseOptions controls how source text is read.
type ParseOptions struct {
	// AllowedFeatures restricts the language surface available to the
	// expression. The zero value allows every feature.
	AllowedFeatures feature.Set

	// MaxRangeDigits caps the number of digits in a `range` operand.
	// Zero means DefaultMaxRangeDigits.
	MaxRangeDigits int
}

// CompileOptions controls lowering to a regex string. It embeds
// ParseOptions so that ParseAndCompile needs a single options value.
type CompileOptions struct {
	ParseOptions

	// Flavor is the regex dialect to target. The zero value is PCRE.
	Flavor flavor.Flavor
}

// Parse reads a pomsky expression into a syntax tree. The tree is nil
// exactly when the diagnostics contain an error.
func Parse(source string, opts ParseOptions) (ast.Expr, []diag.Diagnostic) {
	return parser.Parse(source, opts.MaxRangeDigits)
}

// Compile resolves and checks a parsed expression and lowers it to a
// regex string in the requested flavor. On error the string is empty;
// warnings may accompany a successful result.
func Compile(expr ast.Expr, opts CompileOptions) (string, []diag.Diagnostic) {
	allowed := opts.AllowedFeatures
	if allowed == feature.None {
		allowed = feature.All
	}
	expr, diags := analyze.Analyze(expr, analyze.Options{
		Flavor:          opts.Flavor,
		AllowedFeatures: allowed,
	})
	if diag.HasErrors(diags) {
		return "", diags
	}
	return codegen.Emit(expr, opts.Flavor), diags
}

// ParseAndCompile is Parse followed by Compile, accumulating the
// diagnostics of both stages.
func ParseAndCompile(source string, opts CompileOptions) (string, []diag.Diagnostic) {
	expr, diags := Parse(source, opts.ParseOptions)
	if diag.HasErrors(diags) {
		return "", diags
	}
	out, more := Compile(expr, opts)
	return out, append(diags, more...)
}
