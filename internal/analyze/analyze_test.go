package analyze

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/pomsky-community/pomsky-go/internal/ast"
	"github.com/pomsky-community/pomsky-go/internal/diag"
	"github.com/pomsky-community/pomsky-go/internal/feature"
	"github.com/pomsky-community/pomsky-go/internal/flavor"
	"github.com/pomsky-community/pomsky-go/internal/parser"
	"github.com/pomsky-community/pomsky-go/internal/source"
)

func analyzeSource(t *testing.T, src string, opts Options) (ast.Expr, []diag.Diagnostic) {
	t.Helper()
	expr, diags := parser.Parse(src, parser.DefaultMaxRangeDigits)
	if diag.HasErrors(diags) {
		t.Fatalf("parse of %q failed: %v", src, diags)
	}
	if opts.AllowedFeatures == feature.None {
		opts.AllowedFeatures = feature.All
	}
	return Analyze(expr, opts)
}

// ignoreSpans lets AST comparisons focus on structure.
var ignoreSpans = cmpopts.IgnoreTypes(source.Span{})

func TestVariableExpansion(t *testing.T) {
	expr, diags := analyzeSource(t, "let x = 'a'; x x", Options{Flavor: flavor.PCRE})
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	want := &ast.Concat{Items: []ast.Expr{
		&ast.Literal{Text: "a"},
		&ast.Literal{Text: "a"},
	}}
	if diff := cmp.Diff(want, expr, ignoreSpans); diff != "" {
		t.Errorf("expansion mismatch (-want +got):\n%s", diff)
	}
}

func TestClassAlternationMerging(t *testing.T) {
	expr, diags := analyzeSource(t, "let lower = ['a'-'z']; lower | ['0'] | [d]", Options{Flavor: flavor.PCRE})
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	want := &ast.CharClass{Items: []ast.ClassItem{
		ast.ClassRange{Lo: 'a', Hi: 'z'},
		ast.ClassChar{Rune: '0'},
		ast.ClassShorthand{Kind: ast.ShorthandDigit},
	}}
	if diff := cmp.Diff(want, expr, ignoreSpans); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestClassAlternationNotMerged(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"negatedBranch", `['a'] | !['b']`},
		{"literalBranch", `['a'] | 'b'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, diags := analyzeSource(t, tt.src, Options{Flavor: flavor.PCRE})
			if diag.HasErrors(diags) {
				t.Fatalf("unexpected errors: %v", diags)
			}
			if _, ok := expr.(*ast.Alternation); !ok {
				t.Errorf("expression is %T, want an alternation", expr)
			}
		})
	}
}

func TestVariableCapturesNumberedPerUse(t *testing.T) {
	expr, diags := analyzeSource(t, "let g = :('a'); g g ::2", Options{Flavor: flavor.PCRE})
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	concat, ok := expr.(*ast.Concat)
	if !ok || len(concat.Items) != 3 {
		t.Fatalf("expected 3-item concat, got %T", expr)
	}
	ref, ok := concat.Items[2].(*ast.Reference)
	if !ok || ref.Kind != ast.RefNumber || ref.Number != 2 {
		t.Errorf("reference = %+v, want number 2", concat.Items[2])
	}
}

func TestLazyModeRewriting(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ast.RepetitionMode
	}{
		{"defaultGreedy", "'a'*", ast.RepetitionGreedy},
		{"enableLazy", "enable lazy; 'a'*", ast.RepetitionLazy},
		{"explicitGreedyWins", "enable lazy; 'a'* greedy", ast.RepetitionGreedy},
		{"explicitLazy", "'a'* lazy", ast.RepetitionLazy},
		{"disableInner", "enable lazy; ('a' (disable lazy; 'b'*))", ast.RepetitionGreedy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, diags := analyzeSource(t, tt.src, Options{Flavor: flavor.PCRE})
			if diag.HasErrors(diags) {
				t.Fatalf("unexpected errors: %v", diags)
			}
			var got ast.RepetitionMode
			found := false
			ast.Inspect(expr, func(e ast.Expr) bool {
				if rep, ok := e.(*ast.Repetition); ok && !found {
					got = rep.Mode
					found = true
				}
				return true
			})
			if !found {
				t.Fatal("no repetition in result")
			}
			if got != tt.want {
				t.Errorf("mode = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReferenceResolution(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"named", ":a('x') :b('y') ::b", 2},
		{"relativeBack", ":('x') :('y') ::-1", 2},
		{"relativeBackTwo", ":('x') :('y') ::-2", 1},
		{"relativeForward", "::+1 :('x')", 1},
		{"numeric", ":('x') ::1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, diags := analyzeSource(t, tt.src, Options{Flavor: flavor.PCRE})
			if diag.HasErrors(diags) {
				t.Fatalf("unexpected errors: %v", diags)
			}
			var got *ast.Reference
			ast.Inspect(expr, func(e ast.Expr) bool {
				if ref, ok := e.(*ast.Reference); ok {
					got = ref
				}
				return true
			})
			if got == nil {
				t.Fatal("no reference in result")
			}
			if got.Kind != ast.RefNumber || got.Number != tt.want {
				t.Errorf("reference = %+v, want number %d", got, tt.want)
			}
		})
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		opts    Options
		kind    diag.Kind
		msg     string
		help    string
	}{
		{
			name: "unknownVariable",
			src:  "let foo = 'a'; fooo",
			opts: Options{Flavor: flavor.PCRE},
			kind: diag.UnknownVariable,
			msg:  "variable `fooo` doesn't exist",
			help: "did you mean `foo`?",
		},
		{
			name: "cyclicVariable",
			src:  "let x = x 'a'; x",
			opts: Options{Flavor: flavor.PCRE},
			kind: diag.CyclicVariable,
			msg:  "defined in terms of itself",
		},
		{
			name: "duplicateVariable",
			src:  "let x = 'a'; let x = 'b'; x",
			opts: Options{Flavor: flavor.PCRE},
			kind: diag.DuplicateVariable,
			msg:  "declared twice",
			help: "rename one of the variables",
		},
		{
			name: "numericRefOutOfRange",
			src:  ":('x') ::3",
			opts: Options{Flavor: flavor.PCRE},
			kind: diag.UnknownReference,
			msg:  "group number 3 doesn't exist",
			help: "there is only one capturing group",
		},
		{
			name: "numericRefNoGroups",
			src:  "::1",
			opts: Options{Flavor: flavor.PCRE},
			kind: diag.UnknownReference,
			help: "there are no capturing groups",
		},
		{
			name: "relativeRefBeforeStart",
			src:  ":('x') ::-2",
			opts: Options{Flavor: flavor.PCRE},
			kind: diag.UnknownReference,
			msg:  "points before the first capturing group",
		},
		{
			name: "relativeRefPastEnd",
			src:  "::+2 :('x')",
			opts: Options{Flavor: flavor.PCRE},
			kind: diag.UnknownReference,
			msg:  "points past the last capturing group",
		},
		{
			name: "unknownGroupName",
			src:  ":foo('x') ::fo",
			opts: Options{Flavor: flavor.PCRE},
			kind: diag.UnknownGroupName,
			msg:  "group `fo` doesn't exist",
			help: "did you mean `foo`?",
		},
		{
			name: "duplicateGroupName",
			src:  ":a('x') :a('y')",
			opts: Options{Flavor: flavor.PCRE},
			kind: diag.ParseError,
			msg:  "group name `a` used multiple times",
		},
		{
			name: "graphemeOnJS",
			src:  "Grapheme",
			opts: Options{Flavor: flavor.JavaScript},
			kind: diag.Unsupported,
			msg:  "grapheme clusters are not supported in the `js` flavor",
		},
		{
			name: "lookaroundOnRust",
			src:  "(>> 'a')",
			opts: Options{Flavor: flavor.Rust},
			kind: diag.Unsupported,
			msg:  "lookaround assertions are not supported in the `rust` flavor",
		},
		{
			name: "referencesOnRust",
			src:  ":('x') ::1",
			opts: Options{Flavor: flavor.Rust},
			kind: diag.Unsupported,
			msg:  "backreferences are not supported in the `rust` flavor",
		},
		{
			name: "atomicOnPython",
			src:  "atomic('a')",
			opts: Options{Flavor: flavor.Python},
			kind: diag.Unsupported,
			msg:  "atomic groups are not supported in the `python` flavor",
		},
		{
			name: "variableLookbehindOnPython",
			src:  "(<< 'a'*)",
			opts: Options{Flavor: flavor.Python},
			kind: diag.LookbehindNotFixedWidth,
			msg:  "lookbehind must match a fixed number of characters",
		},
		{
			name: "paddedRangeLookbehindOnPython",
			src:  "(<< range '007'-'255')",
			opts: Options{Flavor: flavor.Python},
			kind: diag.LookbehindNotFixedWidth,
			msg:  "lookbehind must match a fixed number of characters",
		},
		{
			name: "unknownProperty",
			src:  "[Leter]",
			opts: Options{Flavor: flavor.PCRE},
			kind: diag.UnknownProperty,
			msg:  "`Leter` is not a known Unicode property",
			help: "did you mean `Letter`?",
		},
		{
			name: "scriptOnDotNet",
			src:  "[Greek]",
			opts: Options{Flavor: flavor.DotNet},
			kind: diag.Unsupported,
			msg:  "Unicode script properties are not supported in the `dotnet` flavor",
		},
		{
			name: "propertyOnPython",
			src:  "[Letter]",
			opts: Options{Flavor: flavor.Python},
			kind: diag.Unsupported,
			msg:  "Unicode properties are not supported in the `python` flavor",
		},
		{
			name: "disabledLookahead",
			src:  "(>> 'a')",
			opts: Options{Flavor: flavor.PCRE, AllowedFeatures: feature.All &^ feature.Lookahead},
			kind: diag.DisabledFeature,
			msg:  "the `lookahead` feature is not allowed here",
		},
		{
			name: "disabledRanges",
			src:  "range '0'-'99'",
			opts: Options{Flavor: flavor.PCRE, AllowedFeatures: feature.All &^ feature.Ranges},
			kind: diag.DisabledFeature,
			msg:  "the `ranges` feature is not allowed here",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := analyzeSource(t, tt.src, tt.opts)
			found := false
			for _, d := range diags {
				if d.Kind != tt.kind {
					continue
				}
				if tt.msg != "" && !strings.Contains(d.Msg, tt.msg) {
					continue
				}
				if tt.help != "" && !strings.Contains(d.Help, tt.help) {
					continue
				}
				found = true
			}
			if !found {
				t.Errorf("missing diagnostic kind %v with %q / %q, got %v", tt.kind, tt.msg, tt.help, diags)
			}
		})
	}
}

func TestAnalyzeSuccesses(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts Options
	}{
		{"graphemeOnPCRE", "Grapheme", Options{Flavor: flavor.PCRE}},
		{"graphemeOnRuby", "Grapheme", Options{Flavor: flavor.Ruby}},
		{"fixedLookbehindOnPython", "(<< 'ab')", Options{Flavor: flavor.Python}},
		{"fixedAlternationLookbehind", "(<< 'ab' | 'cd')", Options{Flavor: flavor.Python}},
		{"variableLookbehindOnPCRE", "(<< 'a'*)", Options{Flavor: flavor.PCRE}},
		{"paddedRangeLookbehind", "(<< range '007'-'009')", Options{Flavor: flavor.Python}},
		{"scriptOnPCRE", "[Greek]", Options{Flavor: flavor.PCRE}},
		{"blockOnJava", "[InBasic_Latin]", Options{Flavor: flavor.Java}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := analyzeSource(t, tt.src, tt.opts)
			if diag.HasErrors(diags) {
				t.Errorf("unexpected errors: %v", diags)
			}
		})
	}
}

func TestWordBoundaryWarningOnJS(t *testing.T) {
	_, diags := analyzeSource(t, "% 'x' %", Options{Flavor: flavor.JavaScript})
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	var warnings int
	for _, d := range diags {
		if d.Kind == diag.NonUnicodeWordBoundary && d.Severity == diag.Warning {
			warnings++
		}
	}
	if warnings != 2 {
		t.Errorf("got %d word boundary warnings, want 2", warnings)
	}
}

func TestExprWidth(t *testing.T) {
	tests := []struct {
		src   string
		fixed bool
	}{
		{"'abc'", true},
		{"'a' | 'b'", true},
		{"'a' | 'bc'", false},
		{"'a'{3}", true},
		{"'a'{2,3}", false},
		{"'a'*", false},
		{"[w][d]", true},
		{"% 'ab' %", true},
		{"Grapheme", false},
	}
	for _, tt := range tests {
		expr, diags := analyzeSource(t, tt.src, Options{Flavor: flavor.PCRE})
		if diag.HasErrors(diags) {
			t.Fatalf("%q: unexpected errors: %v", tt.src, diags)
		}
		if got := exprWidth(expr).fixed(); got != tt.fixed {
			t.Errorf("exprWidth(%q).fixed() = %v, want %v", tt.src, got, tt.fixed)
		}
	}
}
