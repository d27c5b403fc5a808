package pomsky

import (
	"testing"

	"github.com/pomsky-community/pomsky-go/internal/diag"
	"github.com/pomsky-community/pomsky-go/internal/feature"
	"github.com/pomsky-community/pomsky-go/internal/flavor"
)

func TestParseAndCompile(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts CompileOptions
		want string
	}{
		{
			"alternation",
			`"hello" | "world"`,
			CompileOptions{},
			`hello|world`,
		},
		{
			"namedGroups",
			`:name("Max" | "Laura") (" is " | " was ") :adverb("asleep" | "awake")`,
			CompileOptions{},
			`(?P<name>Max|Laura)(?: is | was )(?P<adverb>asleep|awake)`,
		},
		{
			"classRepetition",
			`['a'-'z' 'A'-'Z']+`,
			CompileOptions{},
			`[a-zA-Z]+`,
		},
		{
			"range",
			`range '0'-'255'`,
			CompileOptions{},
			`0|1[0-9]{0,2}|2(?:[0-4][0-9]?|5[0-5]?|[6-9])?|[3-9][0-9]?`,
		},
		{
			"keywordFilter",
			`(!>> ("_" | "for" | "while" | "if") %) [w]+ %`,
			CompileOptions{},
			`(?!(?:_|for|while|if)\b)\w+\b`,
		},
		{
			"groupedRepetition",
			`("hello"){1,5}`,
			CompileOptions{},
			`(?:hello){1,5}`,
		},
		{
			"groupedRepetitionLazy",
			`("hello"){1,5} lazy`,
			CompileOptions{},
			`(?:hello){1,5}?`,
		},
		{
			"javaNamedGroup",
			`:num(range '0'-'99')`,
			CompileOptions{Flavor: flavor.Java},
			`(?<num>0|[1-9][0-9]?)`,
		},
		{
			"pythonAnchors",
			`Start [d]+ End`,
			CompileOptions{Flavor: flavor.Python},
			`\A\d+\Z`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diags := ParseAndCompile(tt.src, tt.opts)
			if diag.HasErrors(diags) {
				t.Fatalf("ParseAndCompile(%q) failed: %v", tt.src, diags)
			}
			if got != tt.want {
				t.Errorf("ParseAndCompile(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestWarningsAccompanySuccess(t *testing.T) {
	out, diags := ParseAndCompile(`% [w]+ %`, CompileOptions{Flavor: flavor.JavaScript})
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	if out != `\b[\p{L}\p{M}\p{Nd}\p{Pc}]+\b` {
		t.Errorf("output = %q", out)
	}
	var warnings int
	for _, d := range diags {
		if d.Severity == diag.Warning && d.Kind == diag.NonUnicodeWordBoundary {
			warnings++
		}
	}
	if warnings != 2 {
		t.Errorf("got %d word boundary warnings, want 2", warnings)
	}
}

func TestAllowedFeatures(t *testing.T) {
	opts := CompileOptions{ParseOptions: ParseOptions{AllowedFeatures: feature.NamedGroups}}
	out, diags := ParseAndCompile(`range '0'-'9'`, opts)
	if !diag.HasErrors(diags) {
		t.Fatalf("expected a disabled feature error, got %q", out)
	}
	if diags[0].Kind != diag.DisabledFeature {
		t.Errorf("diagnostic kind = %v, want %v", diags[0].Kind, diag.DisabledFeature)
	}

	opts.AllowedFeatures = feature.Ranges
	out, diags = ParseAndCompile(`range '0'-'9'`, opts)
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	if out != `[0-9]` {
		t.Errorf("output = %q, want %q", out, `[0-9]`)
	}
}

func TestMaxRangeDigits(t *testing.T) {
	src := `range '0'-'1234567'`
	if out, diags := ParseAndCompile(src, CompileOptions{}); !diag.HasErrors(diags) {
		t.Fatalf("expected a range size error, got %q", out)
	} else if diags[0].Kind != diag.RangeTooLarge {
		t.Errorf("diagnostic kind = %v, want %v", diags[0].Kind, diag.RangeTooLarge)
	}

	opts := CompileOptions{ParseOptions: ParseOptions{MaxRangeDigits: 8}}
	out, diags := ParseAndCompile(src, opts)
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	if out == "" {
		t.Error("output is empty")
	}
}

func TestParseFailureStopsCompilation(t *testing.T) {
	out, diags := ParseAndCompile(`('a'`, CompileOptions{})
	if out != "" {
		t.Errorf("output = %q, want empty", out)
	}
	if !diag.HasErrors(diags) {
		t.Error("expected at least one error")
	}
}

func TestFlavorRejection(t *testing.T) {
	out, diags := ParseAndCompile(`atomic('a' | 'b')`, CompileOptions{Flavor: flavor.Rust})
	if out != "" || !diag.HasErrors(diags) {
		t.Fatalf("expected an error, got %q", out)
	}
	if diags[0].Kind != diag.Unsupported {
		t.Errorf("diagnostic kind = %v, want %v", diags[0].Kind, diag.Unsupported)
	}
}

func TestParseReusableAcrossFlavors(t *testing.T) {
	expr, diags := Parse(`:('x') ::1`, ParseOptions{})
	if diag.HasErrors(diags) {
		t.Fatalf("parse failed: %v", diags)
	}
	pcre, diags := Compile(expr, CompileOptions{})
	if diag.HasErrors(diags) || pcre != `(x)\1` {
		t.Errorf("pcre = %q (%v), want %q", pcre, diags, `(x)\1`)
	}
	if _, diags := Compile(expr, CompileOptions{Flavor: flavor.Rust}); !diag.HasErrors(diags) {
		t.Error("rust accepted a backreference")
	}
}
