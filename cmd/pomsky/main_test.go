package main

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pomsky-community/pomsky-go/internal/diag"
	"github.com/pomsky-community/pomsky-go/internal/flavor"
	"github.com/pomsky-community/pomsky-go/internal/source"
)

func TestPathList(t *testing.T) {
	var p pathList
	for _, v := range []string{"a.pom", "b.pom"} {
		if err := p.Set(v); err != nil {
			t.Fatalf("Set(%q): %v", v, err)
		}
	}
	if got, want := p.String(), "a.pom,b.pom"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMakeJobs(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []input
		flavors []flavor.Flavor
		want    []string
	}{
		{
			"singleInputAllFlavors",
			[]input{{name: "stdin", source: "'a'"}},
			flavor.All,
			[]string{"pcre", "js", "java", "dotnet", "python", "ruby", "rust"},
		},
		{
			"multiplePaths",
			[]input{{name: "a.pom", source: "'a'"}, {name: "b.pom", source: "'b'"}},
			[]flavor.Flavor{flavor.Python},
			[]string{"a.pom python", "b.pom python"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := makeJobs(tt.inputs, tt.flavors)
			var labels []string
			for _, j := range jobs {
				labels = append(labels, j.label)
			}
			if diff := cmp.Diff(tt.want, labels); diff != "" {
				t.Errorf("job labels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderDiagnostic(t *testing.T) {
	src := `('a'`
	d := diag.Errorf(diag.ParseError, source.Span{Start: 4, End: 4}, "expected `)`")

	plain := renderDiagnostic(d, src, false)
	if !strings.HasPrefix(plain, "error: expected `)`") {
		t.Errorf("plain rendering = %q", plain)
	}
	if strings.Contains(plain, "\x1b[") {
		t.Errorf("plain rendering contains escape codes: %q", plain)
	}

	colored := renderDiagnostic(d, src, true)
	if !strings.HasPrefix(colored, "\x1b[31merror\x1b[0m: expected `)`") {
		t.Errorf("colored rendering = %q", colored)
	}

	w := diag.Warningf(diag.Deprecated, source.Empty(), "old syntax")
	if got := renderDiagnostic(w, src, true); !strings.HasPrefix(got, "\x1b[33mwarning\x1b[0m: old syntax") {
		t.Errorf("colored warning = %q", got)
	}
}
