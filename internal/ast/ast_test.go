package ast

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pomsky-community/pomsky-go/internal/source"
)

func TestInspect(t *testing.T) {
	expr := &Alternation{
		Branches: []Expr{
			&Literal{Text: "a"},
			&Repetition{
				Inner: &Group{
					Kind:  GroupCapturing,
					Name:  "g",
					Inner: &Literal{Text: "b"},
				},
				Lower: 1,
				Upper: -1,
			},
		},
	}

	var visited []string
	Inspect(expr, func(e Expr) bool {
		switch n := e.(type) {
		case *Alternation:
			visited = append(visited, "alt")
		case *Literal:
			visited = append(visited, "lit:"+n.Text)
		case *Repetition:
			visited = append(visited, "rep")
		case *Group:
			visited = append(visited, "group:"+n.Name)
		}
		return true
	})
	want := []string{"alt", "lit:a", "rep", "group:g", "lit:b"}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Errorf("Inspect order mismatch (-want +got):\n%s", diff)
	}
}

func TestInspectPrune(t *testing.T) {
	expr := &Concat{
		Items: []Expr{
			&Group{Kind: GroupNonCapturing, Inner: &Literal{Text: "skipped"}},
			&Literal{Text: "kept"},
		},
	}
	var visited []string
	Inspect(expr, func(e Expr) bool {
		if lit, ok := e.(*Literal); ok {
			visited = append(visited, lit.Text)
		}
		_, isGroup := e.(*Group)
		return !isGroup
	})
	want := []string{"kept"}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Errorf("pruned Inspect mismatch (-want +got):\n%s", diff)
	}
}

func TestPrettyPrint(t *testing.T) {
	expr := &Concat{
		Items: []Expr{
			&Group{
				Kind: GroupCapturing,
				Name: "name",
				Inner: &Alternation{
					Branches: []Expr{
						&Literal{Text: "Max"},
						&Literal{Text: "Laura"},
					},
				},
			},
			&Repetition{
				Inner: &CharClass{Items: []ClassItem{ClassShorthand{Kind: ShorthandWord}}},
				Lower: 0,
				Upper: -1,
				Mode:  RepetitionLazy,
			},
		},
	}

	var sb strings.Builder
	NewPrettyPrinter(&sb, false).PrettyPrint(expr)

	want := strings.Join([]string{
		"concat",
		"  capture :name",
		"    alternation",
		`      literal "Max"`,
		`      literal "Laura"`,
		"  repeat {0, inf} lazy",
		"    class word",
		"",
	}, "\n")
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("PrettyPrint mismatch (-want +got):\n%s", diff)
	}
}

func TestPosSpans(t *testing.T) {
	lit := &Literal{Text: "x", Span: source.Span{Start: 3, End: 6}}
	if got := lit.Pos(); got != (source.Span{Start: 3, End: 6}) {
		t.Errorf("Pos() = %v", got)
	}
}
