package feature

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHas(t *testing.T) {
	set := Grapheme | Ranges
	if !set.Has(Grapheme) || !set.Has(Ranges) {
		t.Error("set must contain its own members")
	}
	if set.Has(Variables) {
		t.Error("set must not contain variables")
	}
	if !All.Has(Lookbehind) || !All.Has(Boundaries) {
		t.Error("All must contain every feature")
	}
	if None.Has(Grapheme) {
		t.Error("None must be empty")
	}
}

func TestString(t *testing.T) {
	got := (Grapheme | Lookahead | Ranges).String()
	if got != "grapheme,lookahead,ranges" {
		t.Errorf("String() = %q", got)
	}
	if None.String() != "" {
		t.Errorf("None.String() = %q", None.String())
	}
}

func TestFromNames(t *testing.T) {
	set, unknown := FromNames("grapheme, ranges,named-groups")
	if set != Grapheme|Ranges|NamedGroups {
		t.Errorf("set = %v", set)
	}
	if len(unknown) != 0 {
		t.Errorf("unknown = %v", unknown)
	}

	set, unknown = FromNames("lookahead,telepathy,,recursion")
	if set != Lookahead {
		t.Errorf("set = %v", set)
	}
	if diff := cmp.Diff([]string{"telepathy", "recursion"}, unknown); diff != "" {
		t.Errorf("unknown mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	set, unknown := FromNames(All.String())
	if len(unknown) != 0 {
		t.Errorf("unknown = %v", unknown)
	}
	if set != All {
		t.Errorf("round trip = %v, want %v", set, All)
	}
}
