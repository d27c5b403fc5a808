// Package feature defines the bitset of language features that callers
// can selectively forbid. The semantic pass collects the features an
// expression uses and compares them against the allow-mask.
package feature

import (
	"sort"
	"strings"
)

type Set uint32

const (
	Grapheme Set = 1 << iota
	NumberedGroups
	NamedGroups
	AtomicGroups
	References
	LazyMode
	Ranges
	Variables
	Lookahead
	Lookbehind
	Boundaries

	None Set = 0
	All      = Grapheme | NumberedGroups | NamedGroups | AtomicGroups |
		References | LazyMode | Ranges | Variables | Lookahead |
		Lookbehind | Boundaries
)

var names = map[Set]string{
	Grapheme:       "grapheme",
	NumberedGroups: "numbered-groups",
	NamedGroups:    "named-groups",
	AtomicGroups:   "atomic-groups",
	References:     "references",
	LazyMode:       "lazy-mode",
	Ranges:         "ranges",
	Variables:      "variables",
	Lookahead:      "lookahead",
	Lookbehind:     "lookbehind",
	Boundaries:     "boundaries",
}

func (s Set) Has(f Set) bool { return s&f == f }

// Name returns the canonical name of a single feature bit.
func Name(f Set) string {
	name, ok := names[f]
	if !ok {
		panic("internal error: unnamed feature")
	}
	return name
}

// String lists the features in the set, sorted by name.
func (s Set) String() string {
	var parts []string
	for f, name := range names {
		if s.Has(f) {
			parts = append(parts, name)
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// FromNames parses a comma-separated feature list into a Set. The
// second return value holds the names that did not match any feature.
func FromNames(list string) (Set, []string) {
	var set Set
	var unknown []string
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for f, n := range names {
			if n == name {
				set |= f
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, name)
		}
	}
	return set, unknown
}
