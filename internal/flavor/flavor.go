// Package flavor describes the regex dialects the compiler can target.
// Each flavor is summarized by a Spec value that the semantic pass and
// the emitter consult instead of switching on the flavor directly.
package flavor

import "strings"

type Flavor int

const (
	PCRE Flavor = iota
	JavaScript
	Java
	DotNet
	Python
	Ruby
	Rust
)

var flavorNames = map[Flavor]string{
	PCRE:       "pcre",
	JavaScript: "js",
	Java:       "java",
	DotNet:     "dotnet",
	Python:     "python",
	Ruby:       "ruby",
	Rust:       "rust",
}

func (f Flavor) String() string {
	name, ok := flavorNames[f]
	if !ok {
		panic("internal error: unnamed flavor")
	}
	return name
}

// FromString maps a user-supplied flavor name to a Flavor. Matching is
// case-insensitive and accepts the common aliases.
func FromString(s string) (Flavor, bool) {
	switch strings.ToLower(s) {
	case "pcre":
		return PCRE, true
	case "js", "javascript":
		return JavaScript, true
	case "java":
		return Java, true
	case "dotnet", ".net":
		return DotNet, true
	case "python", "py":
		return Python, true
	case "ruby":
		return Ruby, true
	case "rust":
		return Rust, true
	}
	return 0, false
}

// All lists every flavor in a stable order, for `--flavor all`.
var All = []Flavor{PCRE, JavaScript, Java, DotNet, Python, Ruby, Rust}

// HexSyntax selects how a code point that is not printable is written.
type HexSyntax int

const (
	// HexBraced writes `\x{41}` for any code point.
	HexBraced HexSyntax = iota
	// HexJS writes `\u` and four hex digits for the BMP and
	// `\u{10FFFF}` above it.
	HexJS
	// HexPython writes `\u` and four hex digits for the BMP and
	// `\U0001F600` above it.
	HexPython
	// HexBMPOnly writes `\u` and four hex digits; astral code points
	// are written as a
	// surrogate pair.
	HexBMPOnly
)

// Spec captures what a flavor supports and which syntax it uses for
// the constructs that differ between dialects.
type Spec struct {
	// PythonNamedGroups selects `(?P<name>...)` over `(?<name>...)`.
	PythonNamedGroups bool

	Grapheme           bool // \X
	Lookaround         bool
	VariableLookbehind bool // lookbehind bodies may have variable width
	Backreferences     bool
	AtomicGroups       bool

	// UnicodeWordBoundary is false when \b only understands ASCII
	// word characters.
	UnicodeWordBoundary bool
	// UnicodeWordChars is false when \w only matches ASCII; [word]
	// then expands to the equivalent property class.
	UnicodeWordChars bool

	UnicodeProperties bool // \p{...} at all
	UnicodeScripts    bool // \p{Greek} and friends
	UnicodeBlocks     bool // \p{InBasic_Latin} and friends

	// HorizVertSpace is true when \h and \v are available as
	// shorthands for horizontal and vertical whitespace.
	HorizVertSpace bool

	Hex HexSyntax

	// StartAnchor and EndAnchor match only at the very start and end
	// of the subject, regardless of any multiline mode.
	StartAnchor string
	EndAnchor   string
}

var specs = map[Flavor]Spec{
	PCRE: {
		PythonNamedGroups:   true,
		Grapheme:            true,
		Lookaround:          true,
		VariableLookbehind:  true,
		Backreferences:      true,
		AtomicGroups:        true,
		UnicodeWordBoundary: true,
		UnicodeWordChars:    true,
		UnicodeProperties:   true,
		UnicodeScripts:      true,
		HorizVertSpace:      true,
		Hex:                 HexBraced,
		StartAnchor:         `\A`,
		EndAnchor:           `\z`,
	},
	JavaScript: {
		Lookaround:        true,
		Backreferences:    true,
		UnicodeProperties: true,
		UnicodeScripts:    true,
		Hex:               HexJS,
		StartAnchor:       `^`,
		EndAnchor:         `$`,
	},
	Java: {
		Grapheme:            true,
		Lookaround:          true,
		VariableLookbehind:  true,
		Backreferences:      true,
		AtomicGroups:        true,
		UnicodeWordBoundary: true,
		UnicodeWordChars:    true,
		UnicodeProperties:   true,
		UnicodeScripts:      true,
		UnicodeBlocks:       true,
		HorizVertSpace:      true,
		Hex:                 HexBraced,
		StartAnchor:         `\A`,
		EndAnchor:           `\z`,
	},
	DotNet: {
		Lookaround:          true,
		VariableLookbehind:  true,
		Backreferences:      true,
		AtomicGroups:        true,
		UnicodeWordBoundary: true,
		UnicodeWordChars:    true,
		UnicodeProperties:   true,
		UnicodeBlocks:       true,
		Hex:                 HexBMPOnly,
		StartAnchor:         `\A`,
		EndAnchor:           `\z`,
	},
	Python: {
		PythonNamedGroups:   true,
		Lookaround:          true,
		Backreferences:      true,
		UnicodeWordBoundary: true,
		UnicodeWordChars:    true,
		Hex:                 HexPython,
		StartAnchor:         `\A`,
		EndAnchor:           `\Z`,
	},
	Ruby: {
		Grapheme:            true,
		Lookaround:          true,
		Backreferences:      true,
		AtomicGroups:        true,
		UnicodeWordBoundary: true,
		UnicodeWordChars:    true,
		UnicodeProperties:   true,
		UnicodeScripts:      true,
		HorizVertSpace:      true,
		Hex:                 HexBraced,
		StartAnchor:         `\A`,
		EndAnchor:           `\z`,
	},
	Rust: {
		UnicodeWordBoundary: true,
		UnicodeWordChars:    true,
		UnicodeProperties:   true,
		UnicodeScripts:      true,
		Hex:                 HexBraced,
		StartAnchor:         `\A`,
		EndAnchor:           `\z`,
	},
}

// Spec returns the capability table for f.
func (f Flavor) Spec() Spec {
	spec, ok := specs[f]
	if !ok {
		panic("internal error: flavor without a spec")
	}
	return spec
}
