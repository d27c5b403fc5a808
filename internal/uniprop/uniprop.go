// Package uniprop resolves Unicode property names written in character
// classes. It knows the general categories (long and short names), the
// scripts from the unicode package, and a subset of the named blocks.
package uniprop

import (
	"sort"
	"unicode"
)

type Kind int

const (
	Category Kind = iota
	Script
	Block
)

// Prop is a resolved property. Short is the name to use in the emitted
// regex, which for categories is the one or two letter abbreviation.
type Prop struct {
	Kind  Kind
	Short string
}

// long general category names, mapped to their abbreviations
var categoryNames = map[string]string{
	"Letter":                "L",
	"Lowercase_Letter":      "Ll",
	"Uppercase_Letter":      "Lu",
	"Titlecase_Letter":      "Lt",
	"Modifier_Letter":       "Lm",
	"Other_Letter":          "Lo",
	"Mark":                  "M",
	"Nonspacing_Mark":       "Mn",
	"Spacing_Mark":          "Mc",
	"Enclosing_Mark":        "Me",
	"Number":                "N",
	"Decimal_Number":        "Nd",
	"Letter_Number":         "Nl",
	"Other_Number":          "No",
	"Punctuation":           "P",
	"Connector_Punctuation": "Pc",
	"Dash_Punctuation":      "Pd",
	"Open_Punctuation":      "Ps",
	"Close_Punctuation":     "Pe",
	"Initial_Punctuation":   "Pi",
	"Final_Punctuation":     "Pf",
	"Other_Punctuation":     "Po",
	"Symbol":                "S",
	"Math_Symbol":           "Sm",
	"Currency_Symbol":       "Sc",
	"Modifier_Symbol":       "Sk",
	"Other_Symbol":          "So",
	"Separator":             "Z",
	"Space_Separator":       "Zs",
	"Line_Separator":        "Zl",
	"Paragraph_Separator":   "Zp",
	"Other":                 "C",
	"Control":               "Cc",
	"Format":                "Cf",
	"Surrogate":             "Cs",
	"Private_Use":           "Co",
	"Unassigned":            "Cn",
}

// blocks that can be named with an `In` prefix. Block names containing
// a `-` in the Unicode standard are written with `_` here, since class
// items are lexed as identifiers.
var blockNames = map[string]bool{
	"Basic_Latin":              true,
	"Latin_1_Supplement":       true,
	"Latin_Extended_A":         true,
	"Latin_Extended_B":         true,
	"Greek_and_Coptic":         true,
	"Cyrillic":                 true,
	"Cyrillic_Supplement":      true,
	"Armenian":                 true,
	"Hebrew":                   true,
	"Arabic":                   true,
	"Devanagari":               true,
	"Bengali":                  true,
	"Thai":                     true,
	"Georgian":                 true,
	"Hiragana":                 true,
	"Katakana":                 true,
	"CJK_Unified_Ideographs":   true,
	"Hangul_Syllables":         true,
	"General_Punctuation":      true,
	"Currency_Symbols":         true,
	"Arrows":                   true,
	"Mathematical_Operators":   true,
	"Box_Drawing":              true,
	"Geometric_Shapes":         true,
	"Miscellaneous_Symbols":    true,
	"Dingbats":                 true,
	"Emoticons":                true,
	"Supplemental_Arrows_A":    true,
	"Supplemental_Arrows_B":    true,
	"Combining_Diacritical_Marks": true,
}

// Lookup resolves a property name as written in the source. Category
// abbreviations, category long names, script names, and `In`-prefixed
// block names are recognized.
func Lookup(name string) (Prop, bool) {
	if short, ok := categoryNames[name]; ok {
		return Prop{Kind: Category, Short: short}, true
	}
	if _, ok := unicode.Categories[name]; ok {
		return Prop{Kind: Category, Short: name}, true
	}
	if _, ok := unicode.Scripts[name]; ok {
		return Prop{Kind: Script, Short: name}, true
	}
	if len(name) > 2 && name[:2] == "In" && blockNames[name[2:]] {
		return Prop{Kind: Block, Short: name}, true
	}
	return Prop{}, false
}

// Names returns every recognized property name, sorted, for use in
// "did you mean" suggestions.
func Names() []string {
	var all []string
	for name := range categoryNames {
		all = append(all, name)
	}
	for name := range unicode.Categories {
		all = append(all, name)
	}
	for name := range unicode.Scripts {
		all = append(all, name)
	}
	for name := range blockNames {
		all = append(all, "In"+name)
	}
	sort.Strings(all)
	return all
}
