// Package codegen lowers an analyzed expression into a regex string
// for one target flavor. The input must have passed the semantic pass:
// references are numeric, repetition modes are explicit, and every
// construct is supported by the flavor.
package codegen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pomsky-community/pomsky-go/internal/ast"
	"github.com/pomsky-community/pomsky-go/internal/flavor"
	"github.com/pomsky-community/pomsky-go/internal/uniprop"
)

// context tells a node what surrounds it, so parentheses are inserted
// only where the regex grammar needs them.
type context int

const (
	// ctxTop is the top level or the inside of a group or lookaround.
	ctxTop context = iota
	// ctxAlternation is a branch of an alternation.
	ctxAlternation
	// ctxConcat is an element of a concatenation.
	ctxConcat
	// ctxRepetition is the operand of a quantifier.
	ctxRepetition
)

// Emit produces the regex for an analyzed expression. It is
// deterministic: equal trees yield byte-identical output.
func Emit(expr ast.Expr, fl flavor.Flavor) string {
	e := &emitter{fl: fl, spec: fl.Spec()}
	return e.emit(expr, ctxTop)
}

type emitter struct {
	fl   flavor.Flavor
	spec flavor.Spec
}

func (e *emitter) emit(expr ast.Expr, ctx context) string {
	switch n := expr.(type) {
	case *ast.Literal:
		return e.literal(n, ctx)
	case *ast.CharClass:
		return e.class(n)
	case *ast.Group:
		// a parenthesized lookaround is written with the lookaround's
		// own parentheses
		if la, ok := n.Inner.(*ast.Lookaround); ok && n.Kind == ast.GroupNonCapturing && ctx != ctxRepetition {
			return e.emit(la, ctx)
		}
		return e.group(n)
	case *ast.Alternation:
		branches := make([]string, len(n.Branches))
		for i, b := range n.Branches {
			branches[i] = e.emit(b, ctxAlternation)
		}
		s := strings.Join(branches, "|")
		if ctx != ctxTop {
			return "(?:" + s + ")"
		}
		return s
	case *ast.Concat:
		var sb strings.Builder
		for _, item := range n.Items {
			sb.WriteString(e.emit(item, ctxConcat))
		}
		if ctx == ctxRepetition {
			return "(?:" + sb.String() + ")"
		}
		return sb.String()
	case *ast.Repetition:
		operand := e.emit(n.Inner, ctxRepetition)
		if operand == "" {
			operand = "(?:)"
		}
		s := operand + quantifier(n.Lower, n.Upper)
		if n.Mode == ast.RepetitionLazy {
			s += "?"
		}
		if ctx == ctxRepetition {
			return "(?:" + s + ")"
		}
		return s
	case *ast.Lookaround:
		var open string
		switch n.Kind {
		case ast.LookAhead:
			open = "(?="
		case ast.NegLookAhead:
			open = "(?!"
		case ast.LookBehind:
			open = "(?<="
		case ast.NegLookBehind:
			open = "(?<!"
		}
		return open + e.emit(n.Inner, ctxTop) + ")"
	case *ast.Boundary:
		switch n.Kind {
		case ast.WordBoundary:
			return `\b`
		case ast.NotWordBoundary:
			return `\B`
		case ast.StartOfString:
			return e.spec.StartAnchor
		case ast.EndOfString:
			return e.spec.EndAnchor
		}
	case *ast.Reference:
		return `\` + strconv.Itoa(n.Number)
	case *ast.Grapheme:
		return `\X`
	case *ast.Range:
		f := compileRange(n.Start, n.End, n.Base)
		if (f.alt && ctx != ctxTop) || (ctx == ctxRepetition && !f.unit) {
			return "(?:" + f.s + ")"
		}
		return f.s
	}
	panic("internal error: unexpected expression in emitter")
}

func (e *emitter) group(n *ast.Group) string {
	inner := e.emit(n.Inner, ctxTop)
	switch n.Kind {
	case ast.GroupNonCapturing:
		return "(?:" + inner + ")"
	case ast.GroupAtomic:
		return "(?>" + inner + ")"
	case ast.GroupCapturing:
		if n.Name == "" {
			return "(" + inner + ")"
		}
		if e.spec.PythonNamedGroups {
			return "(?P<" + n.Name + ">" + inner + ")"
		}
		return "(?<" + n.Name + ">" + inner + ")"
	}
	panic("internal error: unknown group kind")
}

func quantifier(lower, upper int) string {
	switch {
	case lower == 0 && upper < 0:
		return "*"
	case lower == 1 && upper < 0:
		return "+"
	case lower == 0 && upper == 1:
		return "?"
	case upper < 0:
		return "{" + strconv.Itoa(lower) + ",}"
	case lower == upper:
		return "{" + strconv.Itoa(lower) + "}"
	}
	return "{" + strconv.Itoa(lower) + "," + strconv.Itoa(upper) + "}"
}

func (e *emitter) literal(n *ast.Literal, ctx context) string {
	var sb strings.Builder
	for _, r := range n.Text {
		sb.WriteString(e.escapeRune(r))
	}
	if ctx == ctxRepetition && utf8.RuneCountInString(n.Text) > 1 {
		return "(?:" + sb.String() + ")"
	}
	return sb.String()
}

// escapeRune writes one code point of a literal, escaping the regex
// metacharacters and hiding unprintable characters behind escapes.
func (e *emitter) escapeRune(r rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	}
	if strings.ContainsRune(`.^$|?*+()[]{}\`, r) {
		return `\` + string(r)
	}
	if !unicode.IsPrint(r) {
		return e.hexEscape(r)
	}
	return string(r)
}

// escapeClassRune is escapeRune for the inside of a character class,
// where a different set of characters is special.
func (e *emitter) escapeClassRune(r rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	}
	if strings.ContainsRune(`[]^-\`, r) {
		return `\` + string(r)
	}
	if !unicode.IsPrint(r) {
		return e.hexEscape(r)
	}
	return string(r)
}

func (e *emitter) hexEscape(r rune) string {
	switch e.spec.Hex {
	case flavor.HexBraced:
		return fmt.Sprintf(`\x{%X}`, r)
	case flavor.HexJS:
		if r <= 0xFFFF {
			return fmt.Sprintf(`\u%04X`, r)
		}
		return fmt.Sprintf(`\u{%X}`, r)
	case flavor.HexPython:
		if r <= 0xFFFF {
			return fmt.Sprintf(`\u%04X`, r)
		}
		return fmt.Sprintf(`\U%08X`, r)
	case flavor.HexBMPOnly:
		if r <= 0xFFFF {
			return fmt.Sprintf(`\u%04X`, r)
		}
		hi, lo := utf16.EncodeRune(r)
		return fmt.Sprintf(`\u%04X\u%04X`, hi, lo)
	}
	panic("internal error: unknown hex syntax")
}

// class lowers a character class. A class with a single item collapses
// to the item's shorthand where one exists.
func (e *emitter) class(n *ast.CharClass) string {
	if len(n.Items) == 1 {
		if s, ok := e.singleItem(n.Items[0], n.Negated); ok {
			return s
		}
	}
	var sb strings.Builder
	sb.WriteString("[")
	if n.Negated {
		sb.WriteString("^")
	}
	for _, item := range n.Items {
		sb.WriteString(e.classItem(item))
	}
	sb.WriteString("]")
	return sb.String()
}

// singleItem emits a one-item class without the brackets when the item
// has a standalone form.
func (e *emitter) singleItem(item ast.ClassItem, negated bool) (string, bool) {
	switch it := item.(type) {
	case ast.ClassChar:
		if negated {
			return "", false
		}
		return e.escapeRune(it.Rune), true
	case ast.ClassShorthand:
		neg := negated != it.Negated
		switch it.Kind {
		case ast.ShorthandWord:
			if !e.spec.UnicodeWordChars {
				if neg {
					return "[^" + wordProperties + "]", true
				}
				return "[" + wordProperties + "]", true
			}
			return pick(neg, `\W`, `\w`), true
		case ast.ShorthandDigit:
			if !e.spec.UnicodeWordChars {
				return pick(neg, `\P{Nd}`, `\p{Nd}`), true
			}
			return pick(neg, `\D`, `\d`), true
		case ast.ShorthandSpace:
			return pick(neg, `\S`, `\s`), true
		case ast.ShorthandHorizSpace:
			if e.spec.HorizVertSpace {
				return pick(neg, `\H`, `\h`), true
			}
			if neg {
				return "[^" + e.horizChars() + "]", true
			}
			return "[" + e.horizChars() + "]", true
		case ast.ShorthandVertSpace:
			if e.spec.HorizVertSpace {
				return pick(neg, `\V`, `\v`), true
			}
			if neg {
				return "[^" + e.vertChars() + "]", true
			}
			return "[" + e.vertChars() + "]", true
		case ast.ShorthandCodepoint:
			return pick(neg, `[^\s\S]`, `[\s\S]`), true
		}
	case ast.ClassProperty:
		neg := negated != it.Negated
		return e.property(it.Name, neg), true
	}
	return "", false
}

func (e *emitter) classItem(item ast.ClassItem) string {
	switch it := item.(type) {
	case ast.ClassChar:
		return e.escapeClassRune(it.Rune)
	case ast.ClassRange:
		return e.escapeClassRune(it.Lo) + "-" + e.escapeClassRune(it.Hi)
	case ast.ClassShorthand:
		switch it.Kind {
		case ast.ShorthandWord:
			if !e.spec.UnicodeWordChars {
				// the negated form is rejected by the semantic pass
				return wordProperties
			}
			return pick(it.Negated, `\W`, `\w`)
		case ast.ShorthandDigit:
			if !e.spec.UnicodeWordChars {
				return pick(it.Negated, `\P{Nd}`, `\p{Nd}`)
			}
			return pick(it.Negated, `\D`, `\d`)
		case ast.ShorthandSpace:
			return pick(it.Negated, `\S`, `\s`)
		case ast.ShorthandHorizSpace:
			if e.spec.HorizVertSpace {
				return pick(it.Negated, `\H`, `\h`)
			}
			return e.horizChars()
		case ast.ShorthandVertSpace:
			if e.spec.HorizVertSpace {
				return pick(it.Negated, `\V`, `\v`)
			}
			return e.vertChars()
		case ast.ShorthandCodepoint:
			return `\s\S`
		}
	case ast.ClassAscii:
		return asciiRanges[it.Name]
	case ast.ClassProperty:
		return e.property(it.Name, it.Negated)
	}
	panic("internal error: class item without a lowering")
}

// wordProperties is the Unicode-aware expansion of the word class,
// used where \w only covers ASCII.
const wordProperties = `\p{L}\p{M}\p{Nd}\p{Pc}`

func (e *emitter) property(name string, negated bool) string {
	prop, ok := uniprop.Lookup(name)
	if !ok {
		panic("internal error: unvalidated property reached the emitter")
	}
	out := prop.Short
	switch prop.Kind {
	case uniprop.Script:
		switch e.fl {
		case flavor.Java:
			out = "Is" + out
		case flavor.JavaScript:
			out = "Script=" + out
		}
	case uniprop.Block:
		if e.fl == flavor.DotNet {
			// .NET block names use an `Is` prefix and no underscores
			out = "Is" + strings.ReplaceAll(out[len("In"):], "_", "")
		}
	}
	return pick(negated, `\P{`, `\p{`) + out + "}"
}

func (e *emitter) horizChars() string {
	return `\t` + e.hexEscape(0xA0) + e.hexEscape(0x1680) +
		e.hexEscape(0x2000) + "-" + e.hexEscape(0x200A) +
		e.hexEscape(0x202F) + e.hexEscape(0x205F) + e.hexEscape(0x3000)
}

func (e *emitter) vertChars() string {
	return `\n` + e.hexEscape(0x0B) + `\f\r` + e.hexEscape(0x85) +
		e.hexEscape(0x2028) + e.hexEscape(0x2029)
}

var asciiRanges = map[string]string{
	"ascii":        `\x00-\x7F`,
	"ascii_alpha":  `a-zA-Z`,
	"ascii_alnum":  `0-9a-zA-Z`,
	"ascii_blank":  `\t `,
	"ascii_cntrl":  `\x00-\x1F\x7F`,
	"ascii_digit":  `0-9`,
	"ascii_graph":  `\x21-\x7E`,
	"ascii_lower":  `a-z`,
	"ascii_print":  `\x20-\x7E`,
	"ascii_punct":  `\x21-\x2F\x3A-\x40\x5B-\x60\x7B-\x7E`,
	"ascii_space":  `\t\n\x0B\f\r `,
	"ascii_upper":  `A-Z`,
	"ascii_word":   `0-9a-zA-Z_`,
	"ascii_xdigit": `0-9a-fA-F`,
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
