package parser

import (
	"unicode/utf8"

	"github.com/pomsky-community/pomsky-go/internal/ast"
	"github.com/pomsky-community/pomsky-go/internal/diag"
	"github.com/pomsky-community/pomsky-go/internal/source"
	"github.com/pomsky-community/pomsky-go/internal/token"
)

// control characters that have single-letter names inside a class
var namedChars = map[string]rune{
	"n": '\n',
	"r": '\r',
	"t": '\t',
	"a": '\a',
	"e": 0x1B,
	"f": '\f',
}

var shorthands = map[string]ast.ShorthandKind{
	"w":           ast.ShorthandWord,
	"word":        ast.ShorthandWord,
	"d":           ast.ShorthandDigit,
	"digit":       ast.ShorthandDigit,
	"s":           ast.ShorthandSpace,
	"space":       ast.ShorthandSpace,
	"h":           ast.ShorthandHorizSpace,
	"horiz_space": ast.ShorthandHorizSpace,
	"v":           ast.ShorthandVertSpace,
	"vert_space":  ast.ShorthandVertSpace,
	"cp":          ast.ShorthandCodepoint,
	"codepoint":   ast.ShorthandCodepoint,
}

var asciiClasses = map[string]bool{
	"ascii":        true,
	"ascii_alpha":  true,
	"ascii_alnum":  true,
	"ascii_blank":  true,
	"ascii_cntrl":  true,
	"ascii_digit":  true,
	"ascii_graph":  true,
	"ascii_lower":  true,
	"ascii_print":  true,
	"ascii_punct":  true,
	"ascii_space":  true,
	"ascii_upper":  true,
	"ascii_word":   true,
	"ascii_xdigit": true,
}

// parseCharClass parses `[ ... ]`. The startSpan is the span of the
// `!` when the class is negated, otherwise of the `[` itself.
func (p *parser) parseCharClass(negated bool, startSpan source.Span) ast.Expr {
	open := p.expect(token.KindOpenBracket)
	startSpan = startSpan.Join(open.Span)

	// `[.]` is the deprecated spelling of "anything but a line break"
	if p.at(token.KindDot) {
		dot := p.next()
		closing := p.expect(token.KindCloseBracket)
		p.warn(diag.Warningf(diag.Deprecated, dot.Span, "`[.]` is deprecated").WithHelp("use `![n]` instead"))
		return &ast.CharClass{
			Items:   []ast.ClassItem{ast.ClassChar{Rune: '\n', Span: dot.Span}},
			Negated: !negated,
			Span:    startSpan.Join(closing.Span),
		}
	}

	var items []ast.ClassItem
	for !p.at(token.KindCloseBracket) {
		if p.at(token.KindEOF) {
			p.errorHelp(open.Span, "this character class is never closed", "insert a `]`")
		}
		items = append(items, p.parseClassItem()...)
	}
	closing := p.next()
	if len(items) == 0 {
		p.errorHelp(open.Span.Join(closing.Span), "this character class is empty",
			"add at least one character or shorthand to the class")
	}
	return &ast.CharClass{Items: items, Negated: negated, Span: startSpan.Join(closing.Span)}
}

// parseClassItem parses one class member. A multi-character string
// contributes one item per character, which is why a slice is returned.
func (p *parser) parseClassItem() []ast.ClassItem {
	tk := p.peek()
	switch tk.Kind {
	case token.KindString, token.KindCodePoint:
		p.next()
		if p.at(token.KindDash) {
			return []ast.ClassItem{p.parseClassRange(tk)}
		}
		if tk.Text == "" {
			p.errorf(tk.Span, "an empty string is not allowed in a character class")
		}
		var items []ast.ClassItem
		for _, r := range tk.Text {
			items = append(items, ast.ClassChar{Rune: r, Span: tk.Span})
		}
		return items
	case token.KindNot:
		p.next()
		if p.at(token.KindNot) {
			p.errorHelp(tk.Span.Join(p.peek().Span), "an expression cannot be negated twice",
				"remove 2 exclamation marks")
		}
		nameTok := p.peek()
		if nameTok.Kind != token.KindIdent {
			p.errorf(nameTok.Span, "expected a shorthand or Unicode property after `!`, found %s", p.describe(nameTok))
		}
		item := p.parseClassIdent(true)
		return []ast.ClassItem{item}
	case token.KindIdent:
		return []ast.ClassItem{p.parseClassIdent(false)}
	}
	p.errorf(tk.Span, "expected a string, code point or class name, found %s", p.describe(tk))
	panic("unreachable")
}

func (p *parser) parseClassRange(loTok token.Token) ast.ClassItem {
	lo, ok := singleRune(loTok.Text)
	if !ok {
		p.errorHelp(loTok.Span, "a character range must start with a single character",
			"to match several characters, list them without a dash: `['a' 'b']`")
	}
	p.expect(token.KindDash)
	hiTok := p.peek()
	if hiTok.Kind != token.KindString && hiTok.Kind != token.KindCodePoint {
		p.errorf(hiTok.Span, "expected the end of the character range, found %s", p.describe(hiTok))
	}
	p.next()
	hi, ok := singleRune(hiTok.Text)
	if !ok {
		p.errorHelp(hiTok.Span, "a character range must end with a single character",
			"to match several characters, list them without a dash: `['a' 'b']`")
	}
	span := loTok.Span.Join(hiTok.Span)
	if lo > hi {
		p.errorHelp(span, "character ranges must be in ascending order",
			"switch the characters: `%s-%s`", hiTok.Span.Text(p.src), loTok.Span.Text(p.src))
	}
	return ast.ClassRange{Lo: lo, Hi: hi, Span: span}
}

func singleRune(s string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return 0, false
	}
	return r, true
}

func (p *parser) parseClassIdent(negated bool) ast.ClassItem {
	tk := p.next()
	name := tk.Span.Text(p.src)

	if r, ok := namedChars[name]; ok {
		if negated {
			p.errorHelp(tk.Span, "a single character cannot be negated",
				"negate the whole class instead: `![%s]`", name)
		}
		return ast.ClassChar{Rune: r, Span: tk.Span}
	}
	if kind, ok := shorthands[name]; ok {
		if kind == ast.ShorthandCodepoint {
			if negated {
				p.errorf(tk.Span, "`%s` cannot be negated because the negation matches nothing", name)
			}
			p.warn(diag.Warningf(diag.Deprecated, tk.Span, "`[%s]` is deprecated", name).
				WithHelp("use `Codepoint` or `C` instead"))
		}
		return ast.ClassShorthand{Kind: kind, Negated: negated, Span: tk.Span}
	}
	if asciiClasses[name] {
		if negated {
			p.errorHelp(tk.Span, "ASCII classes cannot be negated individually",
				"negate the whole class instead: `![%s]`", name)
		}
		return ast.ClassAscii{Name: name, Span: tk.Span}
	}
	if keywords[name] {
		p.errorf(tk.Span, "`%s` is a reserved keyword and cannot be used in a character class", name)
	}
	// anything else is taken for a Unicode property and validated in
	// the semantic pass, where a suggestion can be computed
	return ast.ClassProperty{Name: name, Negated: negated, Span: tk.Span}
}
