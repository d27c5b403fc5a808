// Package parser builds the syntax tree from pomsky source text.
//
// Lexing errors are all reported at once. Parse errors use panic mode:
// parser methods panic with a parseError, which Parse recovers into a
// diagnostic. Warnings (for deprecated syntax) accumulate and are
// returned in both cases.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pomsky-community/pomsky-go/internal/ast"
	"github.com/pomsky-community/pomsky-go/internal/diag"
	"github.com/pomsky-community/pomsky-go/internal/lexer"
	"github.com/pomsky-community/pomsky-go/internal/source"
	"github.com/pomsky-community/pomsky-go/internal/token"
)

// DefaultMaxRangeDigits bounds the length of `range` operands unless
// the caller overrides it.
const DefaultMaxRangeDigits = 6

// maxNesting caps group nesting to keep recursion bounded on
// adversarial input.
const maxNesting = 127

// Parse parses src. On success the expression is non-nil and diags
// contains only warnings. On failure the expression is nil and diags
// contains at least one error.
func Parse(src string, maxRangeDigits int) (expr ast.Expr, diags []diag.Diagnostic) {
	if maxRangeDigits <= 0 {
		maxRangeDigits = DefaultMaxRangeDigits
	}
	tokens := lexer.Tokenize(src)
	for _, tk := range tokens {
		if tk.Kind == token.KindError {
			diags = append(diags, lexErrorDiag(tk, src))
		}
	}
	if len(diags) > 0 {
		return nil, diags
	}

	p := &parser{src: src, tokens: tokens, maxRangeDigits: maxRangeDigits}
	defer func() {
		if e := recover(); e != nil {
			if pe, ok := e.(parseError); ok {
				expr = nil
				diags = append(p.warnings, diag.Diagnostic(pe))
			} else {
				panic(e)
			}
		}
	}()
	expr = p.parseProgram()
	diags = p.warnings
	return
}

type parseError diag.Diagnostic

type parser struct {
	src            string
	tokens         []token.Token
	pos            int
	depth          int
	maxRangeDigits int
	warnings       []diag.Diagnostic
}

func (p *parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) token.Token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) next() token.Token {
	tk := p.tokens[p.pos]
	if tk.Kind != token.KindEOF {
		p.pos++
	}
	return tk
}

func (p *parser) at(kind token.Kind) bool {
	return p.peek().Kind == kind
}

// atIdent reports whether the next token is the exact identifier text.
func (p *parser) atIdent(text string) bool {
	tk := p.peek()
	return tk.Kind == token.KindIdent && tk.Span.Text(p.src) == text
}

func (p *parser) expect(kind token.Kind) token.Token {
	if !p.at(kind) {
		p.errorf(p.peek().Span, "expected %s, found %s", kind, p.describe(p.peek()))
	}
	return p.next()
}

func (p *parser) describe(tk token.Token) string {
	if tk.Kind == token.KindEOF {
		return "the end of the input"
	}
	return fmt.Sprintf("`%s`", tk.Span.Text(p.src))
}

// errorf signals a parse error. The parser uses panic mode error
// handling; Parse recovers the parseError and turns it into the
// returned diagnostics.
func (p *parser) errorf(span source.Span, format string, args ...any) {
	panic(parseError(diag.Errorf(diag.ParseError, span, format, args...)))
}

func (p *parser) errorHelp(span source.Span, msg, help string, args ...any) {
	panic(parseError(diag.Errorf(diag.ParseError, span, "%s", msg).WithHelp(help, args...)))
}

func (p *parser) warn(d diag.Diagnostic) {
	p.warnings = append(p.warnings, d)
}

var keywords = map[string]bool{
	"let":       true,
	"greedy":    true,
	"lazy":      true,
	"enable":    true,
	"disable":   true,
	"range":     true,
	"base":      true,
	"atomic":    true,
	"if":        true,
	"else":      true,
	"recursion": true,
}

func (p *parser) parseProgram() ast.Expr {
	expr := p.parseStatements()
	if !p.at(token.KindEOF) {
		p.errorf(p.peek().Span, "expected the end of the input, found %s", p.describe(p.peek()))
	}
	return expr
}

// parseStatements parses leading `let` and `enable`/`disable`
// statements, whose scope is the remainder of the enclosing group, then
// the expression itself.
func (p *parser) parseStatements() ast.Expr {
	switch {
	case p.atIdent("let"):
		letTok := p.next()
		name := p.peek()
		if name.Kind != token.KindIdent {
			p.errorf(name.Span, "expected variable name, found %s", p.describe(name))
		}
		nameText := name.Span.Text(p.src)
		if keywords[nameText] {
			p.errorHelp(name.Span, fmt.Sprintf("`%s` is a reserved keyword and cannot be used as a variable name", nameText),
				"give the variable a different name")
		}
		p.next()
		p.expect(token.KindEquals)
		value := p.parseAlternation()
		p.expect(token.KindSemicolon)
		body := p.parseStatements()
		return &ast.LetIn{
			Name:     nameText,
			NameSpan: name.Span,
			Value:    value,
			Body:     body,
			Span:     letTok.Span.Join(body.Pos()),
		}
	case p.atIdent("enable") || p.atIdent("disable"):
		modTok := p.next()
		on := modTok.Span.Text(p.src) == "enable"
		setting := p.peek()
		if !p.atIdent("lazy") {
			p.errorf(setting.Span, "expected `lazy`, found %s", p.describe(setting))
		}
		p.next()
		p.expect(token.KindSemicolon)
		body := p.parseStatements()
		return &ast.Modifier{
			LazyOn: on,
			Body:   body,
			Span:   modTok.Span.Join(body.Pos()),
		}
	}
	return p.parseAlternation()
}

func (p *parser) parseAlternation() ast.Expr {
	// a leading pipe before the first branch is allowed
	if p.at(token.KindPipe) {
		pipe := p.next()
		if !p.atExprStart() {
			p.errorf(pipe.Span, "expected an expression after `|`")
		}
	}
	first := p.parseConcat()
	if !p.at(token.KindPipe) {
		return first
	}
	branches := []ast.Expr{first}
	for p.at(token.KindPipe) {
		pipe := p.next()
		if !p.atExprStart() {
			p.errorf(pipe.Span, "expected an expression after `|`")
		}
		branches = append(branches, p.parseConcat())
	}
	return &ast.Alternation{
		Branches: branches,
		Span:     branches[0].Pos().Join(branches[len(branches)-1].Pos()),
	}
}

// atExprStart reports whether the next token can begin an atom.
func (p *parser) atExprStart() bool {
	switch p.peek().Kind {
	case token.KindString, token.KindCodePoint, token.KindOpenBracket,
		token.KindOpenParen, token.KindColon, token.KindPercent,
		token.KindNot, token.KindLookAhead, token.KindLookBehind,
		token.KindDoubleColon, token.KindCaretStart, token.KindDollarEnd,
		token.KindDot, token.KindNumber:
		return true
	case token.KindIdent:
		switch p.peek().Span.Text(p.src) {
		case "greedy", "lazy", "base":
			return false
		case "let", "enable", "disable":
			// statements are only valid at the start of a group
			return false
		}
		return true
	}
	return false
}

func (p *parser) parseConcat() ast.Expr {
	start := p.peek().Span
	var items []ast.Expr
	for p.atExprStart() {
		items = append(items, p.parseRepetition())
	}
	switch len(items) {
	case 0:
		// an empty group or branch matches the empty string
		return &ast.Literal{Text: "", Span: source.Span{Start: start.Start, End: start.Start}}
	case 1:
		return items[0]
	}
	return &ast.Concat{
		Items: items,
		Span:  items[0].Pos().Join(items[len(items)-1].Pos()),
	}
}

func (p *parser) parseRepetition() ast.Expr {
	expr := p.parseAtom()
	seen := false
	for {
		var lower, upper int
		var end source.Span
		tk := p.peek()
		switch tk.Kind {
		case token.KindQuestionMark:
			if seen {
				p.errorHelp(tk.Span, "a `?` is not allowed directly after a repetition",
					"if you want a lazy repetition, append the `lazy` keyword; to match a `?` repeatedly, wrap the repetition in parentheses")
			}
			p.next()
			lower, upper, end = 0, 1, tk.Span
		case token.KindStar:
			p.next()
			lower, upper, end = 0, -1, tk.Span
		case token.KindPlus:
			p.next()
			lower, upper, end = 1, -1, tk.Span
		case token.KindOpenBrace:
			lower, upper = p.parseBracedQuantifier()
			end = p.tokens[p.pos-1].Span
		default:
			return expr
		}
		mode := ast.RepetitionDefault
		if p.atIdent("greedy") {
			mode = ast.RepetitionGreedy
			end = p.next().Span
		} else if p.atIdent("lazy") {
			mode = ast.RepetitionLazy
			end = p.next().Span
		}
		expr = &ast.Repetition{
			Inner: expr,
			Lower: lower,
			Upper: upper,
			Mode:  mode,
			Span:  expr.Pos().Join(end),
		}
		seen = true
	}
}

// parseBracedQuantifier parses `{n}`, `{n,}` and `{n,m}`, consuming
// through the closing brace. Returns upper of -1 for an open bound.
func (p *parser) parseBracedQuantifier() (lower, upper int) {
	open := p.expect(token.KindOpenBrace)
	if p.at(token.KindComma) {
		p.next()
		m := p.parseNumber("repetition count")
		p.errorHelp(open.Span.Join(p.peek().Span), "a lower bound is required",
			"use `{0,%d}` to match up to %d repetitions", m, m)
	}
	lower = p.parseNumber("repetition count")
	upper = lower
	if p.at(token.KindComma) {
		p.next()
		if p.at(token.KindCloseBrace) {
			upper = -1
		} else {
			upper = p.parseNumber("repetition count")
			if upper < lower {
				p.errorf(open.Span.Join(p.peek().Span), "the lower bound %d is greater than the upper bound %d", lower, upper)
			}
		}
	}
	p.expect(token.KindCloseBrace)
	return lower, upper
}

func (p *parser) parseNumber(what string) int {
	tk := p.peek()
	if tk.Kind != token.KindNumber {
		p.errorf(tk.Span, "expected %s, found %s", what, p.describe(tk))
	}
	n, err := strconv.ParseUint(tk.Span.Text(p.src), 10, 32)
	if err != nil {
		p.errorf(tk.Span, "this number is too large")
	}
	p.next()
	return int(n)
}

func (p *parser) parseAtom() ast.Expr {
	tk := p.peek()
	switch tk.Kind {
	case token.KindString:
		p.next()
		return &ast.Literal{Text: tk.Text, Span: tk.Span}
	case token.KindCodePoint:
		p.next()
		return &ast.Literal{Text: tk.Text, Span: tk.Span}
	case token.KindOpenBracket:
		return p.parseCharClass(false, tk.Span)
	case token.KindOpenParen:
		p.next()
		p.enterGroup(tk)
		inner := p.parseStatements()
		close := p.expect(token.KindCloseParen)
		p.depth--
		return &ast.Group{Kind: ast.GroupNonCapturing, Inner: inner, Span: tk.Span.Join(close.Span)}
	case token.KindColon:
		return p.parseCapturingGroup()
	case token.KindPercent:
		p.next()
		return &ast.Boundary{Kind: ast.WordBoundary, Span: tk.Span}
	case token.KindCaretStart:
		p.next()
		p.warn(diag.Warningf(diag.Deprecated, tk.Span, "`<%%` is deprecated").WithHelp("use `Start` instead"))
		return &ast.Boundary{Kind: ast.StartOfString, Span: tk.Span}
	case token.KindDollarEnd:
		p.next()
		p.warn(diag.Warningf(diag.Deprecated, tk.Span, "`%%>` is deprecated").WithHelp("use `End` instead"))
		return &ast.Boundary{Kind: ast.EndOfString, Span: tk.Span}
	case token.KindLookAhead:
		p.next()
		inner := p.parseAlternation()
		return &ast.Lookaround{Kind: ast.LookAhead, Inner: inner, Span: tk.Span.Join(inner.Pos())}
	case token.KindLookBehind:
		p.next()
		inner := p.parseAlternation()
		return &ast.Lookaround{Kind: ast.LookBehind, Inner: inner, Span: tk.Span.Join(inner.Pos())}
	case token.KindNot:
		return p.parseNegated()
	case token.KindDoubleColon:
		return p.parseReference()
	case token.KindDot:
		p.errorHelp(tk.Span, "`.` is not supported here",
			"use `Codepoint` to match any code point, or `![n]` to match anything except line breaks")
	case token.KindNumber:
		p.errorHelp(tk.Span, "numbers can only appear as repetition bounds",
			"to match the digits literally, use a string: '%s'", tk.Span.Text(p.src))
	case token.KindIdent:
		return p.parseIdentAtom()
	}
	p.errorf(tk.Span, "expected an expression, found %s", p.describe(tk))
	panic("unreachable")
}

func (p *parser) enterGroup(open token.Token) {
	p.depth++
	if p.depth > maxNesting {
		panic(parseError(diag.Errorf(diag.RecursionLimit, open.Span, "groups are nested too deeply").
			WithHelp("nesting is limited to %d levels; refactor using `let` bindings", maxNesting)))
	}
}

func (p *parser) parseCapturingGroup() ast.Expr {
	colon := p.expect(token.KindColon)
	name := ""
	nameSpan := source.Empty()
	if p.at(token.KindIdent) {
		nameTok := p.next()
		name = nameTok.Span.Text(p.src)
		nameSpan = nameTok.Span
		if keywords[name] {
			p.errorHelp(nameSpan, fmt.Sprintf("`%s` is a reserved keyword and cannot be used as a group name", name),
				"give the group a different name")
		}
	}
	open := p.peek()
	if open.Kind != token.KindOpenParen {
		if name != "" {
			p.errorf(open.Span, "expected `(` after the group name, found %s", p.describe(open))
		}
		p.errorf(open.Span, "expected `(` or a group name after `:`, found %s", p.describe(open))
	}
	p.next()
	p.enterGroup(open)
	inner := p.parseStatements()
	close := p.expect(token.KindCloseParen)
	p.depth--
	return &ast.Group{Kind: ast.GroupCapturing, Name: name, Inner: inner, Span: colon.Span.Join(close.Span)}
}

// parseNegated handles the `!` prefix, which applies to word
// boundaries, character classes and lookarounds.
func (p *parser) parseNegated() ast.Expr {
	not := p.expect(token.KindNot)
	if p.at(token.KindNot) {
		second := p.peek()
		p.errorHelp(not.Span.Join(second.Span), "an expression cannot be negated twice",
			"remove 2 exclamation marks")
	}
	tk := p.peek()
	switch tk.Kind {
	case token.KindPercent:
		p.next()
		return &ast.Boundary{Kind: ast.NotWordBoundary, Span: not.Span.Join(tk.Span)}
	case token.KindOpenBracket:
		return p.parseCharClass(true, not.Span)
	case token.KindLookAhead:
		p.next()
		inner := p.parseAlternation()
		return &ast.Lookaround{Kind: ast.NegLookAhead, Inner: inner, Span: not.Span.Join(inner.Pos())}
	case token.KindLookBehind:
		p.next()
		inner := p.parseAlternation()
		return &ast.Lookaround{Kind: ast.NegLookBehind, Inner: inner, Span: not.Span.Join(inner.Pos())}
	}
	p.errorHelp(not.Span, "only character classes, word boundaries and lookarounds can be negated",
		"remove the exclamation mark")
	panic("unreachable")
}

func (p *parser) parseReference() ast.Expr {
	colons := p.expect(token.KindDoubleColon)
	tk := p.peek()
	switch tk.Kind {
	case token.KindNumber:
		n := p.parseNumber("group number")
		if n == 0 {
			p.errorf(tk.Span, "group number 0 is not a valid backreference target")
		}
		return &ast.Reference{Kind: ast.RefNumber, Number: n, Span: colons.Span.Join(tk.Span)}
	case token.KindIdent:
		p.next()
		name := tk.Span.Text(p.src)
		if keywords[name] {
			p.errorf(tk.Span, "`%s` is a reserved keyword and cannot be used as a group name", name)
		}
		return &ast.Reference{Kind: ast.RefNamed, Name: name, Span: colons.Span.Join(tk.Span)}
	case token.KindPlus, token.KindDash:
		sign := p.next()
		numTok := p.peek()
		n := p.parseNumber("group offset")
		if n == 0 {
			p.errorf(sign.Span.Join(numTok.Span), "a relative reference must not be 0")
		}
		if sign.Kind == token.KindDash {
			n = -n
		}
		return &ast.Reference{Kind: ast.RefRelative, Number: n, Span: colons.Span.Join(numTok.Span)}
	}
	p.errorf(tk.Span, "expected a group number, name or relative offset after `::`, found %s", p.describe(tk))
	panic("unreachable")
}

func (p *parser) parseIdentAtom() ast.Expr {
	tk := p.next()
	text := tk.Span.Text(p.src)
	switch text {
	case "Start":
		return &ast.Boundary{Kind: ast.StartOfString, Span: tk.Span}
	case "End":
		return &ast.Boundary{Kind: ast.EndOfString, Span: tk.Span}
	case "Codepoint", "C":
		return &ast.CharClass{
			Items: []ast.ClassItem{ast.ClassShorthand{Kind: ast.ShorthandCodepoint, Span: tk.Span}},
			Span:  tk.Span,
		}
	case "Grapheme", "G":
		return &ast.Grapheme{Span: tk.Span}
	case "range":
		return p.parseRange(tk)
	case "atomic":
		open := p.expect(token.KindOpenParen)
		p.enterGroup(open)
		inner := p.parseStatements()
		close := p.expect(token.KindCloseParen)
		p.depth--
		return &ast.Group{Kind: ast.GroupAtomic, Inner: inner, Span: tk.Span.Join(close.Span)}
	case "if", "else", "recursion":
		p.errorf(tk.Span, "`%s` is a reserved keyword and is not implemented", text)
	case "let", "enable", "disable":
		p.errorHelp(tk.Span, fmt.Sprintf("a `%s` statement is only allowed at the start of a group or of the input", text),
			"move the statement to the start of the enclosing group")
	case "greedy", "lazy", "base":
		p.errorf(tk.Span, "`%s` is a reserved keyword and cannot be used here", text)
	}
	return &ast.Variable{Name: text, Span: tk.Span}
}

func (p *parser) parseRange(rangeTok token.Token) ast.Expr {
	startTok := p.expect(token.KindString)
	p.expect(token.KindDash)
	endTok := p.expect(token.KindString)
	base := 10
	end := endTok.Span
	if p.atIdent("base") {
		p.next()
		baseTok := p.peek()
		base = p.parseNumber("base")
		if base < 2 || base > 36 {
			p.errorf(baseTok.Span, "the base must be between 2 and 36, but it is %d", base)
		}
		end = baseTok.Span
	}
	span := rangeTok.Span.Join(end)

	start := strings.ToLower(startTok.Text)
	stop := strings.ToLower(endTok.Text)
	p.checkRangeOperand(start, startTok, base)
	p.checkRangeOperand(stop, endTok, base)
	if compareDigits(start, stop) > 0 {
		p.errorHelp(startTok.Span.Join(endTok.Span), "the first number in the range is greater than the second",
			"switch the operands: `range '%s'-'%s'`", stop, start)
	}
	if len(stripZeros(stop)) > p.maxRangeDigits {
		panic(parseError(diag.Errorf(diag.RangeTooLarge, span, "this range is too large to compile").
			WithHelp("ranges are limited to %d digits", p.maxRangeDigits)))
	}
	return &ast.Range{
		Start:     start,
		End:       stop,
		Base:      base,
		MaxDigits: p.maxRangeDigits,
		Span:      span,
	}
}

func (p *parser) checkRangeOperand(digits string, tk token.Token, base int) {
	if digits == "" {
		p.errorf(tk.Span, "a range operand must not be empty")
	}
	for _, r := range digits {
		if digitValue(r) < 0 || digitValue(r) >= base {
			p.errorf(tk.Span, "`%c` is not a digit in base %d", r, base)
		}
	}
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10
	}
	return -1
}

func stripZeros(digits string) string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// compareDigits compares two digit strings numerically, ignoring
// leading zeros.
func compareDigits(a, b string) int {
	a, b = stripZeros(a), stripZeros(b)
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
