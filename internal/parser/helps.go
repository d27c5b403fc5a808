package parser

import (
	"strings"

	"github.com/pomsky-community/pomsky-go/internal/diag"
	"github.com/pomsky-community/pomsky-go/internal/token"
)

// lexErrorDiag converts an error token into a diagnostic. Where the
// offending syntax has a direct equivalent, the help text spells out
// the replacement.
func lexErrorDiag(tk token.Token, src string) diag.Diagnostic {
	text := tk.Span.Text(src)
	e := func(msg string) diag.Diagnostic {
		return diag.Errorf(diag.LexError, tk.Span, "%s", msg)
	}

	switch tk.Err {
	case token.ErrCaret:
		return e("`^` is not a valid token").WithHelp("use `Start` to match the start of the string")
	case token.ErrDollar:
		return e("`$` is not a valid token").WithHelp("use `End` to match the end of the string")
	case token.ErrUnclosedString:
		return e("this string literal is never closed")
	case token.ErrInvalidEscape:
		return e("this escape sequence is not supported in strings").
			WithHelp("only `\\\\` and `\\\"` can be escaped in double-quoted strings")
	case token.ErrInvalidCodePoint:
		return e("this code point is outside the allowed range").
			WithHelp("code points go up to `U+10FFFF` and must not be surrogates")
	case token.ErrUnknownChar:
		return e("`" + text + "` is not a valid token")

	case token.ErrGroupNonCapturing:
		return e("`(?:` is not a valid token").
			WithHelp("non-capturing groups are the default here, so just use `(`")
	case token.ErrGroupLookahead:
		return e("`(?=` is not a valid token").WithHelp("lookahead uses the `>>` syntax: `(>> ...)`")
	case token.ErrGroupLookaheadNeg:
		return e("`(?!` is not a valid token").WithHelp("negative lookahead uses the `!>>` syntax: `(!>> ...)`")
	case token.ErrGroupLookbehind:
		return e("`(?<=` is not a valid token").WithHelp("lookbehind uses the `<<` syntax: `(<< ...)`")
	case token.ErrGroupLookbehindNeg:
		return e("`(?<!` is not a valid token").WithHelp("negative lookbehind uses the `!<<` syntax: `(!<< ...)`")
	case token.ErrGroupAtomic:
		return e("`(?>` is not a valid token").WithHelp("atomic groups use the `atomic(...)` syntax")
	case token.ErrGroupConditional:
		return e("conditional groups are not supported")
	case token.ErrGroupBranchReset:
		return e("branch reset groups are not supported")
	case token.ErrGroupNamedCapture:
		if name := captureName(text); name != "" {
			return e("`" + text + "` is not a valid token").WithHelp("named capturing groups use the `:" + name + "(...)` syntax")
		}
		return e("`" + text + "` is not a valid token").WithHelp("named capturing groups use the `:name(...)` syntax")
	case token.ErrGroupPcreBackref:
		if name := captureName(text); name != "" {
			return e("`" + text + "` is not a valid token").WithHelp("backreferences use the `::" + name + "` syntax")
		}
		return e("`" + text + "` is not a valid token").WithHelp("backreferences use the `::name` syntax")
	case token.ErrGroupSubroutineCall:
		return e("recursion and subroutine calls are not supported")
	case token.ErrGroupComment:
		return e("`(?#` is not a valid token").WithHelp("comments start with `#` and go until the end of the line")
	case token.ErrGroupOther:
		return e("this group syntax is not supported")

	case token.ErrBackslashUnicode, token.ErrBackslashU4, token.ErrBackslashX2:
		if hex := hexPayload(text); hex != "" {
			return e("`" + text + "` is not a valid token").WithHelp("use `U+" + hex + "` instead")
		}
		return e("`" + text + "` is not a valid token")
	case token.ErrBackslashGK:
		if name := captureName(text); name != "" {
			return e("`" + text + "` is not a valid token").WithHelp("backreferences use the `::" + name + "` syntax")
		}
		return e("`" + text + "` is not a valid token").WithHelp("backreferences use the `::name` or `::number` syntax")
	case token.ErrBackslashProperty:
		name := propertyName(text)
		if name == "" {
			return e("`" + text + "` is not a valid token")
		}
		if strings.HasPrefix(text, `\P`) {
			return e("`" + text + "` is not a valid token").WithHelp("Unicode properties are written in brackets: `[!" + name + "]`")
		}
		return e("`" + text + "` is not a valid token").WithHelp("Unicode properties are written in brackets: `[" + name + "]`")
	case token.ErrBackslash:
		return backslashDiag(tk, text)
	}
	panic("internal error: unhandled lex error")
}

// backslashDiag handles single-letter escapes, each of which has a
// distinct replacement.
func backslashDiag(tk token.Token, text string) diag.Diagnostic {
	e := func(msg string) diag.Diagnostic {
		return diag.Errorf(diag.LexError, tk.Span, "%s", msg)
	}
	base := e("`" + text + "` is not a valid token")
	if len(text) < 2 {
		return base
	}
	payload := text[1:]
	if payload[0] >= '1' && payload[0] <= '9' {
		return base.WithHelp("backreferences use the `::" + payload + "` syntax")
	}
	replacements := map[byte]string{
		'b': "`%`",
		'B': "`!%`",
		'A': "`Start`",
		'z': "`End`",
		'Z': "`End`",
		'd': "`[digit]`",
		'D': "`[!digit]`",
		'w': "`[word]`",
		'W': "`[!word]`",
		's': "`[space]`",
		'S': "`[!space]`",
		'h': "`[horiz_space]`",
		'H': "`[!horiz_space]`",
		'v': "`[vert_space]`",
		'V': "`[!vert_space]`",
		'X': "`Grapheme`",
		'n': "`[n]`",
		'r': "`[r]`",
		't': "`[t]`",
		'f': "`[f]`",
		'a': "`[a]`",
		'e': "`[e]`",
		'0': "`U+0`",
	}
	if rep, ok := replacements[payload[0]]; ok && len(payload) == 1 {
		return base.WithHelp("use %s instead", rep)
	}
	return base.WithHelp("to match `%s` literally, use a string: '%s'", payload, payload)
}

// captureName extracts the name from forms like `(?<year>`, `(?P=year)`
// or `\k{year}`.
func captureName(text string) string {
	start := strings.IndexAny(text, "<{'=&")
	if start < 0 {
		// \g1 style numeric payloads
		if i := strings.IndexAny(text, "0123456789+-"); i >= 0 {
			return strings.TrimRight(text[i:], ")")
		}
		return ""
	}
	name := text[start+1:]
	name = strings.TrimRight(name, ">}')")
	if name == "" || strings.ContainsAny(name, "<>{}'") {
		return ""
	}
	return name
}

// hexPayload extracts the hex digits from `\u{FFF}`, `\u` with four
// hex digits, and `\xFF` forms.
func hexPayload(text string) string {
	if len(text) < 3 {
		return ""
	}
	payload := text[2:]
	payload = strings.TrimPrefix(payload, "{")
	payload = strings.TrimSuffix(payload, "}")
	if payload == "" {
		return ""
	}
	return strings.ToUpper(payload)
}

// propertyName extracts the name from `\p{Letter}` or `\pL`.
func propertyName(text string) string {
	if len(text) < 3 {
		return ""
	}
	payload := text[2:]
	payload = strings.TrimPrefix(payload, "{")
	payload = strings.TrimSuffix(payload, "}")
	return payload
}
