package ast

import (
	"fmt"
	"io"
	"strings"
)

const indentSize = 2

type prettyPrinter struct {
	w     io.Writer
	depth int
	color bool
}

// NewPrettyPrinter returns a printer writing a human-readable tree
// rendering to w. Set color to emit ANSI escapes.
func NewPrettyPrinter(w io.Writer, color bool) *prettyPrinter {
	return &prettyPrinter{w: w, color: color}
}

func (p *prettyPrinter) print(format string, a ...interface{}) {
	fmt.Fprintf(p.w, format, a...)
}

func (p *prettyPrinter) println(format string, a ...interface{}) {
	p.print(strings.Repeat(" ", p.depth*indentSize))
	p.print(format+"\n", a...)
}

func (p *prettyPrinter) indent() {
	p.depth++
}

func (p *prettyPrinter) dedent() {
	p.depth--
	if p.depth < 0 {
		p.depth = 0
	}
}

func (p *prettyPrinter) colored(code, s string) string {
	if !p.color {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func (p *prettyPrinter) PrettyPrint(e Expr) {
	p.printExpr(e)
}

func (p *prettyPrinter) printExpr(e Expr) {
	switch n := e.(type) {
	case *Literal:
		p.println("%s %q", p.colored("33", "literal"), n.Text)
	case *CharClass:
		label := "class"
		if n.Negated {
			label = "class (negated)"
		}
		p.println("%s %s", p.colored("35", label), formatClassItems(n.Items))
	case *Group:
		switch n.Kind {
		case GroupNonCapturing:
			p.println("%s", p.colored("36", "group"))
		case GroupCapturing:
			if n.Name != "" {
				p.println("%s :%s", p.colored("36", "capture"), n.Name)
			} else {
				p.println("%s", p.colored("36", "capture"))
			}
		case GroupAtomic:
			p.println("%s", p.colored("36", "atomic group"))
		}
		p.indent()
		p.printExpr(n.Inner)
		p.dedent()
	case *Alternation:
		p.println("%s", p.colored("32", "alternation"))
		p.indent()
		for _, b := range n.Branches {
			p.printExpr(b)
		}
		p.dedent()
	case *Concat:
		p.println("%s", p.colored("32", "concat"))
		p.indent()
		for _, item := range n.Items {
			p.printExpr(item)
		}
		p.dedent()
	case *Repetition:
		upper := "inf"
		if n.Upper >= 0 {
			upper = fmt.Sprint(n.Upper)
		}
		mode := ""
		switch n.Mode {
		case RepetitionGreedy:
			mode = " greedy"
		case RepetitionLazy:
			mode = " lazy"
		}
		p.println("%s {%d, %s}%s", p.colored("32", "repeat"), n.Lower, upper, mode)
		p.indent()
		p.printExpr(n.Inner)
		p.dedent()
	case *Lookaround:
		kinds := map[LookaroundKind]string{
			LookAhead:     ">>",
			LookBehind:    "<<",
			NegLookAhead:  "!>>",
			NegLookBehind: "!<<",
		}
		p.println("%s %s", p.colored("34", "lookaround"), kinds[n.Kind])
		p.indent()
		p.printExpr(n.Inner)
		p.dedent()
	case *Boundary:
		kinds := map[BoundaryKind]string{
			StartOfString:   "Start",
			EndOfString:     "End",
			WordBoundary:    "%",
			NotWordBoundary: "!%",
		}
		p.println("%s %s", p.colored("34", "boundary"), kinds[n.Kind])
	case *Reference:
		switch n.Kind {
		case RefNumber:
			p.println("%s ::%d", p.colored("31", "reference"), n.Number)
		case RefNamed:
			p.println("%s ::%s", p.colored("31", "reference"), n.Name)
		case RefRelative:
			p.println("%s ::%+d", p.colored("31", "reference"), n.Number)
		}
	case *Range:
		p.println("%s %s-%s base %d", p.colored("35", "range"), n.Start, n.End, n.Base)
	case *Grapheme:
		p.println("%s", p.colored("35", "grapheme"))
	case *Variable:
		p.println("%s %s", p.colored("31", "variable"), n.Name)
	case *LetIn:
		p.println("%s %s =", p.colored("36", "let"), n.Name)
		p.indent()
		p.printExpr(n.Value)
		p.dedent()
		p.println("in")
		p.indent()
		p.printExpr(n.Body)
		p.dedent()
	case *Modifier:
		verb := "disable"
		if n.LazyOn {
			verb = "enable"
		}
		p.println("%s %s lazy", p.colored("36", "modifier"), verb)
		p.indent()
		p.printExpr(n.Body)
		p.dedent()
	default:
		panic("internal error: unknown expression type")
	}
}

func formatClassItems(items []ClassItem) string {
	var parts []string
	for _, item := range items {
		switch it := item.(type) {
		case ClassChar:
			parts = append(parts, fmt.Sprintf("%q", it.Rune))
		case ClassRange:
			parts = append(parts, fmt.Sprintf("%q-%q", it.Lo, it.Hi))
		case ClassShorthand:
			names := map[ShorthandKind]string{
				ShorthandWord:       "word",
				ShorthandDigit:      "digit",
				ShorthandSpace:      "space",
				ShorthandHorizSpace: "horiz_space",
				ShorthandVertSpace:  "vert_space",
				ShorthandCodepoint:  "codepoint",
			}
			name := names[it.Kind]
			if it.Negated {
				name = "!" + name
			}
			parts = append(parts, name)
		case ClassAscii:
			parts = append(parts, it.Name)
		case ClassProperty:
			name := it.Name
			if it.Negated {
				name = "!" + name
			}
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, " ")
}
