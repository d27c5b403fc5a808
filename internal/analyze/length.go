package analyze

import (
	"unicode/utf8"

	"github.com/pomsky-community/pomsky-go/internal/ast"
)

// width is the number of code points an expression can match. A max of
// -1 means unbounded (or unknown, as for backreferences).
type width struct {
	min, max int
}

func (w width) fixed() bool { return w.max >= 0 && w.min == w.max }

func (w width) unbounded() bool { return w.max < 0 }

// exprWidth computes the match width bottom-up. It is only called on
// rewritten trees, so variables and modifiers cannot occur.
func exprWidth(e ast.Expr) width {
	switch n := e.(type) {
	case *ast.Literal:
		l := utf8.RuneCountInString(n.Text)
		return width{l, l}
	case *ast.CharClass:
		return width{1, 1}
	case *ast.Grapheme:
		return width{1, -1}
	case *ast.Boundary, *ast.Lookaround:
		return width{0, 0}
	case *ast.Group:
		return exprWidth(n.Inner)
	case *ast.Alternation:
		w := exprWidth(n.Branches[0])
		for _, b := range n.Branches[1:] {
			bw := exprWidth(b)
			if bw.min < w.min {
				w.min = bw.min
			}
			if bw.unbounded() || w.unbounded() {
				w.max = -1
			} else if bw.max > w.max {
				w.max = bw.max
			}
		}
		return w
	case *ast.Concat:
		var w width
		for _, item := range n.Items {
			iw := exprWidth(item)
			w.min += iw.min
			if iw.unbounded() || w.unbounded() {
				w.max = -1
			} else {
				w.max += iw.max
			}
		}
		return w
	case *ast.Repetition:
		iw := exprWidth(n.Inner)
		w := width{iw.min * n.Lower, 0}
		if n.Upper < 0 || iw.unbounded() {
			if iw.max == 0 && !iw.unbounded() {
				return width{0, 0}
			}
			w.max = -1
		} else {
			w.max = iw.max * n.Upper
		}
		return w
	case *ast.Reference:
		// the referenced group's match length is not known statically
		return width{0, -1}
	case *ast.Range:
		return width{rangeDigits(n.Start), rangeDigits(n.End)}
	}
	panic("internal error: unexpected expression in width analysis")
}

// rangeDigits counts the digits of a range bound after stripping leading
// zeros, matching the normalization the emitter applies.
func rangeDigits(s string) int {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return len(s) - i
}
