package ast

// Inspect traverses the tree rooted at e in depth-first preorder,
// calling f for each node. If f returns false the children of that
// node are skipped.
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	switch n := e.(type) {
	case *Literal, *CharClass, *Boundary, *Reference, *Range, *Grapheme, *Variable:
		// leaves
	case *Group:
		Inspect(n.Inner, f)
	case *Alternation:
		for _, b := range n.Branches {
			Inspect(b, f)
		}
	case *Concat:
		for _, item := range n.Items {
			Inspect(item, f)
		}
	case *Repetition:
		Inspect(n.Inner, f)
	case *Lookaround:
		Inspect(n.Inner, f)
	case *LetIn:
		Inspect(n.Value, f)
		Inspect(n.Body, f)
	case *Modifier:
		Inspect(n.Body, f)
	default:
		panic("internal error: unknown expression type")
	}
}
