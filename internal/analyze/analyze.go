// Package analyze implements the semantic pass. It expands variables,
// rewrites lazy modifiers, assigns capture group numbers, resolves
// references, and checks the expression against the allowed features
// and the target flavor.
package analyze

import (
	"github.com/agnivade/levenshtein"

	"github.com/pomsky-community/pomsky-go/internal/ast"
	"github.com/pomsky-community/pomsky-go/internal/diag"
	"github.com/pomsky-community/pomsky-go/internal/feature"
	"github.com/pomsky-community/pomsky-go/internal/flavor"
	"github.com/pomsky-community/pomsky-go/internal/source"
	"github.com/pomsky-community/pomsky-go/internal/uniprop"
)

type Options struct {
	Flavor flavor.Flavor
	// AllowedFeatures is the mask of permitted features, usually
	// feature.All.
	AllowedFeatures feature.Set
}

// Analyze rewrites expr into a form the emitter can lower directly:
// variables, let bindings and lazy modifiers are gone, every default
// repetition mode is made explicit, and every reference is numeric.
// The input expression is not modified. When the returned diagnostics
// contain an error, the returned expression must not be compiled.
func Analyze(expr ast.Expr, opts Options) (ast.Expr, []diag.Diagnostic) {
	a := &analyzer{opts: opts, spec: opts.Flavor.Spec(), names: map[string]int{}}
	out := a.expand(expr, nil, false)
	a.collect(out)
	a.resolve()
	a.check(out)
	return out, a.diags
}

type analyzer struct {
	opts  Options
	spec  flavor.Spec
	diags []diag.Diagnostic

	groups []*ast.Group
	names  map[string]int
	refs   []refSite
}

// refSite remembers how many capturing groups had been opened before
// the reference appeared, for resolving relative references.
type refSite struct {
	ref  *ast.Reference
	seen int
}

func (a *analyzer) errorf(kind diag.Kind, span source.Span, format string, args ...interface{}) {
	a.diags = append(a.diags, diag.Errorf(kind, span, format, args...))
}

func (a *analyzer) requireFeature(f feature.Set, span source.Span) {
	if !a.opts.AllowedFeatures.Has(f) {
		a.errorf(diag.DisabledFeature, span, "the `%s` feature is not allowed here", feature.Name(f))
	}
}

func (a *analyzer) unsupported(span source.Span, what string) {
	a.errorf(diag.Unsupported, span, "%s are not supported in the `%s` flavor", what, a.opts.Flavor)
}

// binding is one entry of the scope stack. expanding is set while the
// binding's own value is being expanded, to detect cycles.
type binding struct {
	name      string
	value     ast.Expr
	outer     *binding
	expanding bool
}

func (b *binding) lookup(name string) *binding {
	for ; b != nil; b = b.outer {
		if b.name == name {
			return b
		}
	}
	return nil
}

// expand returns a fresh copy of e with variables substituted and
// repetition modes made explicit. lazy is the state of the innermost
// enclosing `enable lazy` / `disable lazy` modifier.
func (a *analyzer) expand(e ast.Expr, env *binding, lazy bool) ast.Expr {
	switch n := e.(type) {
	case *ast.Literal:
		c := *n
		return &c
	case *ast.CharClass:
		items := make([]ast.ClassItem, len(n.Items))
		copy(items, n.Items)
		return &ast.CharClass{Items: items, Negated: n.Negated, Span: n.Span}
	case *ast.Group:
		return &ast.Group{Kind: n.Kind, Name: n.Name, Inner: a.expand(n.Inner, env, lazy), Span: n.Span}
	case *ast.Alternation:
		branches := make([]ast.Expr, len(n.Branches))
		for i, b := range n.Branches {
			branches[i] = a.expand(b, env, lazy)
		}
		if merged, ok := mergeClassBranches(branches, n.Span); ok {
			return merged
		}
		return &ast.Alternation{Branches: branches, Span: n.Span}
	case *ast.Concat:
		items := make([]ast.Expr, len(n.Items))
		for i, item := range n.Items {
			items[i] = a.expand(item, env, lazy)
		}
		return &ast.Concat{Items: items, Span: n.Span}
	case *ast.Repetition:
		mode := n.Mode
		if mode == ast.RepetitionDefault {
			if lazy {
				mode = ast.RepetitionLazy
			} else {
				mode = ast.RepetitionGreedy
			}
		}
		return &ast.Repetition{Inner: a.expand(n.Inner, env, lazy), Lower: n.Lower, Upper: n.Upper, Mode: mode, Span: n.Span}
	case *ast.Lookaround:
		return &ast.Lookaround{Kind: n.Kind, Inner: a.expand(n.Inner, env, lazy), Span: n.Span}
	case *ast.Boundary:
		c := *n
		return &c
	case *ast.Reference:
		c := *n
		return &c
	case *ast.Range:
		c := *n
		return &c
	case *ast.Grapheme:
		c := *n
		return &c
	case *ast.Variable:
		a.requireFeature(feature.Variables, n.Span)
		b := env.lookup(n.Name)
		if b == nil {
			d := diag.Errorf(diag.UnknownVariable, n.Span, "variable `%s` doesn't exist", n.Name)
			if s := suggest(n.Name, envNames(env)); s != "" {
				d = d.WithHelp("did you mean `%s`?", s)
			}
			a.diags = append(a.diags, d)
			return &ast.Literal{Span: n.Span}
		}
		if b.expanding {
			a.errorf(diag.CyclicVariable, n.Span, "variable `%s` is defined in terms of itself", n.Name)
			return &ast.Literal{Span: n.Span}
		}
		b.expanding = true
		out := a.expand(b.value, b, lazy)
		b.expanding = false
		return out
	case *ast.LetIn:
		a.requireFeature(feature.Variables, n.NameSpan)
		if env.lookup(n.Name) != nil {
			a.diags = append(a.diags, diag.Errorf(diag.DuplicateVariable, n.NameSpan,
				"variable `%s` is declared twice", n.Name).WithHelp("rename one of the variables"))
		}
		// the value is expanded lazily at each use site, so captures
		// inside it are numbered once per use
		b := &binding{name: n.Name, value: n.Value, outer: env}
		return a.expand(n.Body, b, lazy)
	case *ast.Modifier:
		if n.LazyOn {
			a.requireFeature(feature.LazyMode, n.Span)
		}
		return a.expand(n.Body, env, n.LazyOn)
	}
	panic("internal error: unexpected expression in expansion")
}

// mergeClassBranches folds an alternation whose branches are all
// non-negated character classes into one class over the union of their
// items.
func mergeClassBranches(branches []ast.Expr, span source.Span) (ast.Expr, bool) {
	var items []ast.ClassItem
	for _, b := range branches {
		c, ok := b.(*ast.CharClass)
		if !ok || c.Negated {
			return nil, false
		}
		items = append(items, c.Items...)
	}
	return &ast.CharClass{Items: items, Span: span}, true
}

func envNames(env *binding) []string {
	var names []string
	for b := env; b != nil; b = b.outer {
		names = append(names, b.name)
	}
	return names
}

// collect numbers the capturing groups in source order and records
// every reference together with its position in that order.
func (a *analyzer) collect(e ast.Expr) {
	ast.Inspect(e, func(e ast.Expr) bool {
		switch n := e.(type) {
		case *ast.Group:
			if n.Kind != ast.GroupCapturing {
				return true
			}
			a.groups = append(a.groups, n)
			if n.Name == "" {
				return true
			}
			if _, dup := a.names[n.Name]; dup {
				a.diags = append(a.diags, diag.Errorf(diag.ParseError, n.Span,
					"group name `%s` used multiple times", n.Name).
					WithHelp("give the groups different names"))
				return true
			}
			a.names[n.Name] = len(a.groups)
		case *ast.Reference:
			a.refs = append(a.refs, refSite{ref: n, seen: len(a.groups)})
		}
		return true
	})
}

// resolve rewrites every reference into a numeric one and validates it
// against the group count.
func (a *analyzer) resolve() {
	total := len(a.groups)
	for _, site := range a.refs {
		ref := site.ref
		switch ref.Kind {
		case ast.RefNumber:
			if ref.Number > total {
				d := diag.Errorf(diag.UnknownReference, ref.Span, "group number %d doesn't exist", ref.Number)
				switch total {
				case 0:
					d = d.WithHelp("there are no capturing groups")
				case 1:
					d = d.WithHelp("there is only one capturing group")
				default:
					d = d.WithHelp("there are only %d capturing groups", total)
				}
				a.diags = append(a.diags, d)
			}
		case ast.RefNamed:
			num, ok := a.names[ref.Name]
			if !ok {
				d := diag.Errorf(diag.UnknownGroupName, ref.Span, "group `%s` doesn't exist", ref.Name)
				if s := suggest(ref.Name, groupNames(a.names)); s != "" {
					d = d.WithHelp("did you mean `%s`?", s)
				}
				a.diags = append(a.diags, d)
				continue
			}
			ref.Kind = ast.RefNumber
			ref.Number = num
		case ast.RefRelative:
			var target int
			if ref.Number < 0 {
				target = site.seen + ref.Number + 1
				if target < 1 {
					a.errorf(diag.UnknownReference, ref.Span,
						"relative reference `%d` points before the first capturing group", ref.Number)
					continue
				}
			} else {
				target = site.seen + ref.Number
				if target > total {
					a.errorf(diag.UnknownReference, ref.Span,
						"relative reference `+%d` points past the last capturing group", ref.Number)
					continue
				}
			}
			ref.Kind = ast.RefNumber
			ref.Number = target
		}
	}
}

// check accumulates the feature set and verifies flavor compatibility.
// It runs to completion even in the presence of earlier errors.
func (a *analyzer) check(e ast.Expr) {
	ast.Inspect(e, func(e ast.Expr) bool {
		switch n := e.(type) {
		case *ast.Grapheme:
			a.requireFeature(feature.Grapheme, n.Span)
			if !a.spec.Grapheme {
				a.unsupported(n.Span, "grapheme clusters")
			}
		case *ast.Group:
			switch n.Kind {
			case ast.GroupCapturing:
				if n.Name != "" {
					a.requireFeature(feature.NamedGroups, n.Span)
				} else {
					a.requireFeature(feature.NumberedGroups, n.Span)
				}
			case ast.GroupAtomic:
				a.requireFeature(feature.AtomicGroups, n.Span)
				if !a.spec.AtomicGroups {
					a.unsupported(n.Span, "atomic groups")
				}
			}
		case *ast.Reference:
			a.requireFeature(feature.References, n.Span)
			if !a.spec.Backreferences {
				a.unsupported(n.Span, "backreferences")
			}
		case *ast.Repetition:
			if n.Mode == ast.RepetitionLazy {
				a.requireFeature(feature.LazyMode, n.Span)
			}
		case *ast.Range:
			a.requireFeature(feature.Ranges, n.Span)
		case *ast.Lookaround:
			switch n.Kind {
			case ast.LookAhead, ast.NegLookAhead:
				a.requireFeature(feature.Lookahead, n.Span)
			case ast.LookBehind, ast.NegLookBehind:
				a.requireFeature(feature.Lookbehind, n.Span)
			}
			if !a.spec.Lookaround {
				a.unsupported(n.Span, "lookaround assertions")
				return true
			}
			if (n.Kind == ast.LookBehind || n.Kind == ast.NegLookBehind) && !a.spec.VariableLookbehind {
				if !exprWidth(n.Inner).fixed() {
					a.diags = append(a.diags, diag.Errorf(diag.LookbehindNotFixedWidth, n.Span,
						"lookbehind must match a fixed number of characters in the `%s` flavor", a.opts.Flavor).
						WithHelp("remove unbounded repetitions and make all alternatives the same length"))
				}
			}
		case *ast.Boundary:
			a.requireFeature(feature.Boundaries, n.Span)
			if (n.Kind == ast.WordBoundary || n.Kind == ast.NotWordBoundary) && !a.spec.UnicodeWordBoundary {
				a.diags = append(a.diags, diag.Warningf(diag.NonUnicodeWordBoundary, n.Span,
					"word boundaries are not Unicode-aware in the `%s` flavor", a.opts.Flavor).
					WithHelp("only ASCII letters, digits and `_` count as word characters here"))
			}
		case *ast.CharClass:
			for _, item := range n.Items {
				switch it := item.(type) {
				case ast.ClassProperty:
					a.checkProperty(it)
				case ast.ClassShorthand:
					// `!word` combined with other class members has no
					// expansion where \w is ASCII-only
					if it.Kind == ast.ShorthandWord && it.Negated &&
						!a.spec.UnicodeWordChars && len(n.Items) > 1 {
						a.unsupported(it.Span, "negated `word` shorthands in a larger character class")
					}
				}
			}
		}
		return true
	})
}

func (a *analyzer) checkProperty(p ast.ClassProperty) {
	prop, ok := uniprop.Lookup(p.Name)
	if !ok {
		d := diag.Errorf(diag.UnknownProperty, p.Span, "`%s` is not a known Unicode property", p.Name)
		if s := suggest(p.Name, uniprop.Names()); s != "" {
			d = d.WithHelp("did you mean `%s`?", s)
		}
		a.diags = append(a.diags, d)
		return
	}
	if !a.spec.UnicodeProperties {
		a.unsupported(p.Span, "Unicode properties")
		return
	}
	if prop.Kind == uniprop.Script && !a.spec.UnicodeScripts {
		a.unsupported(p.Span, "Unicode script properties")
	}
	if prop.Kind == uniprop.Block && !a.spec.UnicodeBlocks {
		a.unsupported(p.Span, "Unicode block properties")
	}
}

func groupNames(names map[string]int) []string {
	var out []string
	for name := range names {
		out = append(out, name)
	}
	return out
}

// suggest returns the candidate closest to name, or "" when nothing is
// within edit distance 3.
func suggest(name string, candidates []string) string {
	best, bestDist := "", 4
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
