// Package ast defines the syntax tree of the pomsky language.
package ast

import (
	"github.com/pomsky-community/pomsky-go/internal/source"
)

// Expr represents one construct of a pomsky expression, like a string
// literal, a character class, or a capturing group.
type Expr interface {
	Pos() source.Span
}

// Literal matches its text verbatim.
type Literal struct {
	Text string
	Span source.Span
}

func (e *Literal) Pos() source.Span { return e.Span }

// CharClass matches any single code point in (or, when negated, not
// in) the union of its items. The parser guarantees Items is non-empty.
type CharClass struct {
	Items   []ClassItem
	Negated bool
	Span    source.Span
}

func (e *CharClass) Pos() source.Span { return e.Span }

type GroupKind int

const (
	GroupNonCapturing GroupKind = iota
	GroupCapturing
	GroupAtomic
)

// Group wraps an inner expression. Name is set only for named
// capturing groups.
type Group struct {
	Kind  GroupKind
	Name  string
	Inner Expr
	Span  source.Span
}

func (e *Group) Pos() source.Span { return e.Span }

// Alternation holds at least two branches. A single branch is
// represented by the branch expression itself.
type Alternation struct {
	Branches []Expr
	Span     source.Span
}

func (e *Alternation) Pos() source.Span { return e.Span }

// Concat holds at least two juxtaposed items.
type Concat struct {
	Items []Expr
	Span  source.Span
}

func (e *Concat) Pos() source.Span { return e.Span }

type RepetitionMode int

const (
	RepetitionDefault RepetitionMode = iota
	RepetitionGreedy
	RepetitionLazy
)

// Repetition repeats Inner between Lower and Upper times. Upper of -1
// means unbounded. Lower <= Upper holds whenever Upper is set.
type Repetition struct {
	Inner Expr
	Lower int
	Upper int
	Mode  RepetitionMode
	Span  source.Span
}

func (e *Repetition) Pos() source.Span { return e.Span }

type LookaroundKind int

const (
	LookAhead LookaroundKind = iota
	LookBehind
	NegLookAhead
	NegLookBehind
)

type Lookaround struct {
	Kind  LookaroundKind
	Inner Expr
	Span  source.Span
}

func (e *Lookaround) Pos() source.Span { return e.Span }

type BoundaryKind int

const (
	StartOfString BoundaryKind = iota
	EndOfString
	WordBoundary
	NotWordBoundary
)

type Boundary struct {
	Kind BoundaryKind
	Span source.Span
}

func (e *Boundary) Pos() source.Span { return e.Span }

type RefKind int

const (
	RefNumber RefKind = iota
	RefNamed
	RefRelative
)

// Reference points at a capturing group by number, name, or signed
// offset relative to the reference's own position.
type Reference struct {
	Kind   RefKind
	Number int
	Name   string
	Span   source.Span
}

func (e *Reference) Pos() source.Span { return e.Span }

// Range matches the decimal (or other base) integers between Start and
// End inclusive, without leading zeros. Start and End are digit strings
// in the given base, Start <= End numerically. MaxDigits bounds the
// length of End.
type Range struct {
	Start     string
	End       string
	Base      int
	MaxDigits int
	Span      source.Span
}

func (e *Range) Pos() source.Span { return e.Span }

// Grapheme matches one extended grapheme cluster.
type Grapheme struct {
	Span source.Span
}

func (e *Grapheme) Pos() source.Span { return e.Span }

// Variable is a use of a let binding, replaced by its value during the
// semantic pass.
type Variable struct {
	Name string
	Span source.Span
}

func (e *Variable) Pos() source.Span { return e.Span }

// LetIn scopes the binding Name = Value over Body.
type LetIn struct {
	Name     string
	NameSpan source.Span
	Value    Expr
	Body     Expr
	Span     source.Span
}

func (e *LetIn) Pos() source.Span { return e.Span }

// Modifier applies `enable lazy;` or `disable lazy;` to Body.
type Modifier struct {
	LazyOn bool
	Body   Expr
	Span   source.Span
}

func (e *Modifier) Pos() source.Span { return e.Span }

var (
	_ Expr = (*Literal)(nil)
	_ Expr = (*CharClass)(nil)
	_ Expr = (*Group)(nil)
	_ Expr = (*Alternation)(nil)
	_ Expr = (*Concat)(nil)
	_ Expr = (*Repetition)(nil)
	_ Expr = (*Lookaround)(nil)
	_ Expr = (*Boundary)(nil)
	_ Expr = (*Reference)(nil)
	_ Expr = (*Range)(nil)
	_ Expr = (*Grapheme)(nil)
	_ Expr = (*Variable)(nil)
	_ Expr = (*LetIn)(nil)
	_ Expr = (*Modifier)(nil)
)

// ClassItem is one member of a character class.
type ClassItem interface {
	ItemPos() source.Span
}

// ClassChar is a single code point.
type ClassChar struct {
	Rune rune
	Span source.Span
}

func (i ClassChar) ItemPos() source.Span { return i.Span }

// ClassRange is an inclusive code point range with Lo <= Hi.
type ClassRange struct {
	Lo   rune
	Hi   rune
	Span source.Span
}

func (i ClassRange) ItemPos() source.Span { return i.Span }

type ShorthandKind int

const (
	ShorthandWord ShorthandKind = iota
	ShorthandDigit
	ShorthandSpace
	ShorthandHorizSpace
	ShorthandVertSpace
	ShorthandCodepoint
)

// ClassShorthand is one of the named classes like `word` or `digit`.
// Negated applies to this item alone, as in `[!digit]`.
type ClassShorthand struct {
	Kind    ShorthandKind
	Negated bool
	Span    source.Span
}

func (i ClassShorthand) ItemPos() source.Span { return i.Span }

// ClassAscii is a POSIX-style class, named `ascii` or `ascii_<name>`.
type ClassAscii struct {
	Name string
	Span source.Span
}

func (i ClassAscii) ItemPos() source.Span { return i.Span }

// ClassProperty is a Unicode general category, script, or block, named
// by its identifier as written in the source.
type ClassProperty struct {
	Name    string
	Negated bool
	Span    source.Span
}

func (i ClassProperty) ItemPos() source.Span { return i.Span }

var (
	_ ClassItem = ClassChar{}
	_ ClassItem = ClassRange{}
	_ ClassItem = ClassShorthand{}
	_ ClassItem = ClassAscii{}
	_ ClassItem = ClassProperty{}
)
