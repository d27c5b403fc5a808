package source

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Empty returns the sentinel span used by diagnostics that have no
// location in the source.
func Empty() Span {
	return Span{Start: -1, End: -1}
}

func (s Span) IsEmpty() bool {
	return s.Start < 0 || s.End < s.Start
}

// Join returns the smallest span covering both s and other. Empty spans
// are identities.
func (s Span) Join(other Span) Span {
	if s.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return s
	}
	joined := s
	if other.Start < joined.Start {
		joined.Start = other.Start
	}
	if other.End > joined.End {
		joined.End = other.End
	}
	return joined
}

func (s Span) Len() int {
	if s.IsEmpty() {
		return 0
	}
	return s.End - s.Start
}

// Text slices src with the span. Returns "" for empty spans.
func (s Span) Text(src string) string {
	if s.IsEmpty() || s.End > len(src) {
		return ""
	}
	return src[s.Start:s.End]
}
