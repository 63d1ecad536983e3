package ojson

import "fmt"

// A Span describes a contiguous half-open range of a source input.
type Span struct {
	Pos int // the start offset, 0-based, inclusive
	End int // the end offset, 0-based, exclusive
}

// Len reports the length of the span in bytes.
func (s Span) Len() int { return s.End - s.Pos }

func (s Span) String() string { return fmt.Sprintf("%d..%d", s.Pos, s.End) }

// RawText returns the substring of src covered by span. Nodes that do not
// retain their raw lexeme use this to recover it on demand, provided the
// caller still holds the original source text. It returns "" if the span
// does not lie within src.
func RawText(src string, span Span) string {
	if span.Pos < 0 || span.End < span.Pos || span.End > len(src) {
		return ""
	}
	return src[span.Pos:span.End]
}
