// Package ast defines a lossless abstract syntax tree for JSON values, and
// parsers that construct syntax trees from JSON source.
//
// The tree preserves exactly what the source says: object members keep their
// source order, duplicate keys are retained rather than merged, every node
// carries the byte span it was parsed from, and numeric literals can be kept
// beyond float64 precision. Consumers switch over the closed set of node
// kinds: *Object, *Array, *String, *Number, *Bool, *Null, and *Lazy.
package ast

import (
	"github.com/treelex/ojson"
)

// A Node is a single JSON value in a syntax tree. The set of concrete types
// implementing Node is closed; a type switch over the seven kinds is
// exhaustive.
type Node interface {
	// Span reports the half-open byte range of the source text this node was
	// parsed from.
	Span() ojson.Span

	astNode() // restricts implementations to this package
}

// An Object is an ordered collection of key-value members. The member order
// is exactly the source order, including any duplicate keys: the parser
// never merges, deduplicates, or re-sorts members, even when keys look
// numeric.
type Object struct {
	span    ojson.Span
	Members []*Member
}

func (o *Object) Span() ojson.Span { return o.span }
func (o *Object) astNode()         {}

// Find returns the first member of o with the given key, or nil.
func (o *Object) Find(key string) *Member {
	for _, m := range o.Members {
		if m.Key.Value == key {
			return m
		}
	}
	return nil
}

// FindAll returns all members of o with the given key, in source order.
// Duplicate keys are preserved by the parser, so the result may have more
// than one element.
func (o *Object) FindAll(key string) []*Member {
	var ms []*Member
	for _, m := range o.Members {
		if m.Key.Value == key {
			ms = append(ms, m)
		}
	}
	return ms
}

// Keys returns the decoded member keys of o in source order, including
// duplicates.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.Members))
	for i, m := range o.Members {
		keys[i] = m.Key.Value
	}
	return keys
}

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   *String
	Value Node
}

// Span reports the span from the start of the member's key to the end of its
// value.
func (m *Member) Span() ojson.Span {
	return ojson.Span{Pos: m.Key.Span().Pos, End: m.Value.Span().End}
}

// An Array is an ordered sequence of values.
type Array struct {
	span   ojson.Span
	Values []Node
}

func (a *Array) Span() ojson.Span { return a.span }
func (a *Array) astNode()         {}

// A String is a string value. Value holds the decoded (unescaped) text; the
// raw lexeme is not retained, and can be recovered on demand with Raw given
// the original source.
type String struct {
	span  ojson.Span
	Value string
}

func (s *String) Span() ojson.Span { return s.span }
func (s *String) astNode()         {}

// Raw returns the raw (quoted, undecoded) lexeme of s by re-slicing the
// original source text. The caller must pass the same source the node was
// parsed from.
func (s *String) Raw(src string) string { return ojson.RawText(src, s.span) }

// A Bool is a boolean value.
type Bool struct {
	span  ojson.Span
	Value bool
}

func (b *Bool) Span() ojson.Span { return b.span }
func (b *Bool) astNode()         {}

// Null represents the null constant.
type Null struct {
	span ojson.Span
}

func (n *Null) Span() ojson.Span { return n.span }
func (n *Null) astNode()         {}
