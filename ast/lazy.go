package ast

import "github.com/treelex/ojson"

// A Lazy is a deferred subtree: a placeholder recorded by the parser when
// the LazyDepth option cut off recursion, holding the raw substring of the
// container it stands for. Realize parses that substring on demand; the
// result is cached on the placeholder, so a Lazy is mutated at most once.
type Lazy struct {
	span ojson.Span
	Raw  string // the raw source text of the deferred container
	Path string // the structural location of the placeholder, e.g. $.rows[3]

	opts Options // the options of the originating parse

	realized bool
	node     Node
	diags    []*ojson.ParseError
}

func (l *Lazy) Span() ojson.Span { return l.span }
func (l *Lazy) astNode()         {}

// Realized returns the cached subtree, if Realize has succeeded before.
func (l *Lazy) Realized() (Node, bool) { return l.node, l.realized }

// Realize parses the placeholder's raw text as an independent document with
// the same options as the originating parse, and caches the resulting node.
// Subsequent calls return the identical cached node without re-parsing,
// including across errors in sibling placeholders. A failed realization is
// not cached.
func (l *Lazy) Realize() (Node, error) {
	if l.realized {
		return l.node, nil
	}
	res, err := Parse(l.Raw, &l.opts)
	if err != nil {
		return nil, err
	}
	l.node = res.Root
	l.diags = res.Errors
	l.realized = true
	return l.node, nil
}

// Diagnostics returns the recovery diagnostics recorded while realizing the
// placeholder, if the originating parse was tolerant.
func (l *Lazy) Diagnostics() []*ojson.ParseError { return l.diags }
