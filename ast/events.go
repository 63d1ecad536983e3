package ast

import (
	"fmt"

	"github.com/treelex/ojson"
)

// ParseEvents parses src by running the ojson.Stream event parser and
// assembling the tree from its events. It produces the same tree as Parse
// and exists to cross-check the direct path, which skips the event stream
// entirely. The LazyDepth option is a direct-path optimization and is
// ignored here.
func ParseEvents(src string, opts *Options) (*Result, error) {
	o := opts.normalized()
	sc := ojson.NewScanner(src)
	sc.SetMaxStringLen(o.MaxStringLen)
	st := ojson.NewStreamWithScanner(sc)
	st.AllowRecovery(o.Tolerant)
	st.SetMaxDepth(o.MaxDepth)
	st.SetMaxKeyLen(o.MaxKeyLen)

	h := &treeHandler{opts: o}
	if err := st.Parse(h); err != nil {
		return nil, err
	}
	return &Result{Root: h.root, Errors: st.Diagnostics()}, nil
}

// A treeHandler implements the ojson.Handler interface to construct syntax
// trees from parse events. The stream guarantees balanced Begin/End pairs,
// so the stack discipline here carries no error cases of its own.
type treeHandler struct {
	opts Options
	stk  []bframe
	root Node
}

type bframe struct {
	node    Node    // *Object or *Array under construction
	member  *Member // open member awaiting its value (objects only)
	openPos int
}

func (h *treeHandler) top() *bframe {
	if len(h.stk) == 0 {
		return nil
	}
	return &h.stk[len(h.stk)-1]
}

// attach hands a finished node to the open container, or records the root.
func (h *treeHandler) attach(n Node) {
	f := h.top()
	if f == nil {
		h.root = n
		return
	}
	switch c := f.node.(type) {
	case *Object:
		f.member.Value = n
	case *Array:
		c.Values = append(c.Values, n)
	}
}

func (h *treeHandler) BeginObject(loc ojson.Anchor) error {
	h.stk = append(h.stk, bframe{node: newObjectIn(h.opts.Pool), openPos: loc.Span().Pos})
	return nil
}

func (h *treeHandler) EndObject(loc ojson.Anchor) error {
	f := h.top()
	obj := f.node.(*Object)
	if ms := obj.Members; len(ms) > 0 {
		obj.span = ojson.Span{Pos: ms[0].Key.Span().Pos, End: ms[len(ms)-1].Value.Span().End}
	} else {
		obj.span = ojson.Span{Pos: f.openPos, End: f.openPos}
	}
	h.stk = h.stk[:len(h.stk)-1]
	h.attach(obj)
	return nil
}

func (h *treeHandler) BeginArray(loc ojson.Anchor) error {
	h.stk = append(h.stk, bframe{node: newArrayIn(h.opts.Pool), openPos: loc.Span().Pos})
	return nil
}

func (h *treeHandler) EndArray(loc ojson.Anchor) error {
	f := h.top()
	arr := f.node.(*Array)
	if vs := arr.Values; len(vs) > 0 {
		arr.span = ojson.Span{Pos: vs[0].Span().Pos, End: vs[len(vs)-1].Span().End}
	} else {
		arr.span = ojson.Span{Pos: f.openPos, End: f.openPos}
	}
	h.stk = h.stk[:len(h.stk)-1]
	h.attach(arr)
	return nil
}

func (h *treeHandler) BeginMember(loc ojson.Anchor) error {
	key, err := ojson.Unquote(loc.Text())
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	m := &Member{Key: newStringIn(h.opts.Pool, loc.Span(), key)}
	obj := h.top().node.(*Object)
	obj.Members = append(obj.Members, m)
	h.top().member = m
	return nil
}

func (h *treeHandler) EndMember(loc ojson.Anchor) error {
	h.top().member = nil
	return nil
}

func (h *treeHandler) Value(loc ojson.Anchor) error {
	span := loc.Span()
	switch tok := loc.Token(); tok {
	case ojson.String:
		val, err := ojson.Unquote(loc.Text())
		if err != nil {
			return fmt.Errorf("invalid string: %w", err)
		}
		h.attach(newStringIn(h.opts.Pool, span, val))
	case ojson.Integer, ojson.Number:
		n, err := newNumberIn(h.opts.Pool, h.opts.NumberMode, span, loc.Text(), tok == ojson.Integer)
		if err != nil {
			return &ojson.ParseError{
				Message: err.Error(), Offset: span.Pos, Path: loc.Path(), Kind: ojson.Validation,
			}
		}
		h.attach(n)
	case ojson.True, ojson.False:
		h.attach(newBoolIn(h.opts.Pool, span, tok == ojson.True))
	case ojson.Null:
		h.attach(newNullIn(h.opts.Pool, span))
	default:
		return fmt.Errorf("unknown value %v", tok)
	}
	return nil
}

func (h *treeHandler) EndOfInput(loc ojson.Anchor) {}
