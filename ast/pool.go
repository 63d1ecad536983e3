package ast

import (
	"sync"

	"github.com/treelex/ojson"
)

// A Pool recycles node instances across parses. It keeps one free list per
// node kind; acquiring from an empty list falls back to allocation, and
// released nodes are cleared before reuse so no data from a previous tree
// can leak into the next one.
//
// Pooling is purely an allocation optimization: a parse produces the same
// observable result with or without one. A Pool is safe for concurrent use,
// though scoping one pool to one parse at a time is the cheaper pattern.
type Pool struct {
	mu      sync.Mutex
	objects []*Object
	arrays  []*Array
	strs    []*String
	numbers []*Number
	bools   []*Bool
	nulls   []*Null
}

// NewPool constructs an empty node pool.
func NewPool() *Pool { return new(Pool) }

func (p *Pool) object() *Object {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.objects); n > 0 {
		v := p.objects[n-1]
		p.objects = p.objects[:n-1]
		return v
	}
	return new(Object)
}

func (p *Pool) array() *Array {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.arrays); n > 0 {
		v := p.arrays[n-1]
		p.arrays = p.arrays[:n-1]
		return v
	}
	return new(Array)
}

func (p *Pool) str() *String {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.strs); n > 0 {
		v := p.strs[n-1]
		p.strs = p.strs[:n-1]
		return v
	}
	return new(String)
}

func (p *Pool) number() *Number {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.numbers); n > 0 {
		v := p.numbers[n-1]
		p.numbers = p.numbers[:n-1]
		return v
	}
	return new(Number)
}

func (p *Pool) bool_() *Bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.bools); n > 0 {
		v := p.bools[n-1]
		p.bools = p.bools[:n-1]
		return v
	}
	return new(Bool)
}

func (p *Pool) null() *Null {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.nulls); n > 0 {
		v := p.nulls[n-1]
		p.nulls = p.nulls[:n-1]
		return v
	}
	return new(Null)
}

// Release clears n and returns it to the free list for its kind. The caller
// must ensure nothing still references n. Collections are released shallowly;
// use ReleaseTree to recycle a whole tree. Lazy placeholders are never
// pooled.
func (p *Pool) Release(n Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch v := n.(type) {
	case *Object:
		for i := range v.Members {
			v.Members[i] = nil
		}
		v.Members = v.Members[:0]
		v.span = ojson.Span{}
		p.objects = append(p.objects, v)
	case *Array:
		for i := range v.Values {
			v.Values[i] = nil
		}
		v.Values = v.Values[:0]
		v.span = ojson.Span{}
		p.arrays = append(p.arrays, v)
	case *String:
		*v = String{}
		p.strs = append(p.strs, v)
	case *Number:
		*v = Number{}
		p.numbers = append(p.numbers, v)
	case *Bool:
		*v = Bool{}
		p.bools = append(p.bools, v)
	case *Null:
		*v = Null{}
		p.nulls = append(p.nulls, v)
	}
}

// ReleaseTree recursively releases every node of the tree rooted at n.
func (p *Pool) ReleaseTree(n Node) {
	switch v := n.(type) {
	case *Object:
		for _, m := range v.Members {
			p.Release(m.Key)
			p.ReleaseTree(m.Value)
		}
	case *Array:
		for _, e := range v.Values {
			p.ReleaseTree(e)
		}
	case *Lazy:
		return // never pooled; its cached subtree may still be shared
	}
	p.Release(n)
}

// Node construction helpers shared by the direct and event-path builders.
// Each takes a fresh instance from pool when one is configured and
// allocates otherwise.

func newObjectIn(pool *Pool) *Object {
	if pool != nil {
		return pool.object()
	}
	return new(Object)
}

func newArrayIn(pool *Pool) *Array {
	if pool != nil {
		return pool.array()
	}
	return new(Array)
}

func newStringIn(pool *Pool, span ojson.Span, val string) *String {
	s := &String{}
	if pool != nil {
		s = pool.str()
	}
	s.span, s.Value = span, val
	return s
}

func newNumberIn(pool *Pool, mode NumberMode, span ojson.Span, raw string, isInt bool) (*Number, error) {
	n := &Number{}
	if pool != nil {
		n = pool.number()
	}
	if err := n.resolve(raw, isInt, mode, span); err != nil {
		return nil, err
	}
	return n, nil
}

func newBoolIn(pool *Pool, span ojson.Span, val bool) *Bool {
	b := &Bool{}
	if pool != nil {
		b = pool.bool_()
	}
	b.span, b.Value = span, val
	return b
}

func newNullIn(pool *Pool, span ojson.Span) *Null {
	n := &Null{}
	if pool != nil {
		n = pool.null()
	}
	n.span = span
	return n
}
