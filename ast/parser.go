package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/treelex/ojson"
)

// Parse parses src as a single JSON document and returns the syntax tree.
// This is the direct path: it drives the tokenizer with its own explicit
// container stack and builds the tree in one pass, with no intermediate
// event stream.
//
// In strict mode (the default) any structural violation aborts the parse
// with a *ojson.ParseError and no tree is returned. In tolerant mode the
// recoverable conditions are repaired and recorded in Result.Errors.
// Lexical errors are *ojson.TokenError and resource-bound violations are
// *ojson.ResourceLimitError; both are always fatal.
func Parse(src string, opts *Options) (*Result, error) {
	p := &parser{src: src, opts: opts.normalized(), sc: ojson.NewScanner(src)}
	p.sc.SetMaxStringLen(p.opts.MaxStringLen)
	if err := p.parse(); err != nil {
		return nil, err
	}
	return &Result{Root: p.root, Errors: p.diags}, nil
}

// MustParse parses src and returns the root of the tree, panicking on error.
// It is intended for static fixtures and tests.
func MustParse(src string, opts *Options) Node {
	res, err := Parse(src, opts)
	if err != nil {
		panic("ast: " + err.Error())
	}
	return res.Root
}

// parse states; these mirror the structural machine of ojson.Stream.
type pstate byte

const (
	wantValue pstate = iota
	haveValue
	wantKey
	haveKey
)

// A pframe is one open container under construction. Exactly one of obj and
// arr is set. A closed container is attached to its parent and never touched
// again.
type pframe struct {
	obj *Object
	arr *Array

	member     *Member // open member awaiting its value (objects only)
	seg        string  // active child path segment
	index      int     // index of the current element (arrays only)
	afterComma bool    // a separating comma was the last structural token
	openPos    int     // offset of the opening brace or bracket
}

type parser struct {
	src  string
	sc   *ojson.Scanner
	opts Options

	state pstate
	stack []pframe
	root  Node
	diags []*ojson.ParseError
}

func (p *parser) parse() error {
	p.state = wantValue
	for {
		if err := p.sc.Next(); err == io.EOF {
			if p.state != haveValue || len(p.stack) != 0 {
				return p.syntaxErr("unexpected end of input")
			}
			return nil
		} else if err != nil {
			return err
		}

		tok := p.sc.Token()
		for again := true; again; {
			var err error
			switch p.state {
			case wantValue:
				again, err = p.onWantValue(tok)
			case haveValue:
				again, err = p.onHaveValue(tok)
			case wantKey:
				again, err = p.onWantKey(tok)
			case haveKey:
				again, err = p.onHaveKey(tok)
			}
			if err != nil {
				return err
			}
		}
	}
}

func (p *parser) onWantValue(tok ojson.Token) (bool, error) {
	if f := p.top(); f != nil && f.arr != nil && tok != ojson.RSquare {
		f.seg = "[" + strconv.Itoa(f.index) + "]"
	}
	switch tok {
	case ojson.LBrace, ojson.LSquare:
		if p.opts.LazyDepth > 0 && len(p.stack) >= p.opts.LazyDepth {
			lz, err := p.deferContainer()
			if err != nil {
				return false, err
			}
			p.attach(lz)
			p.state = haveValue
			return false, nil
		}
		if err := p.checkDepth(); err != nil {
			return false, err
		}
		if tok == ojson.LBrace {
			p.stack = append(p.stack, pframe{obj: newObjectIn(p.opts.Pool), openPos: p.sc.Offset()})
			p.state = wantKey
		} else {
			p.stack = append(p.stack, pframe{arr: newArrayIn(p.opts.Pool), openPos: p.sc.Offset()})
			p.state = wantValue
		}

	case ojson.Integer, ojson.Number, ojson.String, ojson.True, ojson.False, ojson.Null:
		n, err := p.scalar(tok)
		if err != nil {
			return false, err
		}
		p.attach(n)
		p.state = haveValue

	case ojson.RSquare:
		f := p.top()
		if f == nil || f.arr == nil {
			return false, p.syntaxErr("unexpected %v", tok)
		}
		if f.afterComma {
			if err := p.recoverErr("Trailing comma before ]", "skipped trailing comma"); err != nil {
				return false, err
			}
		}
		p.closeArray()

	default:
		return false, p.syntaxErr("unexpected %v", tok)
	}
	return false, nil
}

func (p *parser) onHaveValue(tok ojson.Token) (bool, error) {
	f := p.top()
	if f == nil {
		return false, p.syntaxErr("unexpected %v after top-level value", tok)
	}
	if f.obj != nil {
		switch tok {
		case ojson.Comma:
			f.member = nil
			f.seg = ""
			f.afterComma = true
			p.state = wantKey
		case ojson.RBrace:
			p.closeObject()
		case ojson.String:
			// A key with no separating comma before it.
			if err := p.recoverErr("Assumed missing comma", "inserted comma before member"); err != nil {
				return false, err
			}
			f.seg = ""
			f.member = nil
			p.state = wantKey
			return true, nil // reprocess the key token
		default:
			return false, p.syntaxErr("expected %v or %v, got %v", ojson.Comma, ojson.RBrace, tok)
		}
		return false, nil
	}

	switch tok {
	case ojson.Comma:
		f.index++
		f.seg = ""
		f.afterComma = true
		p.state = wantValue
	case ojson.RSquare:
		p.closeArray()
	case ojson.LBrace, ojson.LSquare, ojson.Integer, ojson.Number, ojson.String, ojson.True, ojson.False, ojson.Null:
		// A sibling value with no separating comma before it.
		f.seg = ""
		if err := p.recoverErr("Assumed missing comma", "inserted comma before element"); err != nil {
			return false, err
		}
		f.index++
		p.state = wantValue
		return true, nil // reprocess the value token
	default:
		return false, p.syntaxErr("expected %v or %v, got %v", ojson.Comma, ojson.RSquare, tok)
	}
	return false, nil
}

func (p *parser) onWantKey(tok ojson.Token) (bool, error) {
	f := p.top()
	switch tok {
	case ojson.String:
		key, err := ojson.Unquote(p.sc.Text())
		if err != nil {
			return false, p.syntaxErr("invalid key: %v", err)
		}
		if len(key) > p.opts.MaxKeyLen {
			return false, &ojson.ResourceLimitError{
				Limit: "key length", Max: p.opts.MaxKeyLen, Actual: len(key), Offset: p.sc.Offset(),
			}
		}
		m := &Member{Key: newStringIn(p.opts.Pool, p.sc.Span(), key)}
		f.obj.Members = append(f.obj.Members, m)
		f.member = m
		f.seg = "." + key
		f.afterComma = false
		p.state = haveKey

	case ojson.RBrace:
		if f.afterComma {
			if err := p.recoverErr("Trailing comma before }", "skipped trailing comma"); err != nil {
				return false, err
			}
		}
		p.closeObject()

	default:
		return false, p.syntaxErr("expected object key, got %v", tok)
	}
	return false, nil
}

func (p *parser) onHaveKey(tok ojson.Token) (bool, error) {
	switch tok {
	case ojson.Colon:
		p.state = wantValue
	case ojson.LBrace, ojson.LSquare, ojson.Integer, ojson.Number, ojson.String, ojson.True, ojson.False, ojson.Null:
		if err := p.recoverErr("Assumed missing colon", "inserted colon after key"); err != nil {
			return false, err
		}
		p.state = wantValue
		return true, nil // reprocess the value token
	default:
		return false, p.syntaxErr("expected %v, got %v", ojson.Colon, tok)
	}
	return false, nil
}

// scalar builds a leaf node from the current token.
func (p *parser) scalar(tok ojson.Token) (Node, error) {
	span := p.sc.Span()
	switch tok {
	case ojson.String:
		val, err := ojson.Unquote(p.sc.Text())
		if err != nil {
			return nil, p.syntaxErr("invalid string: %v", err)
		}
		return newStringIn(p.opts.Pool, span, val), nil
	case ojson.Integer, ojson.Number:
		n, err := newNumberIn(p.opts.Pool, p.opts.NumberMode, span, p.sc.Text(), tok == ojson.Integer)
		if err != nil {
			// The lexeme is well formed; the selected mode cannot hold it.
			return nil, &ojson.ParseError{
				Message: err.Error(), Offset: span.Pos, Path: p.path(), Kind: ojson.Validation,
			}
		}
		return n, nil
	case ojson.True, ojson.False:
		return newBoolIn(p.opts.Pool, span, tok == ojson.True), nil
	default: // ojson.Null
		return newNullIn(p.opts.Pool, span), nil
	}
}

// attach hands a finished node to its parent, or records it as the root.
func (p *parser) attach(n Node) {
	f := p.top()
	if f == nil {
		p.root = n
		return
	}
	if f.obj != nil {
		f.member.Value = n
	} else {
		f.arr.Values = append(f.arr.Values, n)
	}
}

func (p *parser) top() *pframe {
	if len(p.stack) == 0 {
		return nil
	}
	return &p.stack[len(p.stack)-1]
}

func (p *parser) checkDepth() error {
	if len(p.stack) >= p.opts.MaxDepth {
		return &ojson.ResourceLimitError{
			Limit: "depth", Max: p.opts.MaxDepth, Actual: len(p.stack) + 1, Offset: p.sc.Offset(),
		}
	}
	return nil
}

// closeObject seals the top object: its span is synthesized from its first
// and last member when it has any, and is otherwise a zero-length range
// anchored at the opening brace.
func (p *parser) closeObject() {
	f := p.top()
	obj := f.obj
	if ms := obj.Members; len(ms) > 0 {
		obj.span = ojson.Span{Pos: ms[0].Key.Span().Pos, End: ms[len(ms)-1].Value.Span().End}
	} else {
		obj.span = ojson.Span{Pos: f.openPos, End: f.openPos}
	}
	p.stack = p.stack[:len(p.stack)-1]
	p.attach(obj)
	p.state = haveValue
}

// closeArray seals the top array; span synthesis mirrors closeObject.
func (p *parser) closeArray() {
	f := p.top()
	arr := f.arr
	if vs := arr.Values; len(vs) > 0 {
		arr.span = ojson.Span{Pos: vs[0].Span().Pos, End: vs[len(vs)-1].Span().End}
	} else {
		arr.span = ojson.Span{Pos: f.openPos, End: f.openPos}
	}
	p.stack = p.stack[:len(p.stack)-1]
	p.attach(arr)
	p.state = haveValue
}

// deferContainer skips the balanced container starting at the current open
// token and returns a *Lazy placeholder holding its raw text. Only lexical
// well-formedness and bracket balance are checked here; structural checks
// happen when the placeholder is realized.
func (p *parser) deferContainer() (*Lazy, error) {
	openPos := p.sc.Offset()
	depth := 1
	for depth > 0 {
		if err := p.sc.Next(); err == io.EOF {
			return nil, p.syntaxErr("unexpected end of input")
		} else if err != nil {
			return nil, err
		}
		switch p.sc.Token() {
		case ojson.LBrace, ojson.LSquare:
			if len(p.stack)+depth >= p.opts.MaxDepth {
				return nil, &ojson.ResourceLimitError{
					Limit: "depth", Max: p.opts.MaxDepth, Actual: len(p.stack) + depth + 1, Offset: p.sc.Offset(),
				}
			}
			depth++
		case ojson.RBrace, ojson.RSquare:
			depth--
		}
	}
	span := ojson.Span{Pos: openPos, End: p.sc.Span().End}
	opts := p.opts
	opts.LazyDepth = 0 // realization parses the subtree completely
	return &Lazy{
		span: span,
		Raw:  p.src[span.Pos:span.End],
		Path: p.path(),
		opts: opts,
	}, nil
}

func (p *parser) path() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for i := range p.stack {
		sb.WriteString(p.stack[i].seg)
	}
	return sb.String()
}

// recoverErr records a recovery diagnostic in tolerant mode, or reports a
// fatal syntax error in strict mode.
func (p *parser) recoverErr(msg, action string) error {
	if !p.opts.Tolerant {
		return p.syntaxErr("%s", msg)
	}
	p.diags = append(p.diags, &ojson.ParseError{
		Message:  msg,
		Offset:   p.sc.Offset(),
		Path:     p.path(),
		Kind:     ojson.Recovery,
		Recovery: action,
	})
	return nil
}

func (p *parser) syntaxErr(msg string, args ...any) error {
	return &ojson.ParseError{
		Message: fmt.Sprintf(msg, args...),
		Offset:  p.sc.Offset(),
		Path:    p.path(),
		Kind:    ojson.Syntax,
	}
}
