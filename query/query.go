// Package query implements path navigation over parsed JSON: walking a
// built syntax tree, extracting the source range of a sub-value directly
// from the text, and re-parsing a target subtree independently of the rest
// of the document.
//
// Navigation uses the jpath subset of JSONPath. A path that is syntactically
// valid but does not resolve (a property on a non-object, an absent key, an
// out-of-range index) is a miss, not an error.
package query

import (
	"io"

	"github.com/pkg/errors"

	"github.com/treelex/ojson"
	"github.com/treelex/ojson/ast"
	"github.com/treelex/ojson/jpath"
)

// Eval walks the tree rooted at root along expr and returns the target
// node. Lazy placeholders encountered on the walk, including the final
// target, are realized transparently; a realization failure is reported as
// an error.
func Eval(root ast.Node, expr jpath.Expr) (ast.Node, bool, error) {
	cur := root
	for _, step := range expr {
		node, err := materialize(cur)
		if err != nil {
			return nil, false, err
		}
		switch step.Op {
		case jpath.Member:
			obj, ok := node.(*ast.Object)
			if !ok {
				return nil, false, nil
			}
			m := obj.Find(step.Name)
			if m == nil {
				return nil, false, nil
			}
			cur = m.Value
		case jpath.Index:
			arr, ok := node.(*ast.Array)
			if !ok {
				return nil, false, nil
			}
			if step.Index >= len(arr.Values) {
				return nil, false, nil
			}
			cur = arr.Values[step.Index]
		}
	}
	node, err := materialize(cur)
	if err != nil {
		return nil, false, err
	}
	return node, true, nil
}

// Navigate parses path and evaluates it against root. The only error cases
// are malformed path syntax and a failed lazy realization; an unresolved
// path is a miss.
func Navigate(root ast.Node, path string) (ast.Node, bool, error) {
	expr, err := jpath.Parse(path)
	if err != nil {
		return nil, false, err
	}
	return Eval(root, expr)
}

// ParseSubtree locates the value at path directly in the source text and
// parses the sliced substring as an independent document. The returned tree
// is standalone: its spans are relative to the slice, and it shares no
// nodes with any other parse of src.
func ParseSubtree(src, path string, opts *ast.Options) (ast.Node, bool, error) {
	span, ok, err := SliceRange(src, path)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	res, err := ast.Parse(src[span.Pos:span.End], opts)
	if err != nil {
		return nil, false, errors.Wrapf(err, "parsing subtree at %s", path)
	}
	return res.Root, true, nil
}

// SliceRange returns the source span of the value at path, found by walking
// tokens from the start of src without building a tree. Values off the
// navigation spine are only bracket-matched, so the walk costs tokenization
// of the prefix of src up to the target, not a full parse.
//
// The spine of the walk must be structurally clean JSON; recoverable
// mistakes inside skipped values surface only if that region is later
// parsed.
func SliceRange(src, path string) (ojson.Span, bool, error) {
	expr, err := jpath.Parse(path)
	if err != nil {
		return ojson.Span{}, false, err
	}

	sc := ojson.NewScanner(src)
	sc.SetMaxStringLen(ojson.DefaultMaxStringLen)
	tok, err := advance(sc)
	if err != nil {
		return ojson.Span{}, false, err
	}

	for _, step := range expr {
		switch step.Op {
		case jpath.Member:
			tok, err = enterMember(sc, tok, step.Name)
		case jpath.Index:
			tok, err = enterIndex(sc, tok, step.Index)
		}
		if err != nil {
			return ojson.Span{}, false, err
		}
		if tok == ojson.Invalid {
			return ojson.Span{}, false, nil // miss
		}
	}

	// The scanner is positioned on the first token of the target value.
	if tok != ojson.LBrace && tok != ojson.LSquare {
		return sc.Span(), true, nil
	}
	open := sc.Offset()
	if err := skipBalanced(sc); err != nil {
		return ojson.Span{}, false, err
	}
	return ojson.Span{Pos: open, End: sc.Span().End}, true, nil
}

// enterMember positions the scanner on the first token of the value for key
// name within the object opening at the current token. It returns
// ojson.Invalid for a miss.
func enterMember(sc *ojson.Scanner, tok ojson.Token, name string) (ojson.Token, error) {
	if tok != ojson.LBrace {
		return ojson.Invalid, nil // property lookup on a non-object
	}
	for {
		tok, err := advance(sc)
		if err != nil {
			return 0, err
		}
		if tok == ojson.RBrace {
			return ojson.Invalid, nil // key not present
		}
		if tok != ojson.String {
			return 0, spineError(sc, "expected object key, got %v", tok)
		}
		key, err := ojson.Unquote(sc.Text())
		if err != nil {
			return 0, spineError(sc, "invalid key: %v", err)
		}
		if tok, err = advance(sc); err != nil {
			return 0, err
		} else if tok != ojson.Colon {
			return 0, spineError(sc, "expected %v, got %v", ojson.Colon, tok)
		}
		if tok, err = advance(sc); err != nil {
			return 0, err
		}
		if key == name {
			// First occurrence wins, matching Object.Find on duplicates.
			return tok, nil
		}
		if err := skipFrom(sc, tok); err != nil {
			return 0, err
		}
		if tok, err = advance(sc); err != nil {
			return 0, err
		} else if tok == ojson.RBrace {
			return ojson.Invalid, nil
		} else if tok != ojson.Comma {
			return 0, spineError(sc, "expected %v or %v, got %v", ojson.Comma, ojson.RBrace, tok)
		}
	}
}

// enterIndex positions the scanner on the first token of element idx of the
// array opening at the current token. It returns ojson.Invalid for a miss.
func enterIndex(sc *ojson.Scanner, tok ojson.Token, idx int) (ojson.Token, error) {
	if tok != ojson.LSquare {
		return ojson.Invalid, nil // index lookup on a non-array
	}
	tok, err := advance(sc)
	if err != nil {
		return 0, err
	}
	if tok == ojson.RSquare {
		return ojson.Invalid, nil
	}
	for i := 0; ; i++ {
		if i == idx {
			return tok, nil
		}
		if err := skipFrom(sc, tok); err != nil {
			return 0, err
		}
		if tok, err = advance(sc); err != nil {
			return 0, err
		} else if tok == ojson.RSquare {
			return ojson.Invalid, nil // index out of range
		} else if tok != ojson.Comma {
			return 0, spineError(sc, "expected %v or %v, got %v", ojson.Comma, ojson.RSquare, tok)
		}
		if tok, err = advance(sc); err != nil {
			return 0, err
		}
	}
}

// skipFrom consumes the remainder of the value whose first token is tok.
func skipFrom(sc *ojson.Scanner, tok ojson.Token) error {
	if tok == ojson.LBrace || tok == ojson.LSquare {
		return skipBalanced(sc)
	}
	return nil // scalars are a single token
}

// skipBalanced consumes tokens until the container opening at the current
// token is balanced, leaving the scanner on the closing token.
func skipBalanced(sc *ojson.Scanner) error {
	depth := 1
	for depth > 0 {
		tok, err := advance(sc)
		if err != nil {
			return err
		}
		switch tok {
		case ojson.LBrace, ojson.LSquare:
			depth++
		case ojson.RBrace, ojson.RSquare:
			depth--
		}
	}
	return nil
}

func advance(sc *ojson.Scanner) (ojson.Token, error) {
	if err := sc.Next(); err == io.EOF {
		return 0, &ojson.ParseError{
			Message: "unexpected end of input",
			Offset:  sc.Offset(),
			Kind:    ojson.Syntax,
		}
	} else if err != nil {
		return 0, err
	}
	return sc.Token(), nil
}

func spineError(sc *ojson.Scanner, msg string, args ...any) error {
	return &ojson.ParseError{
		Message: errors.Errorf(msg, args...).Error(),
		Offset:  sc.Offset(),
		Kind:    ojson.Syntax,
	}
}

// materialize realizes a lazy placeholder, or returns any other node as is.
func materialize(n ast.Node) (ast.Node, error) {
	lz, ok := n.(*ast.Lazy)
	if !ok {
		return n, nil
	}
	node, err := lz.Realize()
	if err != nil {
		return nil, errors.Wrapf(err, "realizing %s", lz.Path)
	}
	return node, nil
}
