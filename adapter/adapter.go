// Package adapter exposes a uniform read-only view over parsed JSON data,
// so that a consumer such as a tree renderer does not care which engine
// produced it. The view works over two tree shapes:
//
//   - an ast.Node syntax tree, which preserves source order, duplicate
//     keys, spans, and lossless numbers; and
//   - a plain native-decoded value tree (map[string]any, []any, string,
//     float64, json.Number, bool, nil), whose object key order is
//     unspecified and is therefore presented sorted for determinism.
//
// The difference in key order between the two engines is deliberate and
// observable: it is the reason the syntax-tree engine exists.
package adapter

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/treelex/ojson"
	"github.com/treelex/ojson/ast"
)

// Kind labels for Meta.Kind.
const (
	KindObject  = "object"
	KindArray   = "array"
	KindString  = "string"
	KindNumber  = "number"
	KindBoolean = "boolean"
	KindNull    = "null"
	KindInvalid = "invalid"
)

// Meta describes a single value for presentation.
type Meta struct {
	Kind        string      // one of the Kind labels
	Display     string      // scalar display text; "" for containers
	HasChildren bool        // true for a non-empty object or array
	ChildCount  int         // number of members or elements
	Span        *ojson.Span // source range, syntax-tree values only
	Raw         string      // raw lexeme when held by the node itself
}

// A Child is one member or element of a container value, in presentation
// order. Key is nil for array elements.
type Child struct {
	Key   *string
	Index int
	Value any
}

// Describe reports presentation metadata for v, which may be an ast.Node or
// a native value. A lazy placeholder is realized first; if realization
// fails the value is reported as KindInvalid.
func Describe(v any) Meta {
	switch t := v.(type) {
	case *ast.Lazy:
		node, err := t.Realize()
		if err != nil {
			return Meta{Kind: KindInvalid, Raw: t.Raw, Span: spanOf(t)}
		}
		return Describe(node)
	case *ast.Object:
		return Meta{
			Kind:        KindObject,
			HasChildren: len(t.Members) > 0,
			ChildCount:  len(t.Members),
			Span:        spanOf(t),
		}
	case *ast.Array:
		return Meta{
			Kind:        KindArray,
			HasChildren: len(t.Values) > 0,
			ChildCount:  len(t.Values),
			Span:        spanOf(t),
		}
	case *ast.String:
		return Meta{Kind: KindString, Display: ojson.Quote(t.Value), Span: spanOf(t)}
	case *ast.Number:
		return Meta{Kind: KindNumber, Display: t.Display(), Span: spanOf(t), Raw: t.Raw()}
	case *ast.Bool:
		return Meta{Kind: KindBoolean, Display: strconv.FormatBool(t.Value), Span: spanOf(t)}
	case *ast.Null:
		return Meta{Kind: KindNull, Display: "null", Span: spanOf(t)}

	case map[string]any:
		return Meta{Kind: KindObject, HasChildren: len(t) > 0, ChildCount: len(t)}
	case []any:
		return Meta{Kind: KindArray, HasChildren: len(t) > 0, ChildCount: len(t)}
	case string:
		return Meta{Kind: KindString, Display: ojson.Quote(t)}
	case float64:
		return Meta{Kind: KindNumber, Display: strconv.FormatFloat(t, 'g', -1, 64)}
	case json.Number:
		return Meta{Kind: KindNumber, Display: t.String(), Raw: t.String()}
	case bool:
		return Meta{Kind: KindBoolean, Display: strconv.FormatBool(t)}
	case nil:
		return Meta{Kind: KindNull, Display: "null"}
	}
	return Meta{Kind: KindInvalid}
}

// Children returns the members or elements of v in presentation order:
// source order for syntax-tree objects (duplicates included), sorted key
// order for native maps. Scalars have no children.
func Children(v any) []Child {
	switch t := v.(type) {
	case *ast.Lazy:
		node, err := t.Realize()
		if err != nil {
			return nil
		}
		return Children(node)
	case *ast.Object:
		cs := make([]Child, len(t.Members))
		for i, m := range t.Members {
			key := m.Key.Value
			cs[i] = Child{Key: &key, Index: i, Value: m.Value}
		}
		return cs
	case *ast.Array:
		cs := make([]Child, len(t.Values))
		for i, e := range t.Values {
			cs[i] = Child{Index: i, Value: e}
		}
		return cs

	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cs := make([]Child, len(keys))
		for i, k := range keys {
			key := k
			cs[i] = Child{Key: &key, Index: i, Value: t[k]}
		}
		return cs
	case []any:
		cs := make([]Child, len(t))
		for i, e := range t {
			cs[i] = Child{Index: i, Value: e}
		}
		return cs
	}
	return nil
}

// ChildByKey returns the child of v selected by key, which must be a string
// (object member lookup, first match for duplicate keys) or an int (array
// index). It reports false for scalars, missing keys, and out-of-range
// indices.
func ChildByKey(v any, key any) (any, bool) {
	switch k := key.(type) {
	case string:
		switch t := v.(type) {
		case *ast.Lazy:
			node, err := t.Realize()
			if err != nil {
				return nil, false
			}
			return ChildByKey(node, key)
		case *ast.Object:
			if m := t.Find(k); m != nil {
				return m.Value, true
			}
		case map[string]any:
			if c, ok := t[k]; ok {
				return c, true
			}
		}
	case int:
		switch t := v.(type) {
		case *ast.Lazy:
			node, err := t.Realize()
			if err != nil {
				return nil, false
			}
			return ChildByKey(node, key)
		case *ast.Array:
			if k >= 0 && k < len(t.Values) {
				return t.Values[k], true
			}
		case []any:
			if k >= 0 && k < len(t) {
				return t[k], true
			}
		}
	}
	return nil, false
}

func spanOf(n ast.Node) *ojson.Span {
	s := n.Span()
	return &s
}
