package adapter_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/andreyvit/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treelex/ojson/adapter"
	"github.com/treelex/ojson/ast"
)

// render walks a value through the adapter and prints one line per node,
// indented by depth, the way a tree view would.
func render(v any) string {
	var sb strings.Builder
	var walk func(v any, label string, depth int)
	walk = func(v any, label string, depth int) {
		m := adapter.Describe(v)
		sb.WriteString(strings.Repeat("  ", depth))
		if label != "" {
			sb.WriteString(label + ": ")
		}
		if m.Display != "" {
			sb.WriteString(m.Display)
		} else {
			fmt.Fprintf(&sb, "%s(%d)", m.Kind, m.ChildCount)
		}
		sb.WriteByte('\n')
		for _, c := range adapter.Children(v) {
			cl := fmt.Sprintf("[%d]", c.Index)
			if c.Key != nil {
				cl = *c.Key
			}
			walk(c.Value, cl, depth+1)
		}
	}
	walk(v, "", 0)
	return sb.String()
}

const doc = `{"10": "a", "2": "b", "1": {"n": 2.5, "ok": true, "z": null}}`

func TestDescribe_ast(t *testing.T) {
	root := ast.MustParse(doc, nil)
	m := adapter.Describe(root)
	assert.Equal(t, adapter.KindObject, m.Kind)
	assert.True(t, m.HasChildren)
	assert.Equal(t, 3, m.ChildCount)
	require.NotNil(t, m.Span, "syntax-tree values carry spans")

	num := root.(*ast.Object).Find("1").Value.(*ast.Object).Find("n").Value
	nm := adapter.Describe(num)
	assert.Equal(t, adapter.KindNumber, nm.Kind)
	assert.Equal(t, "2.5", nm.Display)
	assert.Equal(t, "2.5", nm.Raw)
}

func TestDescribe_native(t *testing.T) {
	var v any
	require.NoError(t, json.Unmarshal([]byte(doc), &v))
	m := adapter.Describe(v)
	assert.Equal(t, adapter.KindObject, m.Kind)
	assert.Equal(t, 3, m.ChildCount)
	assert.Nil(t, m.Span, "native values have no source range")

	assert.Equal(t, adapter.KindString, adapter.Describe("x").Kind)
	assert.Equal(t, `"x"`, adapter.Describe("x").Display)
	assert.Equal(t, "2.5", adapter.Describe(2.5).Display)
	assert.Equal(t, "true", adapter.Describe(true).Display)
	assert.Equal(t, adapter.KindNull, adapter.Describe(nil).Kind)
	assert.Equal(t, "123456789012345678901", adapter.Describe(json.Number("123456789012345678901")).Display)
	assert.Equal(t, adapter.KindInvalid, adapter.Describe(struct{}{}).Kind)
}

func TestChildren_orderContrast(t *testing.T) {
	// The same document through the two engines: the syntax tree keeps the
	// source order of the keys, the native decode surfaces them sorted.
	root := ast.MustParse(doc, nil)
	var native any
	require.NoError(t, json.Unmarshal([]byte(doc), &native))

	keysOf := func(v any) []string {
		var keys []string
		for _, c := range adapter.Children(v) {
			keys = append(keys, *c.Key)
		}
		return keys
	}
	assert.Equal(t, []string{"10", "2", "1"}, keysOf(root))
	assert.Equal(t, []string{"1", "10", "2"}, keysOf(native))
}

func TestChildren_duplicates(t *testing.T) {
	root := ast.MustParse(`{"a": 1, "a": 2}`, nil)
	cs := adapter.Children(root)
	require.Len(t, cs, 2, "duplicate keys both present")
	assert.Equal(t, "a", *cs[0].Key)
	assert.Equal(t, "a", *cs[1].Key)
	assert.Equal(t, "1", adapter.Describe(cs[0].Value).Display)
	assert.Equal(t, "2", adapter.Describe(cs[1].Value).Display)
}

func TestRender_ast(t *testing.T) {
	want := strings.TrimLeft(`
object(3)
  10: "a"
  2: "b"
  1: object(3)
    n: 2.5
    ok: true
    z: null
`, "\n")
	got := render(ast.MustParse(doc, nil))
	if got != want {
		t.Errorf("Render differs:\n%s", diff.LineDiff(want, got))
	}
}

func TestRender_lazy(t *testing.T) {
	// Deferred subtrees render identically; the adapter realizes them.
	eager := render(ast.MustParse(doc, nil))
	lazy := render(ast.MustParse(doc, &ast.Options{LazyDepth: 1}))
	if eager != lazy {
		t.Errorf("Lazy render differs:\n%s", diff.LineDiff(eager, lazy))
	}
}

func TestChildByKey(t *testing.T) {
	root := ast.MustParse(doc, nil)
	var native any
	require.NoError(t, json.Unmarshal([]byte(doc), &native))

	for _, v := range []any{root, native} {
		c, ok := adapter.ChildByKey(v, "2")
		require.True(t, ok)
		assert.Equal(t, `"b"`, adapter.Describe(c).Display)

		inner, ok := adapter.ChildByKey(v, "1")
		require.True(t, ok)
		n, ok := adapter.ChildByKey(inner, "n")
		require.True(t, ok)
		assert.Equal(t, "2.5", adapter.Describe(n).Display)

		_, ok = adapter.ChildByKey(v, "nope")
		assert.False(t, ok)
		_, ok = adapter.ChildByKey(v, 0)
		assert.False(t, ok, "int key on an object")
	}

	arr := ast.MustParse(`[10, 20]`, nil)
	c, ok := adapter.ChildByKey(arr, 1)
	require.True(t, ok)
	assert.Equal(t, "20", adapter.Describe(c).Display)
	_, ok = adapter.ChildByKey(arr, 2)
	assert.False(t, ok)
	_, ok = adapter.ChildByKey(arr, -1)
	assert.False(t, ok)

	// First match for duplicates, mirroring Object.Find.
	dup := ast.MustParse(`{"a": 1, "a": 2}`, nil)
	c, ok = adapter.ChildByKey(dup, "a")
	require.True(t, ok)
	assert.Equal(t, "1", adapter.Describe(c).Display)
}

func TestDescribe_lazyFailure(t *testing.T) {
	// A placeholder whose content cannot be realized reports as invalid
	// rather than panicking the renderer.
	root := ast.MustParse(`{"rows": [1, 2,]}`, &ast.Options{LazyDepth: 1})
	lz := root.(*ast.Object).Find("rows").Value
	m := adapter.Describe(lz)
	assert.Equal(t, adapter.KindInvalid, m.Kind)
	assert.Equal(t, "[1, 2,]", m.Raw)
	assert.Nil(t, adapter.Children(lz))
}
