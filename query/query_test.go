package query_test

import (
	"errors"
	"testing"

	"github.com/treelex/ojson"
	"github.com/treelex/ojson/ast"
	"github.com/treelex/ojson/jpath"
	"github.com/treelex/ojson/query"
)

const usersDoc = `{"users": [{"name": "A", "id": 1}, {"name": "B", "id": 2}], "count": 2}`

func TestNavigate(t *testing.T) {
	root := ast.MustParse(usersDoc, nil)
	tests := []struct {
		path string
		want string // decoded String value, "" for non-string targets
	}{
		{"$.users[0].name", "A"},
		{"$.users[1].name", "B"},
	}
	for _, test := range tests {
		node, ok, err := query.Navigate(root, test.path)
		if err != nil {
			t.Fatalf("Navigate(%q) failed: %v", test.path, err)
		}
		if !ok {
			t.Fatalf("Navigate(%q): miss", test.path)
		}
		s, isStr := node.(*ast.String)
		if !isStr || s.Value != test.want {
			t.Errorf("Navigate(%q): got %v, want string %q", test.path, node, test.want)
		}
	}

	// The root path resolves to the root itself.
	node, ok, err := query.Navigate(root, "$")
	if err != nil || !ok || node != root {
		t.Errorf("Navigate($): got (%v, %v, %v), want the root", node, ok, err)
	}
}

func TestNavigate_misses(t *testing.T) {
	root := ast.MustParse(usersDoc, nil)
	tests := []string{
		"$.missing",          // absent key
		"$.users[2]",         // index out of range
		"$.users[0].name[0]", // index into a string
		"$.count.x",          // property on a number
		"$.users.name",       // property on an array
		"$[0]",               // index into an object
	}
	for _, path := range tests {
		node, ok, err := query.Navigate(root, path)
		if err != nil {
			t.Errorf("Navigate(%q): unexpected error %v", path, err)
		}
		if ok || node != nil {
			t.Errorf("Navigate(%q): got (%v, %v), want a miss", path, node, ok)
		}
	}

	// Malformed syntax is an error, not a miss.
	_, _, err := query.Navigate(root, "$[oops]")
	var serr *jpath.SyntaxError
	if !errors.As(err, &serr) {
		t.Errorf("Navigate($[oops]): got %v, want *jpath.SyntaxError", err)
	}
}

func TestNavigate_duplicateKeys(t *testing.T) {
	// First occurrence wins, matching Object.Find.
	root := ast.MustParse(`{"a": 1, "a": 2}`, nil)
	node, ok, err := query.Navigate(root, "$.a")
	if err != nil || !ok {
		t.Fatalf("Navigate failed: ok=%v err=%v", ok, err)
	}
	if got := node.(*ast.Number).Raw(); got != "1" {
		t.Errorf("Navigate($.a): got %s, want the first occurrence 1", got)
	}
}

func TestEval_lazy(t *testing.T) {
	// Placeholders on the walk realize transparently.
	root := ast.MustParse(usersDoc, &ast.Options{LazyDepth: 1})
	if _, ok := root.(*ast.Object).Find("users").Value.(*ast.Lazy); !ok {
		t.Fatal("users should be deferred")
	}
	node, ok, err := query.Navigate(root, "$.users[1].name")
	if err != nil || !ok {
		t.Fatalf("Navigate failed: ok=%v err=%v", ok, err)
	}
	if s := node.(*ast.String); s.Value != "B" {
		t.Errorf("Navigate: got %q, want B", s.Value)
	}

	// A lazy final target is realized too.
	node, ok, err = query.Navigate(root, "$.users")
	if err != nil || !ok {
		t.Fatalf("Navigate($.users) failed: ok=%v err=%v", ok, err)
	}
	if _, isArr := node.(*ast.Array); !isArr {
		t.Errorf("Navigate($.users): got %T, want *ast.Array", node)
	}
}

func TestSliceRange(t *testing.T) {
	tests := []struct {
		src  string
		path string
		want string // raw text of the located range
	}{
		{usersDoc, "$.users[1].name", `"B"`},
		{usersDoc, "$.users[1]", `{"name": "B", "id": 2}`},
		{usersDoc, "$.users", `[{"name": "A", "id": 1}, {"name": "B", "id": 2}]`},
		{usersDoc, "$.count", `2`},
		{usersDoc, "$", usersDoc},
		{`[0, [1, [2, 3]]]`, "$[1][1]", `[2, 3]`},
		{`{"a": {"a": {"a": null}}}`, "$.a.a.a", `null`},
		{`{"a": 1, "a": 2}`, "$.a", `1`},
	}
	for _, test := range tests {
		span, ok, err := query.SliceRange(test.src, test.path)
		if err != nil {
			t.Fatalf("SliceRange(%q) failed: %v", test.path, err)
		}
		if !ok {
			t.Fatalf("SliceRange(%q): miss", test.path)
		}
		if got := ojson.RawText(test.src, span); got != test.want {
			t.Errorf("SliceRange(%q): got %#q, want %#q", test.path, got, test.want)
		}
	}
}

func TestSliceRange_misses(t *testing.T) {
	tests := []string{"$.nope", "$.users[9]", "$.count[0]", "$[1]"}
	for _, path := range tests {
		_, ok, err := query.SliceRange(usersDoc, path)
		if err != nil {
			t.Errorf("SliceRange(%q): unexpected error %v", path, err)
		}
		if ok {
			t.Errorf("SliceRange(%q): unexpected hit", path)
		}
	}
}

func TestSliceRange_badSpine(t *testing.T) {
	// The walk needs clean structure along the spine.
	tests := []struct {
		src, path string
	}{
		{`{"a": `, "$.a"},     // truncated after the colon
		{`[1, `, "$[1]"},      // truncated after the comma
		{`{"a": [1, `, "$.a"}, // target runs off the end
	}
	for _, test := range tests {
		if _, _, err := query.SliceRange(test.src, test.path); err == nil {
			t.Errorf("SliceRange(%q, %q): want error", test.src, test.path)
		}
	}
	var perr *ojson.ParseError
	_, _, err := query.SliceRange(`{42: "x"}`, "$.a")
	if !errors.As(err, &perr) {
		t.Errorf("SliceRange on bad key: got %v, want *ParseError", err)
	}
}

func TestParseSubtree(t *testing.T) {
	node, ok, err := query.ParseSubtree(usersDoc, "$.users[1]", nil)
	if err != nil {
		t.Fatalf("ParseSubtree failed: %v", err)
	}
	if !ok {
		t.Fatal("ParseSubtree: miss")
	}
	obj, isObj := node.(*ast.Object)
	if !isObj {
		t.Fatalf("ParseSubtree: got %T, want *ast.Object", node)
	}
	if got := obj.Find("name").Value.(*ast.String).Value; got != "B" {
		t.Errorf("name: got %q, want B", got)
	}

	// The subtree stands alone: spans are relative to the slice, so the
	// first member key starts just past the opening brace.
	if pos := obj.Members[0].Key.Span().Pos; pos != 1 {
		t.Errorf("Key pos: got %d, want 1", pos)
	}

	if _, ok, err := query.ParseSubtree(usersDoc, "$.users[9]", nil); err != nil || ok {
		t.Errorf("ParseSubtree out of range: got (%v, %v), want a miss", ok, err)
	}
}

func TestEval_parsedExpr(t *testing.T) {
	expr, err := jpath.Parse("$.users[0].id")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	root := ast.MustParse(usersDoc, nil)
	node, ok, err := query.Eval(root, expr)
	if err != nil || !ok {
		t.Fatalf("Eval failed: ok=%v err=%v", ok, err)
	}
	if got := node.(*ast.Number).Raw(); got != "1" {
		t.Errorf("Eval: got %s, want 1", got)
	}
}
