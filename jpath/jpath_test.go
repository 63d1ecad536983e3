package jpath_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/treelex/ojson/jpath"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  jpath.Expr
	}{
		{"$", nil},
		{"$.name", jpath.Expr{{Op: jpath.Member, Name: "name"}}},
		{"$[0]", jpath.Expr{{Op: jpath.Index, Index: 0}}},
		{"$[12]", jpath.Expr{{Op: jpath.Index, Index: 12}}},
		{"$.users[1].name", jpath.Expr{
			{Op: jpath.Member, Name: "users"},
			{Op: jpath.Index, Index: 1},
			{Op: jpath.Member, Name: "name"},
		}},
		{"$[0][1]", jpath.Expr{
			{Op: jpath.Index, Index: 0},
			{Op: jpath.Index, Index: 1},
		}},
		// Property names may contain any byte except the step delimiters.
		{"$.a-b.c d", jpath.Expr{
			{Op: jpath.Member, Name: "a-b"},
			{Op: jpath.Member, Name: "c d"},
		}},
		{"$.__proto__", jpath.Expr{{Op: jpath.Member, Name: "__proto__"}}},
	}
	for _, test := range tests {
		got, err := jpath.Parse(test.input)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", test.input, err)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Parse(%q): (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestParse_errors(t *testing.T) {
	tests := []struct {
		input  string
		offset int
	}{
		{"", 0},       // missing root marker
		{"name", 0},   // missing root marker
		{".name", 0},  // missing root marker
		{"$.", 1},     // empty property name
		{"$.a..b", 3}, // empty property name
		{"$[", 1},     // missing close bracket
		{"$[3", 1},    // missing close bracket
		{"$[]", 2},    // empty index
		{"$[-1]", 2},  // negative index
		{"$[1.5]", 2}, // non-integer index
		{"$[x]", 2},   // non-numeric index
		{"$x", 1},     // invalid step
		{"$$", 1},     // invalid step
	}
	for _, test := range tests {
		_, err := jpath.Parse(test.input)
		var serr *jpath.SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("Parse(%q): got %v (%T), want *SyntaxError", test.input, err, err)
			continue
		}
		if serr.Offset != test.offset {
			t.Errorf("Parse(%q): offset %d, want %d", test.input, serr.Offset, test.offset)
		}
		if serr.Path != test.input {
			t.Errorf("Parse(%q): error path %q, want input", test.input, serr.Path)
		}
	}
}

func TestExpr_roundTrip(t *testing.T) {
	tests := []string{"$", "$.a", "$[3]", "$.users[1].name", "$[0][1].x"}
	for _, input := range tests {
		expr, err := jpath.Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", input, err)
		}
		if got := expr.String(); got != input {
			t.Errorf("String: got %q, want %q", got, input)
		}
	}
}
