// Package jpath implements a minimal JSONPath expression parser.
package jpath

import (
	"fmt"
	"strconv"
	"strings"
)

/*
Grammar:

  expr = root steps
  root = "$"
 steps = step [steps]
  step = "." name
  step = "[" INDEX "]"
  name = { any byte except ".", "[" }+

 INDEX = RE `\d+`

This is the property/index subset of JSONPath: no wildcards, slices,
recursion, or filters. Navigation misses are not the concern of this
package; only malformed path syntax is an error here.
*/

// An Op is a path operator.
type Op byte

// Constants defining the valid Op values.
const (
	Invalid Op = iota // invalid operator
	Member            // member lookup (.name)
	Index             // array index lookup ([n])
)

var opText = [...]string{
	Invalid: "invalid",
	Member:  "member",
	Index:   "index",
}

func (o Op) String() string {
	if int(o) < len(opText) {
		return opText[o]
	}
	return opText[Invalid]
}

// A Step is a single step of a path expression: a member lookup carrying a
// Name, or an array index lookup carrying an Index.
type Step struct {
	Op    Op
	Name  string
	Index int
}

// An Expr is a parsed path expression, the ordered steps from the root.
type Expr []Step

// A SyntaxError reports malformed path syntax.
type SyntaxError struct {
	Path    string // the full expression being parsed
	Offset  int    // byte offset at which parsing failed
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid path %q at offset %d: %s", e.Path, e.Offset, e.Message)
}

// Parse parses s as a path expression. The expression must begin with the
// root marker "$"; an empty property name, an unclosed bracket, and a
// non-numeric or negative index are errors. Parse never inspects a
// document: whether the path resolves is a navigation question.
func Parse(s string) (Expr, error) {
	if !strings.HasPrefix(s, "$") {
		return nil, &SyntaxError{Path: s, Offset: 0, Message: "missing root marker"}
	}
	var expr Expr
	i := 1
	for i < len(s) {
		switch s[i] {
		case '.':
			start := i + 1
			j := start
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			if j == start {
				return nil, &SyntaxError{Path: s, Offset: i, Message: "empty property name"}
			}
			expr = append(expr, Step{Op: Member, Name: s[start:j]})
			i = j

		case '[':
			start := i + 1
			j := strings.IndexByte(s[start:], ']')
			if j < 0 {
				return nil, &SyntaxError{Path: s, Offset: i, Message: "missing close bracket"}
			}
			text := s[start : start+j]
			idx, err := strconv.Atoi(text)
			if err != nil || idx < 0 || !isDigits(text) {
				return nil, &SyntaxError{Path: s, Offset: start, Message: fmt.Sprintf("invalid index %q", text)}
			}
			expr = append(expr, Step{Op: Index, Index: idx})
			i = start + j + 1

		default:
			return nil, &SyntaxError{Path: s, Offset: i, Message: "invalid path step"}
		}
	}
	return expr, nil
}

func (e Expr) String() string {
	var buf strings.Builder
	buf.WriteByte('$')
	for _, s := range e {
		switch s.Op {
		case Member:
			buf.WriteByte('.')
			buf.WriteString(s.Name)
		case Index:
			fmt.Fprintf(&buf, "[%d]", s.Index)
		}
	}
	return buf.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
