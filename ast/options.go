package ast

import "github.com/treelex/ojson"

// Options configure a parse. The zero value requests strict parsing with
// native numbers and default resource bounds; a nil *Options is equivalent.
type Options struct {
	// NumberMode selects which representations of numeric literals to retain.
	NumberMode NumberMode

	// Tolerant enables recovery from the closed set of structural mistakes:
	// trailing commas, missing commas, and missing colons. Recoveries are
	// recorded in Result.Errors. Lexical errors remain fatal.
	Tolerant bool

	// MaxDepth bounds the number of simultaneously open containers;
	// MaxStringLen the byte length of one string token (quotes included);
	// MaxKeyLen the byte length of one decoded object key. Zero or negative
	// values select the package defaults. Exceeding a bound is a fatal
	// *ojson.ResourceLimitError.
	MaxDepth     int
	MaxStringLen int
	MaxKeyLen    int

	// LazyDepth, when positive, defers every container nested below that
	// depth: instead of building the subtree, the parser records a *Lazy
	// placeholder holding the raw substring, to be realized on demand.
	LazyDepth int

	// Pool, when non-nil, supplies recycled node instances to the parser.
	// Pooling never changes the observable result of a parse.
	Pool *Pool
}

// normalized returns a copy of o with defaults filled in. A nil receiver is
// treated as the zero Options.
func (o *Options) normalized() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.MaxDepth <= 0 {
		out.MaxDepth = ojson.DefaultMaxDepth
	}
	if out.MaxStringLen <= 0 {
		out.MaxStringLen = ojson.DefaultMaxStringLen
	}
	if out.MaxKeyLen <= 0 {
		out.MaxKeyLen = ojson.DefaultMaxKeyLen
	}
	return out
}

// A Result is the outcome of a successful parse. Errors holds the recovery
// diagnostics recorded in tolerant mode, in source order; a nil Errors slice
// means the input parsed cleanly. Strict-mode results never carry Errors,
// since in strict mode any problem aborts the parse instead.
type Result struct {
	Root   Node
	Errors []*ojson.ParseError
}
