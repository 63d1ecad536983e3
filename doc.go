// Package ojson implements a lossless, order-preserving JSON scanner and
// structural parser.
//
// The package operates on fully-buffered source text and tracks exact byte
// offsets throughout, so that every token, value, and error can be traced
// back to the span of input it came from. It exists to back tooling that
// must show JSON as written: object member order is preserved exactly,
// duplicate keys are kept, and numeric literals can be retained beyond
// float64 precision (see the ast subpackage).
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON. Construct a
// scanner from a source string and call its Next method to iterate over the
// tokens. Next advances to the next input token and returns nil, or reports
// an error:
//
//	s := ojson.NewScanner(input)
//	for s.Next() == nil {
//	   log.Printf("Next token: %v", s.Token())
//	}
//
// Next returns io.EOF when the input has been fully consumed. Any other
// error indicates a lexical error or a resource bound violation.
//
// # Streaming
//
// The Stream type implements an event-driven structural parser. It drives a
// Scanner through an explicit stack-based state machine, so nesting depth is
// bounded by a configurable limit rather than by the call stack, and calls
// methods on a Handler value to report the structure of the input:
//
//	s := ojson.NewStream(input)
//	if err := s.Parse(handler); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// Each Handler method receives an Anchor reporting the token, its raw text,
// its source span, and a synthesized JSONPath-style location. The parser
// ensures that corresponding Begin and End events are correctly paired.
//
// # Tolerant mode
//
// With AllowRecovery enabled, the Stream repairs exactly three structural
// mistakes instead of failing: a trailing comma before "}" or "]", a missing
// comma between siblings, and a missing colon after an object key. Each
// repair is recorded as a *ParseError diagnostic with Kind == Recovery,
// available from Diagnostics after the parse. Lexical errors are never
// repaired, and any input that strict mode accepts parses identically in
// tolerant mode with no diagnostics.
package ojson
