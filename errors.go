package ojson

import "fmt"

// ErrorKind classifies a ParseError.
type ErrorKind byte

// Constants defining the valid ErrorKind values.
const (
	Syntax     ErrorKind = iota // a structural violation of the JSON grammar
	Recovery                    // a condition repaired in tolerant mode
	Validation                  // a well-formed construct rejected by options
)

var kindStr = [...]string{
	Syntax:     "syntax",
	Recovery:   "recovery",
	Validation: "validation",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindStr) {
		return kindStr[k]
	}
	return "invalid"
}

// A TokenError is a lexical error reported by the Scanner. Lexical errors
// are always fatal; tolerant mode relaxes structural rules only.
type TokenError struct {
	Offset int   // byte offset at which scanning failed
	Err    error // the underlying cause
}

func (t *TokenError) Error() string {
	return fmt.Sprintf("%s (offset %d)", t.Err.Error(), t.Offset)
}

func (t *TokenError) Unwrap() error { return t.Err }

// A ParseError describes a structural problem in the input. In strict mode
// every ParseError is fatal; in tolerant mode the recoverable conditions are
// recorded with Kind == Recovery and parsing continues.
type ParseError struct {
	Message  string    // human-readable description
	Offset   int       // byte offset of the offending token
	Path     string    // JSONPath-style location, e.g. $.users[1].name
	Kind     ErrorKind // classification of the error
	Recovery string    // action taken, set only when Kind == Recovery
}

func (p *ParseError) Error() string {
	if p.Path != "" {
		return fmt.Sprintf("at %s (offset %d): %s", p.Path, p.Offset, p.Message)
	}
	return fmt.Sprintf("at offset %d: %s", p.Offset, p.Message)
}

// A ResourceLimitError reports input that exceeds a configured resource
// bound. Limits are checked proactively, before the offending construct is
// materialized, and are always fatal.
type ResourceLimitError struct {
	Limit  string // the name of the limit, e.g. "depth"
	Max    int    // the configured bound
	Actual int    // the observed value that tripped the bound
	Offset int    // byte offset at which the bound was exceeded
}

func (r *ResourceLimitError) Error() string {
	return fmt.Sprintf("%s limit exceeded at offset %d: %d > %d",
		r.Limit, r.Offset, r.Actual, r.Max)
}
