package ast

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/treelex/ojson"
)

// NumberMode selects which representations of a numeric literal a parse
// retains.
type NumberMode byte

// Constants defining the valid NumberMode values.
const (
	NumNative   NumberMode = iota // float64 only; may round long literals
	NumExactInt                   // arbitrary-precision integers for integer literals
	NumExactDec                   // the exact decimal lexeme alongside a float64
	NumRawOnly                    // the raw lexeme only; no parsed value
)

var modeStr = [...]string{
	NumNative:   "native",
	NumExactInt: "exact-integer",
	NumExactDec: "exact-decimal",
	NumRawOnly:  "raw-only",
}

func (m NumberMode) String() string {
	if int(m) < len(modeStr) {
		return modeStr[m]
	}
	return "invalid"
}

// maxSafeInt is the largest integer magnitude exactly representable in a
// float64, 2^53-1, as a digit string. The boundary test compares digit
// strings so that the test itself cannot lose precision.
const maxSafeInt = "9007199254740991"

// A Number is a numeric value. The raw lexeme is always retained; which
// parsed representations exist depends on the NumberMode of the parse:
//
//   - a float64, present when the literal is a non-integer or an integer of
//     safe magnitude (and the mode computes native values at all)
//   - an arbitrary-precision integer, in exact-integer mode for integer
//     lexemes, materialized on first use
//   - the exact decimal string, in exact-decimal mode
//
// At least one representation is always present.
type Number struct {
	span ojson.Span
	raw  string
	mode NumberMode

	flt    float64
	hasFlt bool
	isInt  bool     // the lexeme has no fraction or exponent
	z      *big.Int // cache slot for the exact integer, set at most once
}

func (n *Number) Span() ojson.Span { return n.span }
func (n *Number) astNode()         {}

// Raw returns the exact source lexeme of the literal.
func (n *Number) Raw() string { return n.raw }

// Mode reports the NumberMode the literal was resolved under.
func (n *Number) Mode() NumberMode { return n.mode }

// IsInt reports whether the lexeme denotes an integer, i.e. has neither a
// fractional part nor an exponent.
func (n *Number) IsInt() bool { return n.isInt }

// Float returns the native float64 representation, if one was computed.
// In exact-integer mode an integer beyond the safe-integer bound has no
// float64 representation; in raw-only mode nothing is ever computed.
func (n *Number) Float() (float64, bool) { return n.flt, n.hasFlt }

// Exact returns the exact decimal representation, present only in
// exact-decimal mode.
func (n *Number) Exact() (string, bool) {
	if n.mode == NumExactDec {
		return n.raw, true
	}
	return "", false
}

// Int returns the arbitrary-precision integer value of the literal, or nil
// when the mode does not request one or the lexeme is not an integer. The
// value is materialized from the lexeme on first use and cached.
func (n *Number) Int() *big.Int {
	if n.mode != NumExactInt || !n.isInt {
		return nil
	}
	if n.z == nil {
		z, ok := new(big.Int).SetString(n.raw, 10)
		if !ok {
			// The tokenizer guarantees a well-formed integer lexeme.
			panic(fmt.Sprintf("invalid integer lexeme %q", n.raw))
		}
		n.z = z
	}
	return n.z
}

// Display returns the canonical display form of the literal, choosing the
// most precise available representation: exact integer, then exact decimal,
// then the native float64, then the raw lexeme.
func (n *Number) Display() string {
	if z := n.Int(); z != nil {
		return z.String()
	}
	if dec, ok := n.Exact(); ok {
		return dec
	}
	if n.hasFlt {
		return strconv.FormatFloat(n.flt, 'g', -1, 64)
	}
	return n.raw
}

// resolveNumber decides the representations of a numeric lexeme under the
// given mode. isInt reports whether the tokenizer classified the lexeme as
// an integer.
func resolveNumber(raw string, isInt bool, mode NumberMode, span ojson.Span) (*Number, error) {
	n := new(Number)
	if err := n.resolve(raw, isInt, mode, span); err != nil {
		return nil, err
	}
	return n, nil
}

// resolve fills n, which may be a recycled pool instance, from a lexeme.
func (n *Number) resolve(raw string, isInt bool, mode NumberMode, span ojson.Span) error {
	n.span, n.raw, n.mode, n.isInt = span, raw, mode, isInt
	switch mode {
	case NumRawOnly:
		// Nothing is parsed; the lexeme stands alone.
		return nil

	case NumExactInt:
		if isInt {
			// The big.Int materializes lazily; eagerly decide only whether a
			// float64 can hold the value exactly.
			if intInSafeRange(raw) {
				return n.setFloat(raw)
			}
			return nil
		}
		// Non-integer lexemes fall back to native behavior.
		return n.setFloat(raw)

	default: // NumNative, NumExactDec
		return n.setFloat(raw)
	}
}

func (n *Number) setFloat(raw string) error {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", raw, err)
	}
	n.flt = v
	n.hasFlt = true
	return nil
}

// intInSafeRange reports whether the integer lexeme has magnitude at most
// 2^53-1. The comparison is on digit strings, never through a float64.
func intInSafeRange(raw string) bool {
	digits := strings.TrimPrefix(raw, "-")
	if len(digits) != len(maxSafeInt) {
		return len(digits) < len(maxSafeInt)
	}
	return digits <= maxSafeInt
}
