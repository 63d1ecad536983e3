package ojson

import (
	"fmt"
	"io"
	"strings"
)

// Token is the type of a lexical token in the JSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	Comma                // comma ","
	Colon                // colon ":"
	Integer              // number: integer with no fraction or exponent
	Number               // number with fraction and/or exponent
	String               // quoted string
	True                 // constant: true
	False                // constant: false
	Null                 // constant: null
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	Integer: "integer",
	Number:  "number",
	String:  "string",
	True:    "true",
	False:   "false",
	Null:    "null",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// A Scanner reads lexical tokens from an in-memory source string. Each call
// to Next advances the scanner to the next token, or reports an error. The
// scanner tracks exact byte offsets for every token so that downstream
// consumers can report source ranges and slice raw lexemes.
type Scanner struct {
	src string
	cur int // read cursor

	tok Token
	err error

	pos, end int // start and end offsets of the current token

	maxString int // longest permitted string token in bytes; 0 means no bound
}

// NewScanner constructs a new lexical scanner over src.
func NewScanner(src string) *Scanner { return &Scanner{src: src} }

// SetMaxStringLen bounds the byte length of a single string token, including
// quotes. Exceeding the bound reports a *ResourceLimitError. A value <= 0
// removes the bound.
func (s *Scanner) SetMaxStringLen(n int) { s.maxString = n }

// Next advances s to the next token of the input, or reports an error.
// At the end of the input, Next returns io.EOF. Lexical errors have concrete
// type *TokenError; a string token exceeding the configured length bound
// reports a *ResourceLimitError.
func (s *Scanner) Next() error {
	s.err = nil
	s.tok = Invalid

	// Discard whitespace.
	for s.cur < len(s.src) && isSpace(s.src[s.cur]) {
		s.cur++
	}
	s.pos = s.cur
	if s.cur >= len(s.src) {
		s.end = s.cur
		return s.setErr(io.EOF)
	}

	ch := s.src[s.cur]

	// Handle punctuation.
	if t, ok := selfDelim(ch); ok {
		s.cur++
		s.end = s.cur
		s.tok = t
		return nil
	}

	// Handle numbers.
	if isNumStart(ch) {
		return s.scanNumber()
	}

	// Handle string values.
	if ch == '"' {
		return s.scanString()
	}

	// Handle constants: true, false, null
	switch ch {
	case 't':
		return s.scanName("true", True)
	case 'f':
		return s.scanName("false", False)
	case 'n':
		return s.scanName("null", Null)
	}
	return s.failf("unexpected %q", ch)
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token. The returned value
// is a view into the original source string.
func (s *Scanner) Text() string { return s.src[s.pos:s.end] }

// Span returns the source span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.pos, End: s.end} }

// Offset returns the byte offset at the start of the current token.
func (s *Scanner) Offset() int { return s.pos }

func (s *Scanner) scanString() error {
	s.cur++ // consume open quote
	for s.cur < len(s.src) {
		if s.maxString > 0 && s.cur-s.pos >= s.maxString {
			s.err = &ResourceLimitError{
				Limit: "string length", Max: s.maxString, Actual: s.cur - s.pos + 1, Offset: s.pos,
			}
			return s.err
		}
		ch := s.src[s.cur]
		switch {
		case ch == '"':
			s.cur++
			s.end = s.cur
			s.tok = String
			return nil
		case ch == '\\':
			if err := s.scanEscape(); err != nil {
				return err
			}
		case ch < ' ':
			return s.failf("unescaped control %q", ch)
		default:
			s.cur++
		}
	}
	return s.failf("unterminated string")
}

// scanEscape validates a single backslash escape at the cursor. Decoding to
// the replacement text happens later, in Unquote; the scanner only decides
// whether the escape is lexically well-formed.
func (s *Scanner) scanEscape() error {
	s.cur++ // consume backslash
	if s.cur >= len(s.src) {
		return s.failf("truncated escape sequence")
	}
	ch := s.src[s.cur]
	switch ch {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		s.cur++
		return nil
	case 'u':
		s.cur++
		for i := 0; i < 4; i++ {
			if s.cur >= len(s.src) {
				return s.failf("truncated Unicode escape")
			}
			if b := s.src[s.cur]; !isHexDigit(b) {
				return s.failf("invalid Unicode escape: not a hex digit: %q", b)
			}
			s.cur++
		}
		return nil
	}
	return s.failf("invalid %q after escape", ch)
}

func (s *Scanner) scanNumber() error {
	if s.src[s.cur] == '-' {
		s.cur++
		// A leading sign requires at least one digit after it.
		if s.cur >= len(s.src) || !isDigit(s.src[s.cur]) {
			return s.failf("want digit after minus sign")
		}
	}

	// Consume the integer part.
	intStart := s.cur
	for s.cur < len(s.src) && isDigit(s.src[s.cur]) {
		s.cur++
	}

	// Check for extra leading zeroes, which are disallowed by the JSON spec.
	// That is: 0.12 is OK, 01.2 is not.
	if s.src[intStart] == '0' && s.cur-intStart > 1 {
		return s.failf("extra leading zeroes")
	}

	tok := Integer

	// If a decimal point follows, consume a fractional part.
	if s.cur < len(s.src) && s.src[s.cur] == '.' {
		s.cur++
		if s.cur >= len(s.src) || !isDigit(s.src[s.cur]) {
			return s.failf("no digits after decimal point")
		}
		for s.cur < len(s.src) && isDigit(s.src[s.cur]) {
			s.cur++
		}
		tok = Number
	}

	// If an exponent follows, consume it.
	if s.cur < len(s.src) && (s.src[s.cur] == 'e' || s.src[s.cur] == 'E') {
		s.cur++
		if s.cur < len(s.src) && (s.src[s.cur] == '+' || s.src[s.cur] == '-') {
			s.cur++
		}
		if s.cur >= len(s.src) || !isDigit(s.src[s.cur]) {
			return s.failf("missing exponent digits")
		}
		for s.cur < len(s.src) && isDigit(s.src[s.cur]) {
			s.cur++
		}
		tok = Number
	}

	s.end = s.cur
	s.tok = tok
	return nil
}

func (s *Scanner) scanName(want string, tok Token) error {
	end := s.cur
	for end < len(s.src) && isNameByte(s.src[end]) {
		end++
	}
	if got := s.src[s.cur:end]; got != want {
		return s.failf("unknown constant %q", got)
	}
	s.cur = end
	s.end = end
	s.tok = tok
	return nil
}

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

func (s *Scanner) failf(msg string, args ...any) error {
	return s.setErr(&TokenError{Offset: s.cur, Err: fmt.Errorf(msg, args...)})
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNumStart(ch byte) bool { return ch == '-' || isDigit(ch) }
func isDigit(ch byte) bool    { return '0' <= ch && ch <= '9' }
func isNameByte(ch byte) bool { return ch >= 'a' && ch <= 'z' }

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch byte) (Token, bool) {
	i := strings.IndexByte("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}
