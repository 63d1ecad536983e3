package ojson

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Default resource bounds applied by Stream and by the ast parsers when the
// caller does not configure an explicit limit.
const (
	DefaultMaxDepth     = 4096     // open containers
	DefaultMaxStringLen = 16 << 20 // bytes in one string token, quotes included
	DefaultMaxKeyLen    = 64 << 10 // bytes in one object key, quotes excluded
)

// An Anchor represents a token in source text. The methods of an Anchor
// report the token type, its raw text, its source span, and the synthesized
// JSONPath-style location at which it occurred.
type Anchor interface {
	Token() Token // the token type of the anchor
	Text() string // the raw (undecoded) text of the anchor
	Span() Span   // the source span of the anchor
	Path() string // the structural location, e.g. $.users[1].name
}

// A Handler handles events from parsing an input stream. If a method reports
// an error, parsing stops and that error is returned to the caller. The
// parser ensures objects and arrays are correctly balanced.
//
// The Anchor argument to a Handler method is only valid for the duration of
// that method call.
type Handler interface {
	// Begin a new object, whose open brace is at loc.
	BeginObject(loc Anchor) error

	// End the most-recently-opened object, whose close brace is at loc.
	EndObject(loc Anchor) error

	// Begin a new array, whose open bracket is at loc.
	BeginArray(loc Anchor) error

	// End the most-recently-opened array, whose close bracket is at loc.
	EndArray(loc Anchor) error

	// Begin a new object member, whose key is at loc. The text of the key is
	// still quoted; use Unquote to obtain the plain string.
	BeginMember(loc Anchor) error

	// End the current object member, giving the location of the token that
	// terminated the member. Under tolerant recovery the terminator may be an
	// assumed token rather than a real comma or close brace.
	EndMember(loc Anchor) error

	// Report a data value at the given location. The type of the value can be
	// recovered from the token. String tokens are quoted.
	Value(loc Anchor) error

	// EndOfInput reports the end of the input stream.
	EndOfInput(loc Anchor)
}

// parse states of the structural machine
type streamState byte

const (
	expectValue streamState = iota // a value may begin here
	afterValue                     // a value just ended; expect separator or close
	expectKey                      // inside an object; expect a member key
	afterKey                       // a key was read; expect a colon
)

// A frame records one open container on the explicit stack. The stack bounds
// nesting without tying it to call-stack depth.
type frame struct {
	object     bool   // true for "{", false for "["
	seg        string // active child path segment, "" between members/elements
	index      int    // index of the current element (arrays)
	count      int    // completed members or elements
	afterComma bool   // a separating comma was the last structural token
}

// Stream is a pull-driven structural parser. It drives a Scanner through an
// explicit stack-based state machine and delivers events to a Handler. In
// tolerant mode a closed set of structural mistakes is repaired and recorded
// instead of aborting.
type Stream struct {
	s        *Scanner
	tolerant bool
	maxDepth int
	maxKey   int

	state  streamState
	frames []frame
	diags  []*ParseError
}

// NewStream constructs a new Stream over src with default resource bounds.
func NewStream(src string) *Stream {
	sc := NewScanner(src)
	sc.SetMaxStringLen(DefaultMaxStringLen)
	return &Stream{s: sc, maxDepth: DefaultMaxDepth, maxKey: DefaultMaxKeyLen}
}

// NewStreamWithScanner constructs a new Stream that consumes tokens from s.
// The caller is responsible for any string-length bound on s.
func NewStreamWithScanner(s *Scanner) *Stream {
	return &Stream{s: s, maxDepth: DefaultMaxDepth, maxKey: DefaultMaxKeyLen}
}

// AllowRecovery configures the parser to repair (true) or reject (false) the
// recoverable structural mistakes: a trailing comma before a closing brace
// or bracket, a missing comma between siblings, and a missing colon after an
// object key. Each repair is recorded as a diagnostic. All other structural
// violations remain fatal.
func (s *Stream) AllowRecovery(ok bool) { s.tolerant = ok }

// SetMaxDepth bounds the number of simultaneously open containers.
// A value <= 0 restores the default.
func (s *Stream) SetMaxDepth(n int) {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	s.maxDepth = n
}

// SetMaxKeyLen bounds the byte length of a decoded object key.
// A value <= 0 restores the default.
func (s *Stream) SetMaxKeyLen(n int) {
	if n <= 0 {
		n = DefaultMaxKeyLen
	}
	s.maxKey = n
}

// Diagnostics returns the recovery diagnostics recorded during the most
// recent Parse. It returns nil after a clean parse, and always after a
// strict-mode parse, since in strict mode every problem is fatal instead.
func (s *Stream) Diagnostics() []*ParseError { return s.diags }

// Token implements part of the Anchor interface.
func (s *Stream) Token() Token { return s.s.Token() }

// Text implements part of the Anchor interface.
func (s *Stream) Text() string { return s.s.Text() }

// Span implements part of the Anchor interface.
func (s *Stream) Span() Span { return s.s.Span() }

// Path implements part of the Anchor interface. It reports the synthesized
// JSONPath-style location of the current token.
func (s *Stream) Path() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for _, f := range s.frames {
		sb.WriteString(f.seg)
	}
	return sb.String()
}

func (s *Stream) recoverParseError(errp *error) {
	if serr := recover(); serr != nil {
		switch err := serr.(type) {
		case *ParseError:
			*errp = err
		case *ResourceLimitError:
			*errp = err
		case handlerError:
			*errp = err.error
		default:
			panic(serr)
		}
	}
}

// Parse parses a single complete document from the input and delivers events
// to h. Input after the top-level value, other than trailing whitespace, is
// an error. Structural errors have concrete type *ParseError, lexical errors
// *TokenError, and resource-bound violations *ResourceLimitError.
func (s *Stream) Parse(h Handler) (err error) {
	defer s.recoverParseError(&err)

	s.state = expectValue
	s.frames = s.frames[:0]
	s.diags = nil

	for {
		if err := s.s.Next(); err == io.EOF {
			if s.state != afterValue || len(s.frames) != 0 {
				s.syntaxError("unexpected end of input")
			}
			h.EndOfInput(s)
			return nil
		} else if err != nil {
			return err
		}
		s.dispatch(h, s.s.Token())
	}
}

// dispatch feeds one token through the state machine. A tolerant recovery
// may leave the token unconsumed, in which case it is fed through again in
// the new state.
func (s *Stream) dispatch(h Handler, tok Token) {
	for again := true; again; {
		switch s.state {
		case expectValue:
			again = s.onExpectValue(h, tok)
		case afterValue:
			again = s.onAfterValue(h, tok)
		case expectKey:
			again = s.onExpectKey(h, tok)
		case afterKey:
			again = s.onAfterKey(h, tok)
		}
	}
}

func (s *Stream) onExpectValue(h Handler, tok Token) bool {
	// An element of the enclosing array becomes the active path segment the
	// moment its first token arrives.
	if f := s.top(); f != nil && !f.object && tok != RSquare {
		f.seg = "[" + strconv.Itoa(f.index) + "]"
	}
	switch tok {
	case LBrace:
		s.push(h, frame{object: true})
		s.checkError(h.BeginObject(s))
		s.state = expectKey
	case LSquare:
		s.push(h, frame{})
		s.checkError(h.BeginArray(s))
		s.state = expectValue
	case Integer, Number, String, True, False, Null:
		s.checkError(h.Value(s))
		s.state = afterValue
	case RSquare:
		// "]" where a value was expected: an empty array, or a trailing
		// comma that tolerant mode repairs.
		f := s.top()
		if f == nil || f.object {
			s.syntaxError("unexpected %v", tok)
		}
		if f.afterComma {
			s.recoverOrFail("Trailing comma before ]", "skipped trailing comma")
		}
		s.closeArray(h)
	default:
		s.syntaxError("unexpected %v", tok)
	}
	return false
}

func (s *Stream) onAfterValue(h Handler, tok Token) bool {
	f := s.top()
	if f == nil {
		s.syntaxError("unexpected %v after top-level value", tok)
	}
	if f.object {
		switch tok {
		case Comma:
			s.checkError(h.EndMember(s))
			s.endMember(f)
			f.afterComma = true
			s.state = expectKey
		case RBrace:
			s.checkError(h.EndMember(s))
			s.endMember(f)
			s.closeObject(h)
		case String:
			// A key with no separating comma before it.
			s.recoverOrFail("Assumed missing comma", "inserted comma before member")
			s.checkError(h.EndMember(s))
			s.endMember(f)
			s.state = expectKey
			return true // reprocess the key token
		default:
			s.syntaxError("expected %v or %v, got %v", Comma, RBrace, tok)
		}
		return false
	}

	switch tok {
	case Comma:
		f.count++
		f.index++
		f.seg = ""
		f.afterComma = true
		s.state = expectValue
	case RSquare:
		f.count++
		s.closeArray(h)
	case LBrace, LSquare, Integer, Number, String, True, False, Null:
		// A sibling value with no separating comma before it.
		f.seg = ""
		s.recoverOrFail("Assumed missing comma", "inserted comma before element")
		f.count++
		f.index++
		s.state = expectValue
		return true // reprocess the value token
	default:
		s.syntaxError("expected %v or %v, got %v", Comma, RSquare, tok)
	}
	return false
}

func (s *Stream) onExpectKey(h Handler, tok Token) bool {
	f := s.top()
	switch tok {
	case String:
		key, err := Unquote(s.s.Text())
		if err != nil {
			s.syntaxError("invalid key: %v", err)
		}
		if len(key) > s.maxKey {
			panic(&ResourceLimitError{
				Limit: "key length", Max: s.maxKey, Actual: len(key), Offset: s.s.Offset(),
			})
		}
		f.seg = "." + key
		f.afterComma = false
		s.checkError(h.BeginMember(s))
		s.state = afterKey
	case RBrace:
		if f.afterComma {
			s.recoverOrFail("Trailing comma before }", "skipped trailing comma")
		}
		s.closeObject(h)
	default:
		s.syntaxError("expected object key, got %v", tok)
	}
	return false
}

func (s *Stream) onAfterKey(h Handler, tok Token) bool {
	switch tok {
	case Colon:
		s.state = expectValue
	case LBrace, LSquare, Integer, Number, String, True, False, Null:
		s.recoverOrFail("Assumed missing colon", "inserted colon after key")
		s.state = expectValue
		return true // reprocess the value token
	default:
		s.syntaxError("expected %v, got %v", Colon, tok)
	}
	return false
}

func (s *Stream) push(h Handler, f frame) {
	if len(s.frames) >= s.maxDepth {
		panic(&ResourceLimitError{
			Limit: "depth", Max: s.maxDepth, Actual: len(s.frames) + 1, Offset: s.s.Offset(),
		})
	}
	s.frames = append(s.frames, f)
}

func (s *Stream) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

func (s *Stream) endMember(f *frame) {
	f.count++
	f.seg = ""
}

func (s *Stream) closeObject(h Handler) {
	s.frames[len(s.frames)-1].seg = ""
	s.checkError(h.EndObject(s))
	s.frames = s.frames[:len(s.frames)-1]
	s.state = afterValue
}

func (s *Stream) closeArray(h Handler) {
	s.frames[len(s.frames)-1].seg = ""
	s.checkError(h.EndArray(s))
	s.frames = s.frames[:len(s.frames)-1]
	s.state = afterValue
}

// recoverOrFail records a recovery diagnostic in tolerant mode, or raises a
// fatal syntax error in strict mode. The message doubles as the diagnostic
// text, so the set of recoverable conditions is exactly the set of call
// sites of this method.
func (s *Stream) recoverOrFail(msg, action string) {
	if !s.tolerant {
		s.syntaxError("%s", msg)
	}
	s.diags = append(s.diags, &ParseError{
		Message:  msg,
		Offset:   s.s.Offset(),
		Path:     s.Path(),
		Kind:     Recovery,
		Recovery: action,
	})
}

func (s *Stream) syntaxError(msg string, args ...any) {
	panic(&ParseError{
		Message: fmt.Sprintf(msg, args...),
		Offset:  s.s.Offset(),
		Path:    s.Path(),
		Kind:    Syntax,
	})
}

func (s *Stream) checkError(err error) {
	if err != nil {
		panic(handlerError{err})
	}
}

type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }
