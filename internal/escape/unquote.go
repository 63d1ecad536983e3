// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. An escape
// outside the JSON set, a malformed \uXXXX sequence, or a truncated escape is
// reported as an error rather than decoded loosely. The one lenient case is
// a lone surrogate, which decodes to U+FFFD.
func Unquote(src mem.RO) ([]byte, error) {
	dec := make([]byte, 0, src.Len())
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(dec, src), nil
	}

	putRune := func(r rune) {
		var buf [4]byte
		n := utf8.EncodeRune(buf[:], r)
		dec = append(dec, buf[:n]...)
	}
	for src.Len() != 0 {
		dec = mem.Append(dec, src.SliceTo(i))

		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}
		b := src.At(0)
		src = src.SliceFrom(1)
		switch b {
		case '"', '\\', '/':
			dec = append(dec, b)
		case 'b':
			dec = append(dec, '\b')
		case 'f':
			dec = append(dec, '\f')
		case 'n':
			dec = append(dec, '\n')
		case 'r':
			dec = append(dec, '\r')
		case 't':
			dec = append(dec, '\t')
		case 'u':
			r, rest, err := decodeHexRune(src)
			if err != nil {
				return nil, err
			}
			putRune(r)
			src = rest
		default:
			return nil, fmt.Errorf("invalid escape sequence %q", "\\"+string(b))
		}

		i = mem.IndexByte(src, '\\')
		if i < 0 {
			dec = mem.Append(dec, src)
			break
		}
	}
	return dec, nil
}

// decodeHexRune decodes the four hex digits of a \u escape, consuming a
// following \uXXXX low surrogate when the first value is a high surrogate.
func decodeHexRune(src mem.RO) (rune, mem.RO, error) {
	v, err := parseHex4(src)
	if err != nil {
		return 0, src, err
	}
	src = src.SliceFrom(4)
	r := rune(v)
	if utf16.IsSurrogate(r) {
		// A lone surrogate is tolerated and decodes to the replacement rune,
		// matching the behavior of the platform decoders this parser shadows.
		if src.Len() >= 6 && src.At(0) == '\\' && src.At(1) == 'u' {
			v2, err := parseHex4(src.SliceFrom(2))
			if err != nil {
				return 0, src, err
			}
			if dec := utf16.DecodeRune(r, rune(v2)); dec != utf8.RuneError {
				return dec, src.SliceFrom(6), nil
			}
		}
		return utf8.RuneError, src, nil
	}
	return r, src, nil
}

func parseHex4(data mem.RO) (int64, error) {
	if data.Len() < 4 {
		return 0, errors.New("incomplete Unicode escape")
	}
	var v int64
	for i := 0; i < 4; i++ {
		b := data.At(i)
		v <<= 4
		switch {
		case '0' <= b && b <= '9':
			v += int64(b - '0')
		case 'a' <= b && b <= 'f':
			v += int64(b - 'a' + 10)
		case 'A' <= b && b <= 'F':
			v += int64(b - 'A' + 10)
		default:
			return 0, fmt.Errorf("invalid hex digit %q", b)
		}
	}
	return v, nil
}
