package nmea

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// Checksum returns the XOR of every byte in s. A single leading '$' is
// skipped so that both bare bodies and full frames can be passed in.
func Checksum(s string) byte {
	s = strings.TrimPrefix(s, string(StartDelimiter))
	var sum byte
	for i := 0; i < len(s); i++ {
		sum ^= s[i]
	}
	return sum
}

// AppendHex appends b as two uppercase hex digits.
func AppendHex(dst []byte, b byte) []byte {
	return append(dst, hexDigits[b>>4], hexDigits[b&0x0F])
}

// DecodeNibble decodes a single hex digit, accepting either case.
func DecodeNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// ParseHexByte decodes a two digit hex pair.
func ParseHexByte(s string) (byte, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("hex byte %q: want 2 digits", s)
	}
	hi, ok1 := DecodeNibble(s[0])
	lo, ok2 := DecodeNibble(s[1])
	if !ok1 || !ok2 {
		return 0, fmt.Errorf("hex byte %q: invalid digit", s)
	}
	return hi<<4 | lo, nil
}

// Frame builds a complete wire sentence: "$" tag [" " params] "*" HH "\n".
// Params are joined by a single space. Passing one empty param still emits
// the separating space, matching how devices expect a parameterized tag.
func Frame(tag string, params ...string) []byte {
	body := make([]byte, 0, 1+len(tag)+MaxPayloadLen/4)
	body = append(body, StartDelimiter)
	body = append(body, tag...)
	if len(params) > 0 {
		body = append(body, TagDelimiter)
		body = append(body, strings.Join(params, " ")...)
	}
	sum := Checksum(string(body))
	body = append(body, ChecksumDelimiter)
	body = AppendHex(body, sum)
	return append(body, Terminator)
}

// DecodeHexText converts hex encoded message data into text. A trailing
// odd digit is ignored and decoding stops at the first invalid pair.
func DecodeHexText(s string) string {
	s = s[:len(s)&^1]
	out := make([]byte, 0, len(s)/2)
	for i := 0; i+1 < len(s); i += 2 {
		b, err := hex.DecodeString(s[i : i+2])
		if err != nil {
			break
		}
		out = append(out, b[0])
	}
	return string(out)
}

// Int parses the longest decimal integer prefix of s, after optional
// leading spaces and sign. It returns 0 when no digits are present.
func Int(s string) int64 {
	n, _ := strconv.ParseInt(numericPrefix(s, false), 10, 64)
	return n
}

// Uint is Int for unsigned identifiers such as message ids. A negative
// prefix reads as 0.
func Uint(s string) uint64 {
	n, _ := strconv.ParseUint(strings.TrimPrefix(numericPrefix(s, false), "+"), 10, 64)
	return n
}

// Float parses the longest decimal floating point prefix of s.
func Float(s string) float64 {
	f, _ := strconv.ParseFloat(numericPrefix(s, true), 64)
	return f
}

func numericPrefix(s string, fraction bool) string {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := 0
	dot := false
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && fraction && !dot:
			dot = true
		default:
			if digits == 0 {
				return ""
			}
			return strings.TrimSuffix(s[:end], ".")
		}
		end++
	}
	if digits == 0 {
		return ""
	}
	return strings.TrimSuffix(s[:end], ".")
}
