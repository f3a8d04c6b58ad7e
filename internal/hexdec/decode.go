// Package hexdec decodes hashcat style $HEX[...] strings back into text.
package hexdec

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

const (
	prefix = "$HEX["
	suffix = "]"
)

// Source tells where the text of a successful outcome came from.
type Source int

const (
	// Plain lines are not hex at all and were passed through verbatim.
	Plain Source = iota
	Wrapped
	Raw
)

func (s Source) String() string {
	switch s {
	case Plain:
		return "plain"
	case Wrapped:
		return "wrapped"
	case Raw:
		return "raw"
	default:
		return "unknown"
	}
}

// Outcome is the result of decoding one line.
// Exactly one of Text (with Err == nil) or Err is meaningful.
type Outcome struct {
	Text     string
	Source   Source
	Fallback bool
	Err      *Error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

type Options struct {
	// WrappedOnly disables the raw hex path. Unwrapped lines are always
	// passed through, so a plain password like "123456" stays as is.
	WrappedOnly bool `yaml:"wrappedOnly"`
}

// Decode decodes a single line with default options.
func Decode(line string) Outcome {
	return Options{}.Decode(line)
}

func (opts Options) Decode(line string) Outcome {
	s := strings.TrimSpace(line)

	if payload, ok := unwrap(s); ok {
		if err := validate(payload); err != nil {
			err.Line = line
			return Outcome{Source: Wrapped, Err: err}
		}
		text, fallback := decodeText(mustHex(payload))
		return Outcome{Text: text, Source: Wrapped, Fallback: fallback}
	}

	if opts.WrappedOnly || validate(s) != nil {
		return Outcome{Text: line, Source: Plain}
	}

	text, fallback := decodeText(mustHex(s))
	return Outcome{Text: text, Source: Raw, Fallback: fallback}
}

func unwrap(s string) (string, bool) {
	if len(s) < len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return "", false
	}
	return s[len(prefix) : len(s)-len(suffix)], true
}

func isHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func validate(payload string) *Error {
	for i := 0; i < len(payload); i++ {
		if !isHexDigit(payload[i]) {
			r, _ := utf8.DecodeRuneInString(payload[i:])
			return &Error{
				Kind:    InvalidHex,
				Payload: payload,
				Offset:  i,
				Char:    r,
			}
		}
	}
	if len(payload)%2 != 0 {
		return &Error{
			Kind:    InvalidHex,
			Payload: payload,
			Offset:  -1,
		}
	}
	return nil
}

// mustHex is only called on validated payloads.
func mustHex(payload string) []byte {
	b, err := hex.DecodeString(payload)
	if err != nil {
		panic("hexdec: decode validated payload: " + err.Error())
	}
	return b
}

func decodeText(b []byte) (string, bool) {
	if utf8.Valid(b) {
		return string(b), false
	}
	return Latin1(b), true
}
