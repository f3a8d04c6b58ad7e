package hexdec

import (
	"errors"
	"fmt"
)

type Kind int

const (
	InvalidHex Kind = iota + 1
	// LineBreak marks decoded text holding \n or \r, which cannot be
	// written as a single output line.
	LineBreak
	// TooLong marks an input line over the reader's limit.
	TooLong
)

func (k Kind) String() string {
	switch k {
	case InvalidHex:
		return "invalid hex"
	case LineBreak:
		return "line break in decoded text"
	case TooLong:
		return "line too long"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	ErrInvalidHex = errors.New("invalid hex")
	ErrLineBreak  = errors.New("line break in decoded text")
	ErrTooLong    = errors.New("line too long")
)

// Error describes a line that could not be turned into one line of text.
//
// For InvalidHex, Offset is the byte offset of the first bad character
// inside Payload, or -1 when the payload has an odd number of digits.
// For LineBreak, Offset is the byte offset of Char in the decoded text.
// For TooLong, Offset is the limit that was exceeded.
type Error struct {
	Kind    Kind
	Line    string
	Payload string
	Offset  int
	Char    rune
}

func (e *Error) OddLength() bool {
	return e.Kind == InvalidHex && e.Offset < 0
}

func (e *Error) Error() string {
	switch e.Kind {
	case LineBreak:
		return fmt.Sprintf("%s of %q: %q at offset %d", e.Kind, e.Line, e.Char, e.Offset)
	case TooLong:
		return fmt.Sprintf("%s: more than %d bytes", e.Kind, e.Offset)
	}
	if e.OddLength() {
		return fmt.Sprintf("%s in %q: odd number of digits (%d)", e.Kind, e.Line, len(e.Payload))
	}
	return fmt.Sprintf("%s in %q: %q at offset %d is not a hex digit", e.Kind, e.Line, e.Char, e.Offset)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidHex:
		return e.Kind == InvalidHex
	case ErrLineBreak:
		return e.Kind == LineBreak
	case ErrTooLong:
		return e.Kind == TooLong
	}
	return false
}
