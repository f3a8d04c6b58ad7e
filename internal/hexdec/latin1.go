package hexdec

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Latin1 maps every byte to the code point of the same value.
// It is total: any byte sequence decodes.
func Latin1(b []byte) string {
	s := &strings.Builder{}
	s.Grow(len(b) * 2)
	for _, c := range b {
		s.WriteRune(charmap.ISO8859_1.DecodeByte(c))
	}
	return s.String()
}
