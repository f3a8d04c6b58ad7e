package convert

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// lineReader reads lines of at most max bytes. A longer line is returned
// with long set; whatever of it is still unread is copied by rest.
type lineReader struct {
	br   *bufio.Reader
	max  int
	buf  []byte
	more bool
}

func newLineReader(r io.Reader, max int) *lineReader {
	return &lineReader{
		br:  bufio.NewReaderSize(r, 64*1024),
		max: max,
	}
}

func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}

// next returns the next line without its terminator, or io.EOF.
func (lr *lineReader) next() (line []byte, long bool, err error) {
	lr.buf = lr.buf[:0]
	lr.more = false

	for {
		chunk, err := lr.br.ReadSlice('\n')
		lr.buf = append(lr.buf, chunk...)

		switch {
		case err == nil:
			line := trimEOL(lr.buf)
			return line, len(line) > lr.max, nil

		case errors.Is(err, bufio.ErrBufferFull):
			if len(lr.buf) > lr.max {
				lr.more = true
				return lr.buf, true, nil
			}

		case errors.Is(err, io.EOF):
			if len(lr.buf) == 0 {
				return nil, false, io.EOF
			}
			line := trimEOL(lr.buf)
			return line, len(line) > lr.max, nil

		default:
			return nil, false, err
		}
	}
}

// rest copies the unread remainder of a long line to w, without its terminator.
func (lr *lineReader) rest(w io.Writer) error {
	for lr.more {
		chunk, err := lr.br.ReadSlice('\n')
		switch {
		case err == nil:
			lr.more = false
			chunk = trimEOL(chunk)
		case errors.Is(err, bufio.ErrBufferFull):
		case errors.Is(err, io.EOF):
			lr.more = false
		default:
			return err
		}

		if _, err := w.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}
