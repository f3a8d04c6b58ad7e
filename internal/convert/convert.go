// Package convert runs the decoder over potfiles and literal strings.
package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"unhex/internal/ctxlog"
	"unhex/internal/hexdec"
	"unhex/internal/report"
)

// Potfile lines can be long, hashcat itself allows plains up to 256 bytes
// but the hash part is unbounded. Longer lines are echoed, not decoded.
var maxLine = 1 << 20

// Reports show at most this many bytes of an overlong line.
const previewLen = 64

type Options struct {
	Decode   hexdec.Options
	Reporter report.Reporter
}

func (o Options) reporter() report.Reporter {
	if o.Reporter == nil {
		return report.Discard
	}
	return o.Reporter
}

type Stats struct {
	Lines    int `json:"lines"`
	Wrapped  int `json:"wrapped"`
	Raw      int `json:"raw"`
	Plain    int `json:"plain"`
	Fallback int `json:"fallback"`
	Invalid  int `json:"invalid"`
	// Echoed counts lines written unchanged because their text would
	// break the one line per input line layout.
	Echoed int `json:"echoed"`
}

// Add counts one decoded line.
func (s *Stats) Add(o hexdec.Outcome) {
	s.Lines++
	if !o.OK() {
		if o.Err.Kind == hexdec.InvalidHex {
			s.Invalid++
		} else {
			s.Echoed++
		}
		return
	}
	switch o.Source {
	case hexdec.Wrapped:
		s.Wrapped++
	case hexdec.Raw:
		s.Raw++
	case hexdec.Plain:
		s.Plain++
	}
	if o.Fallback {
		s.Fallback++
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d lines: %d wrapped, %d raw, %d plain, %d latin-1 fallback, %d invalid, %d echoed",
		s.Lines, s.Wrapped, s.Raw, s.Plain, s.Fallback, s.Invalid, s.Echoed)
}

// Output returns the text written for a line. Failed lines are echoed unchanged.
func Output(line string, o hexdec.Outcome) string {
	if !o.OK() {
		return line
	}
	return o.Text
}

// SingleLine turns a successful outcome whose text holds \n or \r into a
// LineBreak failure, so that the line is echoed instead of split.
func SingleLine(line string, o hexdec.Outcome) hexdec.Outcome {
	if !o.OK() {
		return o
	}
	i := strings.IndexAny(o.Text, "\n\r")
	if i < 0 {
		return o
	}
	return hexdec.Outcome{
		Source:   o.Source,
		Fallback: o.Fallback,
		Err: &hexdec.Error{
			Kind:   hexdec.LineBreak,
			Line:   line,
			Offset: i,
			Char:   rune(o.Text[i]),
		},
	}
}

func tooLong(line []byte) (string, hexdec.Outcome) {
	preview := line
	if len(preview) > previewLen {
		preview = preview[:previewLen]
	}
	p := strings.ToValidUTF8(string(preview), "?") + "..."
	return p, hexdec.Outcome{
		Source: hexdec.Plain,
		Err: &hexdec.Error{
			Kind:   hexdec.TooLong,
			Line:   p,
			Offset: maxLine,
		},
	}
}

// Lines decodes every line of r and writes exactly one line per input line
// to w, in order. Per-line failures are reported and do not stop processing.
func Lines(ctx context.Context, r io.Reader, w io.Writer, opts Options) (Stats, error) {
	logger := ctxlog.Get(ctx)
	rep := opts.reporter()

	lr := newLineReader(r, maxLine)
	bw := bufio.NewWriter(w)

	var stats Stats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		b, long, err := lr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read line %d: %w", stats.Lines+1, err)
		}

		if long {
			preview, o := tooLong(b)
			stats.Add(o)
			logger.Warn("line too long, echoed", "line", stats.Lines, "limit", maxLine)
			rep.Report(stats.Lines, preview, o)

			if _, err := bw.Write(b); err != nil {
				return stats, fmt.Errorf("write line %d: %w", stats.Lines, err)
			}
			if err := lr.rest(bw); err != nil {
				return stats, fmt.Errorf("copy line %d: %w", stats.Lines, err)
			}
			if err := bw.WriteByte('\n'); err != nil {
				return stats, fmt.Errorf("write line %d: %w", stats.Lines, err)
			}
			continue
		}

		line := string(b)
		o := SingleLine(line, opts.Decode.Decode(line))
		stats.Add(o)

		if !o.OK() {
			logger.Warn("line echoed", "line", stats.Lines, "error", o.Err)
		}
		rep.Report(stats.Lines, line, o)

		if _, err := bw.WriteString(Output(line, o)); err != nil {
			return stats, fmt.Errorf("write line %d: %w", stats.Lines, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return stats, fmt.Errorf("write line %d: %w", stats.Lines, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("flush: %w", err)
	}
	return stats, nil
}

// File decodes input into output. The output is written to a temporary
// file in the same directory and renamed into place once complete.
func File(ctx context.Context, input, output string, opts Options) (stats Stats, err error) {
	ctx = ctxlog.With(ctx, "input", input, "output", output)
	logger := ctxlog.Get(ctx)

	in, err := os.Open(input)
	if err != nil {
		return Stats{}, fmt.Errorf("open input %q: %w", input, err)
	}
	defer ctxlog.Close(ctx, "input file", in)

	dir := filepath.Dir(output)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(output)+".*")
	if err != nil {
		return Stats{}, fmt.Errorf("create output in %q: %w", dir, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				logger.Error("failed to remove temp output", "file", tmp.Name(), "error", rmErr)
			}
		}
	}()

	logger.Info("decoding file")

	stats, err = Lines(ctx, in, tmp, opts)
	if err != nil {
		return stats, err
	}

	if err = tmp.Chmod(0644); err != nil {
		return stats, fmt.Errorf("chmod output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return stats, fmt.Errorf("close output: %w", err)
	}
	if err = os.Rename(tmp.Name(), output); err != nil {
		return stats, fmt.Errorf("rename output: %w", err)
	}

	logger.Info("decoded file", "stats", stats)
	return stats, nil
}

// Literal decodes a single string given on the command line.
func Literal(s string, opts Options) hexdec.Outcome {
	o := opts.Decode.Decode(s)
	opts.reporter().Report(1, s, o)
	return o
}
