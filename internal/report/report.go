// Package report presents decode outcomes to the user.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"unhex/internal/hexdec"
)

type Reporter interface {
	// Report is called once per input line; n is 1-based.
	Report(n int, line string, o hexdec.Outcome)
}

type discard struct{}

func (discard) Report(int, string, hexdec.Outcome) {}

var Discard Reporter = discard{}

type Config struct {
	Color bool `yaml:"color"`
	Hints bool `yaml:"hints"`
	// Fallback also reports lines that needed the Latin-1 fallback.
	Fallback bool `yaml:"fallback"`
}

type styles struct {
	err  lipgloss.Style
	warn lipgloss.Style
	line lipgloss.Style
	hint lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		return styles{
			err:  lipgloss.NewStyle(),
			warn: lipgloss.NewStyle(),
			line: lipgloss.NewStyle(),
			hint: lipgloss.NewStyle(),
		}
	}
	return styles{
		err:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		warn: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		line: lipgloss.NewStyle().Faint(true),
		hint: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

// Console writes failures and, optionally, fallback notices to w.
type Console struct {
	mx     *sync.Mutex
	w      io.Writer
	config Config
	styles styles
}

func NewConsole(w io.Writer, config Config) *Console {
	return &Console{
		mx:     &sync.Mutex{},
		w:      w,
		config: config,
		styles: newStyles(config.Color),
	}
}

func (c *Console) Report(n int, line string, o hexdec.Outcome) {
	c.mx.Lock()
	defer c.mx.Unlock()

	switch {
	case !o.OK():
		fmt.Fprintf(c.w, "%s %s\n",
			c.styles.err.Render(fmt.Sprintf("line %d: %s", n, o.Err.Kind)),
			c.styles.line.Render(line))
		if c.config.Hints {
			fmt.Fprintf(c.w, "  %s\n", c.styles.hint.Render("hint: "+Hint(o.Err)))
		}

	case o.Fallback && c.config.Fallback:
		fmt.Fprintf(c.w, "%s %s\n",
			c.styles.warn.Render(fmt.Sprintf("line %d: not valid UTF-8, decoded as Latin-1", n)),
			c.styles.line.Render(line))
	}
}

// Hint explains why a line failed and what was done with it.
func Hint(err *hexdec.Error) string {
	if err == nil {
		return ""
	}
	switch err.Kind {
	case hexdec.LineBreak:
		return fmt.Sprintf("decoded text has %q at offset %d; the line is kept encoded so output lines stay aligned with input lines", err.Char, err.Offset)
	case hexdec.TooLong:
		return fmt.Sprintf("lines over %d bytes are copied unchanged", err.Offset)
	}
	if err.OddLength() {
		return fmt.Sprintf("payload has %d digits; every byte needs exactly two hex digits", len(err.Payload))
	}
	return fmt.Sprintf("%q at offset %d is not a hex digit; only 0-9, a-f and A-F are allowed", err.Char, err.Offset)
}
