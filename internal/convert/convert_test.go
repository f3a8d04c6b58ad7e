package convert

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"unhex/internal/hexdec"
)

type recorded struct {
	n    int
	line string
	ok   bool
}

type recorder struct {
	calls []recorded
}

func (r *recorder) Report(n int, line string, o hexdec.Outcome) {
	r.calls = append(r.calls, recorded{n: n, line: line, ok: o.OK()})
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "hashcat.potfile")
	output := filepath.Join(dir, "decoded.txt")

	content := "$HEX[48656c6c6f20576f726c64]\nnormalpassword123\n$HEX[5061737377c3b67264]\n"
	if err := os.WriteFile(input, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := File(context.Background(), input, output, Options{})
	if err != nil {
		t.Fatal(err)
	}

	have, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("Hello World\nnormalpassword123\nPasswörd\n", string(have)); diff != "" {
		t.Fatalf("output mismatch (-want +have):\n%s", diff)
	}

	want := Stats{Lines: 3, Wrapped: 2, Plain: 1}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("stats mismatch (-want +have):\n%s", diff)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if have, want := len(entries), 2; have != want {
		t.Fatalf("%d files left in dir, want %d", have, want)
	}
}

func TestFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.txt")

	_, err := File(context.Background(), filepath.Join(dir, "nope.txt"), output, Options{})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("error %v is not fs.ErrNotExist", err)
	}
	if _, err := os.Stat(output); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("output was created: %v", err)
	}
}

func TestLines(t *testing.T) {
	lines := []string{
		"$HEX[41]\r",
		"$HEX[4z]",
		"6869",
		"$HEX[e9]",
		"",
		"$HEX[]",
		"plain text",
		"$HEX[610a62]",
		"610d",
	}
	input := strings.Join(lines, "\n")

	rec := &recorder{}
	out := &bytes.Buffer{}
	stats, err := Lines(context.Background(), strings.NewReader(input), out, Options{Reporter: rec})
	if err != nil {
		t.Fatal(err)
	}

	wantOut := "A\n$HEX[4z]\nhi\né\n\n\nplain text\n$HEX[610a62]\n610d\n"
	if diff := cmp.Diff(wantOut, out.String()); diff != "" {
		t.Fatalf("output mismatch (-want +have):\n%s", diff)
	}
	if have, want := strings.Count(out.String(), "\n"), len(lines); have != want {
		t.Fatalf("%d output lines for %d input lines", have, want)
	}

	wantStats := Stats{Lines: 9, Wrapped: 3, Raw: 2, Plain: 1, Fallback: 1, Invalid: 1, Echoed: 2}
	if diff := cmp.Diff(wantStats, stats); diff != "" {
		t.Fatalf("stats mismatch (-want +have):\n%s", diff)
	}

	if have, want := len(rec.calls), 9; have != want {
		t.Fatalf("%d reports, want %d", have, want)
	}
	if have, want := rec.calls[1], (recorded{n: 2, line: "$HEX[4z]", ok: false}); have != want {
		t.Fatalf("report %+v != %+v", have, want)
	}
	if have, want := rec.calls[7], (recorded{n: 8, line: "$HEX[610a62]", ok: false}); have != want {
		t.Fatalf("report %+v != %+v", have, want)
	}
	if have, want := rec.calls[0].line, "$HEX[41]"; have != want {
		t.Fatalf("carriage return not stripped: %q", have)
	}
}

func TestSingleLine(t *testing.T) {
	o := SingleLine("$HEX[610a62]", hexdec.Decode("$HEX[610a62]"))
	if !errors.Is(o.Err, hexdec.ErrLineBreak) {
		t.Fatalf("error %v is not ErrLineBreak", o.Err)
	}
	if have, want := o.Err.Offset, 1; have != want {
		t.Fatalf("Offset %d != %d", have, want)
	}
	if have, want := Output("$HEX[610a62]", o), "$HEX[610a62]"; have != want {
		t.Fatalf("Output %q != %q", have, want)
	}

	ok := hexdec.Decode("$HEX[6162]")
	if have := SingleLine("$HEX[6162]", ok); have != ok {
		t.Fatalf("SingleLine changed %+v to %+v", ok, have)
	}
}

func TestLinesTooLong(t *testing.T) {
	prev := maxLine
	maxLine = 16
	t.Cleanup(func() { maxLine = prev })

	long := strings.Repeat("41", 40)
	lines := []string{"$HEX[41]", long, "$HEX[" + long + "]", "$HEX[42]"}
	input := strings.Join(lines, "\r\n") + "\r\n"

	rec := &recorder{}
	out := &bytes.Buffer{}
	stats, err := Lines(context.Background(), strings.NewReader(input), out, Options{Reporter: rec})
	if err != nil {
		t.Fatal(err)
	}

	wantOut := "A\n" + long + "\n$HEX[" + long + "]\nB\n"
	if diff := cmp.Diff(wantOut, out.String()); diff != "" {
		t.Fatalf("output mismatch (-want +have):\n%s", diff)
	}

	wantStats := Stats{Lines: 4, Wrapped: 2, Echoed: 2}
	if diff := cmp.Diff(wantStats, stats); diff != "" {
		t.Fatalf("stats mismatch (-want +have):\n%s", diff)
	}
	if rec.calls[1].ok || rec.calls[2].ok {
		t.Fatalf("overlong lines not reported as failures: %+v", rec.calls)
	}
}

func TestLineReaderLongerThanBuffer(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	lr := newLineReader(strings.NewReader(long+"\nnext\n"), 1024)

	b, isLong, err := lr.next()
	if err != nil {
		t.Fatal(err)
	}
	if !isLong {
		t.Fatal("line not reported as long")
	}

	rest := &bytes.Buffer{}
	if err := lr.rest(rest); err != nil {
		t.Fatal(err)
	}
	if have, want := string(b)+rest.String(), long; have != want {
		t.Fatalf("long line reassembled to %d bytes, want %d", len(have), len(want))
	}

	b, isLong, err = lr.next()
	if err != nil {
		t.Fatal(err)
	}
	if have, want := string(b), "next"; have != want || isLong {
		t.Fatalf("next line %q (long %v), want %q", have, isLong, want)
	}
}

func TestLinesWrappedOnly(t *testing.T) {
	out := &bytes.Buffer{}
	opts := Options{Decode: hexdec.Options{WrappedOnly: true}}
	_, err := Lines(context.Background(), strings.NewReader("123456\n$HEX[313233]\n"), out, opts)
	if err != nil {
		t.Fatal(err)
	}
	if have, want := out.String(), "123456\n123\n"; have != want {
		t.Fatalf("output %q != %q", have, want)
	}
}

func TestLinesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Lines(ctx, strings.NewReader("41\n42\n"), &bytes.Buffer{}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error %v is not context.Canceled", err)
	}
}

func TestLiteral(t *testing.T) {
	rec := &recorder{}
	o := Literal("$HEX[48656c6c6f]", Options{Reporter: rec})
	if have, want := o.Text, "Hello"; have != want {
		t.Fatalf("Literal = %q, want %q", have, want)
	}
	if have, want := len(rec.calls), 1; have != want {
		t.Fatalf("%d reports, want %d", have, want)
	}
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "pot")
	if err := os.WriteFile(existing, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	testCases := map[string]struct {
		input string
		want  InputKind
	}{
		"existing file":     {input: existing, want: FileInput},
		"directory":         {input: dir, want: Directory},
		"wrapped literal":   {input: "$HEX[4142]", want: LiteralInput},
		"invalid wrapped":   {input: "$HEX[4z]", want: LiteralInput},
		"raw hex literal":   {input: "48656c6c6f", want: LiteralInput},
		"plain literal":     {input: "hunter2", want: LiteralInput},
		"missing file":      {input: filepath.Join(dir, "missing.txt"), want: MissingFile},
		"missing potfile":   {input: "hashcat.potfile", want: MissingFile},
		"plain with spaces": {input: "a/b c", want: LiteralInput},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if have := Classify(tc.input); have != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.input, have, tc.want)
			}
		})
	}
}
