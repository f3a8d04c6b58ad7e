package server

import (
	"bufio"
	"errors"
	"net/http"
	"strings"

	"unhex/internal/convert"
	"unhex/internal/ctxlog"
	"unhex/internal/hexdec"
	"unhex/internal/report"
)

type decodeResult struct {
	Line     string `json:"line"`
	Text     string `json:"text"`
	Source   string `json:"source"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

func newDecodeResult(line string, o hexdec.Outcome) decodeResult {
	res := decodeResult{
		Line:     line,
		Text:     convert.Output(line, o),
		Source:   o.Source.String(),
		Fallback: o.Fallback,
	}
	if !o.OK() {
		res.Error = o.Err.Error()
		res.Hint = report.Hint(o.Err)
	}
	return res
}

type decodeHandler struct {
	opts    hexdec.Options
	maxBody int64
}

// ServeHTTP decodes ?s= on GET, or every line of the body on POST.
func (h *decodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !r.URL.Query().Has("s") {
			writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "missing query parameter s"})
			return
		}
		s := r.URL.Query().Get("s")
		o := h.opts.Decode(s)

		var stats convert.Stats
		stats.Add(o)
		tallyDecoded(r.Context(), stats)

		writeJSON(w, r, http.StatusOK, newDecodeResult(s, o))

	case http.MethodPost:
		body := http.MaxBytesReader(w, r.Body, h.maxBody)
		sc := bufio.NewScanner(body)
		sc.Buffer(make([]byte, 0, 64*1024), int(h.maxBody))

		results := []decodeResult{}
		var stats convert.Stats
		for sc.Scan() {
			line := strings.TrimSuffix(sc.Text(), "\r")
			o := h.opts.Decode(line)
			results = append(results, newDecodeResult(line, o))
			stats.Add(o)
		}
		tallyDecoded(r.Context(), stats)
		if err := sc.Err(); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeJSON(w, r, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
				return
			}
			writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		ctxlog.Get(r.Context()).Debug("decoded body", "lines", stats.Lines, "invalid", stats.Invalid)

		writeJSON(w, r, http.StatusOK, results)

	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, r, http.StatusMethodNotAllowed, errorResponse{Error: http.StatusText(http.StatusMethodNotAllowed)})
	}
}
