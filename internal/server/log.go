package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"unhex/internal/convert"
	"unhex/internal/ctxlog"
)

type statusCapturingResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusCapturingResponseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusCapturingResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// decodeTally collects what a request decoded so that the access log line
// can carry it.
type decodeTally struct {
	mx      sync.Mutex
	decoded bool
	stats   convert.Stats
}

type tallyKey struct{}

// tallyDecoded adds stats to the tally of the request behind ctx, if any.
func tallyDecoded(ctx context.Context, stats convert.Stats) {
	t, ok := ctx.Value(tallyKey{}).(*decodeTally)
	if !ok {
		return
	}
	t.mx.Lock()
	defer t.mx.Unlock()
	t.decoded = true
	t.stats.Lines += stats.Lines
	t.stats.Invalid += stats.Invalid
	t.stats.Fallback += stats.Fallback
	t.stats.Echoed += stats.Echoed
}

func (t *decodeTally) attrs() []any {
	t.mx.Lock()
	defer t.mx.Unlock()
	if !t.decoded {
		return nil
	}
	return []any{"lines", t.stats.Lines, "invalid", t.stats.Invalid, "fallback", t.stats.Fallback}
}

// logMiddleware writes one access log line per request. The query string
// carries plaintexts, so only the path is logged.
func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxlog.With(r.Context(), "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		tally := &decodeTally{}
		ctx = context.WithValue(ctx, tallyKey{}, tally)

		start := time.Now()
		cw := &statusCapturingResponseWriter{ResponseWriter: w}
		next.ServeHTTP(cw, r.WithContext(ctx))
		dur := time.Since(start)

		attrs := []any{"status", cw.status, "bytes", cw.bytes, "duration", dur.String()}
		attrs = append(attrs, tally.attrs()...)
		ctxlog.Get(ctx).Info("request completed", attrs...)
	})
}
