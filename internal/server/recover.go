package server

import (
	"errors"
	"net/http"

	"unhex/internal/ctxlog"
	"unhex/internal/rec"
)

// recoverHandler answers with err when next panics. Aborted handlers are
// passed on to net/http.
type recoverHandler struct {
	next http.Handler
	err  http.Handler
}

func newRecover(next, err http.Handler) *recoverHandler {
	return &recoverHandler{
		next: next,
		err:  err,
	}
}

func (h *recoverHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var err error
	defer func() {
		if err == nil {
			return
		}
		if errors.Is(err, http.ErrAbortHandler) {
			panic(http.ErrAbortHandler)
		}

		ctxlog.Get(r.Context()).Error("decode request panicked", "error", err)

		clear(w.Header())
		h.err.ServeHTTP(w, r)
	}()
	defer rec.Error(&err)

	h.next.ServeHTTP(w, r)
}
