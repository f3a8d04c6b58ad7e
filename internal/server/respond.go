package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"unhex/internal/ctxlog"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	content, err := json.Marshal(v)
	if err != nil {
		log := ctxlog.Get(r.Context())
		log.Error("failed to marshal response", "error", err)
		status = http.StatusInternalServerError
		content = []byte(`{"error":"internal server error"}`)
	}
	content = append(content, '\n')

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(status)
	if _, err := w.Write(content); err != nil {
		log := ctxlog.Get(r.Context())
		log.Error("failed to write response", "error", err)
		return
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, status, errorResponse{Error: http.StatusText(status)})
	})
}
