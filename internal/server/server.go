// Package server exposes the decoder over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"unhex/internal/ctxlog"
	"unhex/internal/hexdec"
)

type Server struct {
	addr            string
	handler         http.Handler
	limiter         *limiter
	shutdownTimeout time.Duration
}

func New(config Config, opts hexdec.Options) *Server {
	if config.Port == 0 {
		panic("server: port is required")
	}
	if config.LimitBuckets == 0 {
		panic("server: limitBuckets is required")
	}
	if config.LimitPeriod == 0 {
		panic("server: limitPeriod is required")
	}
	if config.LimitConcurrent == 0 {
		panic("server: limitConcurrent is required")
	}
	if config.MaxBodyBytes == 0 {
		panic("server: maxBodyBytes is required")
	}
	if config.ShutdownTimeout == 0 {
		panic("server: shutdownTimeout is required")
	}

	lim := newLimiter(config.LimitBuckets, config.LimitPeriod, config.LimitConcurrent, errorHandler(http.StatusTooManyRequests))

	mux := http.NewServeMux()
	mux.Handle("/decode", lim.middleware(&decodeHandler{
		opts:    opts,
		maxBody: config.MaxBodyBytes,
	}))
	mux.Handle("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}))
	mux.Handle("/", errorHandler(http.StatusNotFound))

	handler := http.Handler(mux)
	handler = newRecover(handler, errorHandler(http.StatusInternalServerError))
	handler = logMiddleware(handler)

	return &Server{
		addr:            fmt.Sprintf("0.0.0.0:%d", config.Port),
		handler:         handler,
		limiter:         lim,
		shutdownTimeout: config.ShutdownTimeout,
	}
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	logger := ctxlog.Get(ctx)
	defer s.limiter.stop()

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server is running", "addr", s.addr)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("server is shutting down")

		stopCtx, stopCancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer stopCancel()

		err := srv.Shutdown(stopCtx)
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Error("server shutdown timeout exceeded")
		} else if err == nil {
			logger.Info("all clients closed successfully")
		}
		return err
	})

	return g.Wait()
}
