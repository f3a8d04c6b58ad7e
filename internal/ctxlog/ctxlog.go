// Package ctxlog provides context-aware structured logging utilities.
package ctxlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	// Dir receives one JSON log file per run. Empty disables file logging.
	Dir string `yaml:"dir"`
	// Stderr mirrors the log to stderr.
	Stderr bool `yaml:"stderr"`
	Debug  bool `yaml:"debug"`
}

// Setup installs the default logger and stores it in ctx.
// The returned closer closes the log file, if any.
func Setup(ctx context.Context, name string, config Config) (context.Context, io.Closer, error) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if config.Dir != "" {
		err := os.MkdirAll(config.Dir, 0755)
		if err != nil {
			return ctx, nil, fmt.Errorf("create log dir: %w", err)
		}

		fn := name + "-" + time.Now().Format("2006-01-02-15-04-05") + ".log"
		logFile, err := os.Create(filepath.Join(config.Dir, fn))
		if err != nil {
			return ctx, nil, fmt.Errorf("create log file: %w", err)
		}

		writers = append(writers, logFile)
		closer = logFile
	}
	if config.Stderr {
		writers = append(writers, os.Stderr)
	}

	level := slog.LevelInfo
	if config.Debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: level,
	})).With("app", name)
	slog.SetDefault(logger)

	return Store(ctx, logger), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type ctxKey struct{}

var key ctxKey

func Store(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, key, log)
}

func Get(ctx context.Context) *slog.Logger {
	log, ok := ctx.Value(key).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return log
}

func Close(ctx context.Context, name string, closer io.Closer) error {
	logger := Get(ctx)
	err := closer.Close()
	if err != nil {
		logger.Error("failed to close", "closer", name, "error", err)
		return err
	}
	return nil
}

func With(ctx context.Context, kv ...any) context.Context {
	return Store(ctx, Get(ctx).With(kv...))
}
