// Package logging configures the slog logger that travels in the context.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

// Setup builds a tint console logger wrapped in a slog-context handler,
// installs it as the default logger and returns a context carrying it.
func Setup(ctx context.Context, w io.Writer, level slog.Level, color bool) context.Context {
	tintHandler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !color,
	})

	logger := slog.New(slogctx.NewHandler(tintHandler, nil))
	slog.SetDefault(logger)

	return slogctx.NewCtx(ctx, logger)
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Ctx returns the logger stored in ctx, or the default logger.
func Ctx(ctx context.Context) *slog.Logger {
	return slogctx.FromCtx(ctx)
}

// Append adds attributes that every later record logged through ctx carries.
func Append(ctx context.Context, args ...any) context.Context {
	return slogctx.Append(ctx, args...)
}
