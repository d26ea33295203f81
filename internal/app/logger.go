package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/myenglish-dictdb/internal/config"
	"github.com/heartmarshall/myenglish-dictdb/pkg/ctxutil"
)

// NewLogger creates a *slog.Logger based on the provided LogConfig
// and sets it as the default logger via slog.SetDefault.
//
// Format "json" produces structured JSON output (CI logs).
// Format "text" produces human-readable output with source info (local runs).
// Level is one of: debug, info, warn, error (case-insensitive); defaults to info.
// Output is always os.Stderr so stdout stays free for the result line.
// Records logged with a context carry run_id and phase when present.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := slog.New(newHandler(os.Stderr, cfg))
	slog.SetDefault(logger)

	return logger
}

func newHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return contextHandler{Handler: handler}
}

// contextHandler enriches records with values stored by pkg/ctxutil.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctxutil.RunIDFromCtx(ctx); ok {
		r.AddAttrs(slog.String("run_id", id.String()))
	}
	if phase := ctxutil.PhaseFromCtx(ctx); phase != "" {
		r.AddAttrs(slog.String("phase", phase))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
