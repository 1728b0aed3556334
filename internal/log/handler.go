package log

import (
	"context"
	"log/slog"

	"github.com/ErlanBelekov/phone-insights/internal/reqctx"
)

// ContextHandler wraps an slog.Handler and copies request-scoped values
// (request_id, user_id) from the context onto each record.
type ContextHandler struct {
	inner slog.Handler
}

func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id := reqctx.RequestID(ctx); id != "" {
			r.AddAttrs(slog.String("request_id", id))
		}
		if uid := reqctx.UserID(ctx); uid != "" {
			r.AddAttrs(slog.String("user_id", uid))
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}
