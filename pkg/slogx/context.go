package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext returns a child context carrying logger. Handlers down the
// chain retrieve it with FromContext so request-scoped attributes travel
// with the request.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default when none
// was attached. Callers never get a nil logger.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// WithRequestID tags the contextual logger with a req_id attribute and
// stores the tagged logger back into the context.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	l := FromContext(ctx)
	return WithContext(ctx, l.With("req_id", reqID))
}
