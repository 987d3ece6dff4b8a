package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
)

// WithLogger stores logger in ctx. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	return Default()
}

// WithRequestID records id in ctx and tags the context logger with it.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, id)
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("request_id", id) })
}

// RequestID returns the id set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithUpdateKind tags the context logger with the kind of catalog update.
func WithUpdateKind(ctx context.Context, kind string) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("update_kind", kind) })
}

// WithSource tags the context logger with the feed URL being read.
func WithSource(ctx context.Context, url string) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("source", url) })
}

// WithError tags the context logger with err. A nil err returns ctx unchanged.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Err(err) })
}

func with(ctx context.Context, add func(zerolog.Context) zerolog.Context) context.Context {
	l := add(FromContext(ctx).With()).Logger()
	return context.WithValue(ctx, loggerKey, &l)
}
