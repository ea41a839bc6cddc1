package clientip

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithContext stores ip in ctx.
func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// FromContext returns the stored client IP or "".
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// LoggerExtractor adds client_ip to log records of requests that have one.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		ip := FromContext(ctx)
		if ip == "" {
			return slog.Attr{}, false
		}
		return slog.String("client_ip", ip), true
	}
}
