package tenant

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithContext attaches tc to ctx.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext returns the tenant context. ok is false when the middleware did
// not run; an anonymous request still returns ok=true with a zero Context.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(Context)
	return tc, ok
}

// UserIDFromContext returns the resolved user id, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	tc, _ := FromContext(ctx)
	return tc.UserID, tc.HasUser()
}

// OrganizationIDFromContext returns the active organization id, if any.
func OrganizationIDFromContext(ctx context.Context) (string, bool) {
	tc, _ := FromContext(ctx)
	return tc.OrganizationID, tc.HasOrganization()
}

// MustFromContext returns the tenant context and panics when there is no
// active organization. Use it only behind RequireTenant.
func MustFromContext(ctx context.Context) Context {
	tc, _ := FromContext(ctx)
	if !tc.HasOrganization() {
		panic("tenant: no active organization in context")
	}
	return tc
}

// LoggerExtractor adds user_id and organization_id to log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		tc, _ := FromContext(ctx)
		if !tc.HasUser() {
			return slog.Attr{}, false
		}
		attrs := []any{logger.UserID(tc.UserID)}
		if tc.HasOrganization() {
			attrs = append(attrs, logger.OrganizationID(tc.OrganizationID))
		}
		return slog.Group("tenant", attrs...), true
	}
}
