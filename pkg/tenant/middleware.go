package tenant

import (
	"net/http"
	"strings"
)

// IdentitySource extracts the raw identity value of a request, typically from
// the session. ok is false for requests without a session.
type IdentitySource func(r *http.Request) (raw any, ok bool)

// Middleware resolves the tenant context of every request and attaches it to
// the request context. It never rejects a request; use RequireTenant or
// RequireUser on routes that need one.
func Middleware(source IdentitySource, resolver *Resolver, opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipped(r.URL.Path, cfg.skipPaths) {
				next.ServeHTTP(w, r)
				return
			}

			var tc Context
			if raw, ok := source(r); ok {
				tc = resolver.Resolve(r.Context(), raw)
			}

			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), tc)))
		})
	}
}

// skipped matches whole path segments, so "/health" covers "/health/live"
// but not "/healthcare".
func skipped(path string, skips []string) bool {
	for _, skip := range skips {
		base := strings.TrimSuffix(skip, "/")
		if path == base || strings.HasPrefix(path, base+"/") {
			return true
		}
	}
	return false
}

// RequireTenant rejects requests without an active organization with 403.
func RequireTenant(opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, _ := FromContext(r.Context())
			if !tc.HasOrganization() {
				cfg.errorHandler(w, r, ErrNoActiveOrganization)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects anonymous requests with 403.
func RequireUser(opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, _ := FromContext(r.Context())
			if !tc.HasUser() {
				cfg.errorHandler(w, r, ErrIdentityRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
