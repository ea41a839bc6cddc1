package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// Middleware loads the session referenced by the request token into the
// request context. Requests without a usable session pass through unchanged;
// store failures are logged and treated the same way.
func Middleware(store Store, source TokenSource, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Discard()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := source.Token(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(WithSession(r.Context(), sess))
			case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionExpired):
			default:
				log.WarnContext(r.Context(), "session lookup failed", logger.Error(err))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentitySource returns the raw identity of the request session. Its
// signature matches tenant.IdentitySource.
func IdentitySource() func(r *http.Request) (any, bool) {
	return func(r *http.Request) (any, bool) {
		sess, ok := FromContext(r.Context())
		if !ok || !sess.HasSubject() {
			return nil, false
		}
		return sess.Subject, true
	}
}
