package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/tenantkit/handler"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// Gate allows requests carrying "Authorization: Bearer <token>" and answers
// everything else with 403. An empty token disables the admin surface
// entirely.
func Gate(token string, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	want := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearer(r)
			if len(want) == 0 || !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				log.WarnContext(r.Context(), "admin access denied",
					slog.String("path", r.URL.Path),
					slog.Bool("credentials", ok),
				)
				_ = handler.JSONError(handler.ErrForbidden).Render(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
