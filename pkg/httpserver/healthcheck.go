package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// Check is a named readiness dependency.
type Check struct {
	Name  string
	Probe func(context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthCheckHandler serves liveness when no checks are given and readiness
// otherwise. Every check runs with the request context; the response is 200
// when all pass and 503 when any fails. Failure details are logged, never
// returned.
func HealthCheckHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			writeHealth(w, http.StatusOK, healthResponse{Status: "alive"})
			return
		}

		resp := healthResponse{Status: "ready", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for _, c := range checks {
			if err := c.Probe(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", slog.String("check", c.Name), logger.Error(err))
				resp.Checks[c.Name] = "failing"
				resp.Status = "not_ready"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.Name] = "ok"
		}
		writeHealth(w, status, resp)
	}
}

func writeHealth(w http.ResponseWriter, status int, resp healthResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
